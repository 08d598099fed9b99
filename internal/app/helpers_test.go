package app

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/klabast/wb-services/abfuhr-termine/internal/schedule"
)

var testLoc = time.FixedZone("CET", 3600)

func day(month time.Month, d int) time.Time {
	return time.Date(2026, month, d, 0, 0, 0, 0, testLoc)
}

// newTestStore returns a store at Thursday 2026-10-15 07:00 holding:
// recycling today, organic tomorrow (plus a past date), paper next
// Wednesday and no residual dates.
func newTestStore(t *testing.T) *schedule.Store {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 10, 15, 7, 0, 0, 0, testLoc))
	store := schedule.NewStore(clock, testLoc, schedule.DefaultGrace, schedule.German)
	store.Replace(schedule.NewSnapshot([]schedule.CollectionDate{
		{Date: day(10, 1), Category: schedule.Organic},
		{Date: day(10, 16), Category: schedule.Organic},
		{Date: day(10, 15), Category: schedule.Recycling},
		{Date: day(10, 21), Category: schedule.Paper},
		{Date: day(11, 4), Category: schedule.Paper},
	}, []string{"/data/abfall.ics"}, time.Date(2026, 10, 15, 6, 55, 0, 0, testLoc)))
	return store
}

type countingReloader struct{ calls int }

func (c *countingReloader) Trigger() { c.calls++ }

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
