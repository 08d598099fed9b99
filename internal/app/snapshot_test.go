package app

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/klabast/wb-services/abfuhr-termine/internal/schedule"
)

// flippingStore swaps between two snapshots until the returned stop is
// called. Each snapshot puts every category on the same day and names
// one file after that day.
func flippingStore(t *testing.T) (*schedule.Store, func()) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 10, 15, 7, 0, 0, 0, testLoc))
	store := schedule.NewStore(clock, testLoc, schedule.DefaultGrace, schedule.German)

	build := func(d time.Time) *schedule.Snapshot {
		var dates []schedule.CollectionDate
		for _, c := range schedule.Categories {
			dates = append(dates, schedule.CollectionDate{Date: d, Category: c})
		}
		return schedule.NewSnapshot(dates, []string{d.Format(schedule.DateLayout) + ".ics"}, d)
	}
	snaps := []*schedule.Snapshot{build(day(10, 20)), build(day(10, 21))}
	store.Replace(snaps[0])

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; ; i++ {
			select {
			case <-done:
				return
			default:
			}
			store.Replace(snaps[i%2])
		}
	}()
	return store, func() {
		close(done)
		wg.Wait()
	}
}

func TestWasteScheduleTextReadsOneSnapshot(t *testing.T) {
	store, stop := flippingStore(t)
	defer stop()

	for i := 0; i < 2000; i++ {
		text := WasteScheduleText(store)
		lines := strings.Split(text, "\n")[1:]
		first := lines[0][strings.LastIndex(lines[0], " ")+1:]
		for _, line := range lines[1:] {
			if got := line[strings.LastIndex(line, " ")+1:]; got != first {
				t.Fatalf("Expected one date across categories, got:\n%s", text)
			}
		}
	}
}

func TestHandleScheduleReadsOneSnapshot(t *testing.T) {
	store, stop := flippingStore(t)
	defer stop()
	srv := NewServer(store, &countingReloader{}, NewProperties(store, nil), nil, newTestLogger())

	for i := 0; i < 500; i++ {
		w := do(t, srv, "GET", "/api/schedule", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		var resp ScheduleResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Invalid JSON: %v", err)
		}
		date := resp.Categories[string(schedule.Organic)].Date
		for c, status := range resp.Categories {
			if status.Date != date {
				t.Fatalf("Expected %s on %s, got %+v", c, date, resp.Categories)
			}
		}
		if len(resp.ScannedFiles) != 1 || resp.ScannedFiles[0] != date+".ics" {
			t.Fatalf("Expected scanned files [%s.ics], got %v", date, resp.ScannedFiles)
		}
		if !strings.HasPrefix(resp.RefreshedAt, date) {
			t.Fatalf("Expected refreshed_at on %s, got %s", date, resp.RefreshedAt)
		}
	}
}

func TestPropertiesRefreshReadsOneSnapshot(t *testing.T) {
	store, stop := flippingStore(t)
	defer stop()
	props := NewProperties(store, newTestLogger())

	for i := 0; i < 2000; i++ {
		props.Refresh()
		values := props.Values()
		date := values[nextProperty(schedule.Organic)]
		for _, c := range schedule.Categories {
			if got := values[nextProperty(c)]; got != date {
				t.Fatalf("Expected %s = %v, got %v", nextProperty(c), date, got)
			}
		}
		if want := date.(string) + ".ics"; values[ScannedFilesProperty] != want {
			t.Fatalf("Expected %s = %s, got %v", ScannedFilesProperty, want, values[ScannedFilesProperty])
		}
	}
}
