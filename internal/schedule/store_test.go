package schedule

import (
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
)

func TestNewSnapshotSortsAndKeepsDuplicates(t *testing.T) {
	snap := NewSnapshot([]CollectionDate{
		{Date: date(2026, 11, 3), Category: Paper},
		{Date: date(2026, 10, 20), Category: Paper},
		{Date: date(2026, 10, 20), Category: Paper},
		{Date: date(2026, 10, 16), Category: Organic},
	}, []string{"/cal/a.ics"}, time.Time{})

	wantPaper := []time.Time{date(2026, 10, 20), date(2026, 10, 20), date(2026, 11, 3)}
	if diff := cmp.Diff(wantPaper, snap.Dates(Paper)); diff != "" {
		t.Errorf("Paper dates mismatch (-want +got):\n%s", diff)
	}
	if snap.Len(Organic) != 1 || snap.Len(Recycling) != 0 || snap.Len(Residual) != 0 {
		t.Errorf("Unexpected bucket sizes: organic=%d recycling=%d residual=%d",
			snap.Len(Organic), snap.Len(Recycling), snap.Len(Residual))
	}

	all := snap.All()
	if len(all) != 4 || all[0].Category != Organic || !all[0].Date.Equal(date(2026, 10, 16)) {
		t.Errorf("All() not ordered by date: %+v", all)
	}
}

func TestSnapshotCopiesAreIndependent(t *testing.T) {
	files := []string{"/cal/a.ics"}
	snap := NewSnapshot([]CollectionDate{{Date: date(2026, 10, 16), Category: Organic}}, files, time.Time{})

	files[0] = "changed"
	snap.Files()[0] = "changed"
	snap.Dates(Organic)[0] = date(2000, 1, 1)

	if snap.Files()[0] != "/cal/a.ics" {
		t.Error("Snapshot files must not change through caller slices")
	}
	if !snap.Dates(Organic)[0].Equal(date(2026, 10, 16)) {
		t.Error("Snapshot dates must not change through returned slices")
	}
}

func TestStoreNextGraceWindow(t *testing.T) {
	snap := NewSnapshot([]CollectionDate{
		{Date: date(2026, 10, 15), Category: Residual},
		{Date: date(2026, 10, 16), Category: Residual},
		{Date: date(2026, 10, 20), Category: Residual},
	}, nil, time.Time{})

	tests := []struct {
		name   string
		now    time.Time
		want   time.Time
		wantOK bool
	}{
		{"day before", time.Date(2026, 10, 15, 18, 0, 0, 0, testLoc), date(2026, 10, 16), true},
		{"pickup day early morning", time.Date(2026, 10, 16, 7, 0, 0, 0, testLoc), date(2026, 10, 16), true},
		{"pickup day at grace end", time.Date(2026, 10, 16, 8, 0, 0, 0, testLoc), date(2026, 10, 16), true},
		{"pickup day after grace", time.Date(2026, 10, 16, 9, 0, 0, 0, testLoc), date(2026, 10, 20), true},
		{"long before", time.Date(2026, 1, 1, 0, 0, 0, 0, testLoc), date(2026, 10, 15), true},
		{"exhausted", time.Date(2026, 10, 21, 9, 0, 0, 0, testLoc), time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore(clockwork.NewFakeClockAt(tt.now), testLoc, DefaultGrace, German)
			store.Replace(snap)

			got, ok := store.Next(Residual)
			if ok != tt.wantOK || !got.Equal(tt.want) {
				t.Errorf("Next() = %v, %v; want %v, %v", got, ok, tt.want, tt.wantOK)
			}
			if ok && got.Before(tt.now.Add(-DefaultGrace)) {
				t.Errorf("Next() returned %v, before the grace window", got)
			}
		})
	}
}

func TestStoreInitiallyEmpty(t *testing.T) {
	store := NewStore(clockwork.NewFakeClock(), testLoc, DefaultGrace, German)
	for _, c := range Categories {
		if _, ok := store.Next(c); ok {
			t.Errorf("Next(%s) should be empty before the first refresh", c)
		}
	}
	if len(store.ScannedFiles()) != 0 {
		t.Error("ScannedFiles() should be empty before the first refresh")
	}
}

// Every snapshot holds the same date in all four categories, so a reader
// that ever sees two different dates has observed a torn update.
func TestStoreReplaceIsAtomic(t *testing.T) {
	store := NewStore(clockwork.NewFakeClock(), testLoc, DefaultGrace, German)

	build := func(n int) *Snapshot {
		d := date(2026, 1, 1).AddDate(0, 0, n)
		var dates []CollectionDate
		for _, c := range Categories {
			dates = append(dates, CollectionDate{Date: d, Category: c})
		}
		return NewSnapshot(dates, nil, time.Time{})
	}
	store.Replace(build(0))

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := store.Snapshot()
				first := snap.Dates(Organic)[0]
				for _, c := range Categories[1:] {
					if !snap.Dates(c)[0].Equal(first) {
						t.Errorf("Torn snapshot: %s=%v organic=%v", c, snap.Dates(c)[0], first)
						return
					}
				}
			}
		}()
	}

	for n := 1; n <= 500; n++ {
		store.Replace(build(n))
	}
	close(stop)
	wg.Wait()
}

func TestViewPinsSnapshotAndClock(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 10, 15, 7, 0, 0, 0, testLoc))
	store := NewStore(clock, testLoc, DefaultGrace, German)
	store.Replace(NewSnapshot([]CollectionDate{
		{Date: date(2026, 10, 16), Category: Paper},
	}, []string{"/cal/a.ics"}, time.Time{}))

	view := store.View()
	store.Replace(NewSnapshot([]CollectionDate{
		{Date: date(2026, 10, 30), Category: Paper},
	}, []string{"/cal/b.ics"}, time.Time{}))
	clock.Advance(24 * time.Hour)

	got, ok := view.Next(Paper)
	if !ok || !got.Equal(date(2026, 10, 16)) {
		t.Errorf("Expected pinned date 2026-10-16, got %v, %v", got, ok)
	}
	if r := view.Reminder(got); r != "morgen" {
		t.Errorf("Expected reminder from pinned clock, got %q", r)
	}
	if !view.IsSoon(got) {
		t.Error("Expected pinned date to be soon")
	}
	if diff := cmp.Diff([]string{"/cal/a.ics"}, view.Files()); diff != "" {
		t.Errorf("Files mismatch (-want +got):\n%s", diff)
	}

	if got, _ := store.View().Next(Paper); !got.Equal(date(2026, 10, 30)) {
		t.Errorf("Expected a fresh view to see 2026-10-30, got %v", got)
	}
}
