package schedule

import (
	"sort"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultGrace keeps a pickup day as "next" until 08:00 on that day
const DefaultGrace = 8 * time.Hour

// Snapshot is the immutable result of one refresh cycle: one ascending
// date sequence per category plus the files that were scanned.
type Snapshot struct {
	dates   map[Category][]time.Time
	files   []string
	builtAt time.Time
}

// NewSnapshot buckets dates by category and sorts each bucket. Duplicate
// dates are kept.
func NewSnapshot(dates []CollectionDate, files []string, builtAt time.Time) *Snapshot {
	buckets := make(map[Category][]time.Time, len(Categories))
	for _, d := range dates {
		buckets[d.Category] = append(buckets[d.Category], d.Date)
	}
	for _, seq := range buckets {
		sort.SliceStable(seq, func(i, j int) bool { return seq[i].Before(seq[j]) })
	}

	scanned := make([]string, len(files))
	copy(scanned, files)

	return &Snapshot{dates: buckets, files: scanned, builtAt: builtAt}
}

func emptySnapshot() *Snapshot {
	return &Snapshot{dates: map[Category][]time.Time{}}
}

// Dates returns a copy of the ascending sequence for c
func (s *Snapshot) Dates(c Category) []time.Time {
	seq := s.dates[c]
	out := make([]time.Time, len(seq))
	copy(out, seq)
	return out
}

// All returns every collection date ordered by date, then category order
func (s *Snapshot) All() []CollectionDate {
	var all []CollectionDate
	for _, c := range Categories {
		for _, d := range s.dates[c] {
			all = append(all, CollectionDate{Date: d, Category: c})
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Date.Before(all[j].Date) })
	return all
}

// Len returns the number of dates held for c
func (s *Snapshot) Len(c Category) int { return len(s.dates[c]) }

// Files returns a copy of the scanned file paths
func (s *Snapshot) Files() []string {
	out := make([]string, len(s.files))
	copy(out, s.files)
	return out
}

// BuiltAt is the clock time the snapshot was assembled; zero for the
// initial empty snapshot.
func (s *Snapshot) BuiltAt() time.Time { return s.builtAt }

// Next returns the first date in c that is not before cutoff
func (s *Snapshot) Next(c Category, cutoff time.Time) (time.Time, bool) {
	seq := s.dates[c]
	i := sort.Search(len(seq), func(i int) bool { return !seq[i].Before(cutoff) })
	if i == len(seq) {
		return time.Time{}, false
	}
	return seq[i], true
}

// Store publishes the current snapshot to concurrent readers. Replace is a
// single pointer swap, so a reader holding one Snapshot or View sees all
// four categories from one cycle.
type Store struct {
	current atomic.Pointer[Snapshot]
	clock   clockwork.Clock
	loc     *time.Location
	grace   time.Duration
	locale  Locale
}

// NewStore returns a store holding an empty snapshot
func NewStore(clock clockwork.Clock, loc *time.Location, grace time.Duration, locale Locale) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if loc == nil {
		loc = time.Local
	}
	s := &Store{clock: clock, loc: loc, grace: grace, locale: locale}
	s.current.Store(emptySnapshot())
	return s
}

// Snapshot returns the currently published snapshot
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Replace publishes snap as a unit
func (s *Store) Replace(snap *Snapshot) {
	if snap == nil {
		snap = emptySnapshot()
	}
	s.current.Store(snap)
}

// View pins the current snapshot and clock reading for a multi-category read
func (s *Store) View() View {
	return View{snap: s.Snapshot(), now: s.clock.Now(), store: s}
}

// Next returns the earliest date in c at or after now minus the grace window.
// Reads spanning several categories go through View.
func (s *Store) Next(c Category) (time.Time, bool) {
	return s.View().Next(c)
}

// ScannedFiles returns the files examined by the last successful cycle
func (s *Store) ScannedFiles() []string {
	return s.Snapshot().Files()
}

// IsSoon reports whether date is today, tomorrow or already past
func (s *Store) IsSoon(date time.Time) bool {
	return IsSoon(s.clock.Now(), date, s.loc)
}

// Reminder renders the day distance to date in the store's locale
func (s *Store) Reminder(date time.Time) string {
	return s.locale.Reminder(DaysUntil(s.clock.Now(), date, s.loc), date)
}

// Location returns the zone used for day granularity
func (s *Store) Location() *time.Location { return s.loc }

// Now returns the store clock's current time
func (s *Store) Now() time.Time { return s.clock.Now() }

// View answers next-date questions from one snapshot at one instant, so a
// Replace racing the read cannot mix dates from two refresh cycles.
type View struct {
	snap  *Snapshot
	now   time.Time
	store *Store
}

// Next returns the earliest date in c at or after now minus the grace window
func (v View) Next(c Category) (time.Time, bool) {
	return v.snap.Next(c, v.now.Add(-v.store.grace))
}

// IsSoon reports whether date is today, tomorrow or already past
func (v View) IsSoon(date time.Time) bool {
	return IsSoon(v.now, date, v.store.loc)
}

// Reminder renders the day distance to date in the store's locale
func (v View) Reminder(date time.Time) string {
	return v.store.locale.Reminder(DaysUntil(v.now, date, v.store.loc), date)
}

// Files returns the files scanned for the pinned snapshot
func (v View) Files() []string { return v.snap.Files() }

// BuiltAt returns when the pinned snapshot was assembled
func (v View) BuiltAt() time.Time { return v.snap.BuiltAt() }

// Now returns the pinned clock reading
func (v View) Now() time.Time { return v.now }
