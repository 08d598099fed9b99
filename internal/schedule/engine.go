package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"

	"github.com/klabast/wb-services/abfuhr-termine/internal/metrics"
)

// DefaultInterval is the pause between two background refresh cycles
const DefaultInterval = 708 * time.Second

// ErrAlreadyRunning is returned by Start while the refresh loop is active
var ErrAlreadyRunning = errors.New("schedule engine already running")

// Options configures an Engine. Dir is required; zero values elsewhere
// fall back to the defaults of this package.
type Options struct {
	Dir      string
	Fs       afero.Fs
	Clock    clockwork.Clock
	Location *time.Location
	Interval time.Duration
	Grace    time.Duration
	Rules    []Rule
	Locale   Locale
	Logger   *slog.Logger
}

// FileResult is the outcome of processing one calendar document. Err is
// set when the file was skipped; Dates is then empty.
type FileResult struct {
	Path   string
	Events int
	Dates  []CollectionDate
	Err    error
}

// Report describes one completed refresh cycle
type Report struct {
	Files    []FileResult
	Snapshot *Snapshot
	Duration time.Duration
}

// Failed returns the results of files that were skipped
func (r *Report) Failed() []FileResult {
	var failed []FileResult
	for _, f := range r.Files {
		if f.Err != nil {
			failed = append(failed, f)
		}
	}
	return failed
}

// Engine turns a directory of calendar documents into a Store and keeps it
// fresh from a background loop.
type Engine struct {
	dir        string
	fs         afero.Fs
	clock      clockwork.Clock
	loc        *time.Location
	interval   time.Duration
	classifier *Classifier
	store      *Store
	logger     *slog.Logger

	listenersMu sync.Mutex
	listeners   map[int]func()
	nextID      int

	trigger chan struct{}

	runMu sync.Mutex
	stop  chan struct{}
	done  chan struct{}

	// set while the loop goroutine is calling listeners
	loopNotifying atomic.Bool
}

// New validates opts and returns an idle engine with an empty snapshot
func New(opts Options) (*Engine, error) {
	if opts.Dir == "" {
		return nil, errors.New("calendar directory is required")
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Grace == 0 {
		opts.Grace = DefaultGrace
	}
	if opts.Rules == nil {
		opts.Rules = DefaultRules
	}
	if opts.Locale == (Locale{}) {
		opts.Locale = German
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	classifier, err := NewClassifier(opts.Rules)
	if err != nil {
		return nil, err
	}

	return &Engine{
		dir:        opts.Dir,
		fs:         opts.Fs,
		clock:      opts.Clock,
		loc:        opts.Location,
		interval:   opts.Interval,
		classifier: classifier,
		store:      NewStore(opts.Clock, opts.Location, opts.Grace, opts.Locale),
		logger:     opts.Logger.With("component", "schedule"),
		listeners:  make(map[int]func()),
		trigger:    make(chan struct{}, 1),
	}, nil
}

// Store returns the query side of the engine
func (e *Engine) Store() *Store { return e.store }

// Dir returns the watched calendar directory
func (e *Engine) Dir() string { return e.dir }

// Subscribe registers fn to run after every successful refresh cycle. fn
// runs on the refresh goroutine and must hand off anything slow. fn may
// call Stop; the loop then exits once the listeners have returned. The
// returned func removes the registration.
func (e *Engine) Subscribe(fn func()) (cancel func()) {
	e.listenersMu.Lock()
	defer e.listenersMu.Unlock()

	id := e.nextID
	e.nextID++
	e.listeners[id] = fn

	return func() {
		e.listenersMu.Lock()
		delete(e.listeners, id)
		e.listenersMu.Unlock()
	}
}

func (e *Engine) notify() {
	e.listenersMu.Lock()
	fns := make([]func(), 0, len(e.listeners))
	for id := 0; id < e.nextID; id++ {
		if fn, ok := e.listeners[id]; ok {
			fns = append(fns, fn)
		}
	}
	e.listenersMu.Unlock()

	for _, fn := range fns {
		e.callListener(fn)
	}
}

func (e *Engine) callListener(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("listener panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	fn()
}

// Refresh runs one cycle: list, process every file in isolation, publish
// the merged snapshot and notify listeners. Only a listing failure (or ctx
// cancellation between files) aborts the cycle; the published snapshot is
// then left untouched.
func (e *Engine) Refresh(ctx context.Context) (*Report, error) {
	report, err := e.collect(ctx)
	if err != nil {
		return nil, err
	}
	e.notify()
	return report, nil
}

// collect is Refresh without the listener calls
func (e *Engine) collect(ctx context.Context) (*Report, error) {
	started := e.clock.Now()

	files, err := ListCalendars(e.fs, e.dir)
	if err != nil {
		metrics.RecordCycleFailure(e.clock.Since(started))
		return nil, err
	}

	report := &Report{Files: make([]FileResult, 0, len(files))}
	var dates []CollectionDate
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			metrics.RecordCycleFailure(e.clock.Since(started))
			return nil, fmt.Errorf("refresh interrupted: %w", err)
		}

		e.logger.Info("parsing calendar", "path", path)
		res := e.processFile(path)
		if res.Err != nil {
			e.logger.Warn("skipping calendar", "path", path, "error", res.Err)
		} else {
			e.logger.Debug("calendar loaded", "path", path, "events", res.Events, "dates", len(res.Dates))
			dates = append(dates, res.Dates...)
		}
		report.Files = append(report.Files, res)
	}

	snap := NewSnapshot(dates, files, e.clock.Now())
	e.store.Replace(snap)
	report.Snapshot = snap
	report.Duration = e.clock.Since(started)

	counts := make(map[string]int, len(Categories))
	for _, c := range Categories {
		counts[string(c)] = snap.Len(c)
	}
	metrics.RecordCycle(report.Duration, len(report.Failed()), counts, snap.BuiltAt())
	return report, nil
}

// processFile never panics; any failure ends up in FileResult.Err
func (e *Engine) processFile(path string) (res FileResult) {
	res.Path = path
	defer func() {
		if r := recover(); r != nil {
			res.Dates = nil
			res.Err = fmt.Errorf("panic while processing: %v", r)
		}
	}()

	raw, err := afero.ReadFile(e.fs, path)
	if err != nil {
		res.Err = fmt.Errorf("read %s: %w", path, err)
		return res
	}

	events, err := ParseEvents(StripAlarms(string(raw)), e.loc)
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			parseErr.Path = path
		}
		res.Err = err
		return res
	}

	res.Events = len(events)
	for _, ev := range events {
		if category, ok := e.classifier.Classify(ev.Summary); ok {
			res.Dates = append(res.Dates, CollectionDate{Date: ev.Start, Category: category})
		}
	}
	return res
}

// Trigger asks the background loop for an immediate refresh. Requests
// arriving while one is pending are coalesced.
func (e *Engine) Trigger() {
	select {
	case e.trigger <- struct{}{}:
	default:
	}
}

// Start launches the background loop. The first cycle runs immediately,
// then one per interval until Stop is called or ctx is done.
func (e *Engine) Start(ctx context.Context) error {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	if e.done != nil {
		return ErrAlreadyRunning
	}
	e.stop = make(chan struct{})
	e.done = make(chan struct{})
	go e.loop(ctx, e.stop, e.done)

	e.logger.Info("refresh loop started", "dir", e.dir, "interval", e.interval)
	return nil
}

// Stop ends the background loop. A cycle in progress is allowed to
// finish; Stop returns once the loop has exited. Called from a listener
// during a background cycle, Stop only signals the loop and returns.
func (e *Engine) Stop() {
	e.runMu.Lock()
	stop, done := e.stop, e.done
	e.stop, e.done = nil, nil
	e.runMu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	if e.loopNotifying.Load() {
		e.logger.Info("refresh loop stopping after listeners return")
		return
	}
	<-done
	e.logger.Info("refresh loop stopped")
}

// Running reports whether the background loop is active
func (e *Engine) Running() bool {
	e.runMu.Lock()
	done := e.done
	e.runMu.Unlock()

	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

func (e *Engine) loop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		default:
		}

		e.runCycle(ctx)

		timer := e.clock.NewTimer(e.interval)
		select {
		case <-stop:
			timer.Stop()
			return
		case <-ctx.Done():
			timer.Stop()
			return
		case <-e.trigger:
			timer.Stop()
		case <-timer.Chan():
		}
	}
}

// runCycle keeps the loop alive whatever the cycle does
func (e *Engine) runCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("refresh cycle panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()

	report, err := e.collect(ctx)
	if err != nil {
		e.logger.Error("refresh failed", "dir", e.dir, "error", err)
		return
	}
	e.logger.Info("refresh complete",
		"files", len(report.Files),
		"failed", len(report.Failed()),
		"duration", report.Duration)

	e.loopNotifying.Store(true)
	defer e.loopNotifying.Store(false)
	e.notify()
}
