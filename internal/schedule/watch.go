package schedule

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports changes to calendar documents in a directory
type Watcher struct {
	watcher  *fsnotify.Watcher
	onChange func(path string)
	logger   *slog.Logger
}

// NewWatcher starts watching dir. Events are delivered once Run is called.
func NewWatcher(dir string, onChange func(path string), logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &Watcher{
		watcher:  w,
		onChange: onChange,
		logger:   logger.With("component", "watcher", "dir", dir),
	}, nil
}

const relevantOps = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename

// Run delivers calendar file changes until ctx is done, then closes the watcher
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&relevantOps == 0 || !IsCalendarFile(event.Name) {
				continue
			}
			w.logger.Debug("calendar changed", "path", event.Name, "op", event.Op.String())
			w.onChange(event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// Close stops watching without Run
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
