// Package watch re-runs an action whenever one of a set of source files
// changes.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 100 * time.Millisecond

// Debouncer runs, per key, only the last function triggered within its
// interval. Keys do not cancel each other.
type Debouncer struct {
	interval time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
		timers:   make(map[string]*time.Timer),
	}
}

func (d *Debouncer) Trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.timers[key]; ok {
		t.Stop()
	}

	d.timers[key] = time.AfterFunc(d.interval, fn)
}

// Stop cancels every pending function.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
}

type Watcher struct {
	files    map[string]bool
	logger   *slog.Logger
	debounce *Debouncer
}

// New watches files. The directories holding them are watched rather than the
// files themselves, so editors that replace files on save are handled.
func New(files []string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	if logger == nil {
		logger = slog.Default()
	}

	w := &Watcher{
		files:    make(map[string]bool, len(files)),
		logger:   logger,
		debounce: NewDebouncer(debounce),
	}

	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", f, err)
		}

		w.files[abs] = true
	}

	return w, nil
}

// Watch blocks until ctx is cancelled, calling onChange with the changed file
// after every burst of writes.
func (w *Watcher) Watch(ctx context.Context, onChange func(path string)) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer fsw.Close()
	defer w.debounce.Stop()

	dirs := make(map[string]bool)
	for f := range w.files {
		dir := filepath.Dir(f)
		if dirs[dir] {
			continue
		}

		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}

		dirs[dir] = true
	}

	w.logger.Info("watching", "files", len(w.files))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			if !w.relevant(event) {
				continue
			}

			w.logger.Debug("file event", "path", event.Name, "op", event.Op.String())

			name := event.Name
			w.debounce.Trigger(name, func() {
				onChange(name)
			})

		case err, ok := <-fsw.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}

			w.logger.Error("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}

	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}

	return w.files[abs]
}
