package tokenstore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Change reports that a key was written or removed by someone.
type Change struct {
	Key     string
	Removed bool
}

// Watcher reports changes to a FileStore's keys, including changes made by
// other processes (e.g. `arcdash logout` in another terminal).
type Watcher struct {
	fsw    *fsnotify.Watcher
	dir    string
	logger *slog.Logger
	events chan Change
}

// Watch starts watching the store's directory, creating it if needed.
// Call Run to start delivering events and Close to release the watcher.
func (s *FileStore) Watch(logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return nil, fmt.Errorf("tokenstore: create %s: %w", s.dir, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("tokenstore: new watcher: %w", err)
	}
	if err := fsw.Add(s.dir); err != nil {
		fsw.Close() //nolint:errcheck
		return nil, fmt.Errorf("tokenstore: watch %s: %w", s.dir, err)
	}
	return &Watcher{
		fsw:    fsw,
		dir:    s.dir,
		logger: logger,
		events: make(chan Change, 16),
	}, nil
}

// Events returns the channel of key changes. It is closed when Run returns.
func (w *Watcher) Events() <-chan Change {
	return w.events
}

// Run delivers events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.events)
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			change, relevant := w.translate(ev)
			if !relevant {
				continue
			}
			select {
			case w.events <- change:
			case <-ctx.Done():
				return
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("token store watcher error", "error", err)
		}
	}
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) translate(ev fsnotify.Event) (Change, bool) {
	key := filepath.Base(ev.Name)
	if key != TokenKey && key != RoleKey {
		return Change{}, false
	}
	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		return Change{Key: key, Removed: true}, true
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		return Change{Key: key}, true
	}
	return Change{}, false
}
