package audio

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

type cacheInvalidator interface {
	InvalidateCache(path string)
}

// Watcher drops the configured alert sound from the player cache when the
// file is rewritten, so an edited sound plays without a restart.
type Watcher struct {
	mu     sync.Mutex
	logger *slog.Logger
	cache  cacheInvalidator

	path string
	dir  string

	fsw     *fsnotify.Watcher
	stopped chan struct{}
}

// NewWatcher creates a sound watcher. Nothing is watched until Start.
func NewWatcher(cache cacheInvalidator, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		logger: logger,
		cache:  cache,
	}
}

// SetPath switches the watched sound file. An empty path watches nothing.
func (w *Watcher) SetPath(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if path != "" {
		path = filepath.Clean(path)
	}
	w.path = path
	if w.fsw == nil {
		return nil
	}
	return w.watchDirLocked()
}

// Start watches the sound file's directory until ctx is cancelled or Stop
// is called. The directory is watched so replaced files are picked up.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fsw != nil {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating sound watcher: %w", err)
	}
	w.fsw = fsw
	w.stopped = make(chan struct{})

	if err := w.watchDirLocked(); err != nil {
		w.logger.Warn("not watching sound file", "path", w.path, "error", err)
	}

	go w.watch(ctx, fsw, w.stopped)
	w.logger.Debug("sound watcher started", "path", w.path)
	return nil
}

// Stop stops watching and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	fsw, stopped := w.fsw, w.stopped
	w.fsw = nil
	w.dir = ""
	w.mu.Unlock()

	if fsw == nil {
		return
	}
	_ = fsw.Close()
	<-stopped
	w.logger.Debug("sound watcher stopped")
}

func (w *Watcher) watchDirLocked() error {
	dir := ""
	if w.path != "" {
		dir = filepath.Dir(w.path)
	}
	if dir == w.dir {
		return nil
	}

	if w.dir != "" {
		_ = w.fsw.Remove(w.dir)
		w.dir = ""
	}
	if dir == "" {
		return nil
	}
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	w.dir = dir
	return nil
}

func (w *Watcher) watch(ctx context.Context, fsw *fsnotify.Watcher, stopped chan struct{}) {
	defer close(stopped)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.mu.Lock()
			path := w.path
			w.mu.Unlock()
			if path == "" || filepath.Clean(event.Name) != path {
				continue
			}
			w.logger.Debug("sound file changed, invalidating cache", "path", path)
			w.cache.InvalidateCache(path)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("sound watcher error", "error", err)
		}
	}
}
