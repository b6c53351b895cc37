package audio

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/jmylchreest/tomato/internal/config"
)

// bell is the terminal BEL control character.
const bell = "\a"

// Sounder plays a sound file without blocking until it finishes.
type Sounder interface {
	Play(path string) error
	Preload(path string) error
	SetVolume(volume float64)
}

// Notifier is the completion alert handed to the timer engine.
// Play never blocks the caller and never reports failure: errors are logged
// and dropped.
type Notifier struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	sounder Sounder
	bell    io.Writer
	watcher *Watcher

	enabled bool
	sound   string

	wg sync.WaitGroup
}

// NewNotifier creates a notifier playing through sounder. bell receives the
// BEL character when no sound file is configured; it may be nil.
func NewNotifier(cfg config.AudioConfig, sounder Sounder, bell io.Writer, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}

	n := &Notifier{
		logger:  logger,
		sounder: sounder,
		bell:    bell,
	}
	if inv, ok := sounder.(cacheInvalidator); ok {
		n.watcher = NewWatcher(inv, logger)
	}
	n.apply(cfg)
	return n
}

// Start preloads the configured sound and watches it for changes on disk.
func (n *Notifier) Start(ctx context.Context) error {
	n.mu.RLock()
	sound := n.sound
	n.mu.RUnlock()

	n.preload(sound)
	if n.watcher == nil {
		return nil
	}
	return n.watcher.Start(ctx)
}

// Stop waits for in-flight alerts and stops the sound file watcher.
func (n *Notifier) Stop() {
	if n.watcher != nil {
		n.watcher.Stop()
	}
	n.wg.Wait()
}

// UpdateConfig applies a hot-reloaded audio section.
func (n *Notifier) UpdateConfig(cfg config.AudioConfig) {
	n.apply(cfg)

	n.mu.RLock()
	sound := n.sound
	n.mu.RUnlock()
	n.preload(sound)
	n.logger.Debug("audio notifier config updated", "enabled", cfg.Enabled, "sound", sound)
}

// Play fires the completion alert asynchronously.
func (n *Notifier) Play() {
	n.mu.RLock()
	enabled, sound := n.enabled, n.sound
	n.mu.RUnlock()

	if !enabled {
		return
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				n.logger.Warn("completion sound panicked", "panic", r)
			}
		}()
		n.play(sound)
	}()
}

// Wait blocks until every alert started so far has been handed off.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func (n *Notifier) play(sound string) {
	if sound != "" && n.sounder != nil {
		err := n.sounder.Play(sound)
		if err == nil {
			return
		}
		n.logger.Warn("failed to play completion sound", "path", sound, "error", err)
	}
	n.ring()
}

func (n *Notifier) ring() {
	if n.bell == nil {
		return
	}
	if _, err := io.WriteString(n.bell, bell); err != nil {
		n.logger.Debug("failed to ring bell", "error", err)
	}
}

func (n *Notifier) apply(cfg config.AudioConfig) {
	sound := cfg.SoundPath()

	n.mu.Lock()
	old := n.sound
	n.enabled = cfg.Enabled
	n.sound = sound
	n.mu.Unlock()

	if n.sounder != nil {
		n.sounder.SetVolume(float64(cfg.Volume) / 100.0)
	}
	if n.watcher != nil && old != sound {
		if err := n.watcher.SetPath(sound); err != nil {
			n.logger.Warn("not watching sound file", "path", sound, "error", err)
		}
	}
}

func (n *Notifier) preload(sound string) {
	if sound == "" || n.sounder == nil {
		return
	}
	if err := n.sounder.Preload(sound); err != nil {
		n.logger.Warn("failed to preload sound", "path", sound, "error", err)
	}
}
