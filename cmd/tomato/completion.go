package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/tomato/internal/config"
	"github.com/jmylchreest/tomato/internal/history"
	"github.com/jmylchreest/tomato/internal/timer"
)

// notifyTimeout bounds a single desktop notification call.
const notifyTimeout = 2 * time.Second

type historyAppender interface {
	Append(r history.Record) error
}

type desktopNotifier interface {
	Notify(ctx context.Context, summary, body string) (uint32, error)
}

// completionHook logs finished intervals and raises desktop notifications.
// Failures are logged and never reach the timer.
type completionHook struct {
	mu      sync.Mutex
	logger  *slog.Logger
	history historyAppender
	desktop desktopNotifier
	// dial connects the desktop notifier on first use.
	dial func() (desktopNotifier, error)

	recordHistory bool
	notifyDesktop bool
}

func newCompletionHook(c *config.Config, log historyAppender, dial func() (desktopNotifier, error), logger *slog.Logger) *completionHook {
	h := &completionHook{
		logger:  logger,
		history: log,
		dial:    dial,
	}
	h.configure(c)
	return h
}

// configure applies the history and notification switches.
func (h *completionHook) configure(c *config.Config) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.recordHistory = c.History.Enabled
	h.notifyDesktop = c.Notifications.Desktop
}

// run consumes an engine subscription until it closes.
func (h *completionHook) run(events <-chan timer.Event) {
	for ev := range events {
		if ev.Type == timer.EventCompleted {
			h.handle(ev)
		}
	}
}

func (h *completionHook) handle(ev timer.Event) {
	h.mu.Lock()
	recordHistory, notifyDesktop := h.recordHistory, h.notifyDesktop
	h.mu.Unlock()

	if recordHistory && h.history != nil {
		rec, ok, err := history.FromEvent(ev)
		switch {
		case err != nil:
			h.logger.Warn("failed to build history record", "error", err)
		case ok:
			if err := h.history.Append(rec); err != nil {
				h.logger.Warn("failed to append history", "error", err)
			}
		}
	}

	if notifyDesktop {
		h.notify(ev)
	}
}

func (h *completionHook) notify(ev timer.Event) {
	desktop, err := h.desktopNotifier()
	if err != nil {
		h.logger.Warn("desktop notifications unavailable", "error", err)
		return
	}

	summary, body := completionMessage(ev)
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	if _, err := desktop.Notify(ctx, summary, body); err != nil {
		h.logger.Warn("failed to send desktop notification", "error", err)
	}
}

func (h *completionHook) desktopNotifier() (desktopNotifier, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.desktop != nil {
		return h.desktop, nil
	}
	if h.dial == nil {
		return nil, fmt.Errorf("no desktop notifier configured")
	}
	d, err := h.dial()
	if err != nil {
		return nil, err
	}
	h.desktop = d
	return d, nil
}

// completionMessage builds the notification text for a finished interval.
func completionMessage(ev timer.Event) (summary, body string) {
	if ev.Finished != timer.ModeWork {
		return ev.Finished.Label() + " over", "Ready for the next pomodoro?"
	}

	summary = fmt.Sprintf("Pomodoro #%d complete", ev.State.CompletedPomodoros)
	next := ev.State.NextMode
	if next == "" {
		next = timer.ModeShortBreak
	}
	return summary, fmt.Sprintf("Time for a %s.", lowerLabel(next))
}

func lowerLabel(m timer.Mode) string {
	switch m {
	case timer.ModeShortBreak:
		return "short break"
	case timer.ModeLongBreak:
		return "long break"
	default:
		return "pomodoro"
	}
}
