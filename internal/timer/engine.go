// Package timer implements the Pomodoro countdown state machine.
package timer

import (
	"log/slog"
	"sync"
	"time"
)

// tickInterval is the countdown granularity.
const tickInterval = time.Second

// Options configures a new Engine.
type Options struct {
	Durations       Durations
	LongBreakEvery  int
	TransitionDelay time.Duration

	// Scheduler drives ticks and transitions. Defaults to ClockScheduler.
	Scheduler Scheduler
	// Alert is played whenever an interval reaches zero. Optional.
	Alert Alert
	Logger *slog.Logger
}

// Engine owns the countdown for a single Pomodoro timer.
//
// Ticks and transitions are delivered through the Scheduler, which may call
// back from any goroutine; all state is guarded by mu.
type Engine struct {
	mu        sync.Mutex
	logger    *slog.Logger
	scheduler Scheduler
	alert     Alert

	durations       Durations
	longBreakEvery  int
	transitionDelay time.Duration

	mode      Mode
	timeLeft  time.Duration
	running   bool
	completed int

	// Each registration gets a generation number; a callback whose
	// generation no longer matches was cancelled and is dropped.
	tickGen          uint64
	cancelTick       func()
	transitionGen    uint64
	cancelTransition func()
	pendingMode      Mode

	subscribers []chan Event
	closed      bool
}

// New creates an Engine in work mode with a full work interval and no
// completed pomodoros.
func New(opts Options) *Engine {
	if opts.Scheduler == nil {
		opts.Scheduler = ClockScheduler{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.LongBreakEvery <= 0 {
		opts.LongBreakEvery = DefaultLongBreakEvery
	}
	if opts.TransitionDelay <= 0 {
		opts.TransitionDelay = DefaultTransitionDelay
	}

	e := &Engine{
		logger:          opts.Logger,
		scheduler:       opts.Scheduler,
		alert:           opts.Alert,
		durations:       opts.Durations.withDefaults(),
		longBreakEvery:  opts.LongBreakEvery,
		transitionDelay: opts.TransitionDelay,
		mode:            ModeWork,
	}
	e.timeLeft = e.durations.For(ModeWork)
	return e
}

// Subscribe registers a new observer channel.
// Events are dropped for subscribers whose buffer is full.
func (e *Engine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		close(ch)
		return ch
	}
	e.subscribers = append(e.subscribers, ch)
	return ch
}

// State returns a snapshot of the engine.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

// Durations returns the configured interval lengths.
func (e *Engine) Durations() Durations {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.durations
}

// Start begins the countdown. It is a no-op when already running, when the
// current interval has already reached zero, or after Close.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || e.running {
		return
	}
	if e.timeLeft <= 0 {
		e.logger.Debug("start ignored, interval already finished", "mode", e.mode)
		return
	}

	e.running = true
	e.scheduleTickLocked()
	e.logger.Debug("timer started", "mode", e.mode, "time_left", e.timeLeft)
	e.emitLocked(Event{Type: EventStateChange})
}

// Pause stops the countdown, keeping the remaining time.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || !e.running {
		return
	}

	e.stopTickLocked()
	e.running = false
	e.logger.Debug("timer paused", "mode", e.mode, "time_left", e.timeLeft)
	e.emitLocked(Event{Type: EventStateChange})
}

// Toggle starts a stopped timer or pauses a running one.
func (e *Engine) Toggle() {
	if e.State().Running {
		e.Pause()
		return
	}
	e.Start()
}

// Reset stops the countdown and refills the current mode's full duration.
// A pending automatic transition is abandoned. The mode and the completed
// pomodoro count are left untouched.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}

	e.stopTickLocked()
	e.cancelTransitionLocked()
	e.running = false
	e.timeLeft = e.durations.For(e.mode)
	e.logger.Debug("timer reset", "mode", e.mode)
	e.emitLocked(Event{Type: EventStateChange})
}

// SetMode switches to m with a full interval. Ignored while running.
func (e *Engine) SetMode(m Mode) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	if !m.Valid() {
		e.logger.Warn("ignoring unknown timer mode", "mode", m)
		return
	}
	if e.running {
		e.logger.Debug("mode change ignored while running", "mode", e.mode, "requested", m)
		return
	}

	e.cancelTransitionLocked()
	e.applyModeLocked(m)
	e.emitLocked(Event{Type: EventModeChange})
}

// Configure replaces the interval lengths and long-break cadence.
// An idle timer showing a full interval is refilled with the new length;
// otherwise the remaining time is only clamped so it never exceeds the
// current mode's duration.
func (e *Engine) Configure(d Durations, longBreakEvery int, transitionDelay time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}

	old := e.durations.For(e.mode)
	e.durations = d.withDefaults()
	if longBreakEvery > 0 {
		e.longBreakEvery = longBreakEvery
	}
	if transitionDelay > 0 {
		e.transitionDelay = transitionDelay
	}

	full := e.durations.For(e.mode)
	switch {
	case !e.running && e.cancelTransition == nil && e.timeLeft == old:
		e.timeLeft = full
	case e.timeLeft > full:
		e.timeLeft = full
	}

	e.logger.Debug("timer reconfigured",
		"work", e.durations.Work,
		"short_break", e.durations.ShortBreak,
		"long_break", e.durations.LongBreak,
		"long_break_every", e.longBreakEvery)
	e.emitLocked(Event{Type: EventStateChange})
}

// Close cancels every pending callback and closes all subscriber channels.
// The engine ignores all operations afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.closed = true
	e.stopTickLocked()
	e.cancelTransitionLocked()
	e.running = false

	for _, ch := range e.subscribers {
		close(ch)
	}
	e.subscribers = nil
}

func (e *Engine) onTick(gen uint64) {
	e.mu.Lock()
	if e.closed || !e.running || gen != e.tickGen {
		e.mu.Unlock()
		return
	}
	e.cancelTick = nil

	e.timeLeft -= tickInterval
	if e.timeLeft > 0 {
		e.scheduleTickLocked()
		e.emitLocked(Event{Type: EventTick})
		e.mu.Unlock()
		return
	}

	e.timeLeft = 0
	e.running = false
	finished := e.mode
	if finished == ModeWork {
		e.completed++
	}
	next := nextMode(finished, e.completed, e.longBreakEvery)
	e.scheduleTransitionLocked(next)

	e.logger.Info("interval completed",
		"mode", finished,
		"completed_pomodoros", e.completed,
		"next", next)
	e.emitLocked(Event{
		Type:     EventCompleted,
		Finished: finished,
		Duration: e.durations.For(finished),
	})
	alert := e.alert
	e.mu.Unlock()

	if alert != nil {
		alert.Play()
	}
}

func (e *Engine) onTransition(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || e.cancelTransition == nil || gen != e.transitionGen {
		return
	}
	next := e.pendingMode
	e.cancelTransition = nil
	e.pendingMode = ""

	// The countdown was already stopped when the interval finished; the
	// next interval waits for an explicit Start.
	e.running = false
	e.applyModeLocked(next)
	e.logger.Debug("automatic mode transition", "mode", next)
	e.emitLocked(Event{Type: EventModeChange})
}

func (e *Engine) applyModeLocked(m Mode) {
	e.mode = m
	e.timeLeft = e.durations.For(m)
}

func (e *Engine) scheduleTickLocked() {
	e.stopTickLocked()
	gen := e.tickGen
	e.cancelTick = e.scheduler.AfterFunc(tickInterval, func() {
		e.onTick(gen)
	})
}

func (e *Engine) stopTickLocked() {
	if e.cancelTick != nil {
		e.cancelTick()
		e.cancelTick = nil
	}
	e.tickGen++
}

func (e *Engine) scheduleTransitionLocked(next Mode) {
	e.cancelTransitionLocked()
	gen := e.transitionGen
	e.pendingMode = next
	e.cancelTransition = e.scheduler.AfterFunc(e.transitionDelay, func() {
		e.onTransition(gen)
	})
}

func (e *Engine) cancelTransitionLocked() {
	if e.cancelTransition != nil {
		e.cancelTransition()
		e.cancelTransition = nil
	}
	e.pendingMode = ""
	e.transitionGen++
}

func (e *Engine) stateLocked() State {
	return State{
		Mode:               e.mode,
		TimeLeft:           e.timeLeft,
		Running:            e.running,
		CompletedPomodoros: e.completed,
		Transitioning:      e.cancelTransition != nil,
		NextMode:           e.pendingMode,
	}
}

func (e *Engine) emitLocked(event Event) {
	event.State = e.stateLocked()
	if event.At.IsZero() {
		event.At = time.Now()
	}
	for _, ch := range e.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}
