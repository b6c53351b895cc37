package timer

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeScheduler is a manually advanced virtual clock.
type fakeScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*fakeTimer

	// ignoreCancel simulates a callback that was already in flight when
	// it was cancelled.
	ignoreCancel bool
}

type fakeTimer struct {
	at      time.Duration
	seq     int
	fn      func()
	stopped bool
}

func (s *fakeScheduler) AfterFunc(d time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	t := &fakeTimer{at: s.now + d, seq: s.seq, fn: fn}
	s.timers = append(s.timers, t)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.ignoreCancel {
			t.stopped = true
		}
	}
}

// Advance moves virtual time forward, firing due callbacks in order.
func (s *fakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		s.mu.Lock()
		idx := -1
		for i, t := range s.timers {
			if t.stopped || t.at > target {
				continue
			}
			if idx < 0 || t.at < s.timers[idx].at || (t.at == s.timers[idx].at && t.seq < s.timers[idx].seq) {
				idx = i
			}
		}
		if idx < 0 {
			s.now = target
			s.mu.Unlock()
			return
		}
		next := s.timers[idx]
		s.timers = append(s.timers[:idx], s.timers[idx+1:]...)
		s.now = next.at
		s.mu.Unlock()

		next.fn()
	}
}

// Pending returns the number of live registrations.
func (s *fakeScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

type countingAlert struct {
	plays atomic.Int32
}

func (a *countingAlert) Play() {
	a.plays.Add(1)
}

func newTestEngine(t *testing.T) (*Engine, *fakeScheduler) {
	t.Helper()
	sched := &fakeScheduler{}
	e := New(Options{Scheduler: sched})
	t.Cleanup(e.Close)
	return e, sched
}

// completeInterval runs the current interval to zero and lets the
// automatic transition fire.
func completeInterval(e *Engine, sched *fakeScheduler) {
	e.Start()
	sched.Advance(e.State().TimeLeft)
	sched.Advance(DefaultTransitionDelay)
}

func TestNew_InitialState(t *testing.T) {
	e, _ := newTestEngine(t)

	state := e.State()
	assert.Equal(t, ModeWork, state.Mode)
	assert.Equal(t, 1500*time.Second, state.TimeLeft)
	assert.False(t, state.Running)
	assert.Equal(t, 0, state.CompletedPomodoros)
	assert.False(t, state.Transitioning)
	assert.Equal(t, "25:00", state.Clock())
}

func TestStart_DecrementsOncePerSecond(t *testing.T) {
	e, sched := newTestEngine(t)

	e.Start()
	assert.True(t, e.State().Running)

	sched.Advance(time.Second)
	assert.Equal(t, 1499*time.Second, e.State().TimeLeft)

	sched.Advance(4 * time.Second)
	assert.Equal(t, 1495*time.Second, e.State().TimeLeft)
}

func TestStart_Idempotent(t *testing.T) {
	e, sched := newTestEngine(t)

	e.Start()
	e.Start()
	e.Start()
	assert.Equal(t, 1, sched.Pending())

	sched.Advance(time.Second)
	assert.Equal(t, 1499*time.Second, e.State().TimeLeft)
}

func TestPause_StopsCountdown(t *testing.T) {
	e, sched := newTestEngine(t)

	e.Start()
	sched.Advance(time.Second)
	before := e.State().TimeLeft

	e.Pause()
	assert.False(t, e.State().Running)
	assert.Equal(t, 0, sched.Pending())

	sched.Advance(10 * time.Minute)
	assert.Equal(t, before, e.State().TimeLeft)
}

func TestPause_NoopWhenIdle(t *testing.T) {
	e, _ := newTestEngine(t)
	events := e.Subscribe(4)

	e.Pause()

	assert.False(t, e.State().Running)
	assert.Empty(t, events)
}

func TestToggle(t *testing.T) {
	e, sched := newTestEngine(t)

	e.Toggle()
	assert.True(t, e.State().Running)
	sched.Advance(2 * time.Second)

	e.Toggle()
	assert.False(t, e.State().Running)
	assert.Equal(t, 1498*time.Second, e.State().TimeLeft)
}

func TestReset_RestoresFullDuration(t *testing.T) {
	tests := []struct {
		mode     Mode
		expected time.Duration
	}{
		{ModeWork, 1500 * time.Second},
		{ModeShortBreak, 300 * time.Second},
		{ModeLongBreak, 900 * time.Second},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			e, sched := newTestEngine(t)
			e.SetMode(tt.mode)
			e.Start()
			sched.Advance(5 * time.Second)

			e.Reset()

			state := e.State()
			assert.Equal(t, tt.mode, state.Mode)
			assert.Equal(t, tt.expected, state.TimeLeft)
			assert.False(t, state.Running)
			assert.Equal(t, 0, sched.Pending())
		})
	}
}

func TestReset_KeepsCompletedCount(t *testing.T) {
	e, sched := newTestEngine(t)
	completeInterval(e, sched)
	require.Equal(t, 1, e.State().CompletedPomodoros)

	e.Reset()

	assert.Equal(t, 1, e.State().CompletedPomodoros)
	assert.Equal(t, ModeShortBreak, e.State().Mode)
}

func TestSetMode_UpdatesDuration(t *testing.T) {
	e, _ := newTestEngine(t)

	e.SetMode(ModeShortBreak)
	assert.Equal(t, ModeShortBreak, e.State().Mode)
	assert.Equal(t, 300*time.Second, e.State().TimeLeft)

	e.SetMode(ModeLongBreak)
	assert.Equal(t, ModeLongBreak, e.State().Mode)
	assert.Equal(t, 900*time.Second, e.State().TimeLeft)
}

func TestSetMode_IgnoredWhileRunning(t *testing.T) {
	e, sched := newTestEngine(t)
	e.Start()
	sched.Advance(3 * time.Second)
	before := e.State()

	e.SetMode(ModeShortBreak)
	e.SetMode(ModeShortBreak)

	after := e.State()
	assert.Equal(t, before.Mode, after.Mode)
	assert.Equal(t, before.TimeLeft, after.TimeLeft)
	assert.True(t, after.Running)
}

func TestSetMode_IgnoresUnknownMode(t *testing.T) {
	e, _ := newTestEngine(t)

	e.SetMode(Mode("lunch"))

	assert.Equal(t, ModeWork, e.State().Mode)
	assert.Equal(t, 1500*time.Second, e.State().TimeLeft)
}

func TestWorkCompletion_TransitionsToShortBreak(t *testing.T) {
	alert := &countingAlert{}
	sched := &fakeScheduler{}
	e := New(Options{Scheduler: sched, Alert: alert})
	t.Cleanup(e.Close)

	e.Start()
	sched.Advance(1499 * time.Second)
	require.Equal(t, time.Second, e.State().TimeLeft)
	require.True(t, e.State().Running)

	// One more tick finishes the work interval.
	sched.Advance(time.Second)
	state := e.State()
	assert.False(t, state.Running)
	assert.Equal(t, 1, state.CompletedPomodoros)
	assert.Equal(t, time.Duration(0), state.TimeLeft)
	assert.Equal(t, ModeWork, state.Mode)
	assert.True(t, state.Transitioning)
	assert.Equal(t, ModeShortBreak, state.NextMode)
	assert.Equal(t, int32(1), alert.plays.Load())

	sched.Advance(DefaultTransitionDelay)
	state = e.State()
	assert.Equal(t, ModeShortBreak, state.Mode)
	assert.Equal(t, 300*time.Second, state.TimeLeft)
	assert.False(t, state.Running)
	assert.False(t, state.Transitioning)
}

func TestBreakCompletion_ReturnsToWork(t *testing.T) {
	for _, mode := range []Mode{ModeShortBreak, ModeLongBreak} {
		t.Run(string(mode), func(t *testing.T) {
			e, sched := newTestEngine(t)
			e.SetMode(mode)

			completeInterval(e, sched)

			state := e.State()
			assert.Equal(t, ModeWork, state.Mode)
			assert.Equal(t, 1500*time.Second, state.TimeLeft)
			assert.Equal(t, 0, state.CompletedPomodoros)
			assert.False(t, state.Running)
		})
	}
}

func TestLongBreakAfterEveryFourthPomodoro(t *testing.T) {
	e, sched := newTestEngine(t)

	for i := 1; i <= 4; i++ {
		require.Equal(t, ModeWork, e.State().Mode)
		completeInterval(e, sched)

		state := e.State()
		assert.Equal(t, i, state.CompletedPomodoros)
		if i < 4 {
			assert.Equal(t, ModeShortBreak, state.Mode, "completion %d", i)
			assert.Equal(t, 300*time.Second, state.TimeLeft)
			completeInterval(e, sched)
		}
	}

	state := e.State()
	assert.Equal(t, ModeLongBreak, state.Mode)
	assert.Equal(t, 900*time.Second, state.TimeLeft)
	assert.Equal(t, 4, state.CompletedPomodoros)
}

func TestCompletedPomodorosKeepAccumulating(t *testing.T) {
	e, sched := newTestEngine(t)

	for i := 0; i < 5; i++ {
		completeInterval(e, sched) // work
		completeInterval(e, sched) // break
	}
	completeInterval(e, sched)

	state := e.State()
	assert.Equal(t, 6, state.CompletedPomodoros)
	assert.Equal(t, ModeShortBreak, state.Mode)

	completeInterval(e, sched) // break
	completeInterval(e, sched) // work
	assert.Equal(t, 7, e.State().CompletedPomodoros)
	assert.Equal(t, ModeShortBreak, e.State().Mode)

	completeInterval(e, sched) // break
	completeInterval(e, sched) // work
	assert.Equal(t, 8, e.State().CompletedPomodoros)
	assert.Equal(t, ModeLongBreak, e.State().Mode)

	completeInterval(e, sched) // long break
	state = e.State()
	assert.Equal(t, 8, state.CompletedPomodoros)
	assert.Equal(t, ModeWork, state.Mode)
}

func TestCustomLongBreakCadence(t *testing.T) {
	sched := &fakeScheduler{}
	e := New(Options{Scheduler: sched, LongBreakEvery: 2})
	t.Cleanup(e.Close)

	completeInterval(e, sched)
	assert.Equal(t, ModeShortBreak, e.State().Mode)
	completeInterval(e, sched)
	completeInterval(e, sched)
	assert.Equal(t, ModeLongBreak, e.State().Mode)
}

func TestTransitionDelayIsConfigurable(t *testing.T) {
	sched := &fakeScheduler{}
	e := New(Options{
		Scheduler:       sched,
		Durations:       Durations{Work: 3 * time.Second},
		TransitionDelay: 5 * time.Second,
	})
	t.Cleanup(e.Close)

	e.Start()
	sched.Advance(3 * time.Second)
	sched.Advance(4 * time.Second)
	assert.Equal(t, ModeWork, e.State().Mode)

	sched.Advance(time.Second)
	assert.Equal(t, ModeShortBreak, e.State().Mode)
}

func TestStart_NoopWhileTransitionPending(t *testing.T) {
	e, sched := newTestEngine(t)
	e.Start()
	sched.Advance(1500 * time.Second)
	require.True(t, e.State().Transitioning)

	e.Start()

	assert.False(t, e.State().Running)
	assert.Equal(t, time.Duration(0), e.State().TimeLeft)
	sched.Advance(DefaultTransitionDelay)
	assert.Equal(t, ModeShortBreak, e.State().Mode)
}

func TestReset_CancelsPendingTransition(t *testing.T) {
	e, sched := newTestEngine(t)
	e.Start()
	sched.Advance(1500 * time.Second)
	require.True(t, e.State().Transitioning)

	e.Reset()
	sched.Advance(time.Minute)

	state := e.State()
	assert.Equal(t, ModeWork, state.Mode)
	assert.Equal(t, 1500*time.Second, state.TimeLeft)
	assert.False(t, state.Transitioning)
	assert.Equal(t, 1, state.CompletedPomodoros)
}

func TestSetMode_OverridesPendingTransition(t *testing.T) {
	e, sched := newTestEngine(t)
	e.Start()
	sched.Advance(1500 * time.Second)

	e.SetMode(ModeLongBreak)
	sched.Advance(time.Minute)

	assert.Equal(t, ModeLongBreak, e.State().Mode)
	assert.Equal(t, 900*time.Second, e.State().TimeLeft)
}

func TestStaleTickIsDiscarded(t *testing.T) {
	sched := &fakeScheduler{ignoreCancel: true}
	e := New(Options{Scheduler: sched})
	t.Cleanup(e.Close)

	e.Start()
	e.Pause()
	e.Reset()
	e.Start()

	sched.Advance(time.Second)
	assert.Equal(t, 1499*time.Second, e.State().TimeLeft)

	e.Reset()
	sched.Advance(5 * time.Second)
	assert.Equal(t, 1500*time.Second, e.State().TimeLeft)
}

func TestClose_CancelsPendingCallbacks(t *testing.T) {
	sched := &fakeScheduler{}
	e := New(Options{Scheduler: sched})
	events := e.Subscribe(16)

	e.Start()
	require.Equal(t, 1, sched.Pending())

	e.Close()
	assert.Equal(t, 0, sched.Pending())
	assert.False(t, e.State().Running)

	sched.Advance(time.Hour)
	assert.Equal(t, 1500*time.Second, e.State().TimeLeft)

	// Drain buffered events; the channel must then be closed.
	for range events {
	}
}

func TestClose_CancelsPendingTransition(t *testing.T) {
	sched := &fakeScheduler{ignoreCancel: true}
	e := New(Options{Scheduler: sched})

	e.Start()
	sched.Advance(1500 * time.Second)
	require.True(t, e.State().Transitioning)

	e.Close()
	sched.Advance(time.Minute)

	assert.Equal(t, ModeWork, e.State().Mode)
	assert.Equal(t, time.Duration(0), e.State().TimeLeft)
}

func TestSubscribe_AfterCloseReturnsClosedChannel(t *testing.T) {
	e := New(Options{Scheduler: &fakeScheduler{}})
	e.Close()

	_, ok := <-e.Subscribe(1)
	assert.False(t, ok)
}

func TestSubscribe_ReceivesLifecycleEvents(t *testing.T) {
	e, sched := newTestEngine(t)
	events := e.Subscribe(512)

	e.SetMode(ModeShortBreak)
	e.Start()
	sched.Advance(300 * time.Second)
	sched.Advance(DefaultTransitionDelay)

	var types []EventType
	var completed *Event
	for len(events) > 0 {
		ev := <-events
		types = append(types, ev.Type)
		if ev.Type == EventCompleted {
			ev := ev
			completed = &ev
		}
	}

	require.NotEmpty(t, types)
	assert.Equal(t, EventModeChange, types[0])
	assert.Equal(t, EventStateChange, types[1])
	assert.Contains(t, types, EventTick)
	assert.Equal(t, EventModeChange, types[len(types)-1])

	require.NotNil(t, completed)
	assert.Equal(t, ModeShortBreak, completed.Finished)
	assert.Equal(t, 300*time.Second, completed.Duration)
	assert.Equal(t, ModeWork, completed.State.NextMode)
}

func TestConfigure_RefillsIdleTimer(t *testing.T) {
	e, _ := newTestEngine(t)

	e.Configure(Durations{Work: 50 * time.Minute}, 0, 0)

	assert.Equal(t, 50*time.Minute, e.State().TimeLeft)
	assert.Equal(t, 5*time.Minute, e.Durations().ShortBreak)
}

func TestConfigure_ClampsRunningTimer(t *testing.T) {
	e, sched := newTestEngine(t)
	e.Start()
	sched.Advance(time.Minute)

	e.Configure(Durations{Work: 10 * time.Minute}, 0, 0)

	assert.Equal(t, 10*time.Minute, e.State().TimeLeft)
	assert.True(t, e.State().Running)

	e.Configure(Durations{Work: time.Hour}, 0, 0)
	assert.Equal(t, 10*time.Minute, e.State().TimeLeft)
}

func TestTimeLeftStaysWithinBounds(t *testing.T) {
	e, sched := newTestEngine(t)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 2000; i++ {
		switch rng.Intn(6) {
		case 0:
			e.Start()
		case 1:
			e.Pause()
		case 2:
			e.Reset()
		case 3:
			e.SetMode(Modes()[rng.Intn(3)])
		default:
			sched.Advance(time.Duration(rng.Intn(400)) * time.Second)
		}

		state := e.State()
		full := e.Durations().For(state.Mode)
		require.GreaterOrEqual(t, state.TimeLeft, time.Duration(0))
		require.LessOrEqual(t, state.TimeLeft, full)
		require.GreaterOrEqual(t, state.CompletedPomodoros, 0)
	}
}

func TestNextMode(t *testing.T) {
	tests := []struct {
		name      string
		finished  Mode
		completed int
		expected  Mode
	}{
		{"first pomodoro", ModeWork, 1, ModeShortBreak},
		{"third pomodoro", ModeWork, 3, ModeShortBreak},
		{"fourth pomodoro", ModeWork, 4, ModeLongBreak},
		{"eighth pomodoro", ModeWork, 8, ModeLongBreak},
		{"ninth pomodoro", ModeWork, 9, ModeShortBreak},
		{"short break", ModeShortBreak, 3, ModeWork},
		{"long break", ModeLongBreak, 4, ModeWork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, nextMode(tt.finished, tt.completed, DefaultLongBreakEvery))
		})
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		in       time.Duration
		expected string
	}{
		{25 * time.Minute, "25:00"},
		{1499 * time.Second, "24:59"},
		{5 * time.Second, "00:05"},
		{0, "00:00"},
		{-time.Second, "00:00"},
		{90 * time.Minute, "90:00"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatClock(tt.in))
		})
	}
}

func TestParseMode(t *testing.T) {
	for input, expected := range map[string]Mode{
		"work":        ModeWork,
		"short":       ModeShortBreak,
		"shortBreak":  ModeShortBreak,
		"long_break":  ModeLongBreak,
		"long-break":  ModeLongBreak,
		"pomodoro":    ModeWork,
		"short_break": ModeShortBreak,
	} {
		mode, err := ParseMode(input)
		require.NoError(t, err, input)
		assert.Equal(t, expected, mode, input)
	}

	_, err := ParseMode("nap")
	assert.Error(t, err)
}
