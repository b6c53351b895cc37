package timer

import "time"

// Scheduler runs a callback after a delay.
// Calling the returned cancel function stops the callback from being
// scheduled; the engine additionally discards callbacks that were already
// in flight when they were cancelled.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) (cancel func())
}

// ClockScheduler schedules callbacks on the wall clock via time.AfterFunc.
type ClockScheduler struct{}

// AfterFunc implements Scheduler.
func (ClockScheduler) AfterFunc(d time.Duration, f func()) func() {
	t := time.AfterFunc(d, f)
	return func() { t.Stop() }
}

// Alert is notified when an interval finishes.
// Implementations must not block and must not report failures.
type Alert interface {
	Play()
}

// AlertFunc adapts a plain function to Alert.
type AlertFunc func()

// Play implements Alert.
func (f AlertFunc) Play() {
	f()
}
