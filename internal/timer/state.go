package timer

import (
	"fmt"
	"time"
)

// State is a point-in-time snapshot of the engine.
type State struct {
	Mode               Mode
	TimeLeft           time.Duration
	Running            bool
	CompletedPomodoros int

	// Transitioning is true between an interval reaching zero and the
	// next mode being selected.
	Transitioning bool
	// NextMode is the mode that will be selected once the transition fires.
	NextMode Mode
}

// Clock returns the remaining time as MM:SS.
func (s State) Clock() string {
	return FormatClock(s.TimeLeft)
}

// FormatClock renders d as MM:SS. Minutes are not wrapped at 60.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// EventType defines the kind of engine event.
type EventType string

const (
	// EventStateChange is emitted on start, pause and reset.
	EventStateChange EventType = "state_change"
	// EventTick is emitted after every one-second decrement that does not finish the interval.
	EventTick EventType = "tick"
	// EventCompleted is emitted when an interval reaches zero.
	EventCompleted EventType = "completed"
	// EventModeChange is emitted when the mode changes, by the user or by an automatic transition.
	EventModeChange EventType = "mode_change"
)

// Event describes an engine update for observers.
type Event struct {
	Type  EventType
	State State
	// Finished is the mode that just ran out. Only set on EventCompleted.
	Finished Mode
	// Duration is the full length of the finished interval. Only set on EventCompleted.
	Duration time.Duration
	At       time.Time
}
