package timer

import (
	"fmt"
	"time"
)

// Mode identifies which interval the engine is counting down.
type Mode string

const (
	ModeWork       Mode = "work"
	ModeShortBreak Mode = "short_break"
	ModeLongBreak  Mode = "long_break"
)

// Default interval lengths.
const (
	DefaultWork       = 25 * time.Minute
	DefaultShortBreak = 5 * time.Minute
	DefaultLongBreak  = 15 * time.Minute

	// DefaultLongBreakEvery is the number of completed work intervals between long breaks.
	DefaultLongBreakEvery = 4

	// DefaultTransitionDelay is how long a finished interval lingers before the next mode is selected.
	DefaultTransitionDelay = time.Second
)

// Modes returns all modes in display order.
func Modes() []Mode {
	return []Mode{ModeWork, ModeShortBreak, ModeLongBreak}
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeWork, ModeShortBreak, ModeLongBreak:
		return true
	default:
		return false
	}
}

// IsBreak reports whether m is one of the break modes.
func (m Mode) IsBreak() bool {
	return m == ModeShortBreak || m == ModeLongBreak
}

// Label returns the human-readable name of the mode.
func (m Mode) Label() string {
	switch m {
	case ModeWork:
		return "Work"
	case ModeShortBreak:
		return "Short Break"
	case ModeLongBreak:
		return "Long Break"
	default:
		return string(m)
	}
}

// ParseMode converts user input into a Mode.
// Accepts the canonical names plus a few short aliases.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "work", "pomodoro", "focus":
		return ModeWork, nil
	case "short_break", "short-break", "shortBreak", "short":
		return ModeShortBreak, nil
	case "long_break", "long-break", "longBreak", "long":
		return ModeLongBreak, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

// Durations holds the full length of each mode.
type Durations struct {
	Work       time.Duration
	ShortBreak time.Duration
	LongBreak  time.Duration
}

// DefaultDurations returns the classic 25/5/15 minute schedule.
func DefaultDurations() Durations {
	return Durations{
		Work:       DefaultWork,
		ShortBreak: DefaultShortBreak,
		LongBreak:  DefaultLongBreak,
	}
}

// For returns the full duration of the given mode.
func (d Durations) For(m Mode) time.Duration {
	switch m {
	case ModeShortBreak:
		return d.ShortBreak
	case ModeLongBreak:
		return d.LongBreak
	default:
		return d.Work
	}
}

// withDefaults fills zero or negative fields from DefaultDurations and
// truncates everything to whole seconds.
func (d Durations) withDefaults() Durations {
	defaults := DefaultDurations()
	if d.Work <= 0 {
		d.Work = defaults.Work
	}
	if d.ShortBreak <= 0 {
		d.ShortBreak = defaults.ShortBreak
	}
	if d.LongBreak <= 0 {
		d.LongBreak = defaults.LongBreak
	}
	d.Work = d.Work.Truncate(time.Second)
	d.ShortBreak = d.ShortBreak.Truncate(time.Second)
	d.LongBreak = d.LongBreak.Truncate(time.Second)
	return d
}

// nextMode picks the mode that follows a finished interval.
// completed is the pomodoro count after the finished interval was counted.
func nextMode(finished Mode, completed, longBreakEvery int) Mode {
	if finished.IsBreak() {
		return ModeWork
	}
	if completed > 0 && longBreakEvery > 0 && completed%longBreakEvery == 0 {
		return ModeLongBreak
	}
	return ModeShortBreak
}
