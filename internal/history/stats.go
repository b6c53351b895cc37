package history

import (
	"time"

	"github.com/jmylchreest/tomato/internal/timer"
)

// Summary aggregates a set of records.
type Summary struct {
	Pomodoros      int           `json:"pomodoros" yaml:"pomodoros"`
	ShortBreaks    int           `json:"short_breaks" yaml:"short_breaks"`
	LongBreaks     int           `json:"long_breaks" yaml:"long_breaks"`
	FocusTime      time.Duration `json:"focus_time" yaml:"focus_time"`
	BreakTime      time.Duration `json:"break_time" yaml:"break_time"`
	Today          int           `json:"today" yaml:"today"`
	StreakDays     int           `json:"streak_days" yaml:"streak_days"`
	FirstCompleted time.Time     `json:"first_completed,omitzero" yaml:"first_completed,omitempty"`
	LastCompleted  time.Time     `json:"last_completed,omitzero" yaml:"last_completed,omitempty"`
}

// Summarize computes totals relative to now. Days are calendar days in
// now's location.
func Summarize(records []Record, now time.Time) Summary {
	var s Summary
	days := make(map[string]bool)
	today := startOfDay(now)

	for _, r := range records {
		at := r.Time().In(now.Location())
		if s.FirstCompleted.IsZero() || at.Before(s.FirstCompleted) {
			s.FirstCompleted = at
		}
		if at.After(s.LastCompleted) {
			s.LastCompleted = at
		}

		switch r.Mode {
		case timer.ModeWork:
			s.Pomodoros++
			s.FocusTime += r.Duration()
			day := startOfDay(at)
			days[dayKey(day)] = true
			if day.Equal(today) {
				s.Today++
			}
		case timer.ModeShortBreak:
			s.ShortBreaks++
			s.BreakTime += r.Duration()
		case timer.ModeLongBreak:
			s.LongBreaks++
			s.BreakTime += r.Duration()
		}
	}

	s.StreakDays = streak(days, today)
	return s
}

// streak counts consecutive days with a pomodoro ending today, or
// yesterday when nothing has been finished yet today.
func streak(days map[string]bool, today time.Time) int {
	day := today
	if !days[dayKey(day)] {
		day = day.AddDate(0, 0, -1)
	}
	n := 0
	for days[dayKey(day)] {
		n++
		day = day.AddDate(0, 0, -1)
	}
	return n
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func dayKey(t time.Time) string {
	return t.Format(time.DateOnly)
}
