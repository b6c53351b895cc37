// Package history keeps an append-only log of completed intervals.
package history

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/tomato/internal/timer"
)

// Record is one completed interval.
type Record struct {
	ID              string     `json:"id"`
	Mode            timer.Mode `json:"mode"`
	DurationSeconds int64      `json:"duration_seconds"`
	CompletedAt     int64      `json:"completed_at"`
	// Pomodoros is the engine's completed-work count after this interval.
	Pomodoros int `json:"pomodoros"`
}

// NewRecord creates a record with a fresh ULID stamped at completedAt.
func NewRecord(mode timer.Mode, duration time.Duration, completedAt time.Time, pomodoros int) (Record, error) {
	id, err := ulid.New(ulid.Timestamp(completedAt), rand.Reader)
	if err != nil {
		return Record{}, fmt.Errorf("failed to generate ULID: %w", err)
	}

	return Record{
		ID:              id.String(),
		Mode:            mode,
		DurationSeconds: int64(duration / time.Second),
		CompletedAt:     completedAt.Unix(),
		Pomodoros:       pomodoros,
	}, nil
}

// FromEvent converts a completed engine event into a record.
// ok is false for every other event type.
func FromEvent(ev timer.Event) (rec Record, ok bool, err error) {
	if ev.Type != timer.EventCompleted {
		return Record{}, false, nil
	}
	rec, err = NewRecord(ev.Finished, ev.Duration, ev.At, ev.State.CompletedPomodoros)
	return rec, err == nil, err
}

// Duration returns the interval length.
func (r Record) Duration() time.Duration {
	return time.Duration(r.DurationSeconds) * time.Second
}

// Time returns the completion time.
func (r Record) Time() time.Time {
	return time.Unix(r.CompletedAt, 0)
}
