// Package session tracks timed study sessions against catalog items.
//
// At most one session is open at a time. The open session lives in the
// store, so a session started by one process can be ended by another.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/upscprep/internal/store"
)

// State is the tracker's position in its two-state lifecycle.
type State string

const (
	StateIdle   State = "idle"
	StateActive State = "active"
)

var (
	// ErrInvalidState is returned when an operation is not allowed in the
	// tracker's current state. Match with errors.Is.
	ErrInvalidState = errors.New("invalid session state")

	// ErrInvalidInput is returned for arguments that cannot start a session.
	ErrInvalidInput = errors.New("invalid session input")
)

// InvalidStateError reports which operation was rejected and the state that
// rejected it.
type InvalidStateError struct {
	Op    string
	State State
}

func (e *InvalidStateError) Error() string {
	switch e.State {
	case StateActive:
		return fmt.Sprintf("%s: a session is already active", e.Op)
	case StateIdle:
		return fmt.Sprintf("%s: no session is active", e.Op)
	}
	return fmt.Sprintf("%s: session is %s", e.Op, e.State)
}

func (e *InvalidStateError) Unwrap() error {
	return ErrInvalidState
}

// Record is one study session. EndTime is nil while the session is open;
// DurationMinutes, ProgressAtEnd and Score are meaningful only once closed.
type Record struct {
	ID              string
	ItemID          string
	StartTime       time.Time
	EndTime         *time.Time
	DurationMinutes int
	ProgressAtEnd   float64
	Score           *float64
	Notes           string
}

// Open reports whether the session has not been ended.
func (r Record) Open() bool {
	return r.EndTime == nil
}

// Elapsed returns the time since start, or the recorded span once closed.
func (r Record) Elapsed(now time.Time) time.Duration {
	end := now
	if r.EndTime != nil {
		end = *r.EndTime
	}
	if d := end.Sub(r.StartTime); d > 0 {
		return d
	}
	return 0
}

// FromData converts a persisted session row.
func FromData(d store.SessionData) Record {
	r := Record{
		ID:            d.ID,
		ItemID:        d.ItemID,
		StartTime:     d.StartTime,
		EndTime:       d.EndTime,
		ProgressAtEnd: d.ProgressAtEnd,
		Score:         d.Score,
		Notes:         d.Notes,
	}
	if d.DurationMinutes != nil {
		r.DurationMinutes = *d.DurationMinutes
	}
	return r
}

// ToData converts the record to its persisted form.
func (r Record) ToData() store.SessionData {
	d := store.SessionData{
		ID:            r.ID,
		ItemID:        r.ItemID,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		ProgressAtEnd: r.ProgressAtEnd,
		Score:         r.Score,
		Notes:         r.Notes,
	}
	if r.EndTime != nil {
		dm := r.DurationMinutes
		d.DurationMinutes = &dm
	}
	return d
}

// FromDataList converts persisted rows in order.
func FromDataList(rows []store.SessionData) []Record {
	out := make([]Record, len(rows))
	for i, d := range rows {
		out[i] = FromData(d)
	}
	return out
}
