package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/abhisek/upscprep/internal/clock"
	"github.com/abhisek/upscprep/internal/store"
)

// ProgressUpdater receives the side effects of session transitions.
type ProgressUpdater interface {
	// Touch marks the item as accessed at the given time.
	Touch(ctx context.Context, itemID string, at time.Time) error

	// ApplySessionResult folds a closed session into the item's progress.
	ApplySessionResult(ctx context.Context, rec Record) error
}

// Tracker is the Idle/Active session state machine.
type Tracker struct {
	repo     store.SessionRepo
	progress ProgressUpdater
	clock    clock.Clock
	logger   zerolog.Logger

	active *Record
}

// NewTracker creates a tracker whose initial state is taken from the open
// session in repo, if any.
func NewTracker(ctx context.Context, repo store.SessionRepo, progress ProgressUpdater, clk clock.Clock, logger zerolog.Logger) (*Tracker, error) {
	if clk == nil {
		clk = clock.System{}
	}
	t := &Tracker{
		repo:     repo,
		progress: progress,
		clock:    clk,
		logger:   logger.With().Str("component", "session").Logger(),
	}

	open, err := repo.OpenSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("load open session: %w", err)
	}
	if open != nil {
		rec := FromData(*open)
		t.active = &rec
		t.logger.Debug().Str("session_id", rec.ID).Str("item_id", rec.ItemID).Msg("resumed open session")
	}
	return t, nil
}

// State returns StateActive while a session is open.
func (t *Tracker) State() State {
	if t.active != nil {
		return StateActive
	}
	return StateIdle
}

// Active returns a copy of the open session, or nil when idle.
func (t *Tracker) Active() *Record {
	if t.active == nil {
		return nil
	}
	rec := *t.active
	return &rec
}

// Elapsed returns how long the open session has been running at now.
// Zero when idle.
func (t *Tracker) Elapsed(now time.Time) time.Duration {
	if t.active == nil {
		return 0
	}
	return t.active.Elapsed(now)
}

// Start opens a session for itemID.
func (t *Tracker) Start(ctx context.Context, itemID string) (Record, error) {
	if t.active != nil {
		return Record{}, &InvalidStateError{Op: "start", State: StateActive}
	}
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return Record{}, fmt.Errorf("start: item id is required: %w", ErrInvalidInput)
	}

	rec := Record{
		ID:        uuid.New().String(),
		ItemID:    itemID,
		StartTime: t.clock.Now(),
	}
	data := rec.ToData()
	if err := t.repo.AppendSession(ctx, &data); err != nil {
		if errors.Is(err, store.ErrOpenSessionExists) {
			return Record{}, &InvalidStateError{Op: "start", State: StateActive}
		}
		return Record{}, fmt.Errorf("start session: %w", err)
	}
	t.active = &rec

	t.logger.Info().Str("session_id", rec.ID).Str("item_id", itemID).Msg("session started")

	if t.progress != nil {
		if err := t.progress.Touch(ctx, itemID, rec.StartTime); err != nil {
			return rec, fmt.Errorf("touch progress: %w", err)
		}
	}
	return rec, nil
}

// End closes the open session. progressPercent and score are clamped into
// [0, 100].
func (t *Tracker) End(ctx context.Context, progressPercent float64, score *float64, notes string) (Record, error) {
	if t.active == nil {
		return Record{}, &InvalidStateError{Op: "end", State: StateIdle}
	}

	rec := *t.active
	end := t.clock.Now()
	rec.EndTime = &end
	rec.DurationMinutes = durationMinutes(rec.StartTime, end)
	rec.ProgressAtEnd = t.clamp("progress_percent", progressPercent)
	if score != nil {
		s := t.clamp("score", *score)
		rec.Score = &s
	}
	rec.Notes = notes

	data := rec.ToData()
	if err := t.repo.CloseSession(ctx, &data); err != nil {
		if errors.Is(err, store.ErrSessionNotOpen) {
			// Closed elsewhere; resync.
			t.active = nil
			return Record{}, &InvalidStateError{Op: "end", State: StateIdle}
		}
		return Record{}, fmt.Errorf("end session: %w", err)
	}
	t.active = nil

	ev := t.logger.Info().
		Str("session_id", rec.ID).
		Str("item_id", rec.ItemID).
		Int("duration_minutes", rec.DurationMinutes).
		Float64("progress", rec.ProgressAtEnd)
	if rec.Score != nil {
		ev = ev.Float64("score", *rec.Score)
	}
	ev.Msg("session ended")

	if t.progress != nil {
		if err := t.progress.ApplySessionResult(ctx, rec); err != nil {
			return rec, fmt.Errorf("apply session result: %w", err)
		}
	}
	return rec, nil
}

// durationMinutes rounds the span to whole minutes, never below zero.
func durationMinutes(start, end time.Time) int {
	m := int(math.Round(end.Sub(start).Minutes()))
	if m < 0 {
		return 0
	}
	return m
}

func (t *Tracker) clamp(field string, v float64) float64 {
	c := Clamp(v)
	if c != v {
		t.logger.Debug().Str("field", field).Float64("value", v).Float64("clamped", c).Msg("clamped out-of-range value")
	}
	return c
}

// Clamp limits v to [0, 100]. NaN becomes 0.
func Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(100, math.Max(0, v))
}
