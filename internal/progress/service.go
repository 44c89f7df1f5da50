package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/abhisek/upscprep/internal/clock"
	"github.com/abhisek/upscprep/internal/session"
	"github.com/abhisek/upscprep/internal/store"
)

// Service reads and writes progress records. Unknown item IDs never error:
// a zero record is created on first use.
type Service struct {
	repo   store.ProgressRepo
	clock  clock.Clock
	logger zerolog.Logger
}

var _ session.ProgressUpdater = (*Service)(nil)

// NewService creates a progress service backed by repo.
func NewService(repo store.ProgressRepo, clk clock.Clock, logger zerolog.Logger) *Service {
	if clk == nil {
		clk = clock.System{}
	}
	return &Service{
		repo:   repo,
		clock:  clk,
		logger: logger.With().Str("component", "progress").Logger(),
	}
}

// Get returns the record for itemID, creating and persisting a zero record
// if none exists.
func (s *Service) Get(ctx context.Context, itemID string) (Record, error) {
	d, err := s.repo.GetProgress(ctx, itemID)
	if err != nil {
		return Record{}, fmt.Errorf("get progress %s: %w", itemID, err)
	}
	if d != nil {
		return FromData(*d), nil
	}

	r := NewRecord(itemID)
	if err := s.save(ctx, r); err != nil {
		return Record{}, err
	}
	s.logger.Debug().Str("item_id", itemID).Msg("created progress record")
	return r, nil
}

// List returns every stored record ordered by item ID.
func (s *Service) List(ctx context.Context) ([]Record, error) {
	rows, err := s.repo.ListProgress(ctx)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	out := make([]Record, len(rows))
	for i, d := range rows {
		out[i] = FromData(d)
	}
	return out, nil
}

// RecordAccess counts one view of the item and stamps lastAccessedAt.
func (s *Service) RecordAccess(ctx context.Context, itemID string) (Record, error) {
	r, err := s.Get(ctx, itemID)
	if err != nil {
		return Record{}, err
	}
	now := s.clock.Now()
	r.Analytics.AccessCount++
	r.LastAccessedAt = &now
	r.recompute()
	if err := s.save(ctx, r); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Touch stamps lastAccessedAt without counting an access.
func (s *Service) Touch(ctx context.Context, itemID string, at time.Time) error {
	r, err := s.Get(ctx, itemID)
	if err != nil {
		return err
	}
	r.LastAccessedAt = &at
	return s.save(ctx, r)
}

// ApplySessionResult folds a closed session into the item's record.
// Progress never decreases, and a completion date once set is kept.
func (s *Service) ApplySessionResult(ctx context.Context, rec session.Record) error {
	r, err := s.Get(ctx, rec.ItemID)
	if err != nil {
		return err
	}

	at := s.clock.Now()
	if rec.EndTime != nil {
		at = *rec.EndTime
	}
	Apply(&r, rec, at)

	if err := s.save(ctx, r); err != nil {
		return err
	}
	s.logger.Debug().
		Str("item_id", r.ItemID).
		Str("status", string(r.Status)).
		Float64("progress", r.ProgressPercent).
		Msg("applied session result")
	return nil
}

// Apply updates r in place with the outcome of a session that ended at at.
func Apply(r *Record, rec session.Record, at time.Time) {
	r.ProgressPercent = max(r.ProgressPercent, session.Clamp(rec.ProgressAtEnd))
	r.Analytics.TimeSpentMinutes += max(rec.DurationMinutes, 0)
	r.Analytics.AccessCount++
	r.LastAccessedAt = &at

	if rec.Score != nil {
		score := session.Clamp(*rec.Score)
		r.Analytics.LastScore = &score
		avg := score
		if r.Analytics.AverageScore != nil {
			n := float64(r.Analytics.ScoredSessions)
			if n < 1 {
				n = 1
			}
			avg = (*r.Analytics.AverageScore*n + score) / (n + 1)
		}
		r.Analytics.AverageScore = &avg
		r.Analytics.ScoredSessions++
	}

	r.recompute()
	if r.Completed() && r.Analytics.CompletionDate == nil {
		r.Analytics.CompletionDate = &at
	}
}

func (s *Service) save(ctx context.Context, r Record) error {
	d := r.ToData()
	if err := s.repo.SaveProgress(ctx, &d); err != nil {
		return fmt.Errorf("save progress %s: %w", r.ItemID, err)
	}
	return nil
}
