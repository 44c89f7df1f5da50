package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/goccy/go-json"
)

// StateVersion is the current export layout version.
const StateVersion = 1

// ErrInvalidStateData is returned by Import when a snapshot holds values
// outside their allowed ranges.
var ErrInvalidStateData = errors.New("invalid state data")

// Export captures all progress and session records.
func (s *Store) Export(ctx context.Context) (*StateData, error) {
	progress, err := s.ProgressRepo().ListProgress(ctx)
	if err != nil {
		return nil, fmt.Errorf("export progress: %w", err)
	}
	sessions, err := s.SessionRepo().ListSessions(ctx, QueryOpts{})
	if err != nil {
		return nil, fmt.Errorf("export sessions: %w", err)
	}

	state := &StateData{
		Version:  StateVersion,
		Items:    make(map[string]ProgressData, len(progress)),
		Sessions: sessions,
	}
	if state.Sessions == nil {
		state.Sessions = []SessionData{}
	}
	for _, p := range progress {
		state.Items[p.ItemID] = p
	}
	return state, nil
}

// Import replaces all stored state with the given snapshot in one transaction.
func (s *Store) Import(ctx context.Context, state *StateData) error {
	if state == nil {
		return fmt.Errorf("import state: nil state")
	}
	if state.Version > StateVersion {
		return fmt.Errorf("import state: unsupported version %d", state.Version)
	}

	if err := state.Validate(); err != nil {
		return fmt.Errorf("import state: %w", err)
	}

	open := 0
	for _, sd := range state.Sessions {
		if sd.EndTime == nil {
			open++
		}
	}
	if open > 1 {
		return fmt.Errorf("import state: %d open sessions: %w", open, ErrOpenSessionExists)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	if err := truncate(ctx, tx); err != nil {
		return err
	}

	ids := make([]string, 0, len(state.Items))
	for id := range state.Items {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	pr := &progressRepo{db: tx}
	for _, id := range ids {
		p := state.Items[id]
		if p.ItemID == "" {
			p.ItemID = id
		}
		if err := pr.SaveProgress(ctx, &p); err != nil {
			return fmt.Errorf("import progress %s: %w", id, err)
		}
	}
	for i := range state.Sessions {
		if err := insertSession(ctx, tx, &state.Sessions[i]); err != nil {
			return fmt.Errorf("import session %s: %w", state.Sessions[i].ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

// Validate checks that percentages and scores lie in [0,100] and counters
// are non-negative. Every problem is reported, wrapped in
// ErrInvalidStateData.
func (s *StateData) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	ids := make([]string, 0, len(s.Items))
	for id := range s.Items {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		p := s.Items[id]
		if !inPercentRange(p.ProgressPercent) {
			bad("item %q: progress_percent %v outside [0,100]", id, p.ProgressPercent)
		}
		if p.Analytics.LastScore != nil && !inPercentRange(*p.Analytics.LastScore) {
			bad("item %q: last_score %v outside [0,100]", id, *p.Analytics.LastScore)
		}
		if p.Analytics.AverageScore != nil && !inPercentRange(*p.Analytics.AverageScore) {
			bad("item %q: average_score %v outside [0,100]", id, *p.Analytics.AverageScore)
		}
		if p.Analytics.TimeSpentMinutes < 0 || p.Analytics.AccessCount < 0 || p.Analytics.ScoredSessions < 0 {
			bad("item %q: negative counter", id)
		}
	}
	for _, sd := range s.Sessions {
		if sd.ID == "" || sd.ItemID == "" {
			bad("session %q: id and item_id are required", sd.ID)
		}
		if !inPercentRange(sd.ProgressAtEnd) {
			bad("session %q: progress_at_end %v outside [0,100]", sd.ID, sd.ProgressAtEnd)
		}
		if sd.Score != nil && !inPercentRange(*sd.Score) {
			bad("session %q: score %v outside [0,100]", sd.ID, *sd.Score)
		}
		if sd.DurationMinutes != nil && *sd.DurationMinutes < 0 {
			bad("session %q: negative duration_minutes", sd.ID)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidStateData, errors.Join(errs...))
}

// inPercentRange rejects NaN as well as values outside [0,100].
func inPercentRange(v float64) bool {
	return v >= 0 && v <= 100
}

// Reset deletes all progress and session records.
func (s *Store) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback()

	if err := truncate(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}
	return nil
}

func truncate(ctx context.Context, q querier) error {
	for _, table := range []string{"progress", "sessions"} {
		if _, err := q.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// WriteState encodes state as indented JSON.
func WriteState(w io.Writer, state *StateData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(state); err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	return nil
}

// ReadState decodes a JSON state document.
func ReadState(r io.Reader) (*StateData, error) {
	var state StateData
	if err := json.NewDecoder(r).Decode(&state); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	if state.Items == nil {
		state.Items = make(map[string]ProgressData)
	}
	return &state, nil
}
