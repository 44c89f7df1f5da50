package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// sessionRepo implements SessionRepo over SQLite.
type sessionRepo struct {
	db querier
}

const sessionColumns = `id, item_id, start_time, end_time, duration_minutes, progress_at_end, score, notes`

func (r *sessionRepo) AppendSession(ctx context.Context, s *SessionData) error {
	open, err := r.OpenSession(ctx)
	if err != nil {
		return err
	}
	if open != nil {
		return fmt.Errorf("append session %s: %w (open: %s)", s.ID, ErrOpenSessionExists, open.ID)
	}
	return insertSession(ctx, r.db, s)
}

func insertSession(ctx context.Context, q querier, s *SessionData) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID,
		s.ItemID,
		formatTime(s.StartTime),
		nullTime(s.EndTime),
		nullInt(s.DurationMinutes),
		s.ProgressAtEnd,
		nullFloat(s.Score),
		s.Notes,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *sessionRepo) CloseSession(ctx context.Context, s *SessionData) error {
	if s.EndTime == nil {
		return fmt.Errorf("close session %s: end time is required", s.ID)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions
		SET end_time = ?, duration_minutes = ?, progress_at_end = ?, score = ?, notes = ?
		WHERE id = ? AND end_time IS NULL`,
		nullTime(s.EndTime),
		nullInt(s.DurationMinutes),
		s.ProgressAtEnd,
		nullFloat(s.Score),
		s.Notes,
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("close session %s: %w", s.ID, ErrSessionNotOpen)
	}
	return nil
}

func (r *sessionRepo) OpenSession(ctx context.Context) (*SessionData, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE end_time IS NULL ORDER BY seq DESC LIMIT 1`)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query open session: %w", err)
	}
	return s, nil
}

func (r *sessionRepo) ListSessions(ctx context.Context, opts QueryOpts) ([]SessionData, error) {
	var (
		where []string
		args  []any
	)
	if !opts.From.IsZero() {
		where = append(where, "start_time >= ?")
		args = append(args, formatTime(opts.From))
	}
	if !opts.To.IsZero() {
		where = append(where, "start_time < ?")
		args = append(args, formatTime(opts.To))
	}
	if opts.ItemID != "" {
		where = append(where, "item_id = ?")
		args = append(args, opts.ItemID)
	}

	query := `SELECT ` + sessionColumns + ` FROM sessions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY seq"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var result []SessionData
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return result, nil
}

func scanSession(s rowScanner) (*SessionData, error) {
	var (
		sd        SessionData
		startTime string
		endTime   sql.NullString
		duration  sql.NullInt64
		score     sql.NullFloat64
	)
	err := s.Scan(&sd.ID, &sd.ItemID, &startTime, &endTime, &duration, &sd.ProgressAtEnd, &score, &sd.Notes)
	if err != nil {
		return nil, err
	}
	if sd.StartTime, err = parseTime(startTime); err != nil {
		return nil, err
	}
	if sd.EndTime, err = scanNullTime(endTime); err != nil {
		return nil, err
	}
	sd.DurationMinutes = scanNullInt(duration)
	sd.Score = scanNullFloat(score)
	return &sd, nil
}
