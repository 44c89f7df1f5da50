package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// progressRepo implements ProgressRepo over SQLite.
type progressRepo struct {
	db querier
}

const progressColumns = `item_id, completion_status, progress_percent, last_accessed_at,
	time_spent_minutes, access_count, last_score, average_score, scored_sessions, completion_date`

func (r *progressRepo) GetProgress(ctx context.Context, itemID string) (*ProgressData, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+progressColumns+` FROM progress WHERE item_id = ?`, itemID)
	p, err := scanProgress(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query progress: %w", err)
	}
	return p, nil
}

func (r *progressRepo) SaveProgress(ctx context.Context, p *ProgressData) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO progress (`+progressColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(item_id) DO UPDATE SET
			completion_status  = excluded.completion_status,
			progress_percent   = excluded.progress_percent,
			last_accessed_at   = excluded.last_accessed_at,
			time_spent_minutes = excluded.time_spent_minutes,
			access_count       = excluded.access_count,
			last_score         = excluded.last_score,
			average_score      = excluded.average_score,
			scored_sessions    = excluded.scored_sessions,
			completion_date    = excluded.completion_date`,
		p.ItemID,
		p.CompletionStatus,
		p.ProgressPercent,
		nullTime(p.LastAccessedAt),
		p.Analytics.TimeSpentMinutes,
		p.Analytics.AccessCount,
		nullFloat(p.Analytics.LastScore),
		nullFloat(p.Analytics.AverageScore),
		p.Analytics.ScoredSessions,
		nullTime(p.Analytics.CompletionDate),
	)
	if err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

func (r *progressRepo) ListProgress(ctx context.Context) ([]ProgressData, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+progressColumns+` FROM progress ORDER BY item_id`)
	if err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}
	defer rows.Close()

	var result []ProgressData
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate progress: %w", err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProgress(s rowScanner) (*ProgressData, error) {
	var (
		p              ProgressData
		lastAccessed   sql.NullString
		lastScore      sql.NullFloat64
		averageScore   sql.NullFloat64
		completionDate sql.NullString
	)
	err := s.Scan(
		&p.ItemID,
		&p.CompletionStatus,
		&p.ProgressPercent,
		&lastAccessed,
		&p.Analytics.TimeSpentMinutes,
		&p.Analytics.AccessCount,
		&lastScore,
		&averageScore,
		&p.Analytics.ScoredSessions,
		&completionDate,
	)
	if err != nil {
		return nil, err
	}

	if p.LastAccessedAt, err = scanNullTime(lastAccessed); err != nil {
		return nil, err
	}
	if p.Analytics.CompletionDate, err = scanNullTime(completionDate); err != nil {
		return nil, err
	}
	p.Analytics.LastScore = scanNullFloat(lastScore)
	p.Analytics.AverageScore = scanNullFloat(averageScore)
	return &p, nil
}
