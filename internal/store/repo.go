package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrOpenSessionExists is returned when appending a session while another is still open.
	ErrOpenSessionExists = errors.New("an open session already exists")

	// ErrSessionNotOpen is returned when closing a session that is unknown or already closed.
	ErrSessionNotOpen = errors.New("session is not open")
)

// QueryOpts configures session queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	From   time.Time // start_time >= From
	To     time.Time // start_time < To
	ItemID string    // exact item match when non-empty
}

// ProgressAnalyticsData is the persisted per-item analytics block.
type ProgressAnalyticsData struct {
	TimeSpentMinutes int        `json:"time_spent_minutes"`
	AccessCount      int        `json:"access_count"`
	LastScore        *float64   `json:"last_score,omitempty"`
	AverageScore     *float64   `json:"average_score,omitempty"`
	ScoredSessions   int        `json:"scored_sessions"`
	CompletionDate   *time.Time `json:"completion_date,omitempty"`
}

// ProgressData is the persisted form of one item's progress.
type ProgressData struct {
	ItemID           string                `json:"item_id"`
	CompletionStatus string                `json:"completion_status"`
	ProgressPercent  float64               `json:"progress_percent"`
	LastAccessedAt   *time.Time            `json:"last_accessed_at,omitempty"`
	Analytics        ProgressAnalyticsData `json:"analytics"`
}

// SessionData is the persisted form of one study session.
type SessionData struct {
	ID              string     `json:"id"`
	ItemID          string     `json:"item_id"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	ProgressAtEnd   float64    `json:"progress_at_end"`
	Score           *float64   `json:"score,omitempty"`
	Notes           string     `json:"notes,omitempty"`
}

// StateData is the full persisted state: progress keyed by item ID and the
// append-only session log in start order.
type StateData struct {
	Version  int                     `json:"version"`
	Items    map[string]ProgressData `json:"items"`
	Sessions []SessionData           `json:"sessions"`
}

// ProgressRepo persists per-item progress records.
type ProgressRepo interface {
	// GetProgress returns the record for itemID, or nil if none exists.
	GetProgress(ctx context.Context, itemID string) (*ProgressData, error)

	// SaveProgress inserts or replaces the record.
	SaveProgress(ctx context.Context, data *ProgressData) error

	// ListProgress returns all records ordered by item ID.
	ListProgress(ctx context.Context) ([]ProgressData, error)
}

// SessionRepo persists the session log.
type SessionRepo interface {
	// AppendSession stores a new open session. Fails with ErrOpenSessionExists
	// if another session is still open.
	AppendSession(ctx context.Context, data *SessionData) error

	// CloseSession writes the end fields of an open session. Fails with
	// ErrSessionNotOpen if the session is unknown or already closed.
	CloseSession(ctx context.Context, data *SessionData) error

	// OpenSession returns the open session, or nil if none exists.
	OpenSession(ctx context.Context) (*SessionData, error)

	// ListSessions returns sessions in start order.
	ListSessions(ctx context.Context, opts QueryOpts) ([]SessionData, error)
}
