// Package progress maintains one progress record per catalog item.
package progress

import (
	"time"

	"github.com/abhisek/upscprep/internal/store"
)

// Status is an item's completion state. It is always derived from the
// record's numbers, never set directly.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// DisplayName returns a human-readable label.
func (s Status) DisplayName() string {
	switch s {
	case StatusNotStarted:
		return "Not started"
	case StatusInProgress:
		return "In progress"
	case StatusCompleted:
		return "Completed"
	}
	return string(s)
}

// DeriveStatus maps percent and access count to a status.
func DeriveStatus(percent float64, accessCount int) Status {
	switch {
	case percent >= 100:
		return StatusCompleted
	case percent == 0 && accessCount == 0:
		return StatusNotStarted
	default:
		return StatusInProgress
	}
}

// Analytics holds the per-item study counters.
type Analytics struct {
	TimeSpentMinutes int
	AccessCount      int
	LastScore        *float64
	AverageScore     *float64
	ScoredSessions   int
	CompletionDate   *time.Time
}

// Record is the study state of one item.
type Record struct {
	ItemID          string
	Status          Status
	ProgressPercent float64
	LastAccessedAt  *time.Time
	Analytics       Analytics
}

// NewRecord returns the zero record for itemID.
func NewRecord(itemID string) Record {
	return Record{ItemID: itemID, Status: StatusNotStarted}
}

// Completed reports whether the item is done.
func (r Record) Completed() bool {
	return r.Status == StatusCompleted
}

// Touched reports whether the item has ever been opened or studied.
func (r Record) Touched() bool {
	return r.Status != StatusNotStarted || r.LastAccessedAt != nil
}

func (r *Record) recompute() {
	r.Status = DeriveStatus(r.ProgressPercent, r.Analytics.AccessCount)
}

// FromData converts a persisted row. The status is re-derived so a
// hand-edited import can never break the status invariant.
func FromData(d store.ProgressData) Record {
	r := Record{
		ItemID:          d.ItemID,
		ProgressPercent: d.ProgressPercent,
		LastAccessedAt:  d.LastAccessedAt,
		Analytics: Analytics{
			TimeSpentMinutes: d.Analytics.TimeSpentMinutes,
			AccessCount:      d.Analytics.AccessCount,
			LastScore:        d.Analytics.LastScore,
			AverageScore:     d.Analytics.AverageScore,
			ScoredSessions:   d.Analytics.ScoredSessions,
			CompletionDate:   d.Analytics.CompletionDate,
		},
	}
	r.recompute()
	return r
}

// ToData converts the record to its persisted form.
func (r Record) ToData() store.ProgressData {
	return store.ProgressData{
		ItemID:           r.ItemID,
		CompletionStatus: string(r.Status),
		ProgressPercent:  r.ProgressPercent,
		LastAccessedAt:   r.LastAccessedAt,
		Analytics: store.ProgressAnalyticsData{
			TimeSpentMinutes: r.Analytics.TimeSpentMinutes,
			AccessCount:      r.Analytics.AccessCount,
			LastScore:        r.Analytics.LastScore,
			AverageScore:     r.Analytics.AverageScore,
			ScoredSessions:   r.Analytics.ScoredSessions,
			CompletionDate:   r.Analytics.CompletionDate,
		},
	}
}

// Index keys records by item ID.
func Index(records []Record) map[string]Record {
	m := make(map[string]Record, len(records))
	for _, r := range records {
		m[r.ItemID] = r
	}
	return m
}

// CompletedSet returns the IDs of completed items.
func CompletedSet(records []Record) map[string]bool {
	m := make(map[string]bool)
	for _, r := range records {
		if r.Completed() {
			m[r.ItemID] = true
		}
	}
	return m
}
