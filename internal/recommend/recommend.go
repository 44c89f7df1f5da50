// Package recommend ranks what to study next.
package recommend

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/abhisek/upscprep/internal/catalog"
	"github.com/abhisek/upscprep/internal/progress"
)

// Type classifies a recommendation.
type Type string

const (
	TypeReview   Type = "review"
	TypeNewTopic Type = "new_topic"
	TypePractice Type = "practice"
)

// Priority orders recommendations. Higher rank sorts first.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank returns 3 for high, 2 for medium, 1 for low and 0 otherwise.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Entry is one recommendation.
type Entry struct {
	Type     Type     `json:"type"`
	ItemID   string   `json:"item_id"`
	Reason   string   `json:"reason"`
	Priority Priority `json:"priority"`
}

// Defaults for Config.
const (
	DefaultCap               = 5
	DefaultLowScoreThreshold = 70.0
	DefaultStaleAfterDays    = 7
)

// Config tunes the rules.
type Config struct {
	Cap int

	// LowScoreThreshold is the score below which an item is sent back for
	// review. Nil means DefaultLowScoreThreshold; zero turns the rule off.
	LowScoreThreshold *float64

	StaleAfterDays int
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		Cap:               DefaultCap,
		LowScoreThreshold: Threshold(DefaultLowScoreThreshold),
		StaleAfterDays:    DefaultStaleAfterDays,
	}
}

// Threshold returns a pointer to v for Config.LowScoreThreshold.
func Threshold(v float64) *float64 {
	return &v
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Cap <= 0 {
		c.Cap = d.Cap
	}
	if c.LowScoreThreshold == nil || *c.LowScoreThreshold < 0 {
		c.LowScoreThreshold = d.LowScoreThreshold
	}
	if c.StaleAfterDays <= 0 {
		c.StaleAfterDays = d.StaleAfterDays
	}
	return c
}

// Input is the committed state recommendations are drawn from.
type Input struct {
	Catalog *catalog.Catalog
	Records []progress.Record
	Now     time.Time

	// Velocity is the number of items completed in the trailing week.
	// When zero, practice entries are raised to medium priority.
	Velocity int
}

// Engine produces ranked recommendations.
type Engine struct {
	cfg Config
}

// New creates an engine. Zero fields of cfg take their defaults.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg.withDefaults()}
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Recommend scans the catalog in order and returns at most Cap entries,
// highest priority first, ties kept in catalog order. Each item appears at
// most once: the first matching rule wins.
func (e *Engine) Recommend(in Input) []Entry {
	if in.Catalog == nil {
		return []Entry{}
	}
	records := progress.Index(in.Records)
	completed := progress.CompletedSet(in.Records)

	var entries []Entry
	for _, it := range in.Catalog.Items() {
		rec, ok := records[it.ID]
		if !ok {
			rec = progress.NewRecord(it.ID)
		}
		if entry, ok := e.evaluate(in, it, rec, completed); ok {
			entries = append(entries, entry)
		}
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		return b.Priority.Rank() - a.Priority.Rank()
	})
	if len(entries) > e.cfg.Cap {
		entries = entries[:e.cfg.Cap]
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries
}

func (e *Engine) evaluate(in Input, it catalog.Item, rec progress.Record, completed map[string]bool) (Entry, bool) {
	// Low score.
	threshold := *e.cfg.LowScoreThreshold
	if rec.Status != progress.StatusNotStarted && rec.Analytics.LastScore != nil &&
		*rec.Analytics.LastScore < threshold {
		return Entry{
			Type:     TypeReview,
			ItemID:   it.ID,
			Reason:   fmt.Sprintf("Last score %s is below %s", formatScore(*rec.Analytics.LastScore), formatScore(threshold)),
			Priority: PriorityHigh,
		}, true
	}

	// Stale.
	if rec.Status == progress.StatusInProgress && rec.LastAccessedAt != nil {
		idle := in.Now.Sub(*rec.LastAccessedAt)
		if idle > time.Duration(e.cfg.StaleAfterDays)*24*time.Hour {
			days := int(idle.Hours() / 24)
			return Entry{
				Type:     TypeReview,
				ItemID:   it.ID,
				Reason:   fmt.Sprintf("Not studied for %d days", days),
				Priority: PriorityMedium,
			}, true
		}
	}

	// Unlocked.
	if rec.Status == progress.StatusNotStarted && in.Catalog.IsUnlocked(it.ID, completed) {
		return Entry{
			Type:     TypeNewTopic,
			ItemID:   it.ID,
			Reason:   unlockReason(in.Catalog, it),
			Priority: PriorityMedium,
		}, true
	}

	if rec.Status == progress.StatusInProgress {
		p := PriorityLow
		if in.Velocity == 0 {
			p = PriorityMedium
		}
		return Entry{
			Type:     TypePractice,
			ItemID:   it.ID,
			Reason:   fmt.Sprintf("%s%% complete, keep going", formatScore(rec.ProgressPercent)),
			Priority: p,
		}, true
	}

	return Entry{}, false
}

func unlockReason(cat *catalog.Catalog, it catalog.Item) string {
	prereqs := cat.Prerequisites(it.ID)
	if len(prereqs) == 0 {
		return "Ready to start, no prerequisites"
	}
	names := make([]string, len(prereqs))
	for i, p := range prereqs {
		names[i] = p.DisplayName()
	}
	return "Prerequisites completed: " + strings.Join(names, ", ")
}

// formatScore drops the fraction for whole numbers.
func formatScore(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}
