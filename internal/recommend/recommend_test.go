package recommend

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/upscprep/internal/catalog"
	"github.com/abhisek/upscprep/internal/progress"
)

var now = time.Date(2026, 3, 9, 15, 0, 0, 0, time.UTC)

func item(id string, prereqs ...string) catalog.Item {
	return catalog.Item{ID: id, Title: "Title " + id, Subject: "polity", Kind: catalog.KindNote, Difficulty: catalog.DifficultyBeginner, Prerequisites: prereqs}
}

func mustCatalog(t *testing.T, items ...catalog.Item) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(items)
	require.NoError(t, err)
	return c
}

func completed(id string) progress.Record {
	at := now.AddDate(0, 0, -1)
	r := progress.Record{ItemID: id, Status: progress.StatusCompleted, ProgressPercent: 100, LastAccessedAt: &at}
	r.Analytics.AccessCount = 1
	r.Analytics.CompletionDate = &at
	return r
}

func inProgress(id string, pct float64, lastAccess time.Time) progress.Record {
	return progress.Record{
		ItemID:          id,
		Status:          progress.StatusInProgress,
		ProgressPercent: pct,
		LastAccessedAt:  &lastAccess,
		Analytics:       progress.Analytics{AccessCount: 1},
	}
}

func withScore(r progress.Record, s float64) progress.Record {
	r.Analytics.LastScore = &s
	return r
}

func find(entries []Entry, id string) (Entry, bool) {
	for _, e := range entries {
		if e.ItemID == id {
			return e, true
		}
	}
	return Entry{}, false
}

func TestNewTopic_PrerequisitesCompleted(t *testing.T) {
	cat := mustCatalog(t, item("a"), item("b"), item("x", "a", "b"))
	got := New(DefaultConfig()).Recommend(Input{
		Catalog:  cat,
		Records:  []progress.Record{completed("a"), completed("b")},
		Now:      now,
		Velocity: 2,
	})

	e, ok := find(got, "x")
	require.True(t, ok, "expected entry for x: %+v", got)
	assert.Equal(t, TypeNewTopic, e.Type)
	assert.Equal(t, PriorityMedium, e.Priority)
	assert.Contains(t, e.Reason, "Title a")
	assert.Contains(t, e.Reason, "Title b")
}

func TestNewTopic_LockedWhenPrerequisiteIncomplete(t *testing.T) {
	cat := mustCatalog(t, item("a"), item("b"), item("x", "a", "b"))
	got := New(DefaultConfig()).Recommend(Input{
		Catalog:  cat,
		Records:  []progress.Record{completed("a"), inProgress("b", 50, now)},
		Now:      now,
		Velocity: 1,
	})
	_, ok := find(got, "x")
	assert.False(t, ok)
}

func TestNewTopic_RootsAreUnlocked(t *testing.T) {
	cat := mustCatalog(t, item("a"), item("b", "a"))
	got := New(DefaultConfig()).Recommend(Input{Catalog: cat, Now: now})

	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ItemID)
	assert.Equal(t, TypeNewTopic, got[0].Type)
}

func TestReview_LowScore(t *testing.T) {
	cat := mustCatalog(t, item("y"))
	got := New(DefaultConfig()).Recommend(Input{
		Catalog: cat,
		Records: []progress.Record{withScore(inProgress("y", 60, now), 55)},
		Now:     now,
	})

	require.Len(t, got, 1)
	assert.Equal(t, Entry{Type: TypeReview, ItemID: "y", Reason: "Last score 55 is below 70", Priority: PriorityHigh}, got[0])
}

func TestReview_LowScoreThreshold(t *testing.T) {
	cat := mustCatalog(t, item("y"))
	records := []progress.Record{withScore(inProgress("y", 60, now), 55)}

	tests := []struct {
		name      string
		threshold *float64
		wantType  Type
		wantPrio  Priority
	}{
		{"unset uses default", nil, TypeReview, PriorityHigh},
		{"zero disables rule", Threshold(0), TypePractice, PriorityMedium},
		{"custom below score", Threshold(50), TypePractice, PriorityMedium},
		{"custom above score", Threshold(60), TypeReview, PriorityHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(Config{LowScoreThreshold: tt.threshold})
			got := e.Recommend(Input{Catalog: cat, Records: records, Now: now})
			require.Len(t, got, 1)
			assert.Equal(t, tt.wantType, got[0].Type)
			assert.Equal(t, tt.wantPrio, got[0].Priority)
		})
	}

	assert.Equal(t, DefaultLowScoreThreshold, *New(Config{}).Config().LowScoreThreshold)
}

func TestReview_LowScoreOnCompletedItem(t *testing.T) {
	cat := mustCatalog(t, item("y"))
	got := New(DefaultConfig()).Recommend(Input{
		Catalog: cat,
		Records: []progress.Record{withScore(completed("y"), 40)},
		Now:     now,
	})
	require.Len(t, got, 1)
	assert.Equal(t, PriorityHigh, got[0].Priority)
}

func TestReview_Stale(t *testing.T) {
	cat := mustCatalog(t, item("s"))
	got := New(DefaultConfig()).Recommend(Input{
		Catalog:  cat,
		Records:  []progress.Record{inProgress("s", 30, now.AddDate(0, 0, -10))},
		Now:      now,
		Velocity: 1,
	})

	require.Len(t, got, 1)
	assert.Equal(t, TypeReview, got[0].Type)
	assert.Equal(t, PriorityMedium, got[0].Priority)
	assert.Equal(t, "Not studied for 10 days", got[0].Reason)
}

func TestPractice_PriorityFollowsVelocity(t *testing.T) {
	cat := mustCatalog(t, item("p"))
	records := []progress.Record{inProgress("p", 40, now.Add(-time.Hour))}

	tests := []struct {
		velocity int
		want     Priority
	}{
		{0, PriorityMedium},
		{3, PriorityLow},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("velocity=%d", tt.velocity), func(t *testing.T) {
			got := New(DefaultConfig()).Recommend(Input{Catalog: cat, Records: records, Now: now, Velocity: tt.velocity})
			require.Len(t, got, 1)
			assert.Equal(t, TypePractice, got[0].Type)
			assert.Equal(t, tt.want, got[0].Priority)
			assert.Equal(t, "40% complete, keep going", got[0].Reason)
		})
	}
}

func TestOneEntryPerItem(t *testing.T) {
	// Low score and stale both match; low score wins.
	cat := mustCatalog(t, item("y"))
	got := New(DefaultConfig()).Recommend(Input{
		Catalog: cat,
		Records: []progress.Record{withScore(inProgress("y", 60, now.AddDate(0, 0, -30)), 10)},
		Now:     now,
	})
	require.Len(t, got, 1)
	assert.Equal(t, PriorityHigh, got[0].Priority)
}

func TestOrderingAndCap(t *testing.T) {
	var items []catalog.Item
	for i := 0; i < 10; i++ {
		items = append(items, item(fmt.Sprintf("n%02d", i)))
	}
	cat := mustCatalog(t, items...)
	records := []progress.Record{
		withScore(inProgress("n07", 50, now), 30),
		inProgress("n08", 20, now),
	}

	got := New(DefaultConfig()).Recommend(Input{Catalog: cat, Records: records, Now: now, Velocity: 1})

	require.Len(t, got, DefaultCap)
	assert.Equal(t, "n07", got[0].ItemID, "high priority first")
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Priority.Rank(), got[i].Priority.Rank())
	}
	// Ties keep catalog order.
	assert.Equal(t, []string{"n00", "n01", "n02", "n03"}, []string{got[1].ItemID, got[2].ItemID, got[3].ItemID, got[4].ItemID})
}

func TestCustomCap(t *testing.T) {
	var items []catalog.Item
	for i := 0; i < 4; i++ {
		items = append(items, item(fmt.Sprintf("n%d", i)))
	}
	cat := mustCatalog(t, items...)
	got := New(Config{Cap: 2}).Recommend(Input{Catalog: cat, Now: now})
	assert.Len(t, got, 2)
}

func TestEmptyCatalog(t *testing.T) {
	got := New(DefaultConfig()).Recommend(Input{Now: now})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDefaultCatalogNeverExceedsCap(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)
	got := New(DefaultConfig()).Recommend(Input{Catalog: cat, Now: now})
	assert.LessOrEqual(t, len(got), DefaultCap)
	assert.NotEmpty(t, got)
}
