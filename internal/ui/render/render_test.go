package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/upscprep/internal/analytics"
	"github.com/abhisek/upscprep/internal/catalog"
	"github.com/abhisek/upscprep/internal/progress"
	"github.com/abhisek/upscprep/internal/recommend"
	"github.com/abhisek/upscprep/internal/session"
)

func TestFormatMinutes(t *testing.T) {
	tests := map[int]string{0: "0m", 45: "45m", 60: "1h 00m", 135: "2h 15m"}
	for in, want := range tests {
		assert.Equal(t, want, formatMinutes(in))
	}
}

func TestItemTable(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	records := map[string]progress.Record{
		"polity-constitution-basics": {ItemID: "polity-constitution-basics", Status: progress.StatusCompleted, ProgressPercent: 100},
	}
	out := ItemTable(cat.Items(), records)

	assert.Contains(t, out, "polity-constitution-basics")
	assert.Contains(t, out, "Completed")
	assert.Contains(t, out, "Not started")
	assert.Contains(t, out, "17 items")
}

func TestProgress(t *testing.T) {
	it := catalog.Item{ID: "n1", Title: "Preamble", Subject: "polity", Kind: catalog.KindNote, Difficulty: catalog.DifficultyBeginner}
	at := time.Date(2026, 3, 9, 10, 30, 0, 0, time.UTC)
	s := 82.5
	r := progress.Record{ItemID: "n1", Status: progress.StatusInProgress, ProgressPercent: 40, LastAccessedAt: &at}
	r.Analytics.LastScore = &s
	r.Analytics.TimeSpentMinutes = 75

	unlocks := []catalog.Item{{ID: "n2"}, {ID: "quiz-1"}}
	out := Progress(it, r, unlocks, time.UTC)
	assert.Contains(t, out, "Preamble")
	assert.Contains(t, out, "Unlocks")
	assert.Contains(t, out, "n2, quiz-1")
	assert.Contains(t, out, "In progress")
	assert.Contains(t, out, "1h 15m")
	assert.Contains(t, out, "82.5")
	assert.Contains(t, out, "2026-03-09 10:30")

	assert.NotContains(t, Progress(it, r, nil, time.UTC), "Unlocks")
}

func TestSession(t *testing.T) {
	start := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
	open := session.Record{ID: "abc", ItemID: "n1", StartTime: start}
	out := Session(open, "Preamble", 12*time.Minute, time.UTC)
	assert.Contains(t, out, "Active session")
	assert.Contains(t, out, "12m")

	end := start.Add(30 * time.Minute)
	closed := open
	closed.EndTime = &end
	closed.DurationMinutes = 30
	closed.ProgressAtEnd = 100
	out = Session(closed, "Preamble", 0, time.UTC)
	assert.Contains(t, out, "Session ended")
	assert.Contains(t, out, "100%")
}

func TestStats(t *testing.T) {
	snap := analytics.Snapshot{
		TotalStudyTimeMinutes: 130,
		CompletedItemCount:    2,
		StreakDays:            1,
		LearningVelocity:      2,
		WeeklyGoalProgress:    analytics.WeeklyGoal{Target: 600, Achieved: 130},
		Subjects:              []analytics.SubjectStat{{Subject: "polity", Completed: 1, Total: 4, Percent: 25}},
		Daily:                 []analytics.DayRollup{{Date: "2026-03-09", StudyMinutes: 130, Sessions: 3, Completions: 2}},
	}
	out := Stats(snap)
	assert.Contains(t, out, "2h 10m")
	assert.Contains(t, out, "1 day")
	assert.Contains(t, out, "polity")
	assert.Contains(t, out, "2026-03-09")
	assert.Contains(t, out, "+2 done")
}

func TestRecommendations(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	out := Recommendations([]recommend.Entry{
		{Type: recommend.TypeReview, ItemID: "polity-quiz-1", Reason: "Last score 55 is below 70", Priority: recommend.PriorityHigh},
	}, cat)
	assert.Contains(t, out, "HIGH")
	assert.Contains(t, out, "Polity Practice Quiz I")
	assert.Contains(t, out, "Last score 55")

	empty := Recommendations(nil, cat)
	assert.True(t, strings.Contains(empty, "Nothing to recommend"))
}

func TestSessionLog(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	start := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
	end := start.Add(45 * time.Minute)
	score := 55.0
	records := []session.Record{
		{ID: "s1", ItemID: "polity-quiz-1", StartTime: start, EndTime: &end, DurationMinutes: 45, ProgressAtEnd: 100, Score: &score},
		{ID: "s2", ItemID: "unknown-item", StartTime: end.Add(time.Hour)},
	}
	out := SessionLog(records, cat, time.UTC)
	assert.Contains(t, out, "Polity Practice Quiz I")
	assert.Contains(t, out, "45m")
	assert.Contains(t, out, "55.0")
	assert.Contains(t, out, "unknown-item")
	assert.Contains(t, out, "active")
	assert.Contains(t, out, "2 sessions, 45m studied")

	assert.Contains(t, SessionLog(nil, cat, time.UTC), "No sessions found")
}
