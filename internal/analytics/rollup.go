package analytics

import (
	"time"

	"github.com/abhisek/upscprep/internal/catalog"
	"github.com/abhisek/upscprep/internal/progress"
	"github.com/abhisek/upscprep/internal/session"
)

const dayLayout = "2006-01-02"

// DayRollup is the activity of one local calendar day.
type DayRollup struct {
	Date         string `json:"date"`
	StudyMinutes int    `json:"study_minutes"`
	Sessions     int    `json:"sessions"`
	Completions  int    `json:"completions"`
}

// Active reports whether any session started that day.
func (d DayRollup) Active() bool {
	return d.Sessions > 0
}

// dayKey formats t as a calendar date in loc.
func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dayLayout)
}

// windowDays returns the keys of the trailing n local days ending with the
// day containing now, oldest first.
func windowDays(now time.Time, n int, loc *time.Location) []string {
	if n <= 0 {
		return nil
	}
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	keys := make([]string, n)
	for i := 0; i < n; i++ {
		keys[i] = midnight.AddDate(0, 0, i-(n-1)).Format(dayLayout)
	}
	return keys
}

// DailyRollup sums closed-session minutes by start day and counts
// completions by completion day over the trailing days ending today.
// Open sessions count toward Sessions but contribute no minutes.
func DailyRollup(sessions []session.Record, records []progress.Record, now time.Time, days int, loc *time.Location) []DayRollup {
	loc = orUTC(loc)
	keys := windowDays(now, days, loc)
	out := make([]DayRollup, len(keys))
	pos := make(map[string]int, len(keys))
	for i, k := range keys {
		out[i].Date = k
		pos[k] = i
	}

	for _, s := range sessions {
		i, ok := pos[dayKey(s.StartTime, loc)]
		if !ok {
			continue
		}
		out[i].Sessions++
		if !s.Open() {
			out[i].StudyMinutes += s.DurationMinutes
		}
	}
	for _, r := range records {
		if r.Analytics.CompletionDate == nil {
			continue
		}
		if i, ok := pos[dayKey(*r.Analytics.CompletionDate, loc)]; ok {
			out[i].Completions++
		}
	}
	return out
}

// ConsistencyScore returns the percentage of the trailing days that had at
// least one session.
func ConsistencyScore(sessions []session.Record, now time.Time, days int, loc *time.Location) float64 {
	if days <= 0 {
		return 0
	}
	active := 0
	for _, d := range DailyRollup(sessions, nil, now, days, loc) {
		if d.Active() {
			active++
		}
	}
	return float64(active) / float64(days) * 100
}

// Velocity counts items completed in the trailing days ending today.
func Velocity(records []progress.Record, now time.Time, days int, loc *time.Location) int {
	n := 0
	for _, d := range DailyRollup(nil, records, now, days, loc) {
		n += d.Completions
	}
	return n
}

// SubjectProgress returns the share of a subject's catalog items that are
// completed, as a percentage. Unknown or empty subjects yield 0.
func SubjectProgress(cat *catalog.Catalog, records map[string]progress.Record, subject string) float64 {
	items := cat.BySubject(subject)
	if len(items) == 0 {
		return 0
	}
	done := 0
	for _, it := range items {
		if r, ok := records[it.ID]; ok && r.Completed() {
			done++
		}
	}
	return float64(done) / float64(len(items)) * 100
}

// Streak counts consecutive local days with at least one session, ending
// today. A day without a session yet does not break the streak until it
// is over, so counting starts from yesterday in that case.
func Streak(sessions []session.Record, now time.Time, loc *time.Location) int {
	loc = orUTC(loc)
	active := make(map[string]bool, len(sessions))
	for _, s := range sessions {
		active[dayKey(s.StartTime, loc)] = true
	}

	local := now.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	if !active[day.Format(dayLayout)] {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for active[day.Format(dayLayout)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
