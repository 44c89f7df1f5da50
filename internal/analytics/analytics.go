// Package analytics derives study statistics from progress records and the
// session log. Everything here is a pure function of its inputs.
package analytics

import (
	"time"

	"github.com/abhisek/upscprep/internal/catalog"
	"github.com/abhisek/upscprep/internal/progress"
	"github.com/abhisek/upscprep/internal/session"
)

// Default window sizes and goal.
const (
	DefaultShortWindowDays   = 7
	DefaultLongWindowDays    = 30
	DefaultWeeklyGoalMinutes = 600
)

// Options configures the rollup windows.
type Options struct {
	ShortWindowDays   int
	LongWindowDays    int
	WeeklyGoalMinutes int
	Location          *time.Location
}

// DefaultOptions returns the standard windows in UTC.
func DefaultOptions() Options {
	return Options{
		ShortWindowDays:   DefaultShortWindowDays,
		LongWindowDays:    DefaultLongWindowDays,
		WeeklyGoalMinutes: DefaultWeeklyGoalMinutes,
		Location:          time.UTC,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ShortWindowDays <= 0 {
		o.ShortWindowDays = d.ShortWindowDays
	}
	if o.LongWindowDays <= 0 {
		o.LongWindowDays = d.LongWindowDays
	}
	if o.WeeklyGoalMinutes <= 0 {
		o.WeeklyGoalMinutes = d.WeeklyGoalMinutes
	}
	if o.Location == nil {
		o.Location = d.Location
	}
	return o
}

// WeeklyGoal compares study minutes over the trailing week with a target.
type WeeklyGoal struct {
	Target   int `json:"target"`
	Achieved int `json:"achieved"`
}

// Percent returns achieved as a share of target, capped at 100.
func (g WeeklyGoal) Percent() float64 {
	if g.Target <= 0 {
		return 0
	}
	return min(100, float64(g.Achieved)/float64(g.Target)*100)
}

// SubjectStat is the completion of one subject.
type SubjectStat struct {
	Subject   string  `json:"subject"`
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Percent   float64 `json:"percent"`
}

// Snapshot is the full set of derived statistics. It carries no timestamp,
// so unchanged state always yields an equal snapshot.
type Snapshot struct {
	TotalStudyTimeMinutes int                `json:"total_study_time_minutes"`
	CompletedItemCount    int                `json:"completed_item_count"`
	AverageScore          float64            `json:"average_score"`
	StreakDays            int                `json:"streak_days"`
	ConsistencyScore      float64            `json:"consistency_score"`
	LearningVelocity      int                `json:"learning_velocity"`
	SubjectProgress       map[string]float64 `json:"subject_progress"`
	Subjects              []SubjectStat      `json:"subjects"`
	WeeklyGoalProgress    WeeklyGoal         `json:"weekly_goal_progress"`
	Daily                 []DayRollup        `json:"daily"`
}

// Input is the committed state analytics are computed from.
type Input struct {
	Catalog  *catalog.Catalog
	Records  []progress.Record
	Sessions []session.Record
	Now      time.Time
}

// Compute builds a Snapshot. Calling it twice with the same input returns
// equal snapshots.
func Compute(in Input, opts Options) Snapshot {
	opts = opts.withDefaults()
	loc := opts.Location
	index := progress.Index(in.Records)

	snap := Snapshot{
		SubjectProgress: make(map[string]float64),
		Subjects:        []SubjectStat{},
	}

	var scoreSum float64
	var scored int
	for _, r := range in.Records {
		snap.TotalStudyTimeMinutes += r.Analytics.TimeSpentMinutes
		if r.Completed() {
			snap.CompletedItemCount++
		}
		if r.Analytics.AverageScore != nil {
			scoreSum += *r.Analytics.AverageScore
			scored++
		}
	}
	if scored > 0 {
		snap.AverageScore = scoreSum / float64(scored)
	}

	if in.Catalog != nil {
		for _, subject := range in.Catalog.Subjects() {
			stat := SubjectStat{Subject: subject, Total: in.Catalog.SubjectSize(subject)}
			for _, it := range in.Catalog.BySubject(subject) {
				if r, ok := index[it.ID]; ok && r.Completed() {
					stat.Completed++
				}
			}
			stat.Percent = SubjectProgress(in.Catalog, index, subject)
			snap.Subjects = append(snap.Subjects, stat)
			snap.SubjectProgress[subject] = stat.Percent
		}
	}

	snap.Daily = DailyRollup(in.Sessions, in.Records, in.Now, opts.ShortWindowDays, loc)
	snap.ConsistencyScore = ConsistencyScore(in.Sessions, in.Now, opts.LongWindowDays, loc)
	snap.StreakDays = Streak(in.Sessions, in.Now, loc)

	week := DailyRollup(in.Sessions, in.Records, in.Now, DefaultShortWindowDays, loc)
	snap.WeeklyGoalProgress.Target = opts.WeeklyGoalMinutes
	for _, d := range week {
		snap.WeeklyGoalProgress.Achieved += d.StudyMinutes
		snap.LearningVelocity += d.Completions
	}
	return snap
}
