// Package render formats engine results for the terminal.
package render

import (
	"fmt"
	"math"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/upscprep/internal/analytics"
	"github.com/abhisek/upscprep/internal/catalog"
	"github.com/abhisek/upscprep/internal/progress"
	"github.com/abhisek/upscprep/internal/recommend"
	"github.com/abhisek/upscprep/internal/session"
	"github.com/abhisek/upscprep/internal/ui/components"
	"github.com/abhisek/upscprep/internal/ui/theme"
)

const (
	barWidth  = 40
	timeStamp = "2006-01-02 15:04"
)

// StatusBadge renders a completion status in its color.
func StatusBadge(s progress.Status) string {
	style := theme.StatusNotStarted
	switch s {
	case progress.StatusInProgress:
		style = theme.StatusInProgress
	case progress.StatusCompleted:
		style = theme.StatusCompleted
	}
	return style.Render(s.DisplayName())
}

// PriorityBadge renders a recommendation priority in its color.
func PriorityBadge(p recommend.Priority) string {
	style := theme.PriorityLow
	switch p {
	case recommend.PriorityHigh:
		style = theme.PriorityHigh
	case recommend.PriorityMedium:
		style = theme.PriorityMedium
	}
	return style.Render(strings.ToUpper(string(p)))
}

// rule renders a horizontal separator.
func rule(width int) string {
	return theme.Rule.Render(strings.Repeat("─", width))
}

func field(label, value string) string {
	return theme.Label.Render(label) + value + "\n"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// pad right-pads a possibly styled string to width visible cells.
func pad(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// ItemTable renders catalog items with their status in catalog order.
func ItemTable(items []catalog.Item, records map[string]progress.Record) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%-34s  %-36s  %-8s  %-12s  %5s  %s\n",
		"ID", "Title", "Kind", "Difficulty", "Mins", "Status")
	b.WriteString(rule(118) + "\n")

	for _, it := range items {
		rec, ok := records[it.ID]
		if !ok {
			rec = progress.NewRecord(it.ID)
		}
		status := StatusBadge(rec.Status)
		if rec.Status == progress.StatusInProgress {
			status += theme.Subtitle.Render(fmt.Sprintf(" %d%%", int(rec.ProgressPercent)))
		}
		fmt.Fprintf(&b, "%-34s  %-36s  %-8s  %-12s  %5d  %s\n",
			truncate(it.ID, 34),
			truncate(it.DisplayName(), 36),
			truncate(string(it.Kind), 8),
			it.Difficulty,
			it.EstimatedMinutes,
			status,
		)
	}

	fmt.Fprintf(&b, "\n%d items\n", len(items))
	return b.String()
}

// Progress renders one item's record. unlocks lists the items that directly
// require it.
func Progress(it catalog.Item, r progress.Record, unlocks []catalog.Item, loc *time.Location) string {
	var b strings.Builder

	b.WriteString(theme.Title.Render(it.DisplayName()) + "\n")
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("%s · %s · %s", it.Subject, catalog.KindDisplayName(it.Kind), it.Difficulty)) + "\n\n")

	b.WriteString(field("Status", StatusBadge(r.Status)))
	b.WriteString(field("Progress", components.NewProgressBar("", r.ProgressPercent, true, barWidth).View()))
	b.WriteString(field("Time spent", formatMinutes(r.Analytics.TimeSpentMinutes)))
	b.WriteString(field("Accesses", fmt.Sprintf("%d", r.Analytics.AccessCount)))
	b.WriteString(field("Last accessed", formatTime(r.LastAccessedAt, loc)))
	b.WriteString(field("Last score", formatScore(r.Analytics.LastScore)))
	b.WriteString(field("Average score", formatScore(r.Analytics.AverageScore)))
	b.WriteString(field("Completed on", formatTime(r.Analytics.CompletionDate, loc)))

	if prereqs := it.Prerequisites; len(prereqs) > 0 {
		b.WriteString(field("Prerequisites", strings.Join(prereqs, ", ")))
	}
	if len(unlocks) > 0 {
		ids := make([]string, len(unlocks))
		for i, u := range unlocks {
			ids[i] = u.ID
		}
		b.WriteString(field("Unlocks", strings.Join(ids, ", ")))
	}
	return b.String()
}

// Session renders a session record. elapsed is shown for open sessions.
func Session(rec session.Record, title string, elapsed time.Duration, loc *time.Location) string {
	var b strings.Builder

	if rec.Open() {
		b.WriteString(theme.Title.Render("Active session") + "\n")
	} else {
		b.WriteString(theme.Title.Render("Session ended") + "\n")
	}
	b.WriteString(field("Item", fmt.Sprintf("%s (%s)", title, rec.ItemID)))
	b.WriteString(field("Started", formatTime(&rec.StartTime, loc)))

	if rec.Open() {
		b.WriteString(field("Elapsed", formatMinutes(int(elapsed.Minutes()))))
	} else {
		b.WriteString(field("Ended", formatTime(rec.EndTime, loc)))
		b.WriteString(field("Duration", formatMinutes(rec.DurationMinutes)))
		b.WriteString(field("Progress", fmt.Sprintf("%d%%", int(rec.ProgressAtEnd))))
		b.WriteString(field("Score", formatScore(rec.Score)))
		if rec.Notes != "" {
			b.WriteString(field("Notes", rec.Notes))
		}
	}
	b.WriteString(theme.Hint.Render("id "+rec.ID) + "\n")
	return b.String()
}

// SessionLog renders sessions as a table in start order. Open sessions show
// "active" in place of the end columns.
func SessionLog(records []session.Record, cat *catalog.Catalog, loc *time.Location) string {
	if len(records) == 0 {
		return theme.Hint.Render("No sessions found.") + "\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-16s  %-36s  %8s  %8s  %6s\n", "Started", "Item", "Duration", "Progress", "Score")
	b.WriteString(rule(84) + "\n")

	total := 0
	for _, r := range records {
		title := r.ItemID
		if it, err := cat.Get(r.ItemID); err == nil {
			title = it.DisplayName()
		}
		if r.Open() {
			fmt.Fprintf(&b, "%-16s  %-36s  %s\n", formatTime(&r.StartTime, loc), truncate(title, 36), theme.StatusInProgress.Render("active"))
			continue
		}
		total += r.DurationMinutes
		fmt.Fprintf(&b, "%-16s  %-36s  %8s  %7d%%  %6s\n",
			formatTime(&r.StartTime, loc),
			truncate(title, 36),
			formatMinutes(r.DurationMinutes),
			int(r.ProgressAtEnd),
			formatScore(r.Score),
		)
	}

	fmt.Fprintf(&b, "\n%s, %s studied\n", plural(len(records), "session"), formatMinutes(total))
	return b.String()
}

// Stats renders an analytics snapshot.
func Stats(s analytics.Snapshot) string {
	var b strings.Builder

	b.WriteString(theme.Title.Render("Study statistics") + "\n\n")
	b.WriteString(field("Total study time", formatMinutes(s.TotalStudyTimeMinutes)))
	b.WriteString(field("Items completed", fmt.Sprintf("%d", s.CompletedItemCount)))
	b.WriteString(field("Average score", fmt.Sprintf("%.1f", s.AverageScore)))
	b.WriteString(field("Streak", plural(s.StreakDays, "day")))
	b.WriteString(field("Consistency", fmt.Sprintf("%.0f%% of last %d days", s.ConsistencyScore, analytics.DefaultLongWindowDays)))
	b.WriteString(field("Velocity", plural(s.LearningVelocity, "item")+" this week"))

	goal := s.WeeklyGoalProgress
	b.WriteString(field("Weekly goal", components.NewProgressBar(
		fmt.Sprintf("%s / %s", formatMinutes(goal.Achieved), formatMinutes(goal.Target)),
		goal.Percent(), true, barWidth+20).View()))

	if len(s.Subjects) > 0 {
		b.WriteString("\n" + theme.Title.Render("Subjects") + "\n")
		for _, sub := range s.Subjects {
			label := pad(fmt.Sprintf("%-12s %d/%d", sub.Subject, sub.Completed, sub.Total), 20)
			b.WriteString(components.NewProgressBar(label, sub.Percent, true, barWidth+20).View() + "\n")
		}
	}

	if len(s.Daily) > 0 {
		b.WriteString("\n" + theme.Title.Render("Last "+plural(len(s.Daily), "day")) + "\n")
		peak := 0
		for _, d := range s.Daily {
			peak = max(peak, d.StudyMinutes)
		}
		for _, d := range s.Daily {
			bar := ""
			if peak > 0 {
				bar = strings.Repeat("█", int(math.Ceil(float64(d.StudyMinutes)/float64(peak)*30)))
			}
			line := fmt.Sprintf("%s  %-30s %4dm", d.Date, bar, d.StudyMinutes)
			if d.Completions > 0 {
				line += theme.StatusCompleted.Render(fmt.Sprintf("  +%d done", d.Completions))
			}
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}

// Recommendations renders a ranked list.
func Recommendations(entries []recommend.Entry, cat *catalog.Catalog) string {
	if len(entries) == 0 {
		return theme.Hint.Render("Nothing to recommend right now.") + "\n"
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render("Next up") + "\n\n")
	for i, e := range entries {
		title := e.ItemID
		if it, err := cat.Get(e.ItemID); err == nil {
			title = it.DisplayName()
		}
		fmt.Fprintf(&b, "%d. %s  %s  %s\n", i+1, pad(PriorityBadge(e.Priority), 6), pad(string(e.Type), 9), theme.Body.Render(title))
		fmt.Fprintf(&b, "   %s\n", theme.Hint.Render(e.Reason))
	}
	return b.String()
}

func formatMinutes(m int) string {
	if m < 60 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %02dm", m/60, m%60)
}

func formatScore(s *float64) string {
	if s == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *s)
}

func formatTime(t *time.Time, loc *time.Location) string {
	if t == nil {
		return "-"
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(timeStamp)
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
