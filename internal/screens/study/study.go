// Package study is the interactive timed study session: it starts (or
// resumes) a session on one item, shows a running timer against the item's
// estimate, then asks for progress and an optional score and ends it.
package study

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/upscprep/internal/catalog"
	"github.com/abhisek/upscprep/internal/session"
	"github.com/abhisek/upscprep/internal/ui/components"
	"github.com/abhisek/upscprep/internal/ui/render"
	"github.com/abhisek/upscprep/internal/ui/theme"
)

// Sessions is the part of the engine the study screen drives.
type Sessions interface {
	StartSession(ctx context.Context, itemID string) (session.Record, error)
	EndSession(ctx context.Context, progressPercent float64, score *float64, notes string) (session.Record, error)
	ActiveSession() *session.Record
	Elapsed() time.Duration
}

// ErrOtherSessionActive is returned when a session on a different item is
// already open.
var ErrOtherSessionActive = errors.New("a session on another item is already active")

type phase int

const (
	phaseStarting phase = iota
	phaseStudying
	phaseProgress
	phaseScore
	phaseEnding
	phaseDone
)

const (
	tickInterval = time.Second
	barWidth     = 44
)

type startedMsg struct {
	rec     session.Record
	resumed bool
}

type endedMsg struct {
	rec session.Record
}

type failedMsg struct {
	err error
}

// tickMsg carries the timer generation so stale ticks are dropped after the
// timer restarts.
type tickMsg struct {
	gen int
}

// Model is the Bubble Tea model for one study session.
type Model struct {
	ctx      context.Context
	sessions Sessions
	item     catalog.Item
	loc      *time.Location

	phase    phase
	rec      session.Record
	resumed  bool
	elapsed  time.Duration
	tickGen  int
	input    components.NumberInput
	inputErr string
	progress float64
	detached bool
	err      error
}

// New creates a study model for item.
func New(ctx context.Context, sessions Sessions, item catalog.Item, loc *time.Location) Model {
	return Model{
		ctx:      ctx,
		sessions: sessions,
		item:     item,
		loc:      loc,
	}
}

func (m Model) Init() tea.Cmd {
	return m.start()
}

func (m Model) start() tea.Cmd {
	sessions, ctx, itemID := m.sessions, m.ctx, m.item.ID
	return func() tea.Msg {
		if rec := sessions.ActiveSession(); rec != nil {
			if rec.ItemID == itemID {
				return startedMsg{rec: *rec, resumed: true}
			}
			return failedMsg{err: fmt.Errorf("study %s: %w (%s)", itemID, ErrOtherSessionActive, rec.ItemID)}
		}
		rec, err := sessions.StartSession(ctx, itemID)
		if err != nil {
			return failedMsg{err: err}
		}
		return startedMsg{rec: rec}
	}
}

func (m Model) end(score *float64) tea.Cmd {
	sessions, ctx, pct := m.sessions, m.ctx, m.progress
	return func() tea.Msg {
		rec, err := sessions.EndSession(ctx, pct, score, "")
		if err != nil {
			return failedMsg{err: err}
		}
		return endedMsg{rec: rec}
	}
}

func (m *Model) startTimer() tea.Cmd {
	m.tickGen++
	gen := m.tickGen
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case startedMsg:
		m.rec = msg.rec
		m.resumed = msg.resumed
		m.phase = phaseStudying
		m.elapsed = m.sessions.Elapsed()
		return m, m.startTimer()

	case tickMsg:
		if m.phase != phaseStudying || msg.gen != m.tickGen {
			return m, nil
		}
		m.elapsed = m.sessions.Elapsed()
		return m, m.startTimer()

	case endedMsg:
		m.rec = msg.rec
		m.phase = phaseDone
		return m, nil

	case failedMsg:
		m.err = msg.err
		return m, tea.Quit

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}

	return m.forwardToInput(msg)
}

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		if m.phase != phaseDone {
			m.detached = true
		}
		return m, tea.Quit
	}

	switch m.phase {
	case phaseStudying:
		switch key {
		case "enter", "e":
			m.phase = phaseProgress
			m.inputErr = ""
			m.input = components.NewNumberInput("0-100", 5)
			return m, m.input.Init()
		case "q", "esc":
			m.detached = true
			return m, tea.Quit
		}
		return m, nil

	case phaseProgress:
		switch key {
		case "esc":
			m.phase = phaseStudying
			m.elapsed = m.sessions.Elapsed()
			return m, m.startTimer()
		case "enter":
			v, ok := m.percent()
			if !ok {
				return m, nil
			}
			m.progress = v
			m.phase = phaseScore
			m.input = components.NewNumberInput("leave empty if not assessed", 5)
			return m, m.input.Init()
		}

	case phaseScore:
		switch key {
		case "esc":
			m.phase = phaseProgress
			m.inputErr = ""
			m.input = components.NewNumberInput("0-100", 5)
			return m, m.input.Init()
		case "enter":
			var score *float64
			if !m.input.Empty() {
				v, ok := m.percent()
				if !ok {
					return m, nil
				}
				score = &v
			}
			m.phase = phaseEnding
			return m, m.end(score)
		}

	case phaseDone:
		return m, tea.Quit

	default:
		return m, nil
	}

	return m.forwardToInput(msg)
}

// percent validates the input as a number in [0,100], recording an error
// message when it is not.
func (m *Model) percent() (float64, bool) {
	v, err := m.input.FloatValue()
	if err != nil || v < 0 || v > 100 {
		m.inputErr = "Enter a number from 0 to 100"
		return 0, false
	}
	m.inputErr = ""
	return v, true
}

func (m Model) forwardToInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.phase != phaseProgress && m.phase != phaseScore {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() tea.View {
	return tea.NewView(m.Render())
}

// Render returns the screen content.
func (m Model) Render() string {
	var b strings.Builder

	b.WriteString(theme.Title.Render(m.item.DisplayName()) + "\n")
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("%s · %s · %s", m.item.Subject, catalog.KindDisplayName(m.item.Kind), m.item.Difficulty)) + "\n\n")

	if m.err != nil {
		b.WriteString(theme.ErrorText.Render(m.err.Error()) + "\n")
		return b.String()
	}

	switch m.phase {
	case phaseStarting:
		b.WriteString(theme.Hint.Render("Starting session...") + "\n")

	case phaseStudying:
		b.WriteString(theme.Card.Render(m.timerView()) + "\n")
		b.WriteString(theme.Hint.Render("Enter: finish session · q: leave it running") + "\n")

	case phaseProgress:
		b.WriteString(theme.Body.Render("How far did you get? (percent complete)") + "\n")
		b.WriteString(m.input.View() + "\n")
		b.WriteString(m.inputLine())
		b.WriteString(theme.Hint.Render("Enter: next · Esc: back to timer") + "\n")

	case phaseScore:
		b.WriteString(theme.Body.Render("Score for this session (0-100)") + "\n")
		b.WriteString(m.input.View() + "\n")
		b.WriteString(m.inputLine())
		b.WriteString(theme.Hint.Render("Enter: end session · Esc: back") + "\n")

	case phaseEnding:
		b.WriteString(theme.Hint.Render("Saving...") + "\n")

	case phaseDone:
		b.WriteString(render.Session(m.rec, m.item.DisplayName(), 0, m.loc))
		b.WriteString(theme.Hint.Render("Press any key to exit") + "\n")
	}
	return b.String()
}

func (m Model) timerView() string {
	label := "Studying"
	if m.resumed {
		label = "Resumed"
	}
	minutes := int(m.elapsed.Minutes())
	line := fmt.Sprintf("%s  %02d:%02d", label, minutes, int(m.elapsed.Seconds())%60)

	if est := m.item.EstimatedMinutes; est > 0 {
		pct := min(m.elapsed.Minutes()/float64(est)*100, 100)
		bar := components.NewProgressBar(fmt.Sprintf("of %dm", est), pct, true, barWidth)
		return line + "\n" + bar.View()
	}
	return line
}

func (m Model) inputLine() string {
	if m.inputErr == "" {
		return "\n"
	}
	return theme.ErrorText.Render(m.inputErr) + "\n"
}

// Err returns the error that stopped the session, if any.
func (m Model) Err() error {
	return m.err
}

// Detached reports whether the user left with the session still open.
func (m Model) Detached() bool {
	return m.detached
}

// Ended returns the closed session once the user has finished.
func (m Model) Ended() (session.Record, bool) {
	if m.phase != phaseDone {
		return session.Record{}, false
	}
	return m.rec, true
}
