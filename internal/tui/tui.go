// Package tui provides a Bubble Tea dashboard for a running autocommit monitor.
package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/autocommit/internal/state"
)

// ── Styles ────────────

var (
	// Title bar at the very top
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	// Section heading
	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	// Key=value label
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))

	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)
)

// refreshInterval is how often the dashboard re-reads the run file.
const refreshInterval = time.Second

type tickMsg time.Time

// Model is the root Bubble Tea model for the dashboard.
type Model struct {
	store     state.Store
	threshold time.Duration // flush threshold, for the countdown
	run       *state.Run
	loadErr   error
	spin      spinner.Model
	width     int
}

// New creates a dashboard model reading from the given store.
func New(store state.Store, threshold time.Duration) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
	m := Model{store: store, threshold: threshold, spin: sp}
	m.reload()
	return m
}

func (m *Model) reload() {
	m.run, m.loadErr = m.store.Load()
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// ── Bubble Tea interface ───────────────

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, tick())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.reload()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tickMsg:
		m.reload()
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	title := titleStyle.Width(m.width).Render("  autocommit monitor")

	var body string
	switch {
	case m.loadErr != nil && errors.Is(m.loadErr, state.ErrNoRun):
		body = "\n" + dimStyle.Render("  no monitor running") + "\n"
	case m.loadErr != nil:
		body = "\n" + errStyle.Render("  "+m.loadErr.Error()) + "\n"
	default:
		body = m.renderRun()
	}

	hint := "  q quit  r refresh"
	statusBar := statusBarStyle.Width(m.width).Render(hint)

	return lipgloss.JoinVertical(lipgloss.Left, title, body, statusBar)
}

func heading(s string) string {
	return "\n" + sectionHeader.Render("  "+s) + "\n\n"
}

func (m Model) renderRun() string {
	r := m.run
	var sb strings.Builder

	row := func(label, value string) {
		sb.WriteString(labelStyle.Render(fmt.Sprintf("  %-14s", label)) + "  " + value + "\n")
	}

	sb.WriteString(heading("Monitor"))
	row("Repo:", r.RepoPath)
	row("Branch:", r.Branch)
	row("PID:", fmt.Sprintf("%d", r.PID))
	row("Started:", timeStyle.Render(r.StartTime.Format("2006-01-02 15:04:05 MST")))
	row("Last cycle:", timeStyle.Render(r.LastCycle.Format("15:04:05")))

	sb.WriteString(heading("Pending changes"))
	if r.PendingSince == nil {
		row("State:", okStyle.Render("clean"))
	} else {
		quiet := time.Since(*r.PendingSince).Round(time.Second)
		row("State:", m.spin.View()+" settling")
		row("Quiet for:", quiet.String())
		if m.threshold > 0 {
			remaining := m.threshold - quiet
			if remaining < 0 {
				remaining = 0
			}
			row("Flush in:", warnStyle.Render("≤ "+remaining.String()))
		}
	}

	sb.WriteString(heading("Commits"))
	row("Total:", fmt.Sprintf("%d", r.CommitCount))
	if r.LastCommitTime != nil {
		row("Last:", r.LastCommitHash+"  "+timeStyle.Render(r.LastCommitTime.Format("15:04:05")))
	}
	if r.PushPending {
		row("Push:", warnStyle.Render("pending retry"))
	}
	if r.LastError != "" {
		sb.WriteString(heading("Last error"))
		sb.WriteString(errStyle.Render("  "+r.LastError) + "\n")
	}
	return sb.String()
}

// Run starts the dashboard against the given store.
func Run(store state.Store, threshold time.Duration) error {
	p := tea.NewProgram(New(store, threshold), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
