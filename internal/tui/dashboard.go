// Package tui renders a live dashboard for a benchmark run: per-worker
// throughput, wait and hold times, and the lock's scheduler state,
// refreshed while the workers hammer the store.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/fairlock"
	"github.com/Iron-Ham/fairlock/internal/bench"
	"github.com/Iron-Ham/fairlock/internal/scenario"
	"github.com/Iron-Ham/fairlock/internal/util"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	labelStyle  = lipgloss.NewStyle().Faint(true)
	stateStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	parkedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	helpStyle   = lipgloss.NewStyle().Faint(true)
)

// tickMsg drives the periodic refresh
type tickMsg time.Time

// DoneMsg tells the dashboard the run has drained. The driver sends it
// through Program.Send once Runner.Run returns.
type DoneMsg struct{}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model is the dashboard state. Construct with New.
type Model struct {
	runner   *bench.Runner
	compiled *scenario.Compiled
	locker   string
	engine   string
	duration time.Duration
	cancel   context.CancelFunc

	table table.Model
	start time.Time
	width int
	done  bool
}

// New builds a dashboard over a runner that has not started yet. The
// cancel function is invoked when the user quits early.
func New(r *bench.Runner, c *scenario.Compiled, locker, engine string, duration time.Duration, cancel context.CancelFunc) Model {
	columns := []table.Column{
		{Title: "Worker", Width: 6},
		{Title: "Group", Width: 12},
		{Title: "Weight", Width: 6},
		{Title: "Ops", Width: 10},
		{Title: "Wait(µs)", Width: 9},
		{Title: "Hold(µs)", Width: 9},
		{Title: "Viol", Width: 6},
		{Title: "Share", Width: 6},
	}

	height := len(c.Workers)
	if height > 16 {
		height = 16
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows([]table.Row{}),
		table.WithFocused(false),
		table.WithHeight(height),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		Bold(true)
	s.Selected = lipgloss.NewStyle()
	t.SetStyles(s)

	return Model{
		runner:   r,
		compiled: c,
		locker:   locker,
		engine:   engine,
		duration: duration,
		cancel:   cancel,
		table:    t,
		start:    time.Now(),
	}
}

// Init schedules the first refresh.
func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles key presses, refresh ticks and run completion.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			// Stop the workers; the driver sends DoneMsg once they drain
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tickMsg:
		m.refresh()
		return m, tick()

	case DoneMsg:
		m.done = true
		m.refresh()
		return m, tea.Quit
	}
	return m, nil
}

// refresh rebuilds the table rows from the live counters.
func (m *Model) refresh() {
	counters := m.runner.Counters()

	var total uint64
	for _, c := range counters {
		total += c.Ops()
	}

	rows := make([]table.Row, len(counters))
	for i, c := range counters {
		ops := c.Ops()
		acquires := c.Acquires.Load()
		var waitUS, holdUS float64
		if acquires > 0 {
			waitUS = float64(c.WaitTicks.Load()) / float64(acquires) / 1e3
			holdUS = float64(c.HoldTicks.Load()) / float64(acquires) / 1e3
		}
		var share float64
		if total > 0 {
			share = float64(ops) / float64(total) * 100
		}

		p := m.compiled.Workers[i]
		rows[i] = table.Row{
			fmt.Sprintf("%d", i),
			p.Group,
			fmt.Sprintf("%d", p.Weight),
			fmt.Sprintf("%d", ops),
			fmt.Sprintf("%.1f", waitUS),
			fmt.Sprintf("%.1f", holdUS),
			fmt.Sprintf("%d", c.Violations.Load()),
			fmt.Sprintf("%.1f%%", share),
		}
	}
	m.table.SetRows(rows)
}

// View renders the dashboard.
func (m Model) View() string {
	var b strings.Builder

	title := titleStyle.Render(fmt.Sprintf("fairbench - %s", m.compiled.Name))
	if m.width > 0 {
		title = util.TruncateANSI(title, m.width)
	}
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %s   %s %s\n",
		labelStyle.Render("locker:"), m.locker,
		labelStyle.Render("engine:"), m.engine))

	elapsed := time.Since(m.start).Truncate(100 * time.Millisecond)
	remaining := m.duration - elapsed
	if remaining < 0 || m.done {
		remaining = 0
	}
	b.WriteString(fmt.Sprintf("%s %s   %s %s   %s %d\n",
		labelStyle.Render("elapsed:"), elapsed,
		labelStyle.Render("remaining:"), remaining.Truncate(100*time.Millisecond),
		labelStyle.Render("keys:"), m.runner.Keys()))

	b.WriteString(m.lockLine())
	b.WriteString("\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")
	if m.done {
		b.WriteString(helpStyle.Render("run complete"))
	} else {
		b.WriteString(helpStyle.Render("q: stop and report"))
	}
	b.WriteString("\n")
	return b.String()
}

// lockLine summarizes the scheduler state for lockers that expose one.
func (m Model) lockLine() string {
	snap, ok := m.runner.Snapshot()
	if !ok {
		return ""
	}

	state := stateStyle.Render(snap.State.String())
	if snap.State == fairlock.StateContended {
		state = parkedStyle.Render(snap.State.String())
	}

	holder := "-"
	if snap.Holder >= 0 {
		if w := snap.Holder - len(m.compiled.Nodes); w >= 0 && w < len(m.compiled.Workers) {
			holder = fmt.Sprintf("worker %d", w)
		} else {
			holder = fmt.Sprintf("node %d", snap.Holder)
		}
	}

	return fmt.Sprintf("%s %s   %s %s   %s %d\n",
		labelStyle.Render("lock:"), state,
		labelStyle.Render("holder:"), holder,
		labelStyle.Render("waiters:"), snap.Waiting)
}
