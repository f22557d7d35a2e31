// Package tui provides the live execution monitor for agentmux.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Dixter999/agentmux/internal/coordinator"
	"github.com/Dixter999/agentmux/pkg/models"
)

// maxLogLines bounds the scrollback shown under the agent table.
const maxLogLines = 8

// agentState is the monitor's view of one agent's progress.
type agentState string

const (
	stateRunning    agentState = "running"
	stateRetrying   agentState = "retrying"
	stateRecovering agentState = "recovering"
	stateDone       agentState = "done"
	stateFailed     agentState = "failed"
)

// eventMsg wraps one coordinator event for the update loop.
type eventMsg struct {
	event coordinator.Event
}

// eventsClosedMsg signals that the coordinator closed the event channel.
type eventsClosedMsg struct{}

// agentRow is one line of the agent table.
type agentRow struct {
	id        string
	state     agentState
	detail    string
	startedAt time.Time
	elapsed   time.Duration
}

// Monitor is the bubbletea model rendering live execution progress.
type Monitor struct {
	events <-chan coordinator.Event

	spin        spinner.Model
	executionID string
	status      models.ExecutionStatus
	rows        []agentRow
	index       map[string]int
	logs        []string
	finished    bool
	quitting    bool
	width       int

	// Styles
	titleStyle  lipgloss.Style
	doneStyle   lipgloss.Style
	failStyle   lipgloss.Style
	activeStyle lipgloss.Style
	warnStyle   lipgloss.Style
	logStyle    lipgloss.Style
	hintStyle   lipgloss.Style
}

// NewMonitor creates a monitor over the given event stream.
func NewMonitor(events <-chan coordinator.Event) *Monitor {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Monitor{
		events: events,
		spin:   sp,
		index:  make(map[string]int),

		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")),
		doneStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("28")),
		failStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("160")),
		activeStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")),
		warnStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("178")),
		logStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),
		hintStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
	}
}

// Init implements tea.Model.
func (m *Monitor) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.waitForEvent())
}

// waitForEvent blocks on the next coordinator event.
func (m *Monitor) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		e, ok := <-m.events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg{event: e}
	}
}

// Update implements tea.Model.
func (m *Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case eventMsg:
		m.apply(msg.event)
		if m.finished {
			return m, tea.Quit
		}
		return m, m.waitForEvent()

	case eventsClosedMsg:
		m.finished = true
		return m, tea.Quit
	}

	return m, nil
}

// apply folds one coordinator event into the model.
func (m *Monitor) apply(e coordinator.Event) {
	switch e.Kind {
	case coordinator.EventExecutionStarted:
		m.executionID = e.ExecutionID
		m.status = models.StatusInProgress
		m.log(e.At, "execution started")

	case coordinator.EventAgentStarted:
		m.setRow(e.AgentID, stateRunning, "", e.At)

	case coordinator.EventAgentFinished:
		m.setRow(e.AgentID, stateDone, e.Message, e.At)

	case coordinator.EventRetry:
		m.setRow(e.AgentID, stateRetrying, e.Message, e.At)
		m.log(e.At, fmt.Sprintf("%s: retrying (%s)", e.AgentID, e.Message))

	case coordinator.EventFault:
		m.setRow(e.AgentID, stateFailed, e.Message, e.At)
		m.log(e.At, fmt.Sprintf("%s: fault %s", e.AgentID, e.Message))

	case coordinator.EventRecovery:
		m.setRow(e.AgentID, stateRecovering, e.Message, e.At)
		m.log(e.At, fmt.Sprintf("%s: recovery planned", e.AgentID))

	case coordinator.EventExecutionFinished:
		m.status = e.Status
		m.finished = true
		m.log(e.At, fmt.Sprintf("execution finished: %s", e.Status))
	}
}

// setRow creates or updates the row for agentID.
func (m *Monitor) setRow(agentID string, state agentState, detail string, at time.Time) {
	i, ok := m.index[agentID]
	if !ok {
		m.index[agentID] = len(m.rows)
		m.rows = append(m.rows, agentRow{id: agentID, state: state, detail: detail, startedAt: at})
		return
	}
	row := &m.rows[i]
	if row.startedAt.IsZero() {
		row.startedAt = at
	}
	if state == stateDone || state == stateFailed {
		row.elapsed = at.Sub(row.startedAt)
	}
	row.state = state
	row.detail = detail
}

// log appends one scrollback line, dropping the oldest past the bound.
func (m *Monitor) log(at time.Time, line string) {
	entry := fmt.Sprintf("%s %s", at.Format("15:04:05"), line)
	m.logs = append(m.logs, entry)
	if len(m.logs) > maxLogLines {
		m.logs = m.logs[len(m.logs)-maxLogLines:]
	}
}

// View implements tea.Model.
func (m *Monitor) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	title := "agentmux"
	if m.executionID != "" {
		title = fmt.Sprintf("agentmux · %s", m.executionID)
	}
	b.WriteString(m.titleStyle.Render(title))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(m.hintStyle.Render("waiting for agents"))
		b.WriteString("\n")
	}

	for _, row := range m.rows {
		b.WriteString(m.renderRow(row))
		b.WriteString("\n")
	}

	if len(m.logs) > 0 {
		b.WriteString("\n")
		for _, line := range m.logs {
			b.WriteString(m.logStyle.Render(line))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if m.finished {
		b.WriteString(m.statusLine())
	} else {
		b.WriteString(m.hintStyle.Render("q: quit"))
	}
	b.WriteString("\n")

	return b.String()
}

// renderRow renders one agent table line.
func (m *Monitor) renderRow(row agentRow) string {
	var mark, label string
	switch row.state {
	case stateDone:
		mark = m.doneStyle.Render("✓")
		label = string(stateDone)
	case stateFailed:
		mark = m.failStyle.Render("✗")
		label = string(stateFailed)
	case stateRetrying:
		mark = m.warnStyle.Render(m.spin.View())
		label = string(stateRetrying)
	case stateRecovering:
		mark = m.warnStyle.Render(m.spin.View())
		label = string(stateRecovering)
	default:
		mark = m.activeStyle.Render(m.spin.View())
		label = string(stateRunning)
	}

	line := fmt.Sprintf("%s %-20s %-10s", mark, row.id, label)
	if row.elapsed > 0 {
		line += fmt.Sprintf(" %s", row.elapsed.Round(100*time.Millisecond))
	}
	if row.detail != "" {
		line += " " + m.logStyle.Render(row.detail)
	}
	return line
}

// statusLine renders the terminal status once the execution finishes.
func (m *Monitor) statusLine() string {
	switch m.status {
	case models.StatusCompleted:
		return m.doneStyle.Render(fmt.Sprintf("✓ %s", m.status))
	case models.StatusPartialSuccess:
		return m.warnStyle.Render(fmt.Sprintf("⚠ %s", m.status))
	default:
		return m.failStyle.Render(fmt.Sprintf("✗ %s", m.status))
	}
}

// Run attaches a monitor to the event stream and blocks until the
// execution finishes or the user quits.
func Run(events <-chan coordinator.Event) error {
	p := tea.NewProgram(NewMonitor(events))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running monitor: %w", err)
	}
	return nil
}
