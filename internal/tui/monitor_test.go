package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Dixter999/agentmux/internal/coordinator"
	"github.com/Dixter999/agentmux/pkg/models"
)

func apply(t *testing.T, m *Monitor, events ...coordinator.Event) *Monitor {
	t.Helper()
	model := tea.Model(m)
	for _, e := range events {
		model, _ = model.Update(eventMsg{event: e})
	}
	return model.(*Monitor)
}

func at(sec int) time.Time {
	return time.Date(2026, 3, 1, 10, 0, sec, 0, time.UTC)
}

func TestMonitorTracksAgentLifecycle(t *testing.T) {
	m := NewMonitor(nil)

	m = apply(t, m,
		coordinator.Event{Kind: coordinator.EventExecutionStarted, ExecutionID: "exec-1", At: at(0)},
		coordinator.Event{Kind: coordinator.EventAgentStarted, AgentID: "claude-coder", At: at(1)},
		coordinator.Event{Kind: coordinator.EventAgentFinished, AgentID: "claude-coder", At: at(4)},
	)

	view := m.View()
	if !strings.Contains(view, "exec-1") {
		t.Errorf("view missing execution id:\n%s", view)
	}
	if !strings.Contains(view, "claude-coder") {
		t.Errorf("view missing agent row:\n%s", view)
	}
	if !strings.Contains(view, "done") {
		t.Errorf("view missing done state:\n%s", view)
	}

	row := m.rows[m.index["claude-coder"]]
	if row.elapsed != 3*time.Second {
		t.Errorf("elapsed = %v, want 3s", row.elapsed)
	}
}

func TestMonitorQuitsOnExecutionFinished(t *testing.T) {
	m := NewMonitor(nil)

	model, cmd := tea.Model(m).Update(eventMsg{event: coordinator.Event{
		Kind:   coordinator.EventExecutionFinished,
		Status: models.StatusCompleted,
		At:     at(9),
	}})

	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if msg := cmd(); msg != tea.Quit() {
		t.Errorf("expected tea.Quit, got %T", msg)
	}

	view := model.(*Monitor).View()
	if !strings.Contains(view, "completed") {
		t.Errorf("view missing terminal status:\n%s", view)
	}
}

func TestMonitorLogScrollbackIsBounded(t *testing.T) {
	m := NewMonitor(nil)

	var events []coordinator.Event
	for i := 0; i < maxLogLines+5; i++ {
		events = append(events, coordinator.Event{
			Kind:    coordinator.EventRetry,
			AgentID: "claude-coder",
			Message: "timeout",
			At:      at(i),
		})
	}
	m = apply(t, m, events...)

	if len(m.logs) != maxLogLines {
		t.Errorf("log lines = %d, want %d", len(m.logs), maxLogLines)
	}
}

func TestMonitorDrainsEventChannel(t *testing.T) {
	events := make(chan coordinator.Event, 2)
	events <- coordinator.Event{Kind: coordinator.EventExecutionStarted, ExecutionID: "exec-2", At: at(0)}
	close(events)

	m := NewMonitor(events)

	msg := m.waitForEvent()()
	em, ok := msg.(eventMsg)
	if !ok {
		t.Fatalf("expected eventMsg, got %T", msg)
	}
	if em.event.ExecutionID != "exec-2" {
		t.Errorf("unexpected event %+v", em.event)
	}

	if _, ok := m.waitForEvent()().(eventsClosedMsg); !ok {
		t.Error("expected eventsClosedMsg after close")
	}
}
