package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestMonitor_InitialStateHealthy(t *testing.T) {
	m := NewMonitor([]string{"claude-coder", "gpt-coder"})

	h := m.Health("claude-coder")
	if !h.Available {
		t.Error("new agents should start available")
	}
	if h.RateHeadroom != 1.0 {
		t.Errorf("RateHeadroom = %v, want 1.0", h.RateHeadroom)
	}
	if h.RecentErrors != 0 {
		t.Errorf("RecentErrors = %d, want 0", h.RecentErrors)
	}
}

func TestMonitor_UnknownAgentUnavailable(t *testing.T) {
	m := NewMonitor(nil)
	if m.Health("ghost").Available {
		t.Error("unknown agent should read as unavailable")
	}
}

func TestMonitor_MeanLatency(t *testing.T) {
	m := NewMonitor([]string{"a"})
	m.RecordSuccess("a", 100*time.Millisecond)
	m.RecordSuccess("a", 300*time.Millisecond)

	if got := m.Health("a").Latency; got != 200*time.Millisecond {
		t.Errorf("Latency = %v, want 200ms", got)
	}
}

func TestMonitor_ErrorWindowPruning(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	m := NewMonitor([]string{"a"}, WithClock(clock.Now), WithErrorWindow(5*time.Minute))

	m.RecordError("a")
	clock.Advance(2 * time.Minute)
	m.RecordError("a")

	if got := m.Health("a").RecentErrors; got != 2 {
		t.Fatalf("RecentErrors = %d, want 2 inside the window", got)
	}

	// Advance past the window: the first error drops, then both.
	clock.Advance(3*time.Minute + time.Second)
	if got := m.Health("a").RecentErrors; got != 1 {
		t.Errorf("RecentErrors = %d, want 1 after the first expires", got)
	}
	clock.Advance(2 * time.Minute)
	if got := m.Health("a").RecentErrors; got != 0 {
		t.Errorf("RecentErrors = %d, want 0 after the window", got)
	}
}

func TestMonitor_RateHeadroomClamped(t *testing.T) {
	m := NewMonitor([]string{"a"})

	m.RecordRateHeadroom("a", 1.5)
	if got := m.Health("a").RateHeadroom; got != 1.0 {
		t.Errorf("RateHeadroom = %v, want clamped to 1.0", got)
	}
	m.RecordRateHeadroom("a", -0.2)
	if got := m.Health("a").RateHeadroom; got != 0 {
		t.Errorf("RateHeadroom = %v, want clamped to 0", got)
	}
}

func TestMonitor_SetAvailable(t *testing.T) {
	m := NewMonitor([]string{"a"})
	m.SetAvailable("a", false)
	if m.Health("a").Available {
		t.Error("agent should be unavailable after SetAvailable(false)")
	}
	m.SetAvailable("a", true)
	if !m.Health("a").Available {
		t.Error("agent should be available again")
	}
}

func TestMonitor_RefreshPrunesAndChecksAvailability(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	m := NewMonitor([]string{"a", "b"}, WithClock(clock.Now), WithErrorWindow(5*time.Minute))

	m.RecordError("a")
	clock.Advance(6 * time.Minute)

	check := func(_ context.Context, agentID string) error {
		if agentID == "b" {
			return errors.New("unreachable")
		}
		return nil
	}
	m.refresh(context.Background(), check)

	if got := m.Health("a").RecentErrors; got != 0 {
		t.Errorf("RecentErrors = %d, want 0 after the refresh prunes", got)
	}
	if !m.Health("a").Available {
		t.Error("a passed its check and should stay available")
	}
	if m.Health("b").Available {
		t.Error("b failed its check and should be unavailable")
	}
}

func TestMonitor_StartRunsRefreshCycle(t *testing.T) {
	m := NewMonitor([]string{"a"})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	failing := func(context.Context, string) error { return errors.New("down") }
	m.Start(ctx, time.Millisecond, failing)

	deadline := time.After(time.Second)
	for m.Health("a").Available {
		select {
		case <-deadline:
			t.Fatal("refresh cycle never marked the agent unavailable")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestMonitor_Snapshot(t *testing.T) {
	m := NewMonitor([]string{"a", "b"})
	m.RecordError("b")

	snap := m.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("snapshot has %d agents, want 2", len(snap))
	}
	if snap["b"].RecentErrors != 1 {
		t.Errorf("snapshot for b has %d errors, want 1", snap["b"].RecentErrors)
	}
}
