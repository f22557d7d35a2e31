// Package health tracks per-agent availability, latency, rate-limit
// headroom, and recent error counts. State is process-wide: reads are
// concurrent, writes come from explicit record calls or the single
// background refresh cycle.
package health

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Dixter999/agentmux/pkg/models"
)

// DefaultErrorWindow is how far back recent errors count.
const DefaultErrorWindow = 5 * time.Minute

// DefaultRefreshInterval paces the background refresh cycle when the
// caller passes no usable interval.
const DefaultRefreshInterval = 30 * time.Second

// latencySamples bounds the rolling latency window per agent.
const latencySamples = 20

// Probe checks whether an agent's backend is reachable. Probes run from
// the background refresh cycle only.
type Probe func(ctx context.Context, agentID string) error

// Monitor holds live health state for every known agent.
type Monitor struct {
	mu     sync.RWMutex
	agents map[string]*agentState

	window time.Duration
	now    func() time.Time
}

// agentState is the per-agent rolling record.
type agentState struct {
	available    bool
	latencies    []time.Duration
	errorTimes   []time.Time
	rateHeadroom float64
	checkedAt    time.Time
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithErrorWindow overrides the rolling error window.
func WithErrorWindow(window time.Duration) Option {
	return func(m *Monitor) { m.window = window }
}

// WithClock injects the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// NewMonitor creates a Monitor with every listed agent presumed healthy.
func NewMonitor(agentIDs []string, opts ...Option) *Monitor {
	m := &Monitor{
		agents: make(map[string]*agentState, len(agentIDs)),
		window: DefaultErrorWindow,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	for _, id := range agentIDs {
		m.agents[id] = &agentState{available: true, rateHeadroom: 1.0, checkedAt: m.now()}
	}
	return m
}

// RecordSuccess records a completed invocation and its round-trip latency.
func (m *Monitor) RecordSuccess(agentID string, latency time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.state(agentID)
	s.available = true
	s.latencies = append(s.latencies, latency)
	if len(s.latencies) > latencySamples {
		s.latencies = s.latencies[len(s.latencies)-latencySamples:]
	}
	s.checkedAt = m.now()
}

// RecordError records a failed invocation inside the rolling window.
func (m *Monitor) RecordError(agentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.state(agentID)
	now := m.now()
	s.errorTimes = append(s.errorTimes, now)
	s.errorTimes = pruneBefore(s.errorTimes, now.Add(-m.window))
	s.checkedAt = now
}

// RecordRateHeadroom updates the remaining rate-limit fraction (0.0-1.0).
func (m *Monitor) RecordRateHeadroom(agentID string, headroom float64) {
	if headroom < 0 {
		headroom = 0
	}
	if headroom > 1 {
		headroom = 1
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.state(agentID)
	s.rateHeadroom = headroom
	s.checkedAt = m.now()
}

// SetAvailable marks an agent reachable or unreachable.
func (m *Monitor) SetAvailable(agentID string, available bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.state(agentID)
	s.available = available
	s.checkedAt = m.now()
}

// Health returns the current snapshot for one agent. Unknown agents read
// as unavailable.
func (m *Monitor) Health(agentID string) models.AgentHealth {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.agents[agentID]
	if !ok {
		return models.AgentHealth{AgentID: agentID, Available: false}
	}
	return m.snapshotLocked(agentID, s)
}

// Snapshot returns the current health of every known agent.
func (m *Monitor) Snapshot() map[string]models.AgentHealth {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]models.AgentHealth, len(m.agents))
	for id, s := range m.agents {
		out[id] = m.snapshotLocked(id, s)
	}
	return out
}

func (m *Monitor) snapshotLocked(agentID string, s *agentState) models.AgentHealth {
	cutoff := m.now().Add(-m.window)
	recent := 0
	for _, ts := range s.errorTimes {
		if ts.After(cutoff) {
			recent++
		}
	}
	return models.AgentHealth{
		AgentID:      agentID,
		Available:    s.available,
		Latency:      meanLatency(s.latencies),
		RateHeadroom: s.rateHeadroom,
		RecentErrors: recent,
		CheckedAt:    s.checkedAt,
	}
}

// Start runs the background refresh cycle until ctx is cancelled: pruning
// stale error records and, when a probe is configured, re-checking
// availability. This is the monitor's only background writer.
func (m *Monitor) Start(ctx context.Context, interval time.Duration, probe Probe) {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.refresh(ctx, probe)
			}
		}
	}()
}

func (m *Monitor) refresh(ctx context.Context, probe Probe) {
	m.mu.Lock()
	ids := make([]string, 0, len(m.agents))
	cutoff := m.now().Add(-m.window)
	for id, s := range m.agents {
		s.errorTimes = pruneBefore(s.errorTimes, cutoff)
		ids = append(ids, id)
	}
	m.mu.Unlock()

	if probe == nil {
		return
	}
	for _, id := range ids {
		err := probe(ctx, id)
		if err != nil {
			log.Printf("[health] probe failed for %s: %v", id, err)
		}
		m.SetAvailable(id, err == nil)
	}
}

func (m *Monitor) state(agentID string) *agentState {
	s, ok := m.agents[agentID]
	if !ok {
		s = &agentState{available: true, rateHeadroom: 1.0}
		m.agents[agentID] = s
	}
	return s
}

func meanLatency(samples []time.Duration) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range samples {
		total += d
	}
	return total / time.Duration(len(samples))
}

func pruneBefore(times []time.Time, cutoff time.Time) []time.Time {
	kept := times[:0]
	for _, ts := range times {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	return kept
}
