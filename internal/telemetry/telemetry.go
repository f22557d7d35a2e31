// Package telemetry aggregates counters from the fault detector, the
// recovery system, the health monitor, and the performance stream into a
// single snapshot for reporting.
package telemetry

import (
	"sync"
	"time"

	"github.com/Dixter999/agentmux/internal/fault"
	"github.com/Dixter999/agentmux/internal/recovery"
	"github.com/Dixter999/agentmux/pkg/models"
)

// FaultSource exposes aggregate failure statistics.
type FaultSource interface {
	Snapshot() fault.Stats
}

// RecoverySource exposes aggregate recovery statistics.
type RecoverySource interface {
	Snapshot() recovery.Stats
}

// HealthSource exposes live health for all registered agents.
type HealthSource interface {
	Snapshot() map[string]models.AgentHealth
}

// AgentSummary is the accumulated view of one agent.
type AgentSummary struct {
	AgentID     string              `json:"agent_id"`
	Invocations int                 `json:"invocations"`
	SuccessRate float64             `json:"success_rate"`
	MeanQuality float64             `json:"mean_quality"`
	TokensUsed  int64               `json:"tokens_used"`
	LastScore   *models.AgentScore  `json:"last_score,omitempty"`
	Health      *models.AgentHealth `json:"health,omitempty"`
}

// Summary is one point-in-time aggregation across all sources.
type Summary struct {
	GeneratedAt time.Time               `json:"generated_at"`
	Failures    fault.Stats             `json:"failures"`
	Recovery    recovery.Stats          `json:"recovery"`
	Agents      map[string]AgentSummary `json:"agents"`
}

// Collector accumulates per-agent counters and joins them with the fault,
// recovery, and health snapshots on demand.
type Collector struct {
	mu sync.Mutex

	faults     FaultSource
	recoveries RecoverySource
	health     HealthSource
	now        func() time.Time

	invocations map[string]int
	successes   map[string]int
	qualitySum  map[string]float64
	tokens      map[string]int64
	lastScores  map[string]models.AgentScore
}

// Option configures a Collector.
type Option func(*Collector)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) { c.now = now }
}

// NewCollector creates a collector over the given sources. Any source may
// be nil; its section of the summary stays empty.
func NewCollector(faults FaultSource, recoveries RecoverySource, health HealthSource, opts ...Option) *Collector {
	c := &Collector{
		faults:      faults,
		recoveries:  recoveries,
		health:      health,
		now:         time.Now,
		invocations: make(map[string]int),
		successes:   make(map[string]int),
		qualitySum:  make(map[string]float64),
		tokens:      make(map[string]int64),
		lastScores:  make(map[string]models.AgentScore),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Append folds one performance record into the per-agent counters. It
// satisfies the coordinator's PerformanceRecorder so the collector can sit
// alongside the history store in a fan-out.
func (c *Collector) Append(rec models.PerformanceRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invocations[rec.AgentID]++
	if rec.Success {
		c.successes[rec.AgentID]++
	}
	c.qualitySum[rec.AgentID] += rec.Quality
	c.tokens[rec.AgentID] += rec.TokensUsed
	return nil
}

// RecordScores remembers the latest score breakdown per agent.
func (c *Collector) RecordScores(scores []models.AgentScore) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, sc := range scores {
		c.lastScores[sc.AgentID] = sc
	}
}

// Snapshot joins the accumulated counters with the live sources.
func (c *Collector) Snapshot() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	sum := Summary{
		GeneratedAt: c.now(),
		Agents:      make(map[string]AgentSummary),
	}
	if c.faults != nil {
		sum.Failures = c.faults.Snapshot()
	}
	if c.recoveries != nil {
		sum.Recovery = c.recoveries.Snapshot()
	}

	var healthByAgent map[string]models.AgentHealth
	if c.health != nil {
		healthByAgent = c.health.Snapshot()
	}

	ids := make(map[string]struct{})
	for id := range c.invocations {
		ids[id] = struct{}{}
	}
	for id := range c.lastScores {
		ids[id] = struct{}{}
	}
	for id := range healthByAgent {
		ids[id] = struct{}{}
	}

	for id := range ids {
		as := AgentSummary{
			AgentID:     id,
			Invocations: c.invocations[id],
			TokensUsed:  c.tokens[id],
		}
		if n := c.invocations[id]; n > 0 {
			as.SuccessRate = float64(c.successes[id]) / float64(n)
			as.MeanQuality = c.qualitySum[id] / float64(n)
		}
		if sc, ok := c.lastScores[id]; ok {
			scCopy := sc
			as.LastScore = &scCopy
		}
		if h, ok := healthByAgent[id]; ok {
			hCopy := h
			as.Health = &hCopy
		}
		sum.Agents[id] = as
	}

	return sum
}

// Fanout returns a recorder that appends each record to every target in
// order and reports the first error.
func Fanout(targets ...interface {
	Append(rec models.PerformanceRecord) error
}) AppendFunc {
	return func(rec models.PerformanceRecord) error {
		var first error
		for _, t := range targets {
			if err := t.Append(rec); err != nil && first == nil {
				first = err
			}
		}
		return first
	}
}

// AppendFunc adapts a function to the PerformanceRecorder shape.
type AppendFunc func(rec models.PerformanceRecord) error

// Append calls the function.
func (f AppendFunc) Append(rec models.PerformanceRecord) error { return f(rec) }
