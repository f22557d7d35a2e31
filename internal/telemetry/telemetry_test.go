package telemetry

import (
	"errors"
	"testing"
	"time"

	"github.com/Dixter999/agentmux/internal/fault"
	"github.com/Dixter999/agentmux/internal/recovery"
	"github.com/Dixter999/agentmux/pkg/models"
)

type fakeFaults struct{ stats fault.Stats }

func (f fakeFaults) Snapshot() fault.Stats { return f.stats }

type fakeRecoveries struct{ stats recovery.Stats }

func (f fakeRecoveries) Snapshot() recovery.Stats { return f.stats }

type fakeHealth map[string]models.AgentHealth

func (f fakeHealth) Snapshot() map[string]models.AgentHealth { return f }

func record(agentID string, success bool, quality float64, tokens int64) models.PerformanceRecord {
	return models.PerformanceRecord{
		AgentID:    agentID,
		TaskKind:   models.KindCodeGeneration,
		Success:    success,
		Quality:    quality,
		TokensUsed: tokens,
		Duration:   2 * time.Second,
		RecordedAt: time.Now(),
	}
}

func TestCollectorAggregatesPerAgent(t *testing.T) {
	c := NewCollector(nil, nil, nil)

	c.Append(record("claude-coder", true, 0.9, 1000))
	c.Append(record("claude-coder", true, 0.7, 500))
	c.Append(record("claude-coder", false, 0.2, 100))
	c.Append(record("gpt-coder", true, 0.8, 300))

	sum := c.Snapshot()

	cc, ok := sum.Agents["claude-coder"]
	if !ok {
		t.Fatal("expected claude-coder summary")
	}
	if cc.Invocations != 3 {
		t.Errorf("expected 3 invocations, got %d", cc.Invocations)
	}
	if got, want := cc.SuccessRate, 2.0/3.0; got < want-1e-9 || got > want+1e-9 {
		t.Errorf("success rate = %v, want %v", got, want)
	}
	if got, want := cc.MeanQuality, 1.8/3.0; got < want-1e-9 || got > want+1e-9 {
		t.Errorf("mean quality = %v, want %v", got, want)
	}
	if cc.TokensUsed != 1600 {
		t.Errorf("tokens = %d, want 1600", cc.TokensUsed)
	}

	if sum.Agents["gpt-coder"].Invocations != 1 {
		t.Errorf("expected 1 gpt-coder invocation")
	}
}

func TestCollectorJoinsSources(t *testing.T) {
	faults := fakeFaults{stats: fault.Stats{
		Total:  4,
		ByKind: map[models.FailureKind]int{models.FailureTimeout: 4},
	}}
	recoveries := fakeRecoveries{stats: recovery.Stats{
		Sessions:    2,
		SuccessRate: 0.5,
	}}
	health := fakeHealth{
		"claude-coder": {AgentID: "claude-coder", Available: true, RateHeadroom: 0.9},
	}

	c := NewCollector(faults, recoveries, health)
	c.RecordScores([]models.AgentScore{{AgentID: "claude-coder", Total: 0.82}})

	sum := c.Snapshot()

	if sum.Failures.Total != 4 {
		t.Errorf("failures total = %d, want 4", sum.Failures.Total)
	}
	if sum.Recovery.SuccessRate != 0.5 {
		t.Errorf("recovery success rate = %v, want 0.5", sum.Recovery.SuccessRate)
	}

	cc := sum.Agents["claude-coder"]
	if cc.Health == nil || !cc.Health.Available {
		t.Error("expected joined health snapshot")
	}
	if cc.LastScore == nil || cc.LastScore.Total != 0.82 {
		t.Error("expected joined score breakdown")
	}
}

type errRecorder struct{}

func (errRecorder) Append(models.PerformanceRecord) error { return errors.New("disk full") }

func TestFanoutDeliversToAllTargets(t *testing.T) {
	a := NewCollector(nil, nil, nil)
	b := NewCollector(nil, nil, nil)

	tee := Fanout(a, errRecorder{}, b)

	err := tee.Append(record("claude-coder", true, 0.9, 100))
	if err == nil || err.Error() != "disk full" {
		t.Errorf("expected first error surfaced, got %v", err)
	}

	if a.Snapshot().Agents["claude-coder"].Invocations != 1 {
		t.Error("first target missed the record")
	}
	if b.Snapshot().Agents["claude-coder"].Invocations != 1 {
		t.Error("target after the failing one missed the record")
	}
}
