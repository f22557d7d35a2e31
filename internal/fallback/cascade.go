// Package fallback enumerates prioritized remediation options for classified
// execution failures and tracks which remediations actually work.
package fallback

import (
	"sort"
	"sync"
	"time"

	"github.com/Dixter999/agentmux/pkg/models"
)

// SubstituteSource resolves the static substitute list for an agent. The
// capability registry satisfies it.
type SubstituteSource interface {
	SubstituteIDs(agentID string) []string
}

// strategyAlternatives is the static downgrade/sidestep table consulted by
// change-strategy options.
var strategyAlternatives = map[models.Strategy]models.Strategy{
	models.StrategySingle:        models.StrategySequential,
	models.StrategySequential:    models.StrategySingle,
	models.StrategyParallel:      models.StrategySequential,
	models.StrategyCollaborative: models.StrategySequential,
}

// backoffBase is the per-kind starting delay for retry options. Rate limits
// wait longest because the window has to clear on the provider side.
var backoffBase = map[models.FailureKind]time.Duration{
	models.FailureTimeout:     2 * time.Second,
	models.FailureRateLimit:   5 * time.Second,
	models.FailureUnavailable: 3 * time.Second,
}

// statKey pairs a failure kind with the remediation applied to it.
type statKey struct {
	failure models.FailureKind
	option  models.FallbackKind
}

type stat struct {
	attempts  int
	successes int
}

// Cascade generates remediation options for failures and keeps running
// success statistics per (failure kind, option kind) pair. Option
// generation is pure; only attempt recording mutates state.
type Cascade struct {
	mu          sync.RWMutex
	substitutes SubstituteSource
	stats       map[statKey]*stat
}

// NewCascade builds a Cascade backed by the given substitute source.
func NewCascade(substitutes SubstituteSource) *Cascade {
	return &Cascade{
		substitutes: substitutes,
		stats:       make(map[statKey]*stat),
	}
}

// Options enumerates remediations for the failure in ascending priority
// order. iteration is the execution's current iteration count, used by the
// simplify rule. The list carries at most one abort option, always last.
func (c *Cascade) Options(event models.FailureEvent, plan *models.ExecutionPlan, iteration int) []models.FallbackOption {
	var opts []models.FallbackOption

	if event.Kind.Transient() && !event.RetriesExhausted() {
		opts = append(opts, models.FallbackOption{
			Kind:        models.FallbackRetry,
			Priority:    1,
			TargetAgent: event.AgentID,
			ConfigDelta: retryDelta(event.Kind),
			Backoff:     retryBackoff(event.Kind, event.RetryCount),
			Reason:      "transient fault, worth re-running the same agent",
		})
	}

	if alt := c.alternateFor(event.AgentID, plan); alt != "" {
		opts = append(opts, models.FallbackOption{
			Kind:        models.FallbackSubstitute,
			Priority:    2,
			TargetAgent: alt,
			Reason:      "declared substitute available for the failing agent",
		})
	}

	if event.Kind == models.FailureLowQuality || event.Kind == models.FailureIncomplete ||
		event.Kind == models.FailureFormat || event.Kind == models.FailureParsing {
		opts = append(opts, models.FallbackOption{
			Kind:        models.FallbackAdjust,
			Priority:    3,
			TargetAgent: event.AgentID,
			ConfigDelta: adjustDelta(event.Kind),
			Reason:      "response quality fault may yield to parameter changes",
		})
	}

	if event.Kind == models.FailureContextIncompatible || (plan != nil && iteration > plan.MaxIterations/2) {
		opts = append(opts, models.FallbackOption{
			Kind:        models.FallbackSimplify,
			Priority:    4,
			TargetAgent: event.AgentID,
			Reason:      "a reduced request may fit where the full one did not",
		})
	}

	if event.Severity == models.SeverityMedium || event.Severity == models.SeverityHigh {
		if targets := c.escalationTargets(event.AgentID, plan); len(targets) >= 2 {
			opts = append(opts, models.FallbackOption{
				Kind:         models.FallbackEscalate,
				Priority:     5,
				TargetAgents: targets,
				Reason:       "spreading the work across agents reduces single-agent exposure",
			})
		}
	}

	if plan != nil {
		if alt, ok := strategyAlternatives[plan.Strategy]; ok {
			opts = append(opts, models.FallbackOption{
				Kind:           models.FallbackChangeStrategy,
				Priority:       6,
				TargetStrategy: alt,
				Reason:         "the current strategy keeps hitting the same fault",
			})
		}
	}

	if event.Severity == models.SeverityCritical || event.RetriesExhausted() {
		opts = append(opts, models.FallbackOption{
			Kind:     models.FallbackAbort,
			Priority: 7,
			Reason:   "no safe remediation remains",
		})
	}

	sort.SliceStable(opts, func(i, j int) bool { return opts[i].Priority < opts[j].Priority })
	return opts
}

// RecordAttempt folds one executed option into the running statistics.
func (c *Cascade) RecordAttempt(attempt models.FallbackAttempt) {
	key := statKey{failure: attempt.FailureKind, option: attempt.Option.Kind}

	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.stats[key]
	if !ok {
		s = &stat{}
		c.stats[key] = s
	}
	s.attempts++
	if attempt.Success {
		s.successes++
	}
}

// SuccessRate reports the observed success rate of an option kind against a
// failure kind, and false when the pair has never been attempted.
func (c *Cascade) SuccessRate(failure models.FailureKind, option models.FallbackKind) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.stats[statKey{failure: failure, option: option}]
	if !ok || s.attempts == 0 {
		return 0, false
	}
	return float64(s.successes) / float64(s.attempts), true
}

// alternateFor picks the first substitute of the failing agent not already
// in the plan, falling back to the plan's own fallback chain.
func (c *Cascade) alternateFor(agentID string, plan *models.ExecutionPlan) string {
	planned := make(map[string]struct{})
	if plan != nil {
		for _, id := range plan.Agents() {
			planned[id] = struct{}{}
		}
	}
	if c.substitutes != nil {
		for _, id := range c.substitutes.SubstituteIDs(agentID) {
			if _, taken := planned[id]; !taken {
				return id
			}
		}
	}
	if plan != nil {
		for _, id := range plan.FallbackChain {
			if _, taken := planned[id]; !taken && id != agentID {
				return id
			}
		}
	}
	return ""
}

// escalationTargets assembles up to three distinct agents for an escalate
// option, drawing from substitutes first and the fallback chain second.
func (c *Cascade) escalationTargets(agentID string, plan *models.ExecutionPlan) []string {
	seen := map[string]struct{}{agentID: {}}
	var targets []string
	add := func(id string) {
		if _, ok := seen[id]; ok || len(targets) >= 3 {
			return
		}
		seen[id] = struct{}{}
		targets = append(targets, id)
	}
	if c.substitutes != nil {
		for _, id := range c.substitutes.SubstituteIDs(agentID) {
			add(id)
		}
	}
	if plan != nil {
		for _, id := range plan.FallbackChain {
			add(id)
		}
	}
	return targets
}

// retryBackoff doubles the kind-specific base per spent retry.
func retryBackoff(kind models.FailureKind, retryCount int) time.Duration {
	base, ok := backoffBase[kind]
	if !ok {
		base = 2 * time.Second
	}
	return base << uint(retryCount)
}

func retryDelta(kind models.FailureKind) map[string]float64 {
	if kind == models.FailureTimeout {
		return map[string]float64{"time_budget_seconds": 60}
	}
	return nil
}

func adjustDelta(kind models.FailureKind) map[string]float64 {
	switch kind {
	case models.FailureLowQuality:
		return map[string]float64{"temperature": -0.2}
	case models.FailureIncomplete:
		return map[string]float64{"max_tokens": 4096}
	case models.FailureFormat, models.FailureParsing:
		return map[string]float64{"temperature": -0.3}
	default:
		return nil
	}
}
