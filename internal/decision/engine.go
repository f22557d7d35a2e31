package decision

import (
	"fmt"
	"time"

	"github.com/Dixter999/agentmux/pkg/models"
)

// Catalog supplies agent profiles and the static similarity relation; the
// registry satisfies it.
type Catalog interface {
	Get(agentID string) *models.AgentProfile
	Similar(a, b string) bool
}

// Thresholds are the tunable cut-offs of strategy selection.
type Thresholds struct {
	// StrongTop is the minimum top score for a confident single-agent plan.
	StrongTop float64
	// ClearGap is the minimum lead over the runner-up for single-agent.
	ClearGap float64
	// Competent is the minimum score to participate in a multi-agent plan.
	Competent float64
	// Excellent is the minimum score for collaborative participation.
	Excellent float64
}

// DefaultThresholds returns the default strategy cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		StrongTop: 0.70,
		ClearGap:  0.15,
		Competent: 0.55,
		Excellent: 0.75,
	}
}

// Engine builds execution plans. It holds no mutable state: Decide is a
// pure function of the profile and scores.
type Engine struct {
	catalog    Catalog
	thresholds Thresholds

	// maxFallbacks bounds the fallback chain length.
	maxFallbacks int
}

// Option configures an Engine.
type Option func(*Engine)

// WithThresholds overrides the strategy cut-offs.
func WithThresholds(t Thresholds) Option {
	return func(e *Engine) { e.thresholds = t }
}

// WithMaxFallbacks overrides the fallback chain bound.
func WithMaxFallbacks(n int) Option {
	return func(e *Engine) { e.maxFallbacks = n }
}

// NewEngine creates a decision engine over the given catalog.
func NewEngine(catalog Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog:      catalog,
		thresholds:   DefaultThresholds(),
		maxFallbacks: 3,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Decide maps the profile and ranked scores into an ExecutionPlan. Scores
// must already be sorted descending by total. An empty score list is the
// only error case.
func (e *Engine) Decide(profile models.TaskProfile, scores []models.AgentScore) (*models.ExecutionPlan, error) {
	if len(scores) == 0 {
		return nil, fmt.Errorf("no candidate agents to plan with")
	}

	strategy := e.selectStrategy(profile, scores)
	primary, secondaries := e.selectAgents(strategy, profile, scores)

	plan := &models.ExecutionPlan{
		Strategy:    strategy,
		Primary:     primary,
		Secondaries: secondaries,
		Configs:     make(map[string]models.AgentConfig, 1+len(secondaries)),
		CreatedAt:   time.Now(),
	}

	for _, agentID := range plan.Agents() {
		base := models.AgentConfig{}
		if p := e.catalog.Get(agentID); p != nil {
			base = p.BaseConfig
		}
		plan.Configs[agentID] = composeConfig(base, profile)
	}

	plan.FallbackChain = e.fallbackChain(plan.Agents(), scores)
	plan.MaxIterations = maxIterations(strategy, len(plan.Agents()))
	plan.Estimates = e.estimate(strategy, profile, scores)

	return plan, nil
}

// selectStrategy evaluates the strategy conditions in fixed priority
// order: single, sequential, parallel, collaborative, default single.
func (e *Engine) selectStrategy(profile models.TaskProfile, scores []models.AgentScore) models.Strategy {
	t := e.thresholds

	competent := countAbove(scores, t.Competent)
	excellent := countAbove(scores, t.Excellent)

	// Single: dominant top agent, simple shape, no explanation demand.
	gap := scores[0].Total
	if len(scores) > 1 {
		gap = scores[0].Total - scores[1].Total
	}
	simpleShape := len(profile.SecondaryKinds) == 0 &&
		profile.Complexity.Rank() <= models.ComplexityModerate.Rank()
	if scores[0].Total >= t.StrongTop && gap >= t.ClearGap && simpleShape &&
		!profile.HasCharacteristic(models.CharExplanatory) {
		return models.StrategySingle
	}

	// Sequential: the task kinds imply a pipeline dependency.
	if competent >= 2 && hasPipelineDependency(profile) {
		return models.StrategySequential
	}

	// Collaborative eligibility: high-stakes, many-faceted work with
	// excellent agents. Checked here so the parallel branch can yield to
	// it; the collaborative return itself stays after parallel.
	manyFacets := len(profile.Characteristics) >= 3 || len(profile.SecondaryKinds) >= 2
	collaborative := profile.Risk.AtLeast(models.RiskHigh) && manyFacets && excellent >= 2

	// Parallel: multiple perspectives pay off, or speed is critical.
	multiPerspective := profile.HasCharacteristic(models.CharCreative) ||
		profile.PrimaryKind == models.KindAnalysis ||
		len(profile.SecondaryKinds) >= 2
	if competent >= 2 && (multiPerspective || profile.HasCharacteristic(models.CharUrgent)) && !collaborative {
		return models.StrategyParallel
	}

	if collaborative {
		return models.StrategyCollaborative
	}

	return models.StrategySingle
}

// hasPipelineDependency reports whether the task kinds imply an
// analyze-then-build or build-then-document ordering.
func hasPipelineDependency(profile models.TaskProfile) bool {
	kinds := profile.Kinds()
	has := func(k models.TaskKind) bool {
		for _, kind := range kinds {
			if kind == k {
				return true
			}
		}
		return false
	}

	builds := has(models.KindCodeGeneration) || has(models.KindRefactoring) || has(models.KindOptimization)
	analyzes := has(models.KindAnalysis) || has(models.KindArchitecture)
	documents := has(models.KindDocumentation) || has(models.KindTesting)

	return (analyzes && builds) || (builds && documents)
}

// selectAgents picks the primary and ordered secondaries for a strategy.
// Single plans always have an empty secondary list.
func (e *Engine) selectAgents(strategy models.Strategy, profile models.TaskProfile, scores []models.AgentScore) (string, []string) {
	primary := scores[0].AgentID
	if strategy == models.StrategySingle {
		return primary, nil
	}

	floor := e.thresholds.Competent
	if strategy == models.StrategyCollaborative {
		floor = e.thresholds.Excellent
	}

	limit := 1
	switch strategy {
	case models.StrategyParallel:
		limit = 2
	case models.StrategyCollaborative:
		limit = 2
	}

	var secondaries []string
	for _, s := range scores[1:] {
		if len(secondaries) >= limit {
			break
		}
		if s.Total > floor {
			secondaries = append(secondaries, s.AgentID)
		}
	}
	if len(secondaries) == 0 {
		// No competent partner after all; the plan collapses to single.
		return primary, nil
	}
	return primary, secondaries
}

// fallbackChain lists the next-best agents by score, excluding the plan's
// agents, reordered so adjacent entries are not near-duplicates.
func (e *Engine) fallbackChain(planned []string, scores []models.AgentScore) []string {
	inPlan := make(map[string]bool, len(planned))
	for _, id := range planned {
		inPlan[id] = true
	}

	var chain []string
	for _, s := range scores {
		if len(chain) >= e.maxFallbacks {
			break
		}
		if !inPlan[s.AgentID] {
			chain = append(chain, s.AgentID)
		}
	}
	return e.spreadSimilar(chain)
}

// spreadSimilar reorders a chain so no two adjacent agents are similar,
// when an alternative ordering exists. A failing swap search leaves the
// chain as ranked.
func (e *Engine) spreadSimilar(chain []string) []string {
	for i := 1; i < len(chain); i++ {
		if !e.catalog.Similar(chain[i-1], chain[i]) {
			continue
		}
		for j := i + 1; j < len(chain); j++ {
			if !e.catalog.Similar(chain[i-1], chain[j]) {
				chain[i], chain[j] = chain[j], chain[i]
				break
			}
		}
	}
	return chain
}

// countAbove counts scores strictly above the floor. A score equal to
// the floor does not qualify, so an agent at exactly the excellent
// threshold is not an excellent agent.
func countAbove(scores []models.AgentScore, floor float64) int {
	n := 0
	for _, s := range scores {
		if s.Total > floor {
			n++
		}
	}
	return n
}

// maxIterations bounds total agent invocations for a plan: every planned
// agent, its retries, and revision rounds for collaborative plans.
func maxIterations(strategy models.Strategy, agents int) int {
	switch strategy {
	case models.StrategySingle:
		return 4
	case models.StrategyCollaborative:
		return agents*3 + 2
	default:
		return agents*2 + 2
	}
}
