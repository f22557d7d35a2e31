package scoring

import (
	"log"
	"math"
	"sort"
	"time"

	"github.com/Dixter999/agentmux/internal/history"
	"github.com/Dixter999/agentmux/pkg/models"
)

// DefaultWindow is the trailing number of performance records consulted
// per agent.
const DefaultWindow = 50

// DefaultBudgetCeiling is the per-request dollar ceiling cost efficiency
// is measured against.
const DefaultBudgetCeiling = 2.0

// cheapestViableBonus rewards the cheapest agent whose other components
// clear the viability floor.
const (
	cheapestViableBonus = 0.1
	viabilityFloor      = 0.4
)

// HealthProvider supplies live agent health; the health monitor satisfies
// it, and tests substitute fakes.
type HealthProvider interface {
	Health(agentID string) models.AgentHealth
}

// ProfileSource supplies the candidate profiles; the registry satisfies it.
type ProfileSource interface {
	All() []*models.AgentProfile
}

// Engine computes per-agent scores for a TaskProfile.
type Engine struct {
	profiles ProfileSource
	health   HealthProvider
	store    history.Store

	weights Weights
	window  int
	budget  float64
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithWeights overrides the component weights.
func WithWeights(w Weights) EngineOption {
	return func(e *Engine) { e.weights = w }
}

// WithWindow overrides the trailing history window size.
func WithWindow(n int) EngineOption {
	return func(e *Engine) { e.window = n }
}

// WithBudgetCeiling overrides the per-request dollar ceiling.
func WithBudgetCeiling(dollars float64) EngineOption {
	return func(e *Engine) { e.budget = dollars }
}

// NewEngine creates a scoring engine. The weights are validated to sum to
// 1.0 at construction.
func NewEngine(profiles ProfileSource, health HealthProvider, store history.Store, opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		profiles: profiles,
		health:   health,
		store:    store,
		weights:  DefaultWeights(),
		window:   DefaultWindow,
		budget:   DefaultBudgetCeiling,
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.weights.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Rank scores every registered agent against the profile and returns the
// scores in descending total order. Ties break by agent ID so ranking is
// deterministic for a fixed input.
func (e *Engine) Rank(profile models.TaskProfile) []models.AgentScore {
	candidates := e.profiles.All()
	scores := make([]models.AgentScore, 0, len(candidates))

	cheapestID := ""
	cheapestCost := math.MaxFloat64

	for _, p := range candidates {
		score := e.score(p, profile)
		scores = append(scores, score)

		if score.Specialization >= viabilityFloor && score.Availability >= viabilityFloor {
			if cost := e.estimatedCost(p, profile); cost < cheapestCost {
				cheapestCost, cheapestID = cost, p.ID
			}
		}
	}

	// The cheapest viable agent earns a cost bonus, then totals are final.
	for i := range scores {
		if scores[i].AgentID == cheapestID {
			scores[i].CostEfficiency = clamp01(scores[i].CostEfficiency + cheapestViableBonus)
		}
		scores[i].Total = clamp01(e.weights.Specialization*scores[i].Specialization +
			e.weights.History*scores[i].History +
			e.weights.CharacteristicsFit*scores[i].CharacteristicsFit +
			e.weights.Availability*scores[i].Availability +
			e.weights.Cost*scores[i].CostEfficiency)
		scores[i].Confidence = rankingConfidence(scores[i])
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Total != scores[j].Total {
			return scores[i].Total > scores[j].Total
		}
		return scores[i].AgentID < scores[j].AgentID
	})
	return scores
}

func (e *Engine) score(p *models.AgentProfile, profile models.TaskProfile) models.AgentScore {
	return models.AgentScore{
		AgentID:            p.ID,
		Specialization:     e.specialization(p, profile),
		History:            e.historyScore(p, profile),
		CharacteristicsFit: e.characteristicsFit(p, profile),
		Availability:       e.availability(p),
		CostEfficiency:     e.costEfficiency(p, profile),
	}
}

// specialization measures task-kind affinity: the primary kind dominates,
// secondary kinds share the remainder, and each matched characteristic
// adds a small bonus.
func (e *Engine) specialization(p *models.AgentProfile, profile models.TaskProfile) float64 {
	score := 0.7 * p.StrengthFor(profile.PrimaryKind)

	if len(profile.SecondaryKinds) > 0 {
		var sum float64
		for _, kind := range profile.SecondaryKinds {
			sum += p.StrengthFor(kind)
		}
		score += 0.3 * sum / float64(len(profile.SecondaryKinds))
	} else {
		score += 0.3 * p.StrengthFor(profile.PrimaryKind)
	}

	for _, c := range profile.Characteristics {
		if p.HasCharacteristic(c) {
			score += 0.05
		}
	}
	return clamp01(score)
}

// historyScore measures trailing-window performance: success rate and mean
// confidence, a task-kind-specific bonus, and the user-feedback adjustment.
// An agent with no history scores a neutral 0.5.
func (e *Engine) historyScore(p *models.AgentProfile, profile models.TaskProfile) float64 {
	records, err := e.store.Recent(p.ID, e.window)
	if err != nil {
		log.Printf("[scoring] history read failed for %s: %v", p.ID, err)
		return 0.5
	}
	if len(records) == 0 {
		return 0.5
	}

	var successes, kindTotal, kindSuccesses int
	var confidenceSum, feedbackSum float64
	for _, rec := range records {
		if rec.Success {
			successes++
		}
		confidenceSum += rec.Confidence
		feedbackSum += rec.Feedback
		if rec.TaskKind == profile.PrimaryKind {
			kindTotal++
			if rec.Success {
				kindSuccesses++
			}
		}
	}

	n := float64(len(records))
	score := 0.6*(float64(successes)/n) + 0.4*(confidenceSum/n)

	if kindTotal > 0 {
		score += 0.1 * float64(kindSuccesses) / float64(kindTotal)
	}
	score += 0.1 * feedbackSum / n

	return clamp01(score)
}

// characteristicsFit measures how well the agent's capacity matches the
// task's shape: a complexity-handling multiplier from its token and time
// allowances, a file-count bonus scaled by context allowance, and
// penalties for required characteristics the agent lacks.
func (e *Engine) characteristicsFit(p *models.AgentProfile, profile models.TaskProfile) float64 {
	score := 0.5

	// Agents with large allowances absorb complex work better; for simple
	// work the multiplier barely matters.
	handling := 0.5*float64(p.BaseConfig.MaxTokens)/float64(models.MaxMaxTokens) +
		0.5*float64(p.BaseConfig.TimeBudget)/float64(models.MaxTimeBudget)
	complexityFactor := float64(profile.Complexity.Rank()) / 4
	score += (handling - 0.25) * complexityFactor * 0.4

	if profile.FileCount > 5 {
		contextShare := float64(p.MaxContextTokens) / 1_000_000
		if contextShare > 1 {
			contextShare = 1
		}
		score += 0.25 * contextShare
	}

	for _, c := range profile.Characteristics {
		if !p.HasCharacteristic(c) {
			score -= 0.08
		}
	}
	return clamp01(score)
}

// availability derives a live-health score: latency, rate-limit headroom,
// and recent errors each shave the baseline; an unreachable agent is 0.
func (e *Engine) availability(p *models.AgentProfile) float64 {
	h := e.health.Health(p.ID)
	if !h.Available {
		return 0
	}

	score := 1.0

	latencyPenalty := float64(h.Latency) / float64(5*time.Second) * 0.3
	if latencyPenalty > 0.3 {
		latencyPenalty = 0.3
	}
	score -= latencyPenalty

	score -= (1 - h.RateHeadroom) * 0.4

	errorPenalty := float64(h.RecentErrors) * 0.1
	if errorPenalty > 0.3 {
		errorPenalty = 0.3
	}
	score -= errorPenalty

	return clamp01(score)
}

// costEfficiency measures the estimated token cost against the budget
// ceiling: free is 1.0, at or beyond the ceiling is 0.
func (e *Engine) costEfficiency(p *models.AgentProfile, profile models.TaskProfile) float64 {
	if e.budget <= 0 {
		return 0
	}
	return clamp01(1 - e.estimatedCost(p, profile)/e.budget)
}

// estimatedCost projects the dollar cost of serving the profile with this
// agent, assuming the usual 80/20 input/output token split.
func (e *Engine) estimatedCost(p *models.AgentProfile, profile models.TaskProfile) float64 {
	in := profile.EstimatedTokens * 8 / 10
	out := profile.EstimatedTokens - in
	return p.CostEstimate(in, out)
}

// rankingConfidence grades cross-component consistency: the mean component
// score penalized by the standard deviation across components. An agent
// strong everywhere ranks with more confidence than a spiky one.
func rankingConfidence(s models.AgentScore) float64 {
	components := []float64{s.Specialization, s.History, s.CharacteristicsFit, s.Availability, s.CostEfficiency}

	var mean float64
	for _, c := range components {
		mean += c
	}
	mean /= float64(len(components))

	var variance float64
	for _, c := range components {
		variance += (c - mean) * (c - mean)
	}
	variance /= float64(len(components))

	return clamp01(mean - math.Sqrt(variance))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
