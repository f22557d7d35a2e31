package decision

import (
	"time"

	"github.com/Dixter999/agentmux/pkg/models"
)

// strategyMultipliers scale the advisory estimates per strategy: more
// coordination costs more time and money but lifts success odds.
type strategyMultipliers struct {
	duration float64
	cost     float64
	success  float64
	quality  float64
}

var multipliersByStrategy = map[models.Strategy]strategyMultipliers{
	models.StrategySingle:        {duration: 1.0, cost: 1.0, success: 1.0, quality: 1.0},
	models.StrategySequential:    {duration: 1.8, cost: 1.7, success: 1.05, quality: 1.1},
	models.StrategyParallel:      {duration: 1.2, cost: 2.0, success: 1.1, quality: 1.1},
	models.StrategyCollaborative: {duration: 2.5, cost: 2.8, success: 1.15, quality: 1.2},
}

// estimate produces the advisory plan estimates: closed-form combinations
// of the strategy multiplier, complexity tier, and agent scores. They are
// informational only, never contractual.
func (e *Engine) estimate(strategy models.Strategy, profile models.TaskProfile, scores []models.AgentScore) models.PlanEstimates {
	m := multipliersByStrategy[strategy]

	// Mean total across the agents likely to run; the top score anchors
	// success probability.
	top := scores[0].Total
	mean := 0.0
	n := 0
	for _, s := range scores {
		if n >= 3 {
			break
		}
		mean += s.Total
		n++
	}
	mean /= float64(n)

	complexityFactor := 0.75 + 0.25*float64(profile.Complexity.Rank())

	duration := time.Duration(float64(profile.EstimatedDuration) * m.duration * complexityFactor)
	cost := profile.EstimatedCost * m.cost * complexityFactor

	// Success probability: the anchor score discounted by complexity,
	// lifted by the strategy multiplier, kept inside [0.05, 0.99].
	success := top * (1.15 - 0.1*float64(profile.Complexity.Rank())) * m.success
	success = clampRange(success, 0.05, 0.99)

	quality := clampRange(mean*m.quality, 0, 1)

	return models.PlanEstimates{
		Duration:           duration,
		Cost:               cost,
		SuccessProbability: success,
		Quality:            quality,
	}
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
