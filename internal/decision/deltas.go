// Package decision maps a TaskProfile and ranked agent scores into an
// ExecutionPlan: strategy, agent line-up, per-agent configuration, fallback
// chain, and advisory estimates. Deciding is a pure function of its inputs.
package decision

import (
	"time"

	"github.com/Dixter999/agentmux/pkg/models"
)

// delta is one additive adjustment to an agent configuration. Zero fields
// leave the base value untouched; deltas add, they never set.
type delta struct {
	Temperature float64
	MaxTokens   int
	TimeBudget  time.Duration
	SystemHint  string
}

// kindDeltas adjusts configuration per task kind. Precision-heavy kinds
// cool the sampling temperature; open-ended kinds warm it.
var kindDeltas = map[models.TaskKind]delta{
	models.KindCodeGeneration: {Temperature: -0.05, SystemHint: "Produce complete, working code."},
	models.KindDebugging:      {Temperature: -0.1, TimeBudget: 30 * time.Second, SystemHint: "Diagnose before fixing; state the root cause."},
	models.KindRefactoring:    {Temperature: -0.1, SystemHint: "Preserve behavior exactly."},
	models.KindOptimization:   {Temperature: -0.1, TimeBudget: 30 * time.Second, SystemHint: "Measure before and after; avoid speculative changes."},
	models.KindDocumentation:  {Temperature: 0.15, SystemHint: "Write for a reader new to this code."},
	models.KindTesting:        {Temperature: -0.05, SystemHint: "Cover edge cases, not just the happy path."},
	models.KindAnalysis:       {Temperature: 0.05, MaxTokens: 2048},
	models.KindArchitecture:   {Temperature: 0.1, MaxTokens: 2048, TimeBudget: 60 * time.Second},
}

// characteristicDeltas adjusts configuration per special characteristic.
var characteristicDeltas = map[models.Characteristic]delta{
	models.CharPerformanceCritical: {Temperature: -0.05},
	models.CharSecuritySensitive:   {Temperature: -0.1, SystemHint: "Treat this as security-sensitive; prefer proven patterns."},
	models.CharExplanatory:         {Temperature: 0.1, MaxTokens: 2048, SystemHint: "Explain the reasoning, not just the result."},
	models.CharCreative:            {Temperature: 0.2},
	models.CharPrecision:           {Temperature: -0.15},
	models.CharUrgent:              {TimeBudget: -30 * time.Second},
	models.CharLongContext:         {MaxTokens: 4096, TimeBudget: 60 * time.Second},
	models.CharMultiFile:           {MaxTokens: 2048, TimeBudget: 30 * time.Second},
}

// complexityDeltas adjusts configuration per complexity tier.
var complexityDeltas = map[models.Complexity]delta{
	models.ComplexitySimple:   {TimeBudget: -30 * time.Second},
	models.ComplexityModerate: {},
	models.ComplexityComplex:  {MaxTokens: 2048, TimeBudget: 60 * time.Second},
	models.ComplexityCritical: {Temperature: -0.05, MaxTokens: 4096, TimeBudget: 120 * time.Second},
}

// composeConfig layers the task-kind, characteristic, and complexity deltas
// onto the agent's base config, clipping the result to safe bounds.
func composeConfig(base models.AgentConfig, profile models.TaskProfile) models.AgentConfig {
	cfg := base

	apply := func(d delta) {
		cfg.Temperature += d.Temperature
		cfg.MaxTokens += d.MaxTokens
		cfg.TimeBudget += d.TimeBudget
		if d.SystemHint != "" {
			if cfg.SystemHint != "" {
				cfg.SystemHint += " "
			}
			cfg.SystemHint += d.SystemHint
		}
	}

	apply(kindDeltas[profile.PrimaryKind])
	for _, c := range profile.Characteristics {
		apply(characteristicDeltas[c])
	}
	apply(complexityDeltas[profile.Complexity])

	return cfg.Clip()
}
