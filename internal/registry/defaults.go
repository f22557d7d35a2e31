package registry

import (
	"time"

	"github.com/Dixter999/agentmux/pkg/models"
)

// defaultProfiles returns the built-in capability table used when no YAML
// table is configured. Costs track published list prices per million tokens.
func defaultProfiles() []*models.AgentProfile {
	return []*models.AgentProfile{
		{
			ID:      "claude-architect",
			Name:    "Claude Architect",
			Backend: "anthropic",
			Model:   "claude-opus-4-5-20251101",
			Strengths: map[models.TaskKind]float64{
				models.KindArchitecture:   0.95,
				models.KindAnalysis:       0.9,
				models.KindRefactoring:    0.85,
				models.KindCodeGeneration: 0.8,
				models.KindDebugging:      0.8,
				models.KindDocumentation:  0.75,
				models.KindOptimization:   0.7,
				models.KindTesting:        0.7,
				models.KindGeneral:        0.75,
			},
			Characteristics: []models.Characteristic{
				models.CharSecuritySensitive,
				models.CharExplanatory,
				models.CharPrecision,
				models.CharLongContext,
				models.CharMultiFile,
			},
			BaseConfig: models.AgentConfig{
				Temperature: 0.3,
				MaxTokens:   8192,
				TimeBudget:  180 * time.Second,
			},
			CostPerMTokensIn:  15.0,
			CostPerMTokensOut: 75.0,
			MaxContextTokens:  200_000,
			Substitutes:       []string{"claude-coder", "gpt-coder"},
			ComplementaryWith: []string{"gemini-analyst"},
			CollabAffinity:    map[string]float64{"claude-coder": 0.9, "gemini-analyst": 0.7},
		},
		{
			ID:      "claude-coder",
			Name:    "Claude Coder",
			Backend: "anthropic",
			Model:   "claude-sonnet-4-5-20250929",
			Strengths: map[models.TaskKind]float64{
				models.KindCodeGeneration: 0.9,
				models.KindDebugging:      0.85,
				models.KindRefactoring:    0.85,
				models.KindTesting:        0.8,
				models.KindOptimization:   0.75,
				models.KindAnalysis:       0.75,
				models.KindArchitecture:   0.7,
				models.KindDocumentation:  0.7,
				models.KindGeneral:        0.75,
			},
			Characteristics: []models.Characteristic{
				models.CharMultiFile,
				models.CharPrecision,
				models.CharLongContext,
			},
			BaseConfig: models.AgentConfig{
				Temperature: 0.2,
				MaxTokens:   8192,
				TimeBudget:  120 * time.Second,
			},
			CostPerMTokensIn:  3.0,
			CostPerMTokensOut: 15.0,
			MaxContextTokens:  200_000,
			Substitutes:       []string{"gpt-coder", "claude-fast"},
			ComplementaryWith: []string{"gemini-analyst", "claude-architect"},
			IncompatibleWith:  []string{"gpt-optimizer"},
			CollabAffinity:    map[string]float64{"claude-architect": 0.9, "gpt-coder": 0.6},
		},
		{
			ID:      "claude-fast",
			Name:    "Claude Fast",
			Backend: "anthropic",
			Model:   "claude-haiku-4-5-20251001",
			Strengths: map[models.TaskKind]float64{
				models.KindDocumentation:  0.8,
				models.KindCodeGeneration: 0.7,
				models.KindTesting:        0.7,
				models.KindDebugging:      0.65,
				models.KindAnalysis:       0.6,
				models.KindGeneral:        0.7,
			},
			Characteristics: []models.Characteristic{models.CharUrgent},
			BaseConfig: models.AgentConfig{
				Temperature: 0.3,
				MaxTokens:   4096,
				TimeBudget:  45 * time.Second,
			},
			CostPerMTokensIn:  1.0,
			CostPerMTokensOut: 5.0,
			MaxContextTokens:  200_000,
			Substitutes:       []string{"claude-coder"},
		},
		{
			ID:      "gpt-coder",
			Name:    "GPT Coder",
			Backend: "openai",
			Model:   "gpt-5.2-codex",
			Strengths: map[models.TaskKind]float64{
				models.KindCodeGeneration: 0.85,
				models.KindDebugging:      0.8,
				models.KindTesting:        0.8,
				models.KindOptimization:   0.75,
				models.KindRefactoring:    0.75,
				models.KindAnalysis:       0.7,
				models.KindGeneral:        0.7,
			},
			Characteristics: []models.Characteristic{
				models.CharCreative,
				models.CharMultiFile,
			},
			BaseConfig: models.AgentConfig{
				Temperature: 0.4,
				MaxTokens:   8192,
				TimeBudget:  120 * time.Second,
			},
			CostPerMTokensIn:  2.5,
			CostPerMTokensOut: 10.0,
			MaxContextTokens:  128_000,
			Substitutes:       []string{"claude-coder"},
			ComplementaryWith: []string{"gpt-optimizer"},
		},
		{
			ID:      "gpt-optimizer",
			Name:    "GPT Optimizer",
			Backend: "openai",
			Model:   "gpt-5.2-thinking",
			Strengths: map[models.TaskKind]float64{
				models.KindOptimization: 0.9,
				models.KindAnalysis:     0.8,
				models.KindDebugging:    0.75,
				models.KindGeneral:      0.6,
			},
			Characteristics: []models.Characteristic{
				models.CharPerformanceCritical,
				models.CharPrecision,
			},
			BaseConfig: models.AgentConfig{
				Temperature: 0.15,
				MaxTokens:   8192,
				TimeBudget:  150 * time.Second,
			},
			CostPerMTokensIn:  2.5,
			CostPerMTokensOut: 10.0,
			MaxContextTokens:  128_000,
			Substitutes:       []string{"gpt-coder"},
			ComplementaryWith: []string{"gpt-coder"},
			IncompatibleWith:  []string{"claude-coder"},
		},
		{
			ID:      "gemini-analyst",
			Name:    "Gemini Analyst",
			Backend: "google",
			Model:   "gemini-2.0-pro",
			Strengths: map[models.TaskKind]float64{
				models.KindAnalysis:      0.85,
				models.KindDocumentation: 0.8,
				models.KindArchitecture:  0.75,
				models.KindTesting:       0.65,
				models.KindGeneral:       0.7,
			},
			Characteristics: []models.Characteristic{
				models.CharExplanatory,
				models.CharLongContext,
				models.CharCreative,
			},
			BaseConfig: models.AgentConfig{
				Temperature: 0.5,
				MaxTokens:   8192,
				TimeBudget:  90 * time.Second,
			},
			CostPerMTokensIn:  1.25,
			CostPerMTokensOut: 5.0,
			MaxContextTokens:  1_000_000,
			Substitutes:       []string{"claude-architect"},
			ComplementaryWith: []string{"claude-coder", "claude-architect"},
		},
	}
}
