package models

import "time"

// Sampling and budget bounds applied whenever an AgentConfig is composed.
// Values outside these ranges are clipped, never rejected.
const (
	// MinTemperature is the lowest sampling temperature a config may carry.
	MinTemperature = 0.01
	// MaxTemperature is the highest sampling temperature a config may carry.
	MaxTemperature = 1.0
	// MinTimeBudget is the shortest per-invocation time budget.
	MinTimeBudget = 15 * time.Second
	// MaxTimeBudget is the longest per-invocation time budget.
	MaxTimeBudget = 300 * time.Second
	// MinMaxTokens is the smallest completion allowance.
	MinMaxTokens = 256
	// MaxMaxTokens is the largest completion allowance.
	MaxMaxTokens = 32768
)

// AgentConfig holds the per-invocation configuration composed for one agent.
// The decision engine layers deltas onto the agent's base config and clips
// the result; the prompt renderer turns it into literal request text.
type AgentConfig struct {
	// Temperature is the sampling temperature (clipped to 0.01-1.0).
	Temperature float64 `json:"temperature"`
	// MaxTokens is the completion token allowance.
	MaxTokens int `json:"max_tokens"`
	// TimeBudget is the wall-clock allowance for one invocation (15s-300s).
	TimeBudget time.Duration `json:"time_budget"`
	// SystemHint is an optional instruction prefix tuned to the task.
	SystemHint string `json:"system_hint,omitempty"`
	// Metadata carries open extension fields for the prompt renderer.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Clip returns a copy of the config with every field forced into its safe range.
func (c AgentConfig) Clip() AgentConfig {
	if c.Temperature < MinTemperature {
		c.Temperature = MinTemperature
	}
	if c.Temperature > MaxTemperature {
		c.Temperature = MaxTemperature
	}
	if c.MaxTokens < MinMaxTokens {
		c.MaxTokens = MinMaxTokens
	}
	if c.MaxTokens > MaxMaxTokens {
		c.MaxTokens = MaxMaxTokens
	}
	if c.TimeBudget < MinTimeBudget {
		c.TimeBudget = MinTimeBudget
	}
	if c.TimeBudget > MaxTimeBudget {
		c.TimeBudget = MaxTimeBudget
	}
	return c
}

// AgentProfile describes one interchangeable agent backend: what it is good
// at, what it costs, and how it combines with other agents. Profiles are
// loaded from the capability table at startup and are read-only afterward.
type AgentProfile struct {
	// ID is the unique identifier for this agent (e.g., "claude-architect").
	ID string `json:"id" yaml:"id"`
	// Name is the human-readable display name.
	Name string `json:"name" yaml:"name"`
	// Backend names the transport that serves this agent
	// ("anthropic", "openai", "google", "scripted").
	Backend string `json:"backend" yaml:"backend"`
	// Model is the backend model identifier this agent invokes.
	Model string `json:"model" yaml:"model"`
	// Strengths maps task kinds to affinity in 0.0-1.0.
	Strengths map[TaskKind]float64 `json:"strengths" yaml:"strengths"`
	// Characteristics lists the special properties this agent handles well.
	Characteristics []Characteristic `json:"characteristics,omitempty" yaml:"characteristics,omitempty"`
	// BaseConfig is the starting configuration before task deltas.
	BaseConfig AgentConfig `json:"base_config" yaml:"base_config"`
	// CostPerMTokensIn is the dollar cost per million input tokens.
	CostPerMTokensIn float64 `json:"cost_per_mtokens_in" yaml:"cost_per_mtokens_in"`
	// CostPerMTokensOut is the dollar cost per million output tokens.
	CostPerMTokensOut float64 `json:"cost_per_mtokens_out" yaml:"cost_per_mtokens_out"`
	// MaxContextTokens is the largest input the agent accepts.
	MaxContextTokens int `json:"max_context_tokens" yaml:"max_context_tokens"`
	// Substitutes lists agent IDs that can stand in for this one, best first.
	Substitutes []string `json:"substitutes,omitempty" yaml:"substitutes,omitempty"`
	// ComplementaryWith lists agent IDs whose outputs pair well with this one.
	ComplementaryWith []string `json:"complementary_with,omitempty" yaml:"complementary_with,omitempty"`
	// IncompatibleWith lists agent IDs that must not run concurrently
	// with this one against the same artifact.
	IncompatibleWith []string `json:"incompatible_with,omitempty" yaml:"incompatible_with,omitempty"`
	// CollabAffinity maps peer agent IDs to collaboration preference (0.0-1.0).
	CollabAffinity map[string]float64 `json:"collab_affinity,omitempty" yaml:"collab_affinity,omitempty"`
}

// StrengthFor returns the agent's affinity for a task kind, 0 when unlisted.
func (p *AgentProfile) StrengthFor(kind TaskKind) float64 {
	if p.Strengths == nil {
		return 0
	}
	return p.Strengths[kind]
}

// HasCharacteristic returns true if the agent handles the characteristic well.
func (p *AgentProfile) HasCharacteristic(c Characteristic) bool {
	for _, have := range p.Characteristics {
		if have == c {
			return true
		}
	}
	return false
}

// IsSubstituteFor returns true if other lists this agent as a substitute.
func (p *AgentProfile) IsSubstituteFor(other *AgentProfile) bool {
	if other == nil {
		return false
	}
	for _, id := range other.Substitutes {
		if id == p.ID {
			return true
		}
	}
	return false
}

// CostEstimate returns the dollar cost for the given token split.
func (p *AgentProfile) CostEstimate(inputTokens, outputTokens int64) float64 {
	in := float64(inputTokens) / 1_000_000 * p.CostPerMTokensIn
	out := float64(outputTokens) / 1_000_000 * p.CostPerMTokensOut
	return in + out
}

// AgentHealth is a point-in-time availability snapshot for one agent,
// produced by the health monitor and read by the scoring engine.
type AgentHealth struct {
	// AgentID is the agent this snapshot describes.
	AgentID string `json:"agent_id"`
	// Available is false when the backend is unreachable or disabled.
	Available bool `json:"available"`
	// Latency is the rolling mean round-trip time for recent invocations.
	Latency time.Duration `json:"latency"`
	// RateHeadroom is the remaining fraction of the rate limit (0.0-1.0).
	RateHeadroom float64 `json:"rate_headroom"`
	// RecentErrors counts failures inside the monitor's rolling window.
	RecentErrors int `json:"recent_errors"`
	// CheckedAt is when the snapshot was taken.
	CheckedAt time.Time `json:"checked_at"`
}

// AgentScore is the per-agent ranking breakdown computed for one request.
// Scores are recomputed per request and never persisted unless logged.
type AgentScore struct {
	// AgentID is the agent being scored.
	AgentID string `json:"agent_id"`
	// Specialization measures task-kind and characteristic alignment (0.0-1.0).
	Specialization float64 `json:"specialization"`
	// History measures trailing-window success rate and confidence (0.0-1.0).
	History float64 `json:"history"`
	// CharacteristicsFit measures complexity and characteristic handling (0.0-1.0).
	CharacteristicsFit float64 `json:"characteristics_fit"`
	// Availability measures live health: latency, rate headroom, errors (0.0-1.0).
	Availability float64 `json:"availability"`
	// CostEfficiency measures estimated cost against budget ceilings (0.0-1.0).
	CostEfficiency float64 `json:"cost_efficiency"`
	// Total is the weighted sum of the five components (0.0-1.0).
	Total float64 `json:"total"`
	// Confidence reflects cross-component consistency (0.0-1.0): an agent
	// strong everywhere ranks with more confidence than a spiky one.
	Confidence float64 `json:"confidence"`
}
