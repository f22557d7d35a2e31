package models

import "time"

// FallbackKind is the closed set of remediation strategies for a failure.
type FallbackKind string

const (
	// FallbackRetry retries the same agent with adjusted parameters.
	FallbackRetry FallbackKind = "retry"
	// FallbackSubstitute switches to an alternate agent.
	FallbackSubstitute FallbackKind = "substitute"
	// FallbackAdjust re-runs with adjusted parameters only.
	FallbackAdjust FallbackKind = "adjust"
	// FallbackSimplify re-runs with a simplified request.
	FallbackSimplify FallbackKind = "simplify"
	// FallbackEscalate escalates to multiple agents.
	FallbackEscalate FallbackKind = "escalate"
	// FallbackChangeStrategy switches the execution strategy.
	FallbackChangeStrategy FallbackKind = "change_strategy"
	// FallbackAbort gives up on remediation.
	FallbackAbort FallbackKind = "abort"
)

// Valid returns true if the kind is a known value.
func (k FallbackKind) Valid() bool {
	switch k {
	case FallbackRetry, FallbackSubstitute, FallbackAdjust, FallbackSimplify,
		FallbackEscalate, FallbackChangeStrategy, FallbackAbort:
		return true
	default:
		return false
	}
}

// FallbackOption is one concrete remediation action for a FailureEvent.
// Options are generated fresh per failure and always consumed in ascending
// priority order; an abort option, when present, is unique and last.
type FallbackOption struct {
	// Kind is the remediation strategy.
	Kind FallbackKind `json:"kind"`
	// Priority orders options; lower runs first.
	Priority int `json:"priority"`
	// TargetAgent is the agent to run for substitute/escalate options.
	TargetAgent string `json:"target_agent,omitempty"`
	// TargetAgents lists all agents for escalate options.
	TargetAgents []string `json:"target_agents,omitempty"`
	// TargetStrategy is the replacement strategy for change-strategy options.
	TargetStrategy Strategy `json:"target_strategy,omitempty"`
	// ConfigDelta holds parameter changes applied before the re-run.
	ConfigDelta map[string]float64 `json:"config_delta,omitempty"`
	// Backoff is the delay to wait before executing this option.
	Backoff time.Duration `json:"backoff,omitempty"`
	// Reason explains why this option was generated.
	Reason string `json:"reason,omitempty"`
}

// FallbackAttempt records the outcome of executing one option.
type FallbackAttempt struct {
	// Option is the option that was executed.
	Option FallbackOption `json:"option"`
	// FailureKind is the failure the option was answering.
	FailureKind FailureKind `json:"failure_kind"`
	// Success is true when the option produced a usable response.
	Success bool `json:"success"`
	// Error describes the failure of the attempt itself, if any.
	Error string `json:"error,omitempty"`
	// Duration is how long the attempt took, backoff included.
	Duration time.Duration `json:"duration"`
	// StartedAt is when the attempt began.
	StartedAt time.Time `json:"started_at"`
}
