package models

import "time"

// RecoveryStatus tracks the lifecycle of one recovery session.
type RecoveryStatus string

const (
	// RecoveryPlanned indicates the session was built but not started.
	RecoveryPlanned RecoveryStatus = "planned"
	// RecoveryInProgress indicates options are being executed.
	RecoveryInProgress RecoveryStatus = "in_progress"
	// RecoveryRecovered indicates an option produced a usable response.
	RecoveryRecovered RecoveryStatus = "recovered"
	// RecoveryDegraded indicates every option failed and a degraded
	// response was synthesized instead.
	RecoveryDegraded RecoveryStatus = "degraded"
	// RecoveryAborted indicates an abort option terminated the session.
	RecoveryAborted RecoveryStatus = "aborted"
)

// Valid returns true if the status is a known value.
func (s RecoveryStatus) Valid() bool {
	switch s {
	case RecoveryPlanned, RecoveryInProgress, RecoveryRecovered,
		RecoveryDegraded, RecoveryAborted:
		return true
	default:
		return false
	}
}

// Terminal returns true if the status is an end state.
func (s RecoveryStatus) Terminal() bool {
	switch s {
	case RecoveryRecovered, RecoveryDegraded, RecoveryAborted:
		return true
	default:
		return false
	}
}

// ContributingFactor is one condition judged to have contributed to a fault.
type ContributingFactor struct {
	// Name identifies the factor (e.g., "degraded_agent_health").
	Name string `json:"name"`
	// Impact grades how strongly the factor contributed (0.0-1.0).
	Impact float64 `json:"impact"`
	// Detail is a one-line description of the evidence.
	Detail string `json:"detail"`
}

// HighImpact returns true when the factor's impact crosses the reporting bar.
func (f ContributingFactor) HighImpact() bool {
	return f.Impact >= 0.7
}

// RootCauseReport is the recovery system's analysis of one failure.
type RootCauseReport struct {
	// FailureID is the FailureEvent this report analyzes.
	FailureID string `json:"failure_id"`
	// Summary is the single-line root cause.
	Summary string `json:"summary"`
	// SystemState is a snapshot of relevant live state at analysis time.
	SystemState map[string]string `json:"system_state,omitempty"`
	// Factors lists the contributing conditions, strongest first.
	Factors []ContributingFactor `json:"factors,omitempty"`
	// RecurringPattern is true when this failure kind repeated recently
	// for the same agent.
	RecurringPattern bool `json:"recurring_pattern"`
	// EscalatingTrend is true when recent failures grow in severity.
	EscalatingTrend bool `json:"escalating_trend"`
	// Recommendations holds free-text remediation advice.
	Recommendations []string `json:"recommendations,omitempty"`
}

// RecoverySession is the bounded attempt sequence executed to resolve one
// FailureEvent. One session is active per execution id; finished sessions
// move to a bounded history.
type RecoverySession struct {
	// ID is the unique session identifier.
	ID string `json:"id"`
	// ExecutionID is the execution this session belongs to.
	ExecutionID string `json:"execution_id"`
	// Failure is the event being recovered from.
	Failure FailureEvent `json:"failure"`
	// Report is the root-cause analysis built when the session was planned.
	Report RootCauseReport `json:"report"`
	// Options is the cascade's plan, in ascending priority order.
	Options []FallbackOption `json:"options"`
	// Attempts records each executed option in order.
	Attempts []FallbackAttempt `json:"attempts"`
	// Status is the session lifecycle state.
	Status RecoveryStatus `json:"status"`
	// SuccessProbability is the estimated chance of recovery (0.0-1.0).
	SuccessProbability float64 `json:"success_probability"`
	// EstimatedTime is the projected wall-clock cost of the session.
	EstimatedTime time.Duration `json:"estimated_time"`
	// NotifyOperator is true when a human must be told about this failure.
	NotifyOperator bool `json:"notify_operator"`
	// Result is the recovered or degraded response, when one exists.
	Result *AgentResponse `json:"result,omitempty"`
	// StartedAt is when the session was planned.
	StartedAt time.Time `json:"started_at"`
	// FinishedAt is when the session reached a terminal status.
	FinishedAt time.Time `json:"finished_at,omitempty"`
}
