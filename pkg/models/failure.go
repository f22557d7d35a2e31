package models

import "time"

// FailureKind is the closed taxonomy of execution faults.
type FailureKind string

const (
	// FailureTimeout indicates the invocation exceeded its time budget.
	FailureTimeout FailureKind = "timeout"
	// FailureRateLimit indicates the backend rejected the call for throttling.
	FailureRateLimit FailureKind = "rate_limit"
	// FailureCostLimit indicates a cost or quota ceiling was breached.
	FailureCostLimit FailureKind = "cost_limit"
	// FailureUnavailable indicates the backend could not be reached.
	FailureUnavailable FailureKind = "unavailable"
	// FailureLowQuality indicates the response scored below the quality floor.
	FailureLowQuality FailureKind = "low_quality"
	// FailureIncomplete indicates the response was cut off or missing pieces.
	FailureIncomplete FailureKind = "incomplete"
	// FailureParsing indicates the response could not be parsed.
	FailureParsing FailureKind = "parsing"
	// FailureFormat indicates the response ignored the requested format.
	FailureFormat FailureKind = "format"
	// FailureContextIncompatible indicates the response does not address
	// the request (refusal or topic drift).
	FailureContextIncompatible FailureKind = "context_incompatible"
	// FailureUnknown covers faults that match no other kind.
	FailureUnknown FailureKind = "unknown"
)

// Valid returns true if the kind is a known value.
func (k FailureKind) Valid() bool {
	switch k {
	case FailureTimeout, FailureRateLimit, FailureCostLimit, FailureUnavailable,
		FailureLowQuality, FailureIncomplete, FailureParsing, FailureFormat,
		FailureContextIncompatible, FailureUnknown:
		return true
	default:
		return false
	}
}

// Transient returns true for infrastructure faults that are worth an
// immediate local retry.
func (k FailureKind) Transient() bool {
	switch k {
	case FailureTimeout, FailureRateLimit, FailureUnavailable:
		return true
	default:
		return false
	}
}

// QualityRelated returns true for faults describing a bad response rather
// than a failed call.
func (k FailureKind) QualityRelated() bool {
	switch k {
	case FailureLowQuality, FailureIncomplete, FailureParsing, FailureFormat,
		FailureContextIncompatible:
		return true
	default:
		return false
	}
}

// Severity grades how serious a fault is.
type Severity string

const (
	// SeverityLow marks recoverable nuisances.
	SeverityLow Severity = "low"
	// SeverityMedium marks faults that need remediation but not escalation.
	SeverityMedium Severity = "medium"
	// SeverityHigh marks faults that endanger the whole execution.
	SeverityHigh Severity = "high"
	// SeverityCritical marks faults that require an immediate stop.
	SeverityCritical Severity = "critical"
)

// Valid returns true if the severity is a known value.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	default:
		return false
	}
}

// AtLeast returns true if the severity is equal to or above the given level.
func (s Severity) AtLeast(other Severity) bool {
	return s.rank() >= other.rank()
}

func (s Severity) rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// FailureEvent is the classified record of one execution fault. It is an
// append-only audit entry: after creation only RetryCount may change.
type FailureEvent struct {
	// ID is the unique identifier for this event.
	ID string `json:"id"`
	// Kind is the taxonomy entry this fault was classified into.
	Kind FailureKind `json:"kind"`
	// Severity is the graded seriousness from the policy table.
	Severity Severity `json:"severity"`
	// AgentID is the agent whose invocation faulted.
	AgentID string `json:"agent_id"`
	// Message is the raw error or validation text that triggered detection.
	Message string `json:"message"`
	// RetryCount is the number of retries already spent on this fault.
	RetryCount int `json:"retry_count"`
	// MaxRetries is the retry budget from the policy table.
	MaxRetries int `json:"max_retries"`
	// RootCause is the detector's best single-line explanation.
	RootCause string `json:"root_cause,omitempty"`
	// SuggestedAction is the detector's recommended first remediation.
	SuggestedAction string `json:"suggested_action,omitempty"`
	// OccurredAt is when the fault was observed.
	OccurredAt time.Time `json:"occurred_at"`
}

// RetriesExhausted returns true when the local retry budget is spent.
func (e *FailureEvent) RetriesExhausted() bool {
	return e.RetryCount >= e.MaxRetries
}
