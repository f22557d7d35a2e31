package models

import "time"

// PerformanceRecord is one completed agent invocation as remembered by the
// performance history. Records feed the scoring engine's trailing window
// and are pruned beyond a bounded horizon.
type PerformanceRecord struct {
	// AgentID is the agent that ran.
	AgentID string `json:"agent_id"`
	// TaskKind is the task category the agent ran against.
	TaskKind TaskKind `json:"task_kind"`
	// Success is true when the invocation produced a valid response.
	Success bool `json:"success"`
	// Quality is the assessed response quality (0.0-1.0).
	Quality float64 `json:"quality"`
	// Confidence is the classifier confidence for the request served.
	Confidence float64 `json:"confidence"`
	// Feedback is the optional user rating (-1.0 to 1.0, 0 when absent).
	Feedback float64 `json:"feedback,omitempty"`
	// TokensUsed is the total tokens the invocation consumed.
	TokensUsed int64 `json:"tokens_used"`
	// Duration is how long the invocation took.
	Duration time.Duration `json:"duration"`
	// RecordedAt is when the record was written.
	RecordedAt time.Time `json:"recorded_at"`
}
