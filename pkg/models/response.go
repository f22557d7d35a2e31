package models

import "time"

// ArtifactKind distinguishes the structured fragments extracted from a response.
type ArtifactKind string

const (
	// ArtifactCode is a fenced code fragment.
	ArtifactCode ArtifactKind = "code"
	// ArtifactInstructions is a numbered or bulleted step list.
	ArtifactInstructions ArtifactKind = "instructions"
)

// Artifact is one structured fragment extracted from a raw agent response.
type Artifact struct {
	// Kind is the fragment category.
	Kind ArtifactKind `json:"kind"`
	// Language is the declared language for code fragments, if any.
	Language string `json:"language,omitempty"`
	// Content is the fragment body.
	Content string `json:"content"`
}

// ExecutionStatus represents the terminal or in-flight state of one execution.
type ExecutionStatus string

const (
	// StatusPending indicates the execution has not started.
	StatusPending ExecutionStatus = "pending"
	// StatusInProgress indicates agents are running.
	StatusInProgress ExecutionStatus = "in_progress"
	// StatusCompleted indicates all responses were valid with good quality.
	StatusCompleted ExecutionStatus = "completed"
	// StatusPartialSuccess indicates usable output with some invalid responses.
	StatusPartialSuccess ExecutionStatus = "partial_success"
	// StatusFailed indicates the majority of responses were unusable.
	StatusFailed ExecutionStatus = "failed"
	// StatusCancelled indicates the execution was cancelled before finishing.
	StatusCancelled ExecutionStatus = "cancelled"
)

// Valid returns true if the status is a known value.
func (s ExecutionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted,
		StatusPartialSuccess, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal returns true if the status is an end state.
func (s ExecutionStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusPartialSuccess, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// AgentResponse is one agent invocation's output. Once stored in an
// execution context it is immutable.
type AgentResponse struct {
	// AgentID is the agent that produced this response.
	AgentID string `json:"agent_id"`
	// Text is the raw response body.
	Text string `json:"text"`
	// Artifacts holds the structured fragments extracted from the text.
	Artifacts []Artifact `json:"artifacts,omitempty"`
	// Quality is the assessed response quality (0.0-1.0).
	Quality float64 `json:"quality"`
	// ValidationErrors lists problems found during response validation.
	ValidationErrors []string `json:"validation_errors,omitempty"`
	// TokensUsed is the total tokens consumed by this invocation.
	TokensUsed int64 `json:"tokens_used"`
	// Duration is how long the invocation took.
	Duration time.Duration `json:"duration"`
	// Round is the revision round that produced this response; 0 for the
	// initial pass.
	Round int `json:"round,omitempty"`
	// CreatedAt is when the response was produced.
	CreatedAt time.Time `json:"created_at"`
}

// IsValid returns true if the response passed validation.
func (r *AgentResponse) IsValid() bool {
	return len(r.ValidationErrors) == 0
}

// CodeArtifacts returns only the code fragments, in extraction order.
func (r *AgentResponse) CodeArtifacts() []Artifact {
	var code []Artifact
	for _, a := range r.Artifacts {
		if a.Kind == ArtifactCode {
			code = append(code, a)
		}
	}
	return code
}
