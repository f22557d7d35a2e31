package models

import (
	"fmt"
	"sync"
	"time"
)

// ConversationEntry is one turn of the accumulated conversation for an
// execution: either the original request or an agent's committed response.
type ConversationEntry struct {
	// Role is "user" for the original request, "agent" for responses.
	Role string `json:"role"`
	// AgentID identifies the agent for agent entries, empty for user entries.
	AgentID string `json:"agent_id,omitempty"`
	// Content is the entry text.
	Content string `json:"content"`
	// Timestamp is when the entry was committed.
	Timestamp time.Time `json:"timestamp"`
}

// ExecutionContext holds all mutable state for one execution. It is owned
// exclusively by one execution id: only that execution's strategy processor
// and the recovery system may mutate it, and committed entries are never
// rolled back.
type ExecutionContext struct {
	mu sync.RWMutex

	// ExecutionID is the unique identifier of the owning execution.
	ExecutionID string

	// Request is the original request text, committed as the first
	// conversation entry at construction.
	Request string

	history    []ConversationEntry
	responses  []AgentResponse
	shared     map[string]any
	agentState map[string]map[string]any

	iterations    int
	maxIterations int
}

// NewExecutionContext creates a context for the given execution id and
// request, with the iteration counter bounded at maxIterations.
func NewExecutionContext(executionID, request string, maxIterations int) *ExecutionContext {
	if maxIterations < 1 {
		maxIterations = 1
	}
	ec := &ExecutionContext{
		ExecutionID:   executionID,
		Request:       request,
		shared:        make(map[string]any),
		agentState:    make(map[string]map[string]any),
		maxIterations: maxIterations,
	}
	ec.history = append(ec.history, ConversationEntry{
		Role:      "user",
		Content:   request,
		Timestamp: time.Now(),
	})
	return ec
}

// BeginIteration increments the bounded iteration counter. It returns an
// error when the cap is already reached; the counter never decreases.
func (ec *ExecutionContext) BeginIteration() error {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	if ec.iterations >= ec.maxIterations {
		return fmt.Errorf("iteration cap reached (%d)", ec.maxIterations)
	}
	ec.iterations++
	return nil
}

// Iterations returns the number of iterations started so far.
func (ec *ExecutionContext) Iterations() int {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	return ec.iterations
}

// MaxIterations returns the iteration cap.
func (ec *ExecutionContext) MaxIterations() int {
	return ec.maxIterations
}

// CommitResponse stores a response and appends it to the conversation.
// Once committed the response is immutable and never rolled back.
func (ec *ExecutionContext) CommitResponse(resp AgentResponse) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.responses = append(ec.responses, resp)
	ec.history = append(ec.history, ConversationEntry{
		Role:      "agent",
		AgentID:   resp.AgentID,
		Content:   resp.Text,
		Timestamp: resp.CreatedAt,
	})
}

// ReplaceResponses swaps the stored response set for the merged set produced
// by a deterministic synchronization pass. The conversation history keeps
// every original entry; only the response list is consolidated.
func (ec *ExecutionContext) ReplaceResponses(responses []AgentResponse) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.responses = append([]AgentResponse(nil), responses...)
}

// Responses returns a copy of the committed responses in commit order.
func (ec *ExecutionContext) Responses() []AgentResponse {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	out := make([]AgentResponse, len(ec.responses))
	copy(out, ec.responses)
	return out
}

// History returns a copy of the conversation in commit order.
func (ec *ExecutionContext) History() []ConversationEntry {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	out := make([]ConversationEntry, len(ec.history))
	copy(out, ec.history)
	return out
}

// SetShared stores a value in the cross-agent shared state.
func (ec *ExecutionContext) SetShared(key string, value any) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.shared[key] = value
}

// Shared returns the value stored under key, with presence.
func (ec *ExecutionContext) Shared(key string) (any, bool) {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	v, ok := ec.shared[key]
	return v, ok
}

// SetAgentState stores a per-agent scratch value.
func (ec *ExecutionContext) SetAgentState(agentID, key string, value any) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	state, ok := ec.agentState[agentID]
	if !ok {
		state = make(map[string]any)
		ec.agentState[agentID] = state
	}
	state[key] = value
}

// AgentState returns the scratch value stored for an agent, with presence.
func (ec *ExecutionContext) AgentState(agentID, key string) (any, bool) {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	state, ok := ec.agentState[agentID]
	if !ok {
		return nil, false
	}
	v, ok := state[key]
	return v, ok
}
