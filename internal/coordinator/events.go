package coordinator

import (
	"time"

	"github.com/Dixter999/agentmux/pkg/models"
)

// EventKind labels one execution progress event.
type EventKind string

const (
	// EventExecutionStarted fires when a plan is dispatched.
	EventExecutionStarted EventKind = "execution_started"
	// EventAgentStarted fires when one agent invocation begins.
	EventAgentStarted EventKind = "agent_started"
	// EventAgentFinished fires when one agent invocation succeeds.
	EventAgentFinished EventKind = "agent_finished"
	// EventRetry fires before a local transient retry backs off.
	EventRetry EventKind = "retry"
	// EventFault fires when a failure event is classified.
	EventFault EventKind = "fault"
	// EventRecovery fires when a recovery session is planned.
	EventRecovery EventKind = "recovery"
	// EventExecutionFinished fires when the execution reaches a terminal status.
	EventExecutionFinished EventKind = "execution_finished"
)

// Event is one progress notification emitted during an execution. The
// monitor UI consumes these; losing one is acceptable, blocking is not.
type Event struct {
	// Kind labels the event.
	Kind EventKind
	// ExecutionID identifies the execution.
	ExecutionID string
	// AgentID identifies the agent for per-agent events.
	AgentID string
	// Status carries the execution status for lifecycle events.
	Status models.ExecutionStatus
	// Message is optional human-readable detail.
	Message string
	// At is when the event occurred.
	At time.Time
}

// emit sends the event without blocking. Nothing listens when the channel
// is nil.
func (c *Coordinator) emit(e Event) {
	if c.events == nil {
		return
	}
	select {
	case c.events <- e:
	default:
	}
}
