package models

import "time"

// Strategy represents the concurrency pattern used to fulfill a request.
type Strategy string

const (
	// StrategySingle runs one agent, no coordination.
	StrategySingle Strategy = "single"
	// StrategySequential runs agents in dependency order, each fed the
	// accumulated prior responses.
	StrategySequential Strategy = "sequential"
	// StrategyParallel runs independent agents concurrently, then merges.
	StrategyParallel Strategy = "parallel"
	// StrategyCollaborative runs agents sequentially with bounded revision
	// rounds in which each agent may refine its answer given peer output.
	StrategyCollaborative Strategy = "collaborative"
)

// Valid returns true if the strategy is a known value.
func (s Strategy) Valid() bool {
	switch s {
	case StrategySingle, StrategySequential, StrategyParallel, StrategyCollaborative:
		return true
	default:
		return false
	}
}

// PlanEstimates carries advisory projections for an execution plan.
// They are informational only and never enforced.
type PlanEstimates struct {
	// Duration is the projected wall-clock time for the whole plan.
	Duration time.Duration `json:"duration"`
	// Cost is the projected dollar cost across all agents.
	Cost float64 `json:"cost"`
	// SuccessProbability is the projected chance of a COMPLETED outcome (0.0-1.0).
	SuccessProbability float64 `json:"success_probability"`
	// Quality is the projected mean response quality (0.0-1.0).
	Quality float64 `json:"quality"`
}

// ExecutionPlan is the decision engine's output: which agents run, how they
// are configured, and what to do when they fail. Built once per request and
// consumed read-only by the coordinator.
type ExecutionPlan struct {
	// Strategy is the concurrency pattern for this plan.
	Strategy Strategy `json:"strategy"`
	// Primary is the agent ID carrying the main work.
	Primary string `json:"primary"`
	// Secondaries lists supporting agent IDs in execution order.
	// Always empty for single-agent plans.
	Secondaries []string `json:"secondaries,omitempty"`
	// Configs maps each participating agent ID to its composed configuration.
	Configs map[string]AgentConfig `json:"configs"`
	// FallbackChain lists alternate agent IDs by descending score,
	// excluding the primary, with near-duplicate neighbors separated.
	FallbackChain []string `json:"fallback_chain,omitempty"`
	// MaxIterations bounds the total agent invocations for this plan.
	MaxIterations int `json:"max_iterations"`
	// Estimates carries the advisory duration/cost/success/quality projections.
	Estimates PlanEstimates `json:"estimates"`
	// CreatedAt is when the plan was built.
	CreatedAt time.Time `json:"created_at"`
	// Metadata carries open extension fields for collaborators.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Agents returns the primary followed by the secondaries.
func (p *ExecutionPlan) Agents() []string {
	agents := make([]string, 0, 1+len(p.Secondaries))
	agents = append(agents, p.Primary)
	agents = append(agents, p.Secondaries...)
	return agents
}

// ConfigFor returns the composed configuration for the given agent.
// The zero config is returned when the agent is not in the plan.
func (p *ExecutionPlan) ConfigFor(agentID string) AgentConfig {
	if p.Configs == nil {
		return AgentConfig{}
	}
	return p.Configs[agentID]
}
