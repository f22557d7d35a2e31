// Package coordinator drives execution plans to a terminal status. It
// dispatches to one strategy processor per plan, wraps every agent
// invocation in a bounded retry loop, and routes faults through detection,
// fallback planning, and recovery before deriving the final outcome.
package coordinator

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Dixter999/agentmux/internal/prompt"
	"github.com/Dixter999/agentmux/internal/recovery"
	"github.com/Dixter999/agentmux/pkg/models"
)

// qualityFloor is the response quality under which a sequential run stops
// feeding later agents.
const qualityFloor = 0.35

// retryBackoffBase is the starting delay for local transient retries.
const retryBackoffBase = 2 * time.Second

// InvocationResult is the raw outcome of one backend call.
type InvocationResult struct {
	// Text is the raw response body.
	Text string
	// TokensUsed is the total tokens consumed by the call.
	TokensUsed int64
}

// Invoker sends one rendered prompt to an agent backend.
type Invoker interface {
	Invoke(ctx context.Context, profile models.AgentProfile, cfg models.AgentConfig, rendered string) (InvocationResult, error)
}

// ProfileSource resolves agent profiles and their static relations. The
// capability registry satisfies it.
type ProfileSource interface {
	Get(agentID string) *models.AgentProfile
	Incompatible(a, b string) bool
	Complementary(a, b string) bool
}

// HealthRecorder receives per-invocation health observations.
type HealthRecorder interface {
	RecordSuccess(agentID string, latency time.Duration)
	RecordError(agentID string)
}

// PerformanceRecorder persists per-invocation performance records.
type PerformanceRecorder interface {
	Append(rec models.PerformanceRecord) error
}

// FaultClassifier turns errors and suspect responses into failure events.
type FaultClassifier interface {
	ClassifyError(agentID string, err error) models.FailureEvent
	ClassifyResponse(agentID, request string, resp models.AgentResponse) (models.FailureEvent, bool)
}

// Recoverer plans and executes recovery sessions for exhausted failures.
type Recoverer interface {
	Plan(executionID string, event models.FailureEvent, plan *models.ExecutionPlan, iteration int) *models.RecoverySession
	Execute(ctx context.Context, session *models.RecoverySession, request string, run recovery.Executor) error
}

// Result is the terminal outcome of one execution.
type Result struct {
	// ExecutionID identifies the execution.
	ExecutionID string
	// Status is the terminal execution status.
	Status models.ExecutionStatus
	// Responses holds the final consolidated responses in order.
	Responses []models.AgentResponse
	// Artifacts aggregates every artifact across the final responses.
	Artifacts []models.Artifact
	// MeanQuality is the average quality across the final responses.
	MeanQuality float64
	// Sessions lists the recovery sessions spent on this execution.
	Sessions []*models.RecoverySession
	// Duration is the wall-clock time from dispatch to terminal status.
	Duration time.Duration
}

type processorFunc func(ctx context.Context, plan *models.ExecutionPlan, ec *models.ExecutionContext) error

// Coordinator owns the execution state machine. Safe for concurrent use;
// each execution gets its own context and id.
type Coordinator struct {
	invoker    Invoker
	profiles   ProfileSource
	renderer   *prompt.Renderer
	health     HealthRecorder
	perf       PerformanceRecorder
	classifier FaultClassifier
	recoverer  Recoverer

	now            func() time.Time
	wait           func(ctx context.Context, d time.Duration) error
	events         chan<- Event
	revisionRounds int

	mu       sync.Mutex
	sessions map[string][]*models.RecoverySession
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithWaiter overrides the backoff delay. Tests substitute an instant one.
func WithWaiter(wait func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Coordinator) { c.wait = wait }
}

// WithEvents attaches a channel receiving execution progress events.
// Sends never block; a full channel drops the event.
func WithEvents(ch chan<- Event) Option {
	return func(c *Coordinator) { c.events = ch }
}

// WithRevisionRounds sets how many revision rounds a collaborative run
// performs after the initial pass.
func WithRevisionRounds(rounds int) Option {
	return func(c *Coordinator) {
		if rounds >= 0 {
			c.revisionRounds = rounds
		}
	}
}

// New builds a Coordinator over the given collaborators.
func New(invoker Invoker, profiles ProfileSource, renderer *prompt.Renderer,
	health HealthRecorder, perf PerformanceRecorder,
	classifier FaultClassifier, recoverer Recoverer, opts ...Option) *Coordinator {
	c := &Coordinator{
		invoker:        invoker,
		profiles:       profiles,
		renderer:       renderer,
		health:         health,
		perf:           perf,
		classifier:     classifier,
		recoverer:      recoverer,
		now:            time.Now,
		wait:           waitTimer,
		revisionRounds: 1,
		sessions:       make(map[string][]*models.RecoverySession),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func waitTimer(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Execute drives the plan to a terminal status. It always returns a Result;
// the error is non-nil only when not even a degraded outcome was possible.
func (c *Coordinator) Execute(ctx context.Context, request string, profile models.TaskProfile, plan *models.ExecutionPlan) (*Result, error) {
	executionID := uuid.NewString()
	ec := models.NewExecutionContext(executionID, request, plan.MaxIterations)

	ctx, cancel := context.WithTimeout(ctx, executionTimeout(plan))
	defer cancel()

	started := c.now()
	c.emit(Event{Kind: EventExecutionStarted, ExecutionID: executionID,
		Status: models.StatusInProgress, Message: string(plan.Strategy), At: started})
	log.Printf("[coordinator] execution %s started: strategy=%s agents=%v",
		executionID, plan.Strategy, plan.Agents())

	processor := c.processor(plan.Strategy)
	perr := processor(ctx, plan, ec)

	responses := ec.Responses()
	status := deriveStatus(responses, perr, ctx.Err())
	result := &Result{
		ExecutionID: executionID,
		Status:      status,
		Responses:   responses,
		Artifacts:   collectArtifacts(responses),
		MeanQuality: meanQuality(responses),
		Sessions:    c.takeSessions(executionID),
		Duration:    c.now().Sub(started),
	}

	c.emit(Event{Kind: EventExecutionFinished, ExecutionID: executionID,
		Status: status, At: c.now()})
	log.Printf("[coordinator] execution %s finished: status=%s responses=%d quality=%.2f",
		executionID, status, len(responses), result.MeanQuality)

	if len(responses) == 0 && perr != nil {
		return result, fmt.Errorf("execution %s produced no output: %w", executionID, perr)
	}
	return result, nil
}

func (c *Coordinator) processor(strategy models.Strategy) processorFunc {
	switch strategy {
	case models.StrategySequential:
		return c.processSequential
	case models.StrategyParallel:
		return c.processParallel
	case models.StrategyCollaborative:
		return c.processCollaborative
	default:
		return c.processSingle
	}
}

// executionTimeout bounds the whole execution at twice the summed per-agent
// budgets plus slack for backoff waits.
func executionTimeout(plan *models.ExecutionPlan) time.Duration {
	total := time.Duration(0)
	for _, cfg := range plan.Configs {
		total += cfg.TimeBudget
	}
	if total == 0 {
		total = models.MaxTimeBudget
	}
	return 2*total + 30*time.Second
}

// runAgent is one bounded unit of work: render, invoke, assess, and retry
// transient faults locally. Exhausted or non-transient faults are handed to
// recovery; whatever response survives is returned uncommitted.
func (c *Coordinator) runAgent(ctx context.Context, plan *models.ExecutionPlan, ec *models.ExecutionContext, agentID string, round int) (models.AgentResponse, error) {
	profile := c.profiles.Get(agentID)
	if profile == nil {
		return models.AgentResponse{}, fmt.Errorf("unknown agent %q", agentID)
	}
	cfg := plan.ConfigFor(agentID)

	var event models.FailureEvent
	for attempt := 0; ; attempt++ {
		if err := ec.BeginIteration(); err != nil {
			return models.AgentResponse{}, fmt.Errorf("agent %s: %w", agentID, err)
		}
		c.emit(Event{Kind: EventAgentStarted, ExecutionID: ec.ExecutionID,
			AgentID: agentID, At: c.now()})

		resp, err := c.invokeOnce(ctx, ec, *profile, cfg, round, false)
		if err == nil {
			faultEvent, faulty := c.classifier.ClassifyResponse(agentID, ec.Request, resp)
			if !faulty {
				c.emit(Event{Kind: EventAgentFinished, ExecutionID: ec.ExecutionID,
					AgentID: agentID, Message: fmt.Sprintf("quality %.2f", resp.Quality), At: c.now()})
				return resp, nil
			}
			// Quality faults skip local retry and go straight to remediation.
			return c.recover(ctx, plan, ec, faultEvent, &resp)
		}

		event = c.classifier.ClassifyError(agentID, err)
		event.RetryCount = attempt
		c.emit(Event{Kind: EventFault, ExecutionID: ec.ExecutionID,
			AgentID: agentID, Message: string(event.Kind), At: c.now()})

		if !event.Kind.Transient() || event.RetriesExhausted() {
			return c.recover(ctx, plan, ec, event, nil)
		}
		backoff := retryBackoffBase << uint(attempt)
		c.emit(Event{Kind: EventRetry, ExecutionID: ec.ExecutionID,
			AgentID: agentID, Message: backoff.String(), At: c.now()})
		if werr := c.wait(ctx, backoff); werr != nil {
			return models.AgentResponse{}, fmt.Errorf("agent %s cancelled during backoff: %w", agentID, werr)
		}
	}
}

// invokeOnce performs a single render-invoke-assess cycle and records the
// outcome with the health monitor and the performance store.
func (c *Coordinator) invokeOnce(ctx context.Context, ec *models.ExecutionContext, profile models.AgentProfile, cfg models.AgentConfig, round int, simplified bool) (models.AgentResponse, error) {
	rendered, err := c.renderer.Render(prompt.Request{
		Task:       ec.Request,
		Profile:    profile,
		Config:     cfg,
		Prior:      ec.Responses(),
		Round:      round,
		Simplified: simplified,
	})
	if err != nil {
		return models.AgentResponse{}, err
	}

	invokeCtx := ctx
	if cfg.TimeBudget > 0 {
		var cancel context.CancelFunc
		invokeCtx, cancel = context.WithTimeout(ctx, cfg.TimeBudget)
		defer cancel()
	}

	started := c.now()
	raw, err := c.invoker.Invoke(invokeCtx, profile, cfg, rendered)
	latency := c.now().Sub(started)
	if err != nil {
		c.health.RecordError(profile.ID)
		debugLog("invoke %s/%s failed after %s: %v", ec.ExecutionID, profile.ID, latency, err)
		return models.AgentResponse{}, err
	}
	c.health.RecordSuccess(profile.ID, latency)
	debugLog("invoke %s/%s round=%d simplified=%v tokens=%d latency=%s",
		ec.ExecutionID, profile.ID, round, simplified, raw.TokensUsed, latency)

	resp := assessResponse(profile.ID, ec.Request, raw.Text, raw.TokensUsed, latency, round, c.now())
	if c.perf != nil {
		rec := models.PerformanceRecord{
			AgentID:    profile.ID,
			Success:    resp.IsValid(),
			Quality:    resp.Quality,
			Confidence: resp.Quality,
			TokensUsed: raw.TokensUsed,
			Duration:   latency,
			RecordedAt: c.now(),
		}
		if err := c.perf.Append(rec); err != nil {
			log.Printf("[coordinator] recording performance for %s: %v", profile.ID, err)
		}
	}
	return resp, nil
}

// recover routes an exhausted failure through planning and cascade
// execution. A recovered or degraded response comes back as the unit's
// result; only an abort propagates as an error. fallback, when non-nil, is
// the faulty response kept in case every remediation fails harder.
func (c *Coordinator) recover(ctx context.Context, plan *models.ExecutionPlan, ec *models.ExecutionContext, event models.FailureEvent, faulty *models.AgentResponse) (models.AgentResponse, error) {
	session := c.recoverer.Plan(ec.ExecutionID, event, plan, ec.Iterations())
	c.emit(Event{Kind: EventRecovery, ExecutionID: ec.ExecutionID,
		AgentID: event.AgentID, Message: string(event.Kind), At: c.now()})
	debugLog("recovery %s planned for %s/%s: %d option(s), p=%.2f",
		session.ID, event.AgentID, event.Kind, len(session.Options), session.SuccessProbability)

	c.mu.Lock()
	c.sessions[ec.ExecutionID] = append(c.sessions[ec.ExecutionID], session)
	c.mu.Unlock()

	err := c.recoverer.Execute(ctx, session, ec.Request, c.optionExecutor(plan, ec, event.AgentID))
	if err != nil {
		if faulty != nil {
			return *faulty, nil
		}
		return models.AgentResponse{}, fmt.Errorf("agent %s unrecovered: %w", event.AgentID, err)
	}
	if session.Result != nil {
		return *session.Result, nil
	}
	if faulty != nil {
		return *faulty, nil
	}
	return models.AgentResponse{}, fmt.Errorf("agent %s: recovery produced no result", event.AgentID)
}

// optionExecutor is the continuation recovery runs one fallback option
// through. It owns all agent re-invocation so recovery never calls back
// into coordination.
func (c *Coordinator) optionExecutor(plan *models.ExecutionPlan, ec *models.ExecutionContext, failingAgent string) recovery.Executor {
	return func(ctx context.Context, opt models.FallbackOption) (*models.AgentResponse, error) {
		switch opt.Kind {
		case models.FallbackRetry, models.FallbackAdjust:
			return c.runOption(ctx, ec, failingAgent, applyDelta(plan.ConfigFor(failingAgent), opt.ConfigDelta), false)
		case models.FallbackSubstitute:
			target := opt.TargetAgent
			profile := c.profiles.Get(target)
			if profile == nil {
				return nil, fmt.Errorf("substitute %q not registered", target)
			}
			return c.runOption(ctx, ec, target, profile.BaseConfig.Clip(), false)
		case models.FallbackSimplify:
			return c.runOption(ctx, ec, failingAgent, plan.ConfigFor(failingAgent), true)
		case models.FallbackEscalate:
			return c.runEscalation(ctx, ec, opt.TargetAgents)
		case models.FallbackChangeStrategy:
			log.Printf("[coordinator] execution %s downgrading strategy to %s",
				ec.ExecutionID, opt.TargetStrategy)
			return c.runOption(ctx, ec, plan.Primary, plan.ConfigFor(plan.Primary), false)
		default:
			return nil, fmt.Errorf("unsupported fallback option %q", opt.Kind)
		}
	}
}

func (c *Coordinator) runOption(ctx context.Context, ec *models.ExecutionContext, agentID string, cfg models.AgentConfig, simplified bool) (*models.AgentResponse, error) {
	profile := c.profiles.Get(agentID)
	if profile == nil {
		return nil, fmt.Errorf("unknown agent %q", agentID)
	}
	if err := ec.BeginIteration(); err != nil {
		return nil, err
	}
	resp, err := c.invokeOnce(ctx, ec, *profile, cfg, 0, simplified)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// runEscalation tries each target in order and keeps the best valid answer.
func (c *Coordinator) runEscalation(ctx context.Context, ec *models.ExecutionContext, targets []string) (*models.AgentResponse, error) {
	var best *models.AgentResponse
	var lastErr error
	for _, target := range targets {
		resp, err := c.runOption(ctx, ec, target, configForEscalation(c.profiles.Get(target)), false)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.IsValid() && (best == nil || resp.Quality > best.Quality) {
			best = resp
		}
	}
	if best == nil {
		if lastErr == nil {
			lastErr = fmt.Errorf("no escalation target produced a valid response")
		}
		return nil, lastErr
	}
	return best, nil
}

func configForEscalation(profile *models.AgentProfile) models.AgentConfig {
	if profile == nil {
		return models.AgentConfig{}.Clip()
	}
	return profile.BaseConfig.Clip()
}

// applyDelta folds a fallback option's parameter changes into a config and
// clips the result.
func applyDelta(cfg models.AgentConfig, delta map[string]float64) models.AgentConfig {
	for key, v := range delta {
		switch key {
		case "temperature":
			cfg.Temperature += v
		case "max_tokens":
			cfg.MaxTokens += int(v)
		case "time_budget_seconds":
			cfg.TimeBudget += time.Duration(v) * time.Second
		}
	}
	return cfg.Clip()
}

// deriveStatus computes the terminal status from the final response set.
func deriveStatus(responses []models.AgentResponse, perr, ctxErr error) models.ExecutionStatus {
	if len(responses) == 0 {
		if ctxErr != nil {
			return models.StatusCancelled
		}
		return models.StatusFailed
	}
	invalid := 0
	for i := range responses {
		if !responses[i].IsValid() {
			invalid++
		}
	}
	if float64(invalid)/float64(len(responses)) > 0.5 {
		return models.StatusFailed
	}
	if invalid > 0 || perr != nil || ctxErr != nil {
		return models.StatusPartialSuccess
	}
	if meanQuality(responses) >= 0.7 {
		return models.StatusCompleted
	}
	return models.StatusPartialSuccess
}

func meanQuality(responses []models.AgentResponse) float64 {
	if len(responses) == 0 {
		return 0
	}
	total := 0.0
	for i := range responses {
		total += responses[i].Quality
	}
	return total / float64(len(responses))
}

func collectArtifacts(responses []models.AgentResponse) []models.Artifact {
	var all []models.Artifact
	for i := range responses {
		all = append(all, responses[i].Artifacts...)
	}
	return all
}

func (c *Coordinator) takeSessions(executionID string) []*models.RecoverySession {
	c.mu.Lock()
	defer c.mu.Unlock()
	sessions := c.sessions[executionID]
	delete(c.sessions, executionID)
	return sessions
}
