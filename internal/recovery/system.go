// Package recovery turns classified failures into bounded remediation
// sessions: root-cause analysis, cascade execution with per-option backoff,
// and a deterministic degraded answer when every option is exhausted.
package recovery

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Dixter999/agentmux/pkg/models"
)

// Signals exposes the fault detector's pattern analysis.
type Signals interface {
	Recurring(agentID string, kind models.FailureKind) bool
	Escalating(agentID string) bool
}

// Planner exposes the fallback cascade's option generation and learning.
type Planner interface {
	Options(event models.FailureEvent, plan *models.ExecutionPlan, iteration int) []models.FallbackOption
	RecordAttempt(attempt models.FallbackAttempt)
}

// HealthSource provides live per-agent health for the system-state snapshot.
type HealthSource interface {
	Health(agentID string) models.AgentHealth
}

// Executor runs one fallback option and returns the response it produced.
// The coordinator supplies it as a continuation so recovery never needs a
// reference back into coordination.
type Executor func(ctx context.Context, opt models.FallbackOption) (*models.AgentResponse, error)

const sessionHistorySize = 50

// System owns one RecoverySession per failing execution and keeps running
// outcome counters across sessions. Safe for concurrent use.
type System struct {
	mu       sync.Mutex
	signals  Signals
	planner  Planner
	health   HealthSource
	now      func() time.Time
	wait     func(ctx context.Context, d time.Duration) error
	history  []*models.RecoverySession
	outcomes map[models.RecoveryStatus]int
	byOption map[models.FallbackKind]int
}

// Option configures a System.
type Option func(*System)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *System) { s.now = now }
}

// WithWaiter overrides the backoff delay. Tests substitute an instant one.
func WithWaiter(wait func(ctx context.Context, d time.Duration) error) Option {
	return func(s *System) { s.wait = wait }
}

// NewSystem builds a recovery System over the given collaborators.
func NewSystem(signals Signals, planner Planner, health HealthSource, opts ...Option) *System {
	s := &System{
		signals:  signals,
		planner:  planner,
		health:   health,
		now:      time.Now,
		wait:     waitTimer,
		outcomes: make(map[models.RecoveryStatus]int),
		byOption: make(map[models.FallbackKind]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
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

// Plan builds a RecoverySession for the failure: root-cause report,
// remediation options, advisory estimates, and the operator-notification
// decision. The session starts in the planned state.
func (s *System) Plan(executionID string, event models.FailureEvent, plan *models.ExecutionPlan, iteration int) *models.RecoverySession {
	report := s.analyze(event)
	options := s.planner.Options(event, plan, iteration)

	session := &models.RecoverySession{
		ID:                 uuid.NewString(),
		ExecutionID:        executionID,
		Failure:            event,
		Report:             report,
		Options:            options,
		Status:             models.RecoveryPlanned,
		SuccessProbability: successProbability(event, report, len(options)),
		EstimatedTime:      estimateTime(options),
		NotifyOperator:     notifyOperator(event, report),
		StartedAt:          s.now(),
	}
	if session.NotifyOperator {
		log.Printf("[recovery] operator notification required: execution=%s agent=%s kind=%s",
			executionID, event.AgentID, event.Kind)
	}
	return session
}

// Execute runs the session's options in priority order. Each option waits
// its own backoff before running; the first usable response recovers the
// session. An abort option or full exhaustion ends it, and exhaustion
// synthesizes a degraded answer from the request and the report instead of
// propagating a hard failure.
func (s *System) Execute(ctx context.Context, session *models.RecoverySession, request string, run Executor) error {
	session.Status = models.RecoveryInProgress

	for _, opt := range session.Options {
		if opt.Kind == models.FallbackAbort {
			s.finish(session, models.RecoveryAborted, nil)
			return fmt.Errorf("recovery aborted: %s", session.Failure.Kind)
		}
		if err := s.wait(ctx, opt.Backoff); err != nil {
			s.finish(session, models.RecoveryAborted, nil)
			return fmt.Errorf("recovery cancelled: %w", err)
		}

		started := s.now()
		resp, err := run(ctx, opt)
		attempt := models.FallbackAttempt{
			Option:      opt,
			FailureKind: session.Failure.Kind,
			Success:     err == nil && resp != nil && resp.IsValid(),
			Duration:    s.now().Sub(started) + opt.Backoff,
			StartedAt:   started,
		}
		if err != nil {
			attempt.Error = err.Error()
		}
		session.Attempts = append(session.Attempts, attempt)
		s.planner.RecordAttempt(attempt)

		if attempt.Success {
			s.recordOption(opt.Kind)
			s.finish(session, models.RecoveryRecovered, resp)
			return nil
		}
		log.Printf("[recovery] option %s failed for execution %s: %s",
			opt.Kind, session.ExecutionID, attempt.Error)
	}

	degraded := s.degrade(session, request)
	s.finish(session, models.RecoveryDegraded, &degraded)
	return nil
}

// analyze builds the root-cause report for a failure event.
func (s *System) analyze(event models.FailureEvent) models.RootCauseReport {
	report := models.RootCauseReport{
		FailureID:        event.ID,
		Summary:          event.RootCause,
		SystemState:      make(map[string]string),
		RecurringPattern: s.signals.Recurring(event.AgentID, event.Kind),
		EscalatingTrend:  s.signals.Escalating(event.AgentID),
	}
	if report.Summary == "" {
		report.Summary = string(event.Kind) + " failure on agent " + event.AgentID
	}

	var h models.AgentHealth
	if s.health != nil {
		h = s.health.Health(event.AgentID)
		report.SystemState["agent"] = event.AgentID
		report.SystemState["available"] = fmt.Sprintf("%t", h.Available)
		report.SystemState["latency"] = h.Latency.String()
		report.SystemState["rate_headroom"] = fmt.Sprintf("%.2f", h.RateHeadroom)
		report.SystemState["recent_errors"] = fmt.Sprintf("%d", h.RecentErrors)
	}

	report.Factors = contributingFactors(event, h, report.RecurringPattern, report.EscalatingTrend)
	report.Recommendations = recommendations(event, report)
	return report
}

func contributingFactors(event models.FailureEvent, h models.AgentHealth, recurring, escalating bool) []models.ContributingFactor {
	var factors []models.ContributingFactor
	if !h.Available && h.AgentID != "" {
		factors = append(factors, models.ContributingFactor{
			Name:   "agent_unavailable",
			Impact: 0.9,
			Detail: "the health monitor marks the agent unreachable",
		})
	}
	if h.RecentErrors > 0 {
		impact := 0.3 + 0.15*float64(h.RecentErrors)
		if impact > 1 {
			impact = 1
		}
		factors = append(factors, models.ContributingFactor{
			Name:   "degraded_agent_health",
			Impact: impact,
			Detail: fmt.Sprintf("%d recent errors inside the health window", h.RecentErrors),
		})
	}
	if h.RateHeadroom > 0 && h.RateHeadroom < 0.3 {
		factors = append(factors, models.ContributingFactor{
			Name:   "rate_pressure",
			Impact: 0.8,
			Detail: fmt.Sprintf("only %.0f%% of the rate limit remains", h.RateHeadroom*100),
		})
	}
	if recurring {
		factors = append(factors, models.ContributingFactor{
			Name:   "recurring_pattern",
			Impact: 0.8,
			Detail: "the same failure kind repeated recently for this agent",
		})
	}
	if escalating {
		factors = append(factors, models.ContributingFactor{
			Name:   "escalating_trend",
			Impact: 0.75,
			Detail: "recent failures are growing in severity",
		})
	}
	if event.MaxRetries > 0 && event.RetryCount > 0 {
		factors = append(factors, models.ContributingFactor{
			Name:   "retry_pressure",
			Impact: float64(event.RetryCount) / float64(event.MaxRetries),
			Detail: fmt.Sprintf("%d of %d retries already spent", event.RetryCount, event.MaxRetries),
		})
	}
	sort.SliceStable(factors, func(i, j int) bool { return factors[i].Impact > factors[j].Impact })
	return factors
}

func recommendations(event models.FailureEvent, report models.RootCauseReport) []string {
	recs := make([]string, 0, 3)
	if event.SuggestedAction != "" {
		recs = append(recs, event.SuggestedAction)
	}
	if report.RecurringPattern {
		recs = append(recs, "take the agent out of rotation until the pattern clears")
	}
	if report.EscalatingTrend {
		recs = append(recs, "review the agent's recent failure history before re-dispatching")
	}
	return recs
}

// successProbability is a closed-form estimate, advisory only.
func successProbability(event models.FailureEvent, report models.RootCauseReport, optionCount int) float64 {
	var base float64
	switch {
	case event.Kind == models.FailureCostLimit:
		base = 0.2
	case event.Kind.Transient():
		base = 0.8
	case event.Kind.QualityRelated():
		base = 0.6
	default:
		base = 0.5
	}
	p := base - 0.1*float64(event.RetryCount)
	if report.RecurringPattern {
		p -= 0.15
	}
	if optionCount == 0 {
		p = 0.05
	}
	if p < 0.05 {
		p = 0.05
	}
	if p > 0.95 {
		p = 0.95
	}
	return p
}

// estimateTime assumes a nominal ten seconds of work per option on top of
// each option's declared backoff.
func estimateTime(options []models.FallbackOption) time.Duration {
	total := time.Duration(0)
	for _, opt := range options {
		total += opt.Backoff + 10*time.Second
	}
	return total
}

func notifyOperator(event models.FailureEvent, report models.RootCauseReport) bool {
	if event.Severity == models.SeverityCritical || event.Kind == models.FailureCostLimit {
		return true
	}
	if report.RecurringPattern || report.EscalatingTrend {
		return true
	}
	high := 0
	for _, f := range report.Factors {
		if f.HighImpact() {
			high++
		}
	}
	return high >= 2
}

// degrade synthesizes the best-effort answer returned when every option is
// exhausted. The output is a pure function of the request and the report.
func (s *System) degrade(session *models.RecoverySession, request string) models.AgentResponse {
	var b strings.Builder
	b.WriteString("The request could not be completed after ")
	fmt.Fprintf(&b, "%d remediation attempt(s).\n\n", len(session.Attempts))
	fmt.Fprintf(&b, "Request: %s\n", strings.TrimSpace(request))
	fmt.Fprintf(&b, "Root cause: %s\n", session.Report.Summary)
	if len(session.Report.Recommendations) > 0 {
		b.WriteString("Recommendations:\n")
		for _, r := range session.Report.Recommendations {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}
	return models.AgentResponse{
		AgentID:   "recovery",
		Text:      b.String(),
		Quality:   0.2,
		CreatedAt: s.now(),
	}
}

func (s *System) finish(session *models.RecoverySession, status models.RecoveryStatus, result *models.AgentResponse) {
	session.Status = status
	session.Result = result
	session.FinishedAt = s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes[status]++
	s.history = append(s.history, session)
	if len(s.history) > sessionHistorySize {
		s.history = s.history[len(s.history)-sessionHistorySize:]
	}
}

func (s *System) recordOption(kind models.FallbackKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byOption[kind]++
}

// Stats summarizes recovery outcomes across all finished sessions.
type Stats struct {
	Sessions    int
	Outcomes    map[models.RecoveryStatus]int
	Recoveries  map[models.FallbackKind]int
	SuccessRate float64
}

// Snapshot returns the accumulated recovery statistics.
func (s *System) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Stats{
		Sessions:   len(s.history),
		Outcomes:   make(map[models.RecoveryStatus]int, len(s.outcomes)),
		Recoveries: make(map[models.FallbackKind]int, len(s.byOption)),
	}
	total, recovered := 0, 0
	for status, n := range s.outcomes {
		st.Outcomes[status] = n
		total += n
		if status == models.RecoveryRecovered {
			recovered = n
		}
	}
	for kind, n := range s.byOption {
		st.Recoveries[kind] = n
	}
	if total > 0 {
		st.SuccessRate = float64(recovered) / float64(total)
	}
	return st
}

// Sessions returns a copy of the bounded session history, oldest first.
func (s *System) Sessions() []*models.RecoverySession {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.RecoverySession, len(s.history))
	copy(out, s.history)
	return out
}
