package coordinator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Dixter999/agentmux/internal/fallback"
	"github.com/Dixter999/agentmux/internal/fault"
	"github.com/Dixter999/agentmux/internal/prompt"
	"github.com/Dixter999/agentmux/internal/recovery"
	"github.com/Dixter999/agentmux/pkg/models"
)

// goodAnswer is long enough, engages the request vocabulary, and carries a
// code artifact, so it assesses well above the completion threshold.
const goodAnswer = `The lookup function spends most of its time rebuilding the index map on
every call. Hoisting the index construction out of the hot path and reusing
it across lookups removes the quadratic behavior entirely. The function
below keeps the index alongside the data and invalidates it only on write,
which preserves correctness while making every lookup a constant-time map
access. Memory overhead stays proportional to the key count, and the
change is fully backward compatible with existing call sites because the
exported signature does not change at all in this lookup revision.

` + "```go" + `
func (s *Store) Lookup(key string) (Value, bool) {
	s.ensureIndex()
	v, ok := s.index[key]
	return v, ok
}
` + "```" + `
`

// plainAnswer passes every structural check but assesses mediocre: no
// artifacts and thin engagement with the request.
const plainAnswer = "You could consider caching things somewhere to make the lookup code a little quicker overall."

type scriptStep struct {
	text string
	err  error
}

// scriptedInvoker plays a per-agent queue of outcomes; the last step
// repeats once the queue is exhausted. Safe for concurrent use.
type scriptedInvoker struct {
	mu     sync.Mutex
	script map[string][]scriptStep
	calls  map[string]int
}

func newScriptedInvoker() *scriptedInvoker {
	return &scriptedInvoker{
		script: make(map[string][]scriptStep),
		calls:  make(map[string]int),
	}
}

func (s *scriptedInvoker) add(agentID string, steps ...scriptStep) {
	s.script[agentID] = append(s.script[agentID], steps...)
}

func (s *scriptedInvoker) Invoke(_ context.Context, profile models.AgentProfile, _ models.AgentConfig, _ string) (InvocationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	steps := s.script[profile.ID]
	if len(steps) == 0 {
		return InvocationResult{}, errors.New("no script for agent " + profile.ID)
	}
	i := s.calls[profile.ID]
	if i >= len(steps) {
		i = len(steps) - 1
	}
	s.calls[profile.ID]++
	step := steps[i]
	if step.err != nil {
		return InvocationResult{}, step.err
	}
	return InvocationResult{Text: step.text, TokensUsed: 500}, nil
}

func (s *scriptedInvoker) callCount(agentID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[agentID]
}

type fakeProfiles struct {
	profiles     map[string]*models.AgentProfile
	incompatible map[string]string
}

func (f *fakeProfiles) Get(agentID string) *models.AgentProfile { return f.profiles[agentID] }

func (f *fakeProfiles) Incompatible(a, b string) bool {
	return f.incompatible[a] == b || f.incompatible[b] == a
}

func (f *fakeProfiles) Complementary(a, b string) bool { return false }

func (f *fakeProfiles) SubstituteIDs(agentID string) []string {
	p := f.profiles[agentID]
	if p == nil {
		return nil
	}
	return p.Substitutes
}

type nopHealth struct{}

func (nopHealth) RecordSuccess(string, time.Duration) {}
func (nopHealth) RecordError(string)                  {}
func (nopHealth) Health(string) models.AgentHealth    { return models.AgentHealth{} }

type memPerf struct {
	mu   sync.Mutex
	recs []models.PerformanceRecord
}

func (m *memPerf) Append(rec models.PerformanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, rec)
	return nil
}

func testProfile(id string, kind models.TaskKind, substitutes ...string) *models.AgentProfile {
	return &models.AgentProfile{
		ID:      id,
		Name:    id,
		Backend: "scripted",
		Model:   "test",
		Strengths: map[models.TaskKind]float64{
			kind: 0.9,
		},
		BaseConfig: models.AgentConfig{
			Temperature: 0.3,
			MaxTokens:   4096,
			TimeBudget:  60 * time.Second,
		},
		Substitutes: substitutes,
	}
}

func testPlan(strategy models.Strategy, maxIterations int, agents ...string) *models.ExecutionPlan {
	plan := &models.ExecutionPlan{
		Strategy:      strategy,
		Primary:       agents[0],
		Secondaries:   agents[1:],
		Configs:       make(map[string]models.AgentConfig),
		MaxIterations: maxIterations,
		CreatedAt:     time.Now(),
	}
	for _, id := range agents {
		plan.Configs[id] = models.AgentConfig{
			Temperature: 0.3,
			MaxTokens:   4096,
			TimeBudget:  60 * time.Second,
		}
	}
	return plan
}

type harness struct {
	coord    *Coordinator
	invoker  *scriptedInvoker
	profiles *fakeProfiles
	delays   *[]time.Duration
}

func newHarness(t *testing.T, profiles *fakeProfiles) *harness {
	t.Helper()
	renderer, err := prompt.NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	invoker := newScriptedInvoker()
	detector := fault.NewDetector(fault.DefaultDetectorConfig())
	cascade := fallback.NewCascade(profiles)
	var delays []time.Duration
	instant := func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	system := recovery.NewSystem(detector, cascade, nopHealth{}, recovery.WithWaiter(instant))
	coord := New(invoker, profiles, renderer, nopHealth{}, &memPerf{}, detector, system,
		WithWaiter(func(_ context.Context, d time.Duration) error {
			delays = append(delays, d)
			return nil
		}))
	return &harness{coord: coord, invoker: invoker, profiles: profiles, delays: &delays}
}

func TestSingleStrategyCompletes(t *testing.T) {
	profiles := &fakeProfiles{profiles: map[string]*models.AgentProfile{
		"claude-coder": testProfile("claude-coder", models.KindOptimization),
	}}
	h := newHarness(t, profiles)
	h.invoker.add("claude-coder", scriptStep{text: goodAnswer})

	result, err := h.coord.Execute(context.Background(), "optimize the lookup function",
		models.TaskProfile{}, testPlan(models.StrategySingle, 4, "claude-coder"))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result.Status != models.StatusCompleted {
		t.Errorf("status = %s, want completed (quality %.2f)", result.Status, result.MeanQuality)
	}
	if len(result.Responses) != 1 {
		t.Fatalf("responses = %d, want 1", len(result.Responses))
	}
	if len(result.Artifacts) == 0 {
		t.Error("code artifact not extracted")
	}
	if result.MeanQuality < 0.7 {
		t.Errorf("quality = %.2f, want >= 0.7", result.MeanQuality)
	}
}

func TestAlwaysTimingOutBackendIsBounded(t *testing.T) {
	profiles := &fakeProfiles{profiles: map[string]*models.AgentProfile{
		"claude-coder": testProfile("claude-coder", models.KindCodeGeneration),
	}}
	h := newHarness(t, profiles)
	h.invoker.add("claude-coder", scriptStep{err: errors.New("context deadline exceeded")})

	result, err := h.coord.Execute(context.Background(), "generate the parser",
		models.TaskProfile{}, testPlan(models.StrategySingle, 4, "claude-coder"))
	if err == nil {
		t.Fatal("an unrecoverable execution should surface an error")
	}
	if result.Status != models.StatusFailed {
		t.Errorf("status = %s, want failed", result.Status)
	}
	// Iteration cap 4: the retry loop spends them all, recovery finds none left.
	if got := h.invoker.callCount("claude-coder"); got != 4 {
		t.Errorf("invocations = %d, want 4", got)
	}
	wantDelays := []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}
	if len(*h.delays) < len(wantDelays) {
		t.Fatalf("delays = %v, want at least %v", *h.delays, wantDelays)
	}
	for i, want := range wantDelays {
		if (*h.delays)[i] != want {
			t.Errorf("delay[%d] = %s, want %s", i, (*h.delays)[i], want)
		}
	}
}

func TestUnavailableAgentRecoversViaSubstitute(t *testing.T) {
	profiles := &fakeProfiles{profiles: map[string]*models.AgentProfile{
		"claude-coder": testProfile("claude-coder", models.KindCodeGeneration, "gpt-coder"),
		"gpt-coder":    testProfile("gpt-coder", models.KindCodeGeneration),
	}}
	h := newHarness(t, profiles)
	h.invoker.add("claude-coder", scriptStep{err: errors.New("dial tcp: connection refused")})
	h.invoker.add("gpt-coder", scriptStep{text: goodAnswer})

	result, err := h.coord.Execute(context.Background(), "optimize the lookup function",
		models.TaskProfile{}, testPlan(models.StrategySingle, 8, "claude-coder"))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result.Status != models.StatusCompleted {
		t.Errorf("status = %s, want completed", result.Status)
	}
	if len(result.Responses) != 1 || result.Responses[0].AgentID != "gpt-coder" {
		t.Fatalf("responses = %+v, want one from gpt-coder", result.Responses)
	}
	// Unavailable carries a retry budget of 2, so the primary is tried thrice.
	if got := h.invoker.callCount("claude-coder"); got != 3 {
		t.Errorf("primary invocations = %d, want 3", got)
	}
	if len(result.Sessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(result.Sessions))
	}
	if result.Sessions[0].Status != models.RecoveryRecovered {
		t.Errorf("session status = %s, want recovered", result.Sessions[0].Status)
	}
}

func TestSequentialStopsOnCompletionMarker(t *testing.T) {
	profiles := &fakeProfiles{profiles: map[string]*models.AgentProfile{
		"claude-architect": testProfile("claude-architect", models.KindArchitecture),
		"claude-coder":     testProfile("claude-coder", models.KindCodeGeneration),
	}}
	h := newHarness(t, profiles)
	h.invoker.add("claude-architect", scriptStep{text: goodAnswer + "\n" + prompt.CompletionMarker})
	h.invoker.add("claude-coder", scriptStep{text: goodAnswer})

	result, err := h.coord.Execute(context.Background(), "optimize the lookup function",
		models.TaskProfile{}, testPlan(models.StrategySequential, 6, "claude-architect", "claude-coder"))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(result.Responses) != 1 {
		t.Errorf("responses = %d, want 1 after the completion marker", len(result.Responses))
	}
	if h.invoker.callCount("claude-coder") != 0 {
		t.Error("the second agent must not run after completion is signalled")
	}
}

func TestParallelKeepsBestDuplicateType(t *testing.T) {
	profiles := &fakeProfiles{profiles: map[string]*models.AgentProfile{
		"claude-coder": testProfile("claude-coder", models.KindCodeGeneration),
		"gpt-coder":    testProfile("gpt-coder", models.KindCodeGeneration),
	}}
	h := newHarness(t, profiles)
	h.invoker.add("claude-coder", scriptStep{text: goodAnswer})
	h.invoker.add("gpt-coder", scriptStep{text: plainAnswer})

	result, err := h.coord.Execute(context.Background(), "optimize the lookup function",
		models.TaskProfile{}, testPlan(models.StrategyParallel, 6, "claude-coder", "gpt-coder"))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(result.Responses) != 1 {
		t.Fatalf("responses = %d, want the duplicate type collapsed to 1", len(result.Responses))
	}
	if result.Responses[0].AgentID != "claude-coder" {
		t.Errorf("kept %s, want the higher-quality claude-coder response", result.Responses[0].AgentID)
	}
}

func TestParallelIncompatibleAgentsRunOrdered(t *testing.T) {
	profiles := &fakeProfiles{
		profiles: map[string]*models.AgentProfile{
			"claude-coder":  testProfile("claude-coder", models.KindCodeGeneration),
			"gpt-optimizer": testProfile("gpt-optimizer", models.KindOptimization),
		},
		incompatible: map[string]string{"claude-coder": "gpt-optimizer"},
	}
	h := newHarness(t, profiles)
	h.invoker.add("claude-coder", scriptStep{text: goodAnswer})
	h.invoker.add("gpt-optimizer", scriptStep{text: strings.ReplaceAll(goodAnswer, "Lookup", "FastLookup")})

	result, err := h.coord.Execute(context.Background(), "optimize the lookup function",
		models.TaskProfile{}, testPlan(models.StrategyParallel, 6, "claude-coder", "gpt-optimizer"))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(result.Responses) != 2 {
		t.Fatalf("responses = %d, want both distinct types kept", len(result.Responses))
	}
}

func TestCollaborativeRunsRevisionRound(t *testing.T) {
	profiles := &fakeProfiles{profiles: map[string]*models.AgentProfile{
		"claude-architect": testProfile("claude-architect", models.KindArchitecture),
		"gemini-analyst":   testProfile("gemini-analyst", models.KindAnalysis),
	}}
	h := newHarness(t, profiles)
	revised := strings.ReplaceAll(goodAnswer, "quadratic", "linearithmic")
	h.invoker.add("claude-architect", scriptStep{text: goodAnswer}, scriptStep{text: revised})
	h.invoker.add("gemini-analyst",
		scriptStep{text: strings.ReplaceAll(goodAnswer, "lookup", "scan")},
		scriptStep{text: strings.ReplaceAll(revised, "lookup", "scan")})

	result, err := h.coord.Execute(context.Background(), "optimize the lookup function",
		models.TaskProfile{}, testPlan(models.StrategyCollaborative, 10, "claude-architect", "gemini-analyst"))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(result.Responses) != 4 {
		t.Fatalf("responses = %d, want 2 initial + 2 revised", len(result.Responses))
	}
	if h.invoker.callCount("claude-architect") != 2 {
		t.Errorf("architect calls = %d, want 2", h.invoker.callCount("claude-architect"))
	}
	last := result.Responses[len(result.Responses)-1]
	if last.Round != 1 {
		t.Errorf("last response round = %d, want 1", last.Round)
	}
}

func TestEventsAreEmitted(t *testing.T) {
	profiles := &fakeProfiles{profiles: map[string]*models.AgentProfile{
		"claude-coder": testProfile("claude-coder", models.KindCodeGeneration),
	}}
	renderer, _ := prompt.NewRenderer()
	invoker := newScriptedInvoker()
	invoker.add("claude-coder", scriptStep{text: goodAnswer})
	detector := fault.NewDetector(fault.DefaultDetectorConfig())
	system := recovery.NewSystem(detector, fallback.NewCascade(profiles), nopHealth{})
	events := make(chan Event, 32)
	coord := New(invoker, profiles, renderer, nopHealth{}, nil, detector, system, WithEvents(events))

	_, err := coord.Execute(context.Background(), "optimize the lookup function",
		models.TaskProfile{}, testPlan(models.StrategySingle, 4, "claude-coder"))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	close(events)
	var kinds []EventKind
	for e := range events {
		kinds = append(kinds, e.Kind)
	}
	want := []EventKind{EventExecutionStarted, EventAgentStarted, EventAgentFinished, EventExecutionFinished}
	if len(kinds) != len(want) {
		t.Fatalf("events = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("event[%d] = %s, want %s", i, kinds[i], want[i])
		}
	}
}
