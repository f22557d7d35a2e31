package fault

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Dixter999/agentmux/pkg/models"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestDetector() (*Detector, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	return NewDetector(DefaultDetectorConfig(), WithClock(clock.Now)), clock
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want models.FailureKind
	}{
		{"deadline", errors.New("context deadline exceeded"), models.FailureTimeout},
		{"throttled", errors.New("HTTP 429: too many requests"), models.FailureRateLimit},
		{"quota", errors.New("monthly quota exceeded for project"), models.FailureCostLimit},
		{"refused", errors.New("dial tcp: connection refused"), models.FailureUnavailable},
		{"overloaded", errors.New("503 service overloaded"), models.FailureUnavailable},
		{"badjson", errors.New("json: unexpected token '<'"), models.FailureParsing},
		{"mystery", errors.New("something odd happened"), models.FailureUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := newTestDetector()
			ev := d.ClassifyError("claude-coder", tt.err)
			if ev.Kind != tt.want {
				t.Errorf("kind = %s, want %s", ev.Kind, tt.want)
			}
			wantSev, wantRetries := Policy(tt.want)
			if ev.Severity != wantSev {
				t.Errorf("severity = %s, want %s", ev.Severity, wantSev)
			}
			if ev.MaxRetries != wantRetries {
				t.Errorf("max retries = %d, want %d", ev.MaxRetries, wantRetries)
			}
			if ev.ID == "" {
				t.Error("event id not assigned")
			}
		})
	}
}

func TestRateLimitOutranksTimeoutInMixedErrors(t *testing.T) {
	d, _ := newTestDetector()
	ev := d.ClassifyError("gpt-coder", errors.New("request timed out waiting for rate limit window"))
	if ev.Kind != models.FailureRateLimit {
		t.Errorf("kind = %s, want %s", ev.Kind, models.FailureRateLimit)
	}
}

func TestClassifyResponse(t *testing.T) {
	goodBody := "The cache invalidation bug comes from the stale key index. " +
		"Rebuilding the index on write fixes the inconsistency."
	tests := []struct {
		name    string
		request string
		resp    models.AgentResponse
		want    models.FailureKind
		faulty  bool
	}{
		{
			name:    "short response is incomplete",
			request: "explain the cache invalidation bug",
			resp:    models.AgentResponse{Text: "ok"},
			want:    models.FailureIncomplete,
			faulty:  true,
		},
		{
			name:    "refusal is context incompatible",
			request: "explain the cache invalidation bug",
			resp:    models.AgentResponse{Text: "I'm unable to help with that request, it falls outside my area."},
			want:    models.FailureContextIncompatible,
			faulty:  true,
		},
		{
			name:    "off topic response is context incompatible",
			request: "explain the cache invalidation bug in the session store",
			resp:    models.AgentResponse{Text: "Here is a recipe for sourdough bread. Mix flour and water, then wait overnight before baking at high heat."},
			want:    models.FailureContextIncompatible,
			faulty:  true,
		},
		{
			name:    "unterminated fence is a format fault",
			request: "write the cache invalidation fix",
			resp:    models.AgentResponse{Text: "The cache invalidation fix:\n```go\nfunc invalidate() {}\n" + strings.Repeat("x", 40)},
			want:    models.FailureFormat,
			faulty:  true,
		},
		{
			name:    "poor quality score",
			request: "explain the cache invalidation bug",
			resp:    models.AgentResponse{Text: goodBody, Quality: 0.2},
			want:    models.FailureLowQuality,
			faulty:  true,
		},
		{
			name:    "healthy response passes",
			request: "explain the cache invalidation bug",
			resp:    models.AgentResponse{Text: goodBody, Quality: 0.9},
			faulty:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := newTestDetector()
			ev, faulty := d.ClassifyResponse("claude-coder", tt.request, tt.resp)
			if faulty != tt.faulty {
				t.Fatalf("faulty = %v, want %v", faulty, tt.faulty)
			}
			if faulty && ev.Kind != tt.want {
				t.Errorf("kind = %s, want %s", ev.Kind, tt.want)
			}
		})
	}
}

func TestRecurringRateLimits(t *testing.T) {
	d, clock := newTestDetector()
	rateErr := errors.New("429 too many requests")

	d.ClassifyError("gpt-coder", rateErr)
	clock.Advance(time.Minute)
	d.ClassifyError("gpt-coder", rateErr)
	if d.Recurring("gpt-coder", models.FailureRateLimit) {
		t.Fatal("two failures should not trip the recurrence signal")
	}

	clock.Advance(time.Minute)
	d.ClassifyError("gpt-coder", rateErr)
	if !d.Recurring("gpt-coder", models.FailureRateLimit) {
		t.Error("three rate limits inside the window should recur")
	}
	if d.Recurring("claude-coder", models.FailureRateLimit) {
		t.Error("recurrence must be scoped per agent")
	}

	clock.Advance(10 * time.Minute)
	if d.Recurring("gpt-coder", models.FailureRateLimit) {
		t.Error("failures outside the window must not count")
	}
}

func TestEscalatingSeverity(t *testing.T) {
	d, _ := newTestDetector()
	d.ClassifyResponse("claude-fast", "summarize the release notes in detail",
		models.AgentResponse{Text: "no"})
	if d.Escalating("claude-fast") {
		t.Fatal("one failure is not a trend")
	}
	d.ClassifyError("claude-fast", errors.New("request timed out"))
	d.ClassifyError("claude-fast", errors.New("backend unavailable"))
	if !d.Escalating("claude-fast") {
		t.Error("low, medium, high should register as escalating")
	}

	d.ClassifyResponse("claude-fast", "summarize the release notes in detail",
		models.AgentResponse{Text: "no"})
	if d.Escalating("claude-fast") {
		t.Error("a low severity tail should break the trend")
	}
}

func TestHistoryIsBounded(t *testing.T) {
	cfg := DefaultDetectorConfig()
	cfg.HistorySize = 5
	d := NewDetector(cfg)
	for i := 0; i < 9; i++ {
		d.ClassifyError("claude-coder", errors.New("request timed out"))
	}
	if got := len(d.History("claude-coder")); got != 5 {
		t.Errorf("history length = %d, want 5", got)
	}
}

func TestSnapshot(t *testing.T) {
	d, _ := newTestDetector()
	d.ClassifyError("claude-coder", errors.New("request timed out"))
	d.ClassifyError("claude-coder", errors.New("429 rate limit"))
	d.ClassifyError("gpt-coder", errors.New("request timed out"))

	s := d.Snapshot()
	if s.Total != 3 {
		t.Errorf("total = %d, want 3", s.Total)
	}
	if s.ByKind[models.FailureTimeout] != 2 {
		t.Errorf("timeout count = %d, want 2", s.ByKind[models.FailureTimeout])
	}
	if s.ByAgent["claude-coder"] != 2 {
		t.Errorf("claude-coder count = %d, want 2", s.ByAgent["claude-coder"])
	}
}
