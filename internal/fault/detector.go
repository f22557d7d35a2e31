package fault

import (
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Dixter999/agentmux/pkg/models"
)

// errorSignatures maps taxonomy kinds to substrings looked for in error
// text. Earlier kinds win; the order matters because provider errors
// frequently mention several of these at once.
var errorSignatureOrder = []models.FailureKind{
	models.FailureRateLimit,
	models.FailureCostLimit,
	models.FailureTimeout,
	models.FailureUnavailable,
	models.FailureParsing,
}

var errorSignatures = map[models.FailureKind][]string{
	models.FailureTimeout:     {"timeout", "timed out", "deadline exceeded", "context canceled"},
	models.FailureRateLimit:   {"rate limit", "rate_limit", "429", "too many requests", "throttl"},
	models.FailureCostLimit:   {"cost limit", "budget exceeded", "quota exceeded", "insufficient credit"},
	models.FailureUnavailable: {"unavailable", "connection refused", "connection reset", "no such host", "503", "502", "overloaded"},
	models.FailureParsing:     {"parse", "unmarshal", "invalid json", "unexpected token", "malformed"},
}

// refusalMarkers flag responses that decline the request outright, which
// classifies as context incompatibility rather than low quality.
var refusalMarkers = []string{
	"i cannot help with",
	"i can't help with",
	"i am unable to",
	"i'm unable to",
	"outside my capabilities",
	"not something i can assist",
}

// Detector turns raw errors and suspect responses into classified
// FailureEvents and tracks them per agent. Safe for concurrent use.
type Detector struct {
	mu      sync.RWMutex
	cfg     DetectorConfig
	now     func() time.Time
	history map[string][]models.FailureEvent
	counts  map[models.FailureKind]int
	total   int
}

// Option configures a Detector.
type Option func(*Detector)

// WithClock overrides the detector's time source.
func WithClock(now func() time.Time) Option {
	return func(d *Detector) { d.now = now }
}

// NewDetector builds a Detector with the given thresholds.
func NewDetector(cfg DetectorConfig, opts ...Option) *Detector {
	d := &Detector{
		cfg:     cfg,
		now:     time.Now,
		history: make(map[string][]models.FailureEvent),
		counts:  make(map[models.FailureKind]int),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ClassifyError classifies a transport or provider error observed while
// executing against an agent, records it, and returns the event.
func (d *Detector) ClassifyError(agentID string, err error) models.FailureEvent {
	kind := models.FailureUnknown
	rootCause := "error text matched no known signature"
	msg := ""
	if err != nil {
		msg = err.Error()
		lowered := strings.ToLower(msg)
		for _, candidate := range errorSignatureOrder {
			if containsAny(lowered, errorSignatures[candidate]) {
				kind = candidate
				rootCause = "error text matched the " + string(kind) + " signature"
				break
			}
		}
	}
	return d.record(agentID, kind, msg, rootCause)
}

// ClassifyResponse inspects a structurally delivered response for quality
// and shape problems. It returns the recorded event and true when the
// response fails a check, or a zero event and false when it passes.
func (d *Detector) ClassifyResponse(agentID, request string, resp models.AgentResponse) (models.FailureEvent, bool) {
	trimmed := strings.TrimSpace(resp.Text)
	lowered := strings.ToLower(trimmed)

	switch {
	case len(trimmed) < d.cfg.MinResponseLength:
		return d.record(agentID, models.FailureIncomplete,
			"response shorter than the minimum useful length",
			"the response body was truncated or empty"), true
	case containsAny(lowered, refusalMarkers):
		return d.record(agentID, models.FailureContextIncompatible,
			"agent declined the request",
			"the agent refused rather than answered"), true
	case overlapRatio(request, trimmed) < d.cfg.OverlapFloor:
		return d.record(agentID, models.FailureContextIncompatible,
			"response does not engage with the request",
			"no significant request vocabulary recurs in the response"), true
	case unbalancedFences(trimmed):
		return d.record(agentID, models.FailureFormat,
			"response contains an unterminated code fence",
			"the requested output structure was not honored"), true
	case resp.Quality > 0 && resp.Quality < d.cfg.QualityFloor:
		return d.record(agentID, models.FailureLowQuality,
			"quality score below the acceptance floor",
			"the response scored under the configured quality floor"), true
	}
	return models.FailureEvent{}, false
}

func (d *Detector) record(agentID string, kind models.FailureKind, message, rootCause string) models.FailureEvent {
	severity, retries := Policy(kind)
	event := models.FailureEvent{
		ID:              uuid.NewString(),
		Kind:            kind,
		Severity:        severity,
		AgentID:         agentID,
		Message:         message,
		MaxRetries:      retries,
		RootCause:       rootCause,
		SuggestedAction: policyTable[kind].suggestedAction,
		OccurredAt:      d.now(),
	}

	d.mu.Lock()
	events := append(d.history[agentID], event)
	if len(events) > d.cfg.HistorySize {
		events = events[len(events)-d.cfg.HistorySize:]
	}
	d.history[agentID] = events
	d.counts[kind]++
	d.total++
	d.mu.Unlock()

	log.Printf("[fault] agent=%s kind=%s severity=%s message=%q", agentID, kind, severity, message)
	return event
}

// Recurring reports whether the agent has hit the recurrence threshold of
// same-kind failures inside the recurrence window ending now.
func (d *Detector) Recurring(agentID string, kind models.FailureKind) bool {
	cutoff := d.now().Add(-d.cfg.RecurrenceWindow)

	d.mu.RLock()
	defer d.mu.RUnlock()
	count := 0
	for _, ev := range d.history[agentID] {
		if ev.Kind == kind && !ev.OccurredAt.Before(cutoff) {
			count++
		}
	}
	return count >= d.cfg.RecurrenceCount
}

// Escalating reports whether the agent's three most recent failures show
// strictly non-decreasing severity ending above where they started.
func (d *Detector) Escalating(agentID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	events := d.history[agentID]
	if len(events) < 3 {
		return false
	}
	last := events[len(events)-3:]
	for i := 1; i < len(last); i++ {
		if !last[i].Severity.AtLeast(last[i-1].Severity) {
			return false
		}
	}
	return last[2].Severity != last[0].Severity
}

// History returns a copy of the agent's recorded failures, oldest first.
func (d *Detector) History(agentID string) []models.FailureEvent {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]models.FailureEvent, len(d.history[agentID]))
	copy(out, d.history[agentID])
	return out
}

// Stats summarizes everything the detector has recorded.
type Stats struct {
	Total   int
	ByKind  map[models.FailureKind]int
	ByAgent map[string]int
}

// Snapshot returns aggregate failure statistics.
func (d *Detector) Snapshot() Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s := Stats{
		Total:   d.total,
		ByKind:  make(map[models.FailureKind]int, len(d.counts)),
		ByAgent: make(map[string]int, len(d.history)),
	}
	for k, v := range d.counts {
		s.ByKind[k] = v
	}
	for id, events := range d.history {
		s.ByAgent[id] = len(events)
	}
	return s
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

// overlapRatio measures how many distinct significant request words recur
// in the response. Words of three runes or fewer are ignored.
func overlapRatio(request, response string) float64 {
	reqWords := significantWords(request)
	if len(reqWords) == 0 {
		return 1
	}
	respWords := significantWords(response)
	hits := 0
	for w := range reqWords {
		if _, ok := respWords[w]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(reqWords))
}

func significantWords(text string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(text))
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.Trim(w, ".,;:!?\"'()[]{}`")
		if len(w) > 3 {
			out[w] = struct{}{}
		}
	}
	return out
}

func unbalancedFences(text string) bool {
	return strings.Count(text, "```")%2 != 0
}
