// Package fault classifies observed execution failures into a closed
// taxonomy, grades their severity from a static policy table, and keeps a
// bounded per-agent failure history for recurrence and trend detection.
package fault

import (
	"time"

	"github.com/Dixter999/agentmux/pkg/models"
)

// policyEntry is one row of the static failure policy table.
type policyEntry struct {
	severity        models.Severity
	maxRetries      int
	suggestedAction string
}

// policyTable maps each taxonomy entry to its fixed severity, retry
// budget, and first remediation. Policy-limit kinds are never retried.
var policyTable = map[models.FailureKind]policyEntry{
	models.FailureTimeout:             {models.SeverityMedium, 3, "retry with backoff, raise the time budget"},
	models.FailureRateLimit:           {models.SeverityMedium, 3, "retry after the rate window clears"},
	models.FailureUnavailable:         {models.SeverityHigh, 2, "retry, then switch to a substitute agent"},
	models.FailureCostLimit:           {models.SeverityCritical, 0, "abort or downgrade the strategy"},
	models.FailureLowQuality:          {models.SeverityLow, 2, "adjust parameters or substitute the agent"},
	models.FailureIncomplete:          {models.SeverityLow, 2, "raise the token allowance and retry"},
	models.FailureParsing:             {models.SeverityMedium, 2, "retry with a stricter format instruction"},
	models.FailureFormat:              {models.SeverityLow, 2, "restate the expected format and retry"},
	models.FailureContextIncompatible: {models.SeverityMedium, 1, "simplify or rephrase the request"},
	models.FailureUnknown:             {models.SeverityMedium, 1, "single retry, then escalate"},
}

// Policy returns the severity and retry budget for a failure kind.
func Policy(kind models.FailureKind) (models.Severity, int) {
	p, ok := policyTable[kind]
	if !ok {
		p = policyTable[models.FailureUnknown]
	}
	return p.severity, p.maxRetries
}

// DetectorConfig carries the tunable numeric thresholds of classification.
// The taxonomy itself is fixed; only the cut-offs move.
type DetectorConfig struct {
	// QualityFloor is the quality score below which a response is
	// classified low-quality.
	QualityFloor float64
	// MinResponseLength is the shortest response not considered incomplete.
	MinResponseLength int
	// OverlapFloor is the minimum request/response lexical-overlap ratio
	// before a response is judged context-incompatible.
	OverlapFloor float64
	// RecurrenceCount is the same-kind failure count that raises the
	// recurrence signal.
	RecurrenceCount int
	// RecurrenceWindow bounds how far back recurrences are counted.
	RecurrenceWindow time.Duration
	// HistorySize bounds the per-agent rolling failure history.
	HistorySize int
}

// DefaultDetectorConfig returns the default classification thresholds.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		QualityFloor:      0.4,
		MinResponseLength: 40,
		OverlapFloor:      0.08,
		RecurrenceCount:   3,
		RecurrenceWindow:  5 * time.Minute,
		HistorySize:       50,
	}
}
