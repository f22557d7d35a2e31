package models

import "time"

// TaskKind represents the primary category of work a request asks for.
type TaskKind string

const (
	// KindCodeGeneration indicates new code is being written.
	KindCodeGeneration TaskKind = "code_generation"
	// KindDebugging indicates an existing defect is being diagnosed or fixed.
	KindDebugging TaskKind = "debugging"
	// KindRefactoring indicates code is restructured without behavior change.
	KindRefactoring TaskKind = "refactoring"
	// KindOptimization indicates performance or resource usage improvement.
	KindOptimization TaskKind = "optimization"
	// KindDocumentation indicates documentation or explanation is produced.
	KindDocumentation TaskKind = "documentation"
	// KindTesting indicates tests are written or extended.
	KindTesting TaskKind = "testing"
	// KindAnalysis indicates code or data is examined and summarized.
	KindAnalysis TaskKind = "analysis"
	// KindArchitecture indicates system design or structural planning.
	KindArchitecture TaskKind = "architecture"
	// KindGeneral is the catch-all for requests that match no category.
	KindGeneral TaskKind = "general"
)

// Valid returns true if the kind is a known value.
func (k TaskKind) Valid() bool {
	switch k {
	case KindCodeGeneration, KindDebugging, KindRefactoring, KindOptimization,
		KindDocumentation, KindTesting, KindAnalysis, KindArchitecture, KindGeneral:
		return true
	default:
		return false
	}
}

// AllTaskKinds returns every known task kind. The slice is a fresh copy.
func AllTaskKinds() []TaskKind {
	return []TaskKind{
		KindCodeGeneration, KindDebugging, KindRefactoring, KindOptimization,
		KindDocumentation, KindTesting, KindAnalysis, KindArchitecture, KindGeneral,
	}
}

// Characteristic marks a special property of a request that influences
// agent selection and configuration.
type Characteristic string

const (
	// CharMultiFile indicates the request spans many source files.
	CharMultiFile Characteristic = "multi_file"
	// CharPerformanceCritical indicates latency or throughput matters.
	CharPerformanceCritical Characteristic = "performance_critical"
	// CharSecuritySensitive indicates the work touches auth, secrets, or crypto.
	CharSecuritySensitive Characteristic = "security_sensitive"
	// CharExplanatory indicates the user wants reasoning, not just output.
	CharExplanatory Characteristic = "explanatory"
	// CharCreative indicates open-ended generation with no single right answer.
	CharCreative Characteristic = "creative"
	// CharPrecision indicates exactness is demanded (specs, protocols, math).
	CharPrecision Characteristic = "precision"
	// CharUrgent indicates the user signaled time pressure.
	CharUrgent Characteristic = "urgent"
	// CharLongContext indicates the input exceeds typical context comfort.
	CharLongContext Characteristic = "long_context"
)

// Valid returns true if the characteristic is a known value.
func (c Characteristic) Valid() bool {
	switch c {
	case CharMultiFile, CharPerformanceCritical, CharSecuritySensitive,
		CharExplanatory, CharCreative, CharPrecision, CharUrgent, CharLongContext:
		return true
	default:
		return false
	}
}

// Complexity represents the estimated difficulty tier of a request.
type Complexity string

const (
	// ComplexitySimple covers single-step, well-bounded requests.
	ComplexitySimple Complexity = "simple"
	// ComplexityModerate covers multi-step requests within one concern.
	ComplexityModerate Complexity = "moderate"
	// ComplexityComplex covers cross-cutting requests with design decisions.
	ComplexityComplex Complexity = "complex"
	// ComplexityCritical covers requests where mistakes are expensive.
	ComplexityCritical Complexity = "critical"
)

// Valid returns true if the complexity is a known value.
func (c Complexity) Valid() bool {
	switch c {
	case ComplexitySimple, ComplexityModerate, ComplexityComplex, ComplexityCritical:
		return true
	default:
		return false
	}
}

// Rank returns an ordinal for comparisons: simple < moderate < complex < critical.
// Unknown values rank below simple.
func (c Complexity) Rank() int {
	switch c {
	case ComplexitySimple:
		return 1
	case ComplexityModerate:
		return 2
	case ComplexityComplex:
		return 3
	case ComplexityCritical:
		return 4
	default:
		return 0
	}
}

// Risk represents the blast radius if execution goes wrong.
type Risk string

const (
	// RiskLow indicates failures are cheap and self-contained.
	RiskLow Risk = "low"
	// RiskMedium indicates failures cost rework but no damage.
	RiskMedium Risk = "medium"
	// RiskHigh indicates failures could break shared functionality.
	RiskHigh Risk = "high"
	// RiskCritical indicates failures could corrupt data or security posture.
	RiskCritical Risk = "critical"
)

// Valid returns true if the risk is a known value.
func (r Risk) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return true
	default:
		return false
	}
}

// AtLeast returns true if the risk is equal to or above the given level.
func (r Risk) AtLeast(other Risk) bool {
	return r.rank() >= other.rank()
}

func (r Risk) rank() int {
	switch r {
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	case RiskCritical:
		return 4
	default:
		return 0
	}
}

// TaskProfile is the classified description of a work request.
// It is created once per request by the classifier and treated as
// read-only by every downstream component.
type TaskProfile struct {
	// PrimaryKind is the dominant task category.
	PrimaryKind TaskKind `json:"primary_kind"`
	// SecondaryKinds lists additional categories the request touches,
	// strongest first.
	SecondaryKinds []TaskKind `json:"secondary_kinds,omitempty"`
	// Complexity is the estimated difficulty tier.
	Complexity Complexity `json:"complexity"`
	// Risk is the blast-radius tier derived from the complexity score.
	Risk Risk `json:"risk"`
	// Characteristics holds the special properties detected on the request.
	Characteristics []Characteristic `json:"characteristics,omitempty"`
	// Confidence is how certain the classification is (0.0-1.0).
	Confidence float64 `json:"confidence"`
	// EstimatedTokens is the projected total token consumption.
	EstimatedTokens int64 `json:"estimated_tokens"`
	// EstimatedDuration is the projected wall-clock time.
	EstimatedDuration time.Duration `json:"estimated_duration"`
	// EstimatedCost is the projected dollar cost.
	EstimatedCost float64 `json:"estimated_cost"`
	// FileCount is the number of files attached to the request.
	FileCount int `json:"file_count"`
	// Language is the dominant programming language detected, if any.
	Language string `json:"language,omitempty"`
	// Metadata carries open extension fields for collaborators.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// HasCharacteristic returns true if the profile carries the given characteristic.
func (p *TaskProfile) HasCharacteristic(c Characteristic) bool {
	for _, have := range p.Characteristics {
		if have == c {
			return true
		}
	}
	return false
}

// Kinds returns the primary kind followed by the secondary kinds.
func (p *TaskProfile) Kinds() []TaskKind {
	kinds := make([]TaskKind, 0, 1+len(p.SecondaryKinds))
	kinds = append(kinds, p.PrimaryKind)
	kinds = append(kinds, p.SecondaryKinds...)
	return kinds
}
