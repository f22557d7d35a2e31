// Package classify turns a work request into a TaskProfile: task kinds,
// complexity tier, special characteristics, and advisory estimates.
package classify

import "github.com/Dixter999/agentmux/pkg/models"

// KindKeywords is the single source of truth for task-kind classification
// keywords. Action verbs and technical objects both vote; the kind with the
// most hits becomes primary and remaining kinds with hits become secondary.
type KindKeywords struct {
	// Verbs are action words that indicate the kind directly.
	Verbs []string
	// Objects are technical nouns that suggest the kind when present.
	Objects []string
}

// DefaultKindKeywords returns the authoritative keyword table per task kind.
var DefaultKindKeywords = map[models.TaskKind]KindKeywords{
	models.KindCodeGeneration: {
		Verbs:   []string{"write", "create", "implement", "build", "add", "generate", "develop", "make"},
		Objects: []string{"function", "feature", "endpoint", "module", "class", "component", "api", "handler"},
	},
	models.KindDebugging: {
		Verbs:   []string{"fix", "debug", "diagnose", "resolve", "repair", "troubleshoot", "investigate"},
		Objects: []string{"bug", "error", "crash", "exception", "failure", "panic", "leak", "regression"},
	},
	models.KindRefactoring: {
		Verbs:   []string{"refactor", "restructure", "reorganize", "clean", "simplify", "extract", "rename", "modernize"},
		Objects: []string{"duplication", "coupling", "structure", "naming", "dead code", "tech debt"},
	},
	models.KindOptimization: {
		Verbs:   []string{"optimize", "speed up", "accelerate", "tune", "profile", "reduce", "improve performance"},
		Objects: []string{"performance", "latency", "throughput", "memory", "allocation", "bottleneck", "cache", "slow"},
	},
	models.KindDocumentation: {
		Verbs:   []string{"document", "describe", "explain", "annotate", "summarize", "write up"},
		Objects: []string{"readme", "docs", "documentation", "comment", "changelog", "guide", "tutorial"},
	},
	models.KindTesting: {
		Verbs:   []string{"test", "verify", "validate", "cover", "assert", "mock"},
		Objects: []string{"unit test", "integration test", "test case", "coverage", "fixture", "regression test"},
	},
	models.KindAnalysis: {
		Verbs:   []string{"analyze", "review", "audit", "examine", "inspect", "evaluate", "assess", "compare"},
		Objects: []string{"report", "metrics", "dependencies", "security audit", "code review", "complexity"},
	},
	models.KindArchitecture: {
		Verbs:   []string{"design", "architect", "plan", "model", "redesign", "migrate"},
		Objects: []string{"architecture", "schema", "database", "microservice", "infrastructure", "migration", "system design", "scalability"},
	},
}

// characteristicKeywords maps special characteristics to their indicator words.
var characteristicKeywords = map[models.Characteristic][]string{
	models.CharPerformanceCritical: {
		"performance", "fast", "latency", "throughput", "efficient", "real-time", "hot path", "benchmark",
	},
	models.CharSecuritySensitive: {
		"security", "auth", "authentication", "authorization", "password", "secret", "token", "crypto", "encryption", "vulnerability",
	},
	models.CharExplanatory: {
		"explain", "why", "how does", "walk me through", "understand", "clarify", "reasoning", "teach",
	},
	models.CharCreative: {
		"brainstorm", "ideas", "creative", "explore", "alternative", "open-ended", "suggest", "propose",
	},
	models.CharPrecision: {
		"exact", "precise", "specification", "spec", "protocol", "rfc", "standard", "compliant", "byte-for-byte",
	},
	models.CharUrgent: {
		"urgent", "asap", "immediately", "now", "quickly", "deadline", "hotfix", "production is down",
	},
}

// complexityFactors maps indicator keywords to a factor per complexity
// dimension. Each dimension score is the sum of matched factors, adjusted
// by contextual signals before weighting.
type complexityFactors map[string]float64

var (
	cognitiveFactors = complexityFactors{
		"algorithm": 0.3, "concurrent": 0.35, "distributed": 0.4, "recursive": 0.25,
		"state machine": 0.3, "edge case": 0.2, "tradeoff": 0.2, "invariant": 0.25,
	}
	computationalFactors = complexityFactors{
		"large dataset": 0.3, "scale": 0.25, "million": 0.3, "optimization": 0.25,
		"memory": 0.2, "parallel": 0.3, "batch": 0.15, "stream": 0.2,
	}
	technicalFactors = complexityFactors{
		"legacy": 0.3, "framework": 0.15, "library": 0.1, "api": 0.1,
		"protocol": 0.25, "low-level": 0.3, "unsafe": 0.35, "driver": 0.3,
	}
	temporalFactors = complexityFactors{
		"deadline": 0.25, "urgent": 0.3, "asap": 0.3, "today": 0.2,
		"real-time": 0.25, "immediately": 0.3,
	}
	architecturalFactors = complexityFactors{
		"architecture": 0.35, "microservice": 0.3, "refactor": 0.25, "redesign": 0.35,
		"module": 0.15, "boundary": 0.2, "migration": 0.3, "schema": 0.25,
	}
	integrationFactors = complexityFactors{
		"integrate": 0.3, "third-party": 0.25, "external": 0.2, "webhook": 0.2,
		"database": 0.2, "queue": 0.25, "sdk": 0.15, "cross-service": 0.3,
	}
)

// DimensionWeights are the fixed weights for the six complexity dimensions.
// They sum to 1.0 and are validated by the classifier constructor.
type DimensionWeights struct {
	Cognitive     float64
	Computational float64
	Technical     float64
	Temporal      float64
	Architectural float64
	Integration   float64
}

// DefaultDimensionWeights returns the default complexity dimension weights.
func DefaultDimensionWeights() DimensionWeights {
	return DimensionWeights{
		Cognitive:     0.25,
		Computational: 0.15,
		Technical:     0.20,
		Temporal:      0.10,
		Architectural: 0.20,
		Integration:   0.10,
	}
}

// Sum returns the total of all six weights.
func (w DimensionWeights) Sum() float64 {
	return w.Cognitive + w.Computational + w.Technical + w.Temporal + w.Architectural + w.Integration
}
