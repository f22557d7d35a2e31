package classify

import (
	"reflect"
	"testing"

	"github.com/Dixter999/agentmux/internal/scan"
	"github.com/Dixter999/agentmux/pkg/models"
)

func newClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_RejectsBadWeights(t *testing.T) {
	_, err := New(WithDimensionWeights(DimensionWeights{Cognitive: 0.5, Technical: 0.2}))
	if err == nil {
		t.Fatal("expected error for weights that do not sum to 1")
	}
}

func TestClassify_OptimizationRequest(t *testing.T) {
	c := newClassifier(t)

	profile := c.Classify(Request{Text: "optimize this function for performance"})

	if profile.PrimaryKind != models.KindOptimization {
		t.Errorf("PrimaryKind = %s, want optimization", profile.PrimaryKind)
	}
	if !profile.HasCharacteristic(models.CharPerformanceCritical) {
		t.Error("expected performance_critical characteristic")
	}
	if profile.FileCount != 0 {
		t.Errorf("FileCount = %d, want 0", profile.FileCount)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	c := newClassifier(t)
	req := Request{Text: "refactor the auth module and add unit tests for the token handler"}
	files := []scan.FileInfo{
		{Path: "auth.go", Language: "go", EffectiveLines: 300},
		{Path: "token.go", Language: "go", EffectiveLines: 150},
	}

	first := c.ClassifyScanned(req, files)
	for i := 0; i < 10; i++ {
		if got := c.ClassifyScanned(req, files); !reflect.DeepEqual(first, got) {
			t.Fatalf("classification not deterministic on run %d:\nfirst: %+v\n  got: %+v", i, first, got)
		}
	}
}

func TestClassify_MultiFileCharacteristic(t *testing.T) {
	c := newClassifier(t)
	req := Request{Text: "optimize this function for performance"}

	few := c.ClassifyScanned(req, make([]scan.FileInfo, 3))
	if few.HasCharacteristic(models.CharMultiFile) {
		t.Error("3 files should not raise multi_file")
	}

	many := c.ClassifyScanned(req, make([]scan.FileInfo, 6))
	if !many.HasCharacteristic(models.CharMultiFile) {
		t.Error("6 files should raise multi_file")
	}
}

func TestClassify_ConfidenceRisesWithFileContext(t *testing.T) {
	c := newClassifier(t)
	req := Request{Text: "fix the crash in the parser"}

	textOnly := c.ClassifyScanned(req, nil)
	withFiles := c.ClassifyScanned(req, []scan.FileInfo{{Path: "parser.go", Language: "go", EffectiveLines: 200}})

	if withFiles.Confidence <= textOnly.Confidence {
		t.Errorf("confidence with files (%v) should exceed text-only (%v)",
			withFiles.Confidence, textOnly.Confidence)
	}
}

func TestClassify_SecuritySensitiveRaisesRisk(t *testing.T) {
	c := newClassifier(t)
	profile := c.Classify(Request{Text: "add a small helper for password hashing"})

	if !profile.HasCharacteristic(models.CharSecuritySensitive) {
		t.Fatal("expected security_sensitive characteristic")
	}
	if !profile.Risk.AtLeast(models.RiskHigh) {
		t.Errorf("Risk = %s, want at least high for security work", profile.Risk)
	}
}

func TestClassify_ComplexityTiers(t *testing.T) {
	c := newClassifier(t)

	simple := c.Classify(Request{Text: "fix a typo in the readme"})
	if simple.Complexity != models.ComplexitySimple {
		t.Errorf("typo fix complexity = %s, want simple", simple.Complexity)
	}

	hard := c.Classify(Request{Text: "redesign the distributed architecture: migrate the database schema, " +
		"integrate the external queue, optimize the concurrent state machine for scale, " +
		"and handle every edge case in the legacy protocol driver"})
	if hard.Complexity.Rank() < models.ComplexityComplex.Rank() {
		t.Errorf("architecture overhaul complexity = %s, want complex or critical", hard.Complexity)
	}
}

func TestClassify_NoKeywordsFallsBackToGeneral(t *testing.T) {
	c := newClassifier(t)
	profile := c.Classify(Request{Text: "hello there"})

	if profile.PrimaryKind != models.KindGeneral {
		t.Errorf("PrimaryKind = %s, want general", profile.PrimaryKind)
	}
	if profile.Confidence >= 0.5 {
		t.Errorf("Confidence = %v, want low confidence without keyword signal", profile.Confidence)
	}
}

func TestClassify_EstimatesPopulated(t *testing.T) {
	c := newClassifier(t)
	profile := c.ClassifyScanned(
		Request{Text: "implement the new export endpoint"},
		[]scan.FileInfo{{Path: "api.go", Language: "go", EffectiveLines: 500}},
	)

	if profile.EstimatedTokens <= 0 {
		t.Error("EstimatedTokens should be positive")
	}
	if profile.EstimatedDuration <= 0 {
		t.Error("EstimatedDuration should be positive")
	}
	if profile.EstimatedCost <= 0 {
		t.Error("EstimatedCost should be positive")
	}
}

func TestCountSentences(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"one sentence", 1},
		{"First. Second.", 2},
		{"What?! Really...", 2},
		{"Trailing fragment. still counts", 2},
	}
	for _, tt := range tests {
		if got := countSentences(tt.text); got != tt.want {
			t.Errorf("countSentences(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}
