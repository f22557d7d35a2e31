package report

import (
	"strings"
	"testing"
	"time"

	"github.com/Dixter999/agentmux/internal/coordinator"
	"github.com/Dixter999/agentmux/pkg/models"
)

func sampleResult() coordinator.Result {
	return coordinator.Result{
		ExecutionID: "exec-1",
		Status:      models.StatusCompleted,
		MeanQuality: 0.81,
		Duration:    3200 * time.Millisecond,
		Responses: []models.AgentResponse{
			{
				AgentID:    "claude-coder",
				Text:       "Here is the implementation.",
				Quality:    0.81,
				TokensUsed: 1200,
				Duration:   3 * time.Second,
			},
		},
		Artifacts: []models.Artifact{
			{Kind: models.ArtifactCode, Language: "go", Content: "func main() {}\n"},
			{Kind: models.ArtifactInstructions, Content: "- step one\n- step two"},
		},
	}
}

func samplePlan() *models.ExecutionPlan {
	return &models.ExecutionPlan{
		Strategy:      models.StrategySingle,
		Primary:       "claude-coder",
		FallbackChain: []string{"gpt-coder"},
		MaxIterations: 4,
		Estimates: models.PlanEstimates{
			Duration:           30 * time.Second,
			Cost:               0.0450,
			SuccessProbability: 0.85,
		},
	}
}

func TestMarkdownSections(t *testing.T) {
	md := Markdown("write a parser", samplePlan(), sampleResult())

	for _, want := range []string{
		"# Execution exec-1",
		"**Status:** completed",
		"## Request",
		"write a parser",
		"## Plan",
		"- Strategy: single",
		"- Fallback chain: gpt-coder",
		"## Responses",
		"### claude-coder (quality 0.81)",
		"## Artifacts",
		"```go\nfunc main() {}\n```",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}

	// Instruction artifacts are inlined in the responses, not re-fenced.
	if strings.Contains(md, "```\n- step one") {
		t.Error("instruction artifact should not be rendered as a code fence")
	}
}

func TestMarkdownRecoverySection(t *testing.T) {
	res := sampleResult()
	res.Sessions = []*models.RecoverySession{
		{
			Failure:        models.FailureEvent{AgentID: "claude-coder", Kind: models.FailureTimeout},
			Status:         models.RecoveryRecovered,
			Attempts:       []models.FallbackAttempt{{}},
			NotifyOperator: true,
		},
	}

	md := Markdown("req", nil, res)

	if !strings.Contains(md, "## Recovery") {
		t.Fatal("missing recovery section")
	}
	if !strings.Contains(md, "timeout on claude-coder") {
		t.Errorf("missing session line:\n%s", md)
	}
	if !strings.Contains(md, "(operator notified)") {
		t.Error("missing operator note")
	}
}

func TestPrintSummary(t *testing.T) {
	var b strings.Builder
	PrintSummary(&b, sampleResult())

	out := b.String()
	if !strings.Contains(out, "execution exec-1: completed") {
		t.Errorf("missing status line:\n%s", out)
	}
	if !strings.Contains(out, "claude-coder quality 0.81") {
		t.Errorf("missing response line:\n%s", out)
	}
}
