package prompt

import (
	"strings"
	"testing"

	"github.com/Dixter999/agentmux/pkg/models"
)

func TestRenderInitialPass(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := r.Render(Request{
		Task: "Refactor the session store for clarity.",
		Config: models.AgentConfig{
			SystemHint: "You are a careful refactoring assistant.",
			MaxTokens:  4096,
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(out, "You are a careful refactoring assistant.") {
		t.Errorf("system hint not leading:\n%s", out)
	}
	if !strings.Contains(out, "Refactor the session store for clarity.") {
		t.Error("task text missing")
	}
	if strings.Contains(out, "Prior responses") {
		t.Error("no prior section expected on the initial pass")
	}
	if strings.Contains(out, "revision round") {
		t.Error("no revision preamble expected on round 0")
	}
	if !strings.Contains(out, CompletionMarker) {
		t.Error("completion marker instruction missing")
	}
}

func TestRenderWithPriorAndRound(t *testing.T) {
	r, _ := NewRenderer()
	out, err := r.Render(Request{
		Task:   "Design the cache layer.",
		Config: models.AgentConfig{MaxTokens: 2048},
		Prior: []models.AgentResponse{
			{AgentID: "claude-architect", Text: "Use a two-level cache."},
		},
		Round: 1,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "revision round 1") {
		t.Error("revision preamble missing")
	}
	if !strings.Contains(out, "[claude-architect]") || !strings.Contains(out, "Use a two-level cache.") {
		t.Errorf("prior response missing:\n%s", out)
	}
}

func TestSimplifyKeepsLeadingSentences(t *testing.T) {
	task := "Fix the race in the worker pool. It shows under load. Also please reformat every file and update the changelog and bump the version."
	got := Simplify(task)
	if !strings.Contains(got, "Fix the race in the worker pool.") {
		t.Errorf("core sentence dropped: %q", got)
	}
	if strings.Contains(got, "changelog") {
		t.Errorf("elaboration kept: %q", got)
	}
	if !strings.Contains(got, "Focus on the core request only.") {
		t.Errorf("focusing instruction missing: %q", got)
	}
}

func TestRenderDeterministic(t *testing.T) {
	r, _ := NewRenderer()
	req := Request{Task: "Summarize the design.", Config: models.AgentConfig{MaxTokens: 1024}}
	a, _ := r.Render(req)
	b, _ := r.Render(req)
	if a != b {
		t.Error("identical requests must render identically")
	}
}
