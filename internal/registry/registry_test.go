package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Dixter999/agentmux/pkg/models"
)

const sampleTable = `
agents:
  - id: claude-coder
    name: Claude Coder
    backend: anthropic
    model: claude-sonnet-4-5-20250929
    strengths:
      code_generation: 0.9
      debugging: 0.85
    characteristics: [multi_file, precision]
    temperature: 0.2
    max_tokens: 8192
    time_budget_seconds: 120
    cost_per_mtokens_in: 3.0
    cost_per_mtokens_out: 15.0
    max_context_tokens: 200000
    substitutes: [gpt-coder]
    incompatible_with: [gpt-optimizer]
  - id: gpt-coder
    name: GPT Coder
    backend: openai
    model: gpt-5.2-codex
    strengths:
      code_generation: 0.85
    temperature: 0.4
    max_tokens: 8192
    time_budget_seconds: 120
    complementary_with: [claude-coder]
`

func writeTable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agents.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	r, err := Load(writeTable(t, sampleTable))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if r.Count() != 2 {
		t.Fatalf("Count = %d, want 2", r.Count())
	}

	p := r.Get("claude-coder")
	if p == nil {
		t.Fatal("claude-coder not found")
	}
	if p.StrengthFor(models.KindCodeGeneration) != 0.9 {
		t.Errorf("strength = %v, want 0.9", p.StrengthFor(models.KindCodeGeneration))
	}
	if !p.HasCharacteristic(models.CharMultiFile) {
		t.Error("expected multi_file characteristic")
	}
	if p.BaseConfig.Temperature != 0.2 {
		t.Errorf("Temperature = %v, want 0.2", p.BaseConfig.Temperature)
	}
}

func TestLoad_RejectsBadTables(t *testing.T) {
	tests := []struct {
		name  string
		table string
	}{
		{"empty table", "agents: []"},
		{"missing id", "agents:\n  - name: Anon\n"},
		{"duplicate id", "agents:\n  - id: a\n  - id: a\n"},
		{"unknown task kind", "agents:\n  - id: a\n    strengths:\n      juggling: 0.5\n"},
		{"strength out of range", "agents:\n  - id: a\n    strengths:\n      debugging: 1.5\n"},
		{"unknown characteristic", "agents:\n  - id: a\n    characteristics: [psychic]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeTable(t, tt.table)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRegistry_Relations(t *testing.T) {
	r, err := Load(writeTable(t, sampleTable))
	if err != nil {
		t.Fatal(err)
	}

	// Incompatibility is listed on claude-coder only but must be symmetric.
	if !r.Incompatible("claude-coder", "gpt-optimizer") {
		t.Error("claude-coder vs gpt-optimizer should be incompatible")
	}
	if !r.Incompatible("gpt-optimizer", "claude-coder") {
		t.Error("incompatibility must be symmetric")
	}
	if r.Incompatible("claude-coder", "gpt-coder") {
		t.Error("claude-coder vs gpt-coder should be compatible")
	}

	// Complementarity is listed on gpt-coder only but must be symmetric.
	if !r.Complementary("claude-coder", "gpt-coder") || !r.Complementary("gpt-coder", "claude-coder") {
		t.Error("complementary relation must be symmetric")
	}
}

func TestRegistry_Similar(t *testing.T) {
	r := LoadDefault()

	// Same backend counts as similar.
	if !r.Similar("claude-coder", "claude-architect") {
		t.Error("two anthropic agents should be similar")
	}
	// Declared substitutes count as similar across backends.
	if !r.Similar("claude-coder", "gpt-coder") {
		t.Error("substitute agents should be similar")
	}
	if r.Similar("gpt-optimizer", "gemini-analyst") {
		t.Error("unrelated agents on different backends should not be similar")
	}
	if r.Similar("claude-coder", "nonexistent") {
		t.Error("unknown agents are never similar")
	}
}

func TestLoadDefault(t *testing.T) {
	r := LoadDefault()
	if r.Count() < 4 {
		t.Fatalf("default table has %d agents, want at least 4", r.Count())
	}

	// Every substitute reference must resolve within the table.
	for _, p := range r.All() {
		for _, sub := range p.Substitutes {
			if r.Get(sub) == nil {
				t.Errorf("agent %s lists unknown substitute %s", p.ID, sub)
			}
		}
	}

	// Base configs come out clipped.
	for _, p := range r.All() {
		clipped := p.BaseConfig.Clip()
		if clipped.Temperature != p.BaseConfig.Temperature ||
			clipped.MaxTokens != p.BaseConfig.MaxTokens ||
			clipped.TimeBudget != p.BaseConfig.TimeBudget {
			t.Errorf("agent %s base config not within safe bounds", p.ID)
		}
	}
}

func TestRegistry_Substitutes(t *testing.T) {
	r := LoadDefault()
	subs := r.Substitutes("claude-architect")
	if len(subs) != 2 {
		t.Fatalf("got %d substitutes, want 2", len(subs))
	}
	if subs[0].ID != "claude-coder" {
		t.Errorf("first substitute = %s, want claude-coder (best first)", subs[0].ID)
	}

	if got := r.Substitutes("nonexistent"); got != nil {
		t.Error("unknown agent should have no substitutes")
	}
}
