package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if !cfg.Registry.Watch {
		t.Error("expected registry.watch to default to true")
	}

	if cfg.History.WindowSize != 20 {
		t.Errorf("expected history window 20, got %d", cfg.History.WindowSize)
	}

	if err := cfg.Weights().Validate(); err != nil {
		t.Errorf("default weights invalid: %v", err)
	}

	if cfg.Decision.StrongTop != 0.70 {
		t.Errorf("expected strong_top 0.70, got %v", cfg.Decision.StrongTop)
	}

	if cfg.Decision.MaxFallbacks != 3 {
		t.Errorf("expected max_fallbacks 3, got %d", cfg.Decision.MaxFallbacks)
	}

	if cfg.Execution.RevisionRounds != 1 {
		t.Errorf("expected revision_rounds 1, got %d", cfg.Execution.RevisionRounds)
	}

	if cfg.Health.RefreshInterval != 30*time.Second {
		t.Errorf("expected health refresh 30s, got %v", cfg.Health.RefreshInterval)
	}

	if cfg.TUI.RefreshRate != 100*time.Millisecond {
		t.Errorf("expected refresh rate 100ms, got %v", cfg.TUI.RefreshRate)
	}
}

func TestLoadFromPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
anthropic:
  api_key: sk-ant-test-key-12345678
openai:
  api_key: sk-openai-test
registry:
  table_path: /etc/agentmux/agents.yaml
  watch: false
history:
  window_size: 50
decision:
  strong_top: 0.80
execution:
  revision_rounds: 2
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Anthropic.APIKey != "sk-ant-test-key-12345678" {
		t.Errorf("unexpected anthropic key %q", cfg.Anthropic.APIKey)
	}

	if cfg.OpenAI.APIKey != "sk-openai-test" {
		t.Errorf("unexpected openai key %q", cfg.OpenAI.APIKey)
	}

	if cfg.Registry.TablePath != "/etc/agentmux/agents.yaml" {
		t.Errorf("unexpected table path %q", cfg.Registry.TablePath)
	}

	if cfg.Registry.Watch {
		t.Error("expected registry.watch false")
	}

	if cfg.History.WindowSize != 50 {
		t.Errorf("expected window 50, got %d", cfg.History.WindowSize)
	}

	if cfg.Decision.StrongTop != 0.80 {
		t.Errorf("expected strong_top 0.80, got %v", cfg.Decision.StrongTop)
	}

	// Values absent from the file keep their defaults.
	if cfg.Decision.ClearGap != 0.15 {
		t.Errorf("expected default clear_gap 0.15, got %v", cfg.Decision.ClearGap)
	}

	if cfg.Scoring.Specialization != 0.40 {
		t.Errorf("expected default specialization 0.40, got %v", cfg.Scoring.Specialization)
	}

	if cfg.Execution.RevisionRounds != 2 {
		t.Errorf("expected revision_rounds 2, got %d", cfg.Execution.RevisionRounds)
	}
}

func TestLoadFromPathExpandsEnvReferences(t *testing.T) {
	t.Setenv("AGENTMUX_TEST_KEY", "sk-ant-from-env-1234567890")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := "anthropic:\n  api_key: ${AGENTMUX_TEST_KEY}\n"
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Anthropic.APIKey != "sk-ant-from-env-1234567890" {
		t.Errorf("expected ${VAR} expansion, got %q", cfg.Anthropic.APIKey)
	}
}

func TestLoadFromPathMissingFile(t *testing.T) {
	_, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestThresholdsConversion(t *testing.T) {
	cfg := Default()
	cfg.Decision.StrongTop = 0.9
	cfg.Decision.Excellent = 0.8

	th := cfg.Thresholds()
	if th.StrongTop != 0.9 || th.Excellent != 0.8 {
		t.Errorf("conversion lost values: %+v", th)
	}
	if th.ClearGap != 0.15 || th.Competent != 0.55 {
		t.Errorf("conversion lost defaults: %+v", th)
	}
}
