package config

import (
	"errors"
	"testing"
)

func TestAPIKeyForEnvPrecedence(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-env-key-123456789")

	cfg := Default()
	cfg.Anthropic.APIKey = "sk-ant-REDACTED"

	key, err := APIKeyFor(cfg, "anthropic")
	if err != nil {
		t.Fatalf("APIKeyFor failed: %v", err)
	}
	if key != "sk-ant-env-key-123456789" {
		t.Errorf("expected environment key to win, got %q", key)
	}
}

func TestAPIKeyForConfigFallback(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	cfg := Default()
	cfg.OpenAI.APIKey = "sk-openai-from-config"

	key, err := APIKeyFor(cfg, "openai")
	if err != nil {
		t.Fatalf("APIKeyFor failed: %v", err)
	}
	if key != "sk-openai-from-config" {
		t.Errorf("expected config key, got %q", key)
	}
}

func TestAPIKeyForMissing(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	_, err := APIKeyFor(Default(), "google")
	if !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestAPIKeyForUnknownBackend(t *testing.T) {
	_, err := APIKeyFor(Default(), "scripted")
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestValidateAnthropicKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"empty", "", true},
		{"wrong prefix", "sk-openai-abcdefghijklmnop", true},
		{"too short", "sk-ant-ab", true},
		{"valid", "sk-ant-REDACTED", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAnthropicKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAnthropicKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{"empty", "", "(not set)"},
		{"short", "sk-ant-abc", "***"},
		{"long", "sk-ant-REDACTED", "sk-ant-...mnop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskAPIKey(tt.key); got != tt.want {
				t.Errorf("MaskAPIKey(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestKeySourceFor(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	cfg := Default()
	if got := KeySourceFor(cfg, "google"); got != KeySourceNone {
		t.Errorf("expected none, got %v", got)
	}

	cfg.Google.APIKey = "some-key"
	if got := KeySourceFor(cfg, "google"); got != KeySourceConfig {
		t.Errorf("expected config_file, got %v", got)
	}

	t.Setenv("GEMINI_API_KEY", "env-key")
	if got := KeySourceFor(cfg, "google"); got != KeySourceEnv {
		t.Errorf("expected environment, got %v", got)
	}
}
