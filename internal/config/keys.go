// API key management utilities.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNoAPIKey is returned when no API key is configured for a backend.
var ErrNoAPIKey = errors.New("no API key configured")

// APIKeyFor returns the API key for the named backend. Environment
// variables take precedence over the config file.
func APIKeyFor(cfg *Config, backend string) (string, error) {
	var envVar, fromConfig string
	switch backend {
	case "anthropic":
		envVar, fromConfig = "ANTHROPIC_API_KEY", cfg.Anthropic.APIKey
	case "openai":
		envVar, fromConfig = "OPENAI_API_KEY", cfg.OpenAI.APIKey
	case "google":
		envVar, fromConfig = "GEMINI_API_KEY", cfg.Google.APIKey
	default:
		return "", fmt.Errorf("unknown backend %q", backend)
	}

	if key := os.Getenv(envVar); key != "" {
		return key, nil
	}

	if fromConfig != "" {
		key := os.ExpandEnv(fromConfig)
		if key != "" && !strings.HasPrefix(key, "${") {
			return key, nil
		}
	}

	return "", fmt.Errorf("%s: %w", backend, ErrNoAPIKey)
}

// ValidateAnthropicKey performs basic format validation on an Anthropic
// API key. It does not verify the key with the API.
func ValidateAnthropicKey(key string) error {
	if key == "" {
		return ErrNoAPIKey
	}

	if !strings.HasPrefix(key, "sk-ant-") {
		return errors.New("invalid API key format: expected 'sk-ant-' prefix")
	}

	if len(key) < 20 {
		return errors.New("invalid API key format: key too short")
	}

	return nil
}

// MaskAPIKey returns a masked version of an API key for display.
func MaskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}

	if len(key) <= 15 {
		return "***"
	}

	return key[:7] + "..." + key[len(key)-4:]
}

// KeySource represents where an API key was loaded from.
type KeySource string

const (
	KeySourceEnv    KeySource = "environment"
	KeySourceConfig KeySource = "config_file"
	KeySourceNone   KeySource = "none"
)

// KeySourceFor returns where the key for the named backend was sourced from.
func KeySourceFor(cfg *Config, backend string) KeySource {
	var envVar, fromConfig string
	switch backend {
	case "anthropic":
		envVar, fromConfig = "ANTHROPIC_API_KEY", cfg.Anthropic.APIKey
	case "openai":
		envVar, fromConfig = "OPENAI_API_KEY", cfg.OpenAI.APIKey
	case "google":
		envVar, fromConfig = "GEMINI_API_KEY", cfg.Google.APIKey
	default:
		return KeySourceNone
	}

	if os.Getenv(envVar) != "" {
		return KeySourceEnv
	}
	if fromConfig != "" {
		return KeySourceConfig
	}
	return KeySourceNone
}
