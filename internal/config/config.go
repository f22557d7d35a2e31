// Package config handles configuration loading for agentmux. It supports
// XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/Dixter999/agentmux/internal/decision"
	"github.com/Dixter999/agentmux/internal/scoring"
)

// Config holds all configuration for agentmux.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Google    GoogleConfig    `mapstructure:"google"`
	Registry  RegistryConfig  `mapstructure:"registry"`
	History   HistoryConfig   `mapstructure:"history"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Decision  DecisionConfig  `mapstructure:"decision"`
	Execution ExecutionConfig `mapstructure:"execution"`
	Health    HealthConfig    `mapstructure:"health"`
	TUI       TUIConfig       `mapstructure:"tui"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey        string `mapstructure:"api_key"`
	UseAWSBedrock bool   `mapstructure:"use_aws_bedrock"`
	AWSRegion     string `mapstructure:"aws_region"`
	AWSProfile    string `mapstructure:"aws_profile"`
}

// OpenAIConfig holds OpenAI API settings.
type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// GoogleConfig holds Gemini API settings.
type GoogleConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// RegistryConfig holds capability table settings.
type RegistryConfig struct {
	// TablePath is the YAML capability table; empty uses the built-ins.
	TablePath string `mapstructure:"table_path"`
	// Watch enables hot reload of the table file.
	Watch bool `mapstructure:"watch"`
}

// HistoryConfig holds performance history settings.
type HistoryConfig struct {
	// DBPath is the sqlite database path; empty uses the XDG default.
	DBPath string `mapstructure:"db_path"`
	// WindowSize is the trailing record window per agent and task kind.
	WindowSize int `mapstructure:"window_size"`
}

// ScoringConfig holds the five component weights. They must sum to 1.0.
type ScoringConfig struct {
	Specialization     float64 `mapstructure:"specialization"`
	History            float64 `mapstructure:"history"`
	CharacteristicsFit float64 `mapstructure:"characteristics_fit"`
	Availability       float64 `mapstructure:"availability"`
	Cost               float64 `mapstructure:"cost"`
}

// DecisionConfig holds the strategy selection cut-offs.
type DecisionConfig struct {
	StrongTop    float64 `mapstructure:"strong_top"`
	ClearGap     float64 `mapstructure:"clear_gap"`
	Competent    float64 `mapstructure:"competent"`
	Excellent    float64 `mapstructure:"excellent"`
	MaxFallbacks int     `mapstructure:"max_fallbacks"`
}

// ExecutionConfig holds coordinator settings.
type ExecutionConfig struct {
	// RevisionRounds is the number of refinement passes in collaborative runs.
	RevisionRounds int `mapstructure:"revision_rounds"`
}

// HealthConfig holds background health refresh settings.
type HealthConfig struct {
	// RefreshInterval is how often the monitor prunes stale errors and
	// re-checks agent availability.
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// TUIConfig holds execution monitor display settings.
type TUIConfig struct {
	RefreshRate time.Duration `mapstructure:"refresh_rate"`
}

// Weights converts the scoring section into engine weights.
func (c *Config) Weights() scoring.Weights {
	return scoring.Weights{
		Specialization:     c.Scoring.Specialization,
		History:            c.Scoring.History,
		CharacteristicsFit: c.Scoring.CharacteristicsFit,
		Availability:       c.Scoring.Availability,
		Cost:               c.Scoring.Cost,
	}
}

// Thresholds converts the decision section into engine thresholds.
func (c *Config) Thresholds() decision.Thresholds {
	return decision.Thresholds{
		StrongTop: c.Decision.StrongTop,
		ClearGap:  c.Decision.ClearGap,
		Competent: c.Decision.Competent,
		Excellent: c.Decision.Excellent,
	}
}

// Load loads configuration from XDG paths, project overrides, and
// environment variables. Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY, OPENAI_API_KEY, GEMINI_API_KEY)
// 2. Project config (.agentmux.yaml in current directory or a parent)
// 3. User config (~/.config/agentmux/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("AGENTMUX")

	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("openai.api_key", "OPENAI_API_KEY")
	v.BindEnv("google.api_key", "GEMINI_API_KEY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Expand ${VAR} references
	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	cfg.OpenAI.APIKey = expandEnv(cfg.OpenAI.APIKey)
	cfg.Google.APIKey = expandEnv(cfg.Google.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	cfg.OpenAI.APIKey = expandEnv(cfg.OpenAI.APIKey)
	cfg.Google.APIKey = expandEnv(cfg.Google.APIKey)

	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.use_aws_bedrock", cfg.Anthropic.UseAWSBedrock)
	v.Set("anthropic.aws_region", cfg.Anthropic.AWSRegion)
	v.Set("anthropic.aws_profile", cfg.Anthropic.AWSProfile)
	v.Set("openai.api_key", cfg.OpenAI.APIKey)
	v.Set("google.api_key", cfg.Google.APIKey)
	v.Set("registry.table_path", cfg.Registry.TablePath)
	v.Set("registry.watch", cfg.Registry.Watch)
	v.Set("history.db_path", cfg.History.DBPath)
	v.Set("history.window_size", cfg.History.WindowSize)
	v.Set("scoring.specialization", cfg.Scoring.Specialization)
	v.Set("scoring.history", cfg.Scoring.History)
	v.Set("scoring.characteristics_fit", cfg.Scoring.CharacteristicsFit)
	v.Set("scoring.availability", cfg.Scoring.Availability)
	v.Set("scoring.cost", cfg.Scoring.Cost)
	v.Set("decision.strong_top", cfg.Decision.StrongTop)
	v.Set("decision.clear_gap", cfg.Decision.ClearGap)
	v.Set("decision.competent", cfg.Decision.Competent)
	v.Set("decision.excellent", cfg.Decision.Excellent)
	v.Set("decision.max_fallbacks", cfg.Decision.MaxFallbacks)
	v.Set("execution.revision_rounds", cfg.Execution.RevisionRounds)
	v.Set("health.refresh_interval", cfg.Health.RefreshInterval.String())
	v.Set("tui.refresh_rate", cfg.TUI.RefreshRate.String())

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.use_aws_bedrock", false)
	v.SetDefault("anthropic.aws_region", "")
	v.SetDefault("anthropic.aws_profile", "")

	v.SetDefault("openai.api_key", "")
	v.SetDefault("google.api_key", "")

	v.SetDefault("registry.table_path", "")
	v.SetDefault("registry.watch", true)

	v.SetDefault("history.db_path", "")
	v.SetDefault("history.window_size", 20)

	v.SetDefault("scoring.specialization", 0.40)
	v.SetDefault("scoring.history", 0.25)
	v.SetDefault("scoring.characteristics_fit", 0.15)
	v.SetDefault("scoring.availability", 0.10)
	v.SetDefault("scoring.cost", 0.10)

	v.SetDefault("decision.strong_top", 0.70)
	v.SetDefault("decision.clear_gap", 0.15)
	v.SetDefault("decision.competent", 0.55)
	v.SetDefault("decision.excellent", 0.75)
	v.SetDefault("decision.max_fallbacks", 3)

	v.SetDefault("execution.revision_rounds", 1)

	v.SetDefault("health.refresh_interval", "30s")

	v.SetDefault("tui.refresh_rate", "100ms")
}

// getUserConfigDir returns the XDG config directory for agentmux.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "agentmux")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "agentmux")
	}
	return filepath.Join(home, ".config", "agentmux")
}

// findProjectConfig searches for .agentmux.yaml in the current directory
// and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".agentmux.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Registry: RegistryConfig{Watch: true},
		History:  HistoryConfig{WindowSize: 20},
		Scoring: ScoringConfig{
			Specialization:     0.40,
			History:            0.25,
			CharacteristicsFit: 0.15,
			Availability:       0.10,
			Cost:               0.10,
		},
		Decision: DecisionConfig{
			StrongTop:    0.70,
			ClearGap:     0.15,
			Competent:    0.55,
			Excellent:    0.75,
			MaxFallbacks: 3,
		},
		Execution: ExecutionConfig{RevisionRounds: 1},
		Health:    HealthConfig{RefreshInterval: 30 * time.Second},
		TUI:       TUIConfig{RefreshRate: 100 * time.Millisecond},
	}
}
