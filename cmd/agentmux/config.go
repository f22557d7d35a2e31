package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Dixter999/agentmux/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved configuration",
	Long: `Display the effective configuration after merging defaults, the
user config, any project .agentmux.yaml, and environment variables.

Configuration is stored at ~/.config/agentmux/config.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return showConfig()
	},
}

func showConfig() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	fmt.Printf("user config:    %s\n", config.GetUserConfigPath())
	if project := config.GetProjectConfigPath(); project != "" {
		fmt.Printf("project config: %s\n", project)
	}
	fmt.Println()

	for _, b := range []string{"anthropic", "openai", "google"} {
		key, _ := config.APIKeyFor(cfg, b)
		fmt.Printf("%s.api_key: %s (%s)\n", b, config.MaskAPIKey(key), config.KeySourceFor(cfg, b))
	}
	if cfg.Anthropic.UseAWSBedrock {
		fmt.Printf("anthropic.use_aws_bedrock: true (region %q, profile %q)\n",
			cfg.Anthropic.AWSRegion, cfg.Anthropic.AWSProfile)
	}
	fmt.Println()

	tablePath := cfg.Registry.TablePath
	if tablePath == "" {
		tablePath = "(built-in)"
	}
	fmt.Printf("registry.table_path: %s\n", tablePath)
	fmt.Printf("registry.watch: %v\n", cfg.Registry.Watch)
	fmt.Printf("history.db_path: %s\n", orDefault(cfg.History.DBPath, "(xdg default)"))
	fmt.Printf("history.window_size: %d\n", cfg.History.WindowSize)
	fmt.Printf("scoring: spec=%.2f hist=%.2f fit=%.2f avail=%.2f cost=%.2f\n",
		cfg.Scoring.Specialization, cfg.Scoring.History, cfg.Scoring.CharacteristicsFit,
		cfg.Scoring.Availability, cfg.Scoring.Cost)
	fmt.Printf("decision: strong_top=%.2f clear_gap=%.2f competent=%.2f excellent=%.2f max_fallbacks=%d\n",
		cfg.Decision.StrongTop, cfg.Decision.ClearGap, cfg.Decision.Competent,
		cfg.Decision.Excellent, cfg.Decision.MaxFallbacks)
	fmt.Printf("execution.revision_rounds: %d\n", cfg.Execution.RevisionRounds)
	fmt.Printf("health.refresh_interval: %s\n", cfg.Health.RefreshInterval)

	return nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
