package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Dixter999/agentmux/internal/config"
	"github.com/Dixter999/agentmux/pkg/models"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List registered agents and their live health",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listAgents()
	},
}

func listAgents() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	p, err := newPipeline(cfg, true)
	if err != nil {
		return err
	}
	defer p.Close()

	profiles := p.reg.All()
	if len(profiles) == 0 {
		fmt.Println("no agents registered")
		return nil
	}

	for _, prof := range profiles {
		h := p.healthMon.Health(prof.ID)
		fmt.Printf("%s %s (%s/%s)\n",
			availabilityMark(h), prof.ID, prof.Backend, prof.Model)
		fmt.Printf("    strengths: %s\n", formatStrengths(prof))
		fmt.Printf("    cost: $%.2f/$%.2f per MTok, context %d\n",
			prof.CostPerMTokensIn, prof.CostPerMTokensOut, prof.MaxContextTokens)
		if len(prof.Substitutes) > 0 {
			fmt.Printf("    substitutes: %s\n", strings.Join(prof.Substitutes, ", "))
		}
	}

	return nil
}

func availabilityMark(h models.AgentHealth) string {
	if h.Available {
		return color.GreenString("●")
	}
	return color.RedString("●")
}

// formatStrengths renders the strength map strongest first.
func formatStrengths(prof *models.AgentProfile) string {
	type entry struct {
		kind     models.TaskKind
		strength float64
	}
	entries := make([]entry, 0, len(prof.Strengths))
	for kind, s := range prof.Strengths {
		entries = append(entries, entry{kind, s})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].strength != entries[j].strength {
			return entries[i].strength > entries[j].strength
		}
		return entries[i].kind < entries[j].kind
	})
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = fmt.Sprintf("%s %.2f", e.kind, e.strength)
	}
	return strings.Join(parts, ", ")
}
