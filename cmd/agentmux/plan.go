package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Dixter999/agentmux/internal/config"
	"github.com/Dixter999/agentmux/pkg/models"
)

var (
	planFormat string
	planFiles  []string
)

var planCmd = &cobra.Command{
	Use:   "plan <request>",
	Short: "Build and print the execution plan without executing",
	Long: `Classify a request, rank the candidate agents, and print the
execution plan the decision engine would run. Nothing is invoked and
nothing is persisted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return executePlan(strings.Join(args, " "))
	},
}

func init() {
	planCmd.Flags().StringVar(&planFormat, "format", "text", "Output format: text, yaml, or json")
	planCmd.Flags().StringSliceVar(&planFiles, "file", nil, "Attach a file to the request (repeatable)")
}

// planOutput is the serializable shape of the plan command's result.
type planOutput struct {
	Profile models.TaskProfile    `json:"profile" yaml:"profile"`
	Scores  []models.AgentScore   `json:"scores" yaml:"scores"`
	Plan    *models.ExecutionPlan `json:"plan" yaml:"plan"`
}

func executePlan(request string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	p, err := newPipeline(cfg, true)
	if err != nil {
		return err
	}
	defer p.Close()

	profile, scores, plan, err := p.buildPlan(request, planFiles)
	if err != nil {
		return err
	}

	out := planOutput{Profile: profile, Scores: scores, Plan: plan}

	switch planFormat {
	case "yaml":
		data, err := yaml.Marshal(out)
		if err != nil {
			return fmt.Errorf("marshaling plan: %w", err)
		}
		os.Stdout.Write(data)
	case "json":
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling plan: %w", err)
		}
		fmt.Println(string(data))
	case "text":
		printPlanText(out)
	default:
		return fmt.Errorf("unknown format %q: want text, yaml, or json", planFormat)
	}

	return nil
}

func printPlanText(out planOutput) {
	fmt.Printf("task: %s", out.Profile.PrimaryKind)
	if len(out.Profile.SecondaryKinds) > 0 {
		kinds := make([]string, len(out.Profile.SecondaryKinds))
		for i, k := range out.Profile.SecondaryKinds {
			kinds[i] = string(k)
		}
		fmt.Printf(" (+%s)", strings.Join(kinds, ", "))
	}
	fmt.Printf("  complexity=%s risk=%s confidence=%.2f\n\n",
		out.Profile.Complexity, out.Profile.Risk, out.Profile.Confidence)

	fmt.Println("scores:")
	for _, s := range out.Scores {
		fmt.Printf("  %-20s total=%.3f spec=%.2f hist=%.2f fit=%.2f avail=%.2f cost=%.2f\n",
			s.AgentID, s.Total, s.Specialization, s.History,
			s.CharacteristicsFit, s.Availability, s.CostEfficiency)
	}

	fmt.Printf("\nstrategy: %s\n", out.Plan.Strategy)
	fmt.Printf("primary:  %s\n", out.Plan.Primary)
	if len(out.Plan.Secondaries) > 0 {
		fmt.Printf("secondaries: %s\n", strings.Join(out.Plan.Secondaries, ", "))
	}
	if len(out.Plan.FallbackChain) > 0 {
		fmt.Printf("fallbacks: %s\n", strings.Join(out.Plan.FallbackChain, ", "))
	}
	fmt.Printf("max iterations: %d\n", out.Plan.MaxIterations)
	fmt.Printf("estimates: %s, $%.4f, success %.0f%%, quality %.2f\n",
		out.Plan.Estimates.Duration.Round(time.Second),
		out.Plan.Estimates.Cost,
		out.Plan.Estimates.SuccessProbability*100,
		out.Plan.Estimates.Quality)
}
