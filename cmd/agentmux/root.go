package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "agentmux [request]",
	Short: "Multi-agent AI task orchestrator",
	Long: `Agentmux routes work requests across a pool of AI agents.

Each request is classified into a task profile, candidate agents are
ranked against it, and a decision engine picks an execution strategy:
a single agent, a sequential relay, a parallel fan-out, or a
collaborative refinement loop. Failures are classified, recovered
through a fallback cascade, and fed back into the agents' performance
history.

With a request argument, runs it with the live monitor attached.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return executeRun(strings.Join(args, " "), runFlags{})
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(agentsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
