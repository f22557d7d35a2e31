package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Dixter999/agentmux/internal/config"
	"github.com/Dixter999/agentmux/internal/coordinator"
	"github.com/Dixter999/agentmux/internal/report"
	"github.com/Dixter999/agentmux/internal/tui"
)

// runFlags are the options of one run invocation.
type runFlags struct {
	headless  bool
	offline   bool
	files     []string
	output    string
	telemetry bool
}

var runOpts runFlags

var runCmd = &cobra.Command{
	Use:   "run <request>",
	Short: "Classify, plan, and execute a work request",
	Long: `Run a work request through the full pipeline.

The request is classified into a task profile, candidate agents are
ranked, and the decision engine builds an execution plan that the
coordinator then carries out. A live monitor shows per-agent progress
unless --headless is given.

Use --offline to run against the scripted transport with an in-memory
history store; no API keys are needed and nothing is persisted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeRun(strings.Join(args, " "), runOpts)
	},
}

func init() {
	runCmd.Flags().BoolVar(&runOpts.headless, "headless", false, "Run without the live monitor")
	runCmd.Flags().BoolVar(&runOpts.offline, "offline", false, "Use the scripted transport and in-memory history")
	runCmd.Flags().StringSliceVar(&runOpts.files, "file", nil, "Attach a file to the request (repeatable)")
	runCmd.Flags().StringVarP(&runOpts.output, "output", "o", "", "Write a markdown report to this path")
	runCmd.Flags().BoolVar(&runOpts.telemetry, "telemetry", false, "Print aggregated counters after the run")
}

func executeRun(request string, flags runFlags) error {
	if path := os.Getenv("AGENTMUX_DEBUG_LOG"); path != "" {
		dl, err := coordinator.NewDebugLogger(path)
		if err != nil {
			return fmt.Errorf("opening debug log: %w", err)
		}
		coordinator.SetDebugLogger(dl)
		defer dl.Close()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	p, err := newPipeline(cfg, flags.offline)
	if err != nil {
		return err
	}
	defer p.Close()

	if err := p.attachBackends(flags.offline); err != nil {
		return err
	}

	profile, _, plan, err := p.buildPlan(request, flags.files)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p.startHealthRefresh(ctx)

	var result *coordinator.Result
	var execErr error

	if flags.headless {
		result, execErr = p.coordinator(nil).Execute(ctx, request, profile, plan)
	} else {
		events := make(chan coordinator.Event, 64)
		coord := p.coordinator(events)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer close(events)
			result, execErr = coord.Execute(ctx, request, profile, plan)
		}()

		if err := tui.Run(events); err != nil {
			stop()
		}
		wg.Wait()
	}

	if result == nil {
		return fmt.Errorf("execution failed: %w", execErr)
	}

	report.PrintSummary(os.Stdout, *result)

	if flags.output != "" {
		md := report.Markdown(request, plan, *result)
		if err := os.WriteFile(flags.output, []byte(md), 0644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Printf("report written to %s\n", flags.output)
	}

	if flags.telemetry {
		report.PrintTelemetry(os.Stdout, p.collector.Snapshot())
	}

	return execErr
}
