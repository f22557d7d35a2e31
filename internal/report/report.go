// Package report renders execution results as markdown documents and as
// colorized terminal summaries.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/Dixter999/agentmux/internal/coordinator"
	"github.com/Dixter999/agentmux/internal/telemetry"
	"github.com/Dixter999/agentmux/pkg/models"
)

// Markdown renders the full execution result as a markdown document.
func Markdown(request string, plan *models.ExecutionPlan, result coordinator.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Execution %s\n\n", result.ExecutionID)
	fmt.Fprintf(&b, "**Status:** %s  \n", result.Status)
	fmt.Fprintf(&b, "**Duration:** %s  \n", result.Duration.Round(time.Millisecond))
	fmt.Fprintf(&b, "**Mean quality:** %.2f\n\n", result.MeanQuality)

	fmt.Fprintf(&b, "## Request\n\n%s\n\n", strings.TrimSpace(request))

	if plan != nil {
		fmt.Fprintf(&b, "## Plan\n\n")
		fmt.Fprintf(&b, "- Strategy: %s\n", plan.Strategy)
		fmt.Fprintf(&b, "- Primary: %s\n", plan.Primary)
		if len(plan.Secondaries) > 0 {
			fmt.Fprintf(&b, "- Secondaries: %s\n", strings.Join(plan.Secondaries, ", "))
		}
		if len(plan.FallbackChain) > 0 {
			fmt.Fprintf(&b, "- Fallback chain: %s\n", strings.Join(plan.FallbackChain, ", "))
		}
		fmt.Fprintf(&b, "- Max iterations: %d\n", plan.MaxIterations)
		fmt.Fprintf(&b, "- Estimated: %s, $%.4f, success %.0f%%\n\n",
			plan.Estimates.Duration.Round(time.Second),
			plan.Estimates.Cost,
			plan.Estimates.SuccessProbability*100)
	}

	fmt.Fprintf(&b, "## Responses\n\n")
	for _, resp := range result.Responses {
		fmt.Fprintf(&b, "### %s (quality %.2f", resp.AgentID, resp.Quality)
		if resp.Round > 0 {
			fmt.Fprintf(&b, ", revision %d", resp.Round)
		}
		fmt.Fprintf(&b, ")\n\n%s\n\n", strings.TrimSpace(resp.Text))
		if len(resp.ValidationErrors) > 0 {
			fmt.Fprintf(&b, "Validation problems:\n")
			for _, ve := range resp.ValidationErrors {
				fmt.Fprintf(&b, "- %s\n", ve)
			}
			b.WriteString("\n")
		}
	}

	if code := codeArtifacts(result.Artifacts); len(code) > 0 {
		fmt.Fprintf(&b, "## Artifacts\n\n")
		for _, a := range code {
			fmt.Fprintf(&b, "```%s\n%s\n```\n\n", a.Language, strings.TrimRight(a.Content, "\n"))
		}
	}

	if len(result.Sessions) > 0 {
		fmt.Fprintf(&b, "## Recovery\n\n")
		for _, s := range result.Sessions {
			fmt.Fprintf(&b, "- %s on %s: %s after %d attempt(s)",
				s.Failure.Kind, s.Failure.AgentID, s.Status, len(s.Attempts))
			if s.NotifyOperator {
				b.WriteString(" (operator notified)")
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	return b.String()
}

// codeArtifacts filters for fenced code fragments.
func codeArtifacts(artifacts []models.Artifact) []models.Artifact {
	var out []models.Artifact
	for _, a := range artifacts {
		if a.Kind == models.ArtifactCode {
			out = append(out, a)
		}
	}
	return out
}

// PrintSummary writes a short colorized execution summary to w.
func PrintSummary(w io.Writer, result coordinator.Result) {
	symbol, attr := statusMark(result.Status)
	c := color.New(attr)
	fmt.Fprintf(w, "%s execution %s: %s in %s\n",
		c.Sprint(symbol), result.ExecutionID, result.Status,
		result.Duration.Round(time.Millisecond))

	for _, resp := range result.Responses {
		mark := color.GreenString("✓")
		if !resp.IsValid() {
			mark = color.RedString("✗")
		}
		fmt.Fprintf(w, "  %s %s quality %.2f (%d tokens, %s)\n",
			mark, resp.AgentID, resp.Quality, resp.TokensUsed,
			resp.Duration.Round(time.Millisecond))
	}

	for _, s := range result.Sessions {
		fmt.Fprintf(w, "  %s recovery for %s/%s: %s\n",
			color.YellowString("⚠"), s.Failure.AgentID, s.Failure.Kind, s.Status)
	}
}

// PrintTelemetry writes the aggregated counters to w.
func PrintTelemetry(w io.Writer, sum telemetry.Summary) {
	fmt.Fprintf(w, "failures: %d total\n", sum.Failures.Total)
	for kind, n := range sum.Failures.ByKind {
		fmt.Fprintf(w, "  %s: %d\n", kind, n)
	}
	if sum.Recovery.Sessions > 0 {
		fmt.Fprintf(w, "recovery: %d session(s), %.0f%% recovered\n",
			sum.Recovery.Sessions, sum.Recovery.SuccessRate*100)
	}
	for id, agent := range sum.Agents {
		fmt.Fprintf(w, "agent %s: %d invocation(s), %.0f%% success, mean quality %.2f\n",
			id, agent.Invocations, agent.SuccessRate*100, agent.MeanQuality)
	}
}

// statusMark maps a terminal status to a glyph and color.
func statusMark(status models.ExecutionStatus) (string, color.Attribute) {
	switch status {
	case models.StatusCompleted:
		return "✓", color.FgGreen
	case models.StatusPartialSuccess:
		return "⚠", color.FgYellow
	default:
		return "✗", color.FgRed
	}
}
