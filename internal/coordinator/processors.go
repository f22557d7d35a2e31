package coordinator

import (
	"context"
	"log"
	"strings"

	"github.com/Dixter999/agentmux/internal/prompt"
	"github.com/Dixter999/agentmux/pkg/models"
)

// processSingle runs the primary agent once.
func (c *Coordinator) processSingle(ctx context.Context, plan *models.ExecutionPlan, ec *models.ExecutionContext) error {
	resp, err := c.runAgent(ctx, plan, ec, plan.Primary, 0)
	if err != nil {
		return err
	}
	ec.CommitResponse(resp)
	return nil
}

// processSequential runs the plan's agents strictly in order, committing
// each response before the next agent sees the context. The run stops
// early on a quality collapse or an explicit completion marker.
func (c *Coordinator) processSequential(ctx context.Context, plan *models.ExecutionPlan, ec *models.ExecutionContext) error {
	for i, agentID := range plan.Agents() {
		resp, err := c.runAgent(ctx, plan, ec, agentID, 0)
		if err != nil {
			if i == 0 {
				return err
			}
			log.Printf("[coordinator] execution %s stopping after %d agents: %v",
				ec.ExecutionID, i, err)
			return nil
		}
		ec.CommitResponse(resp)

		if resp.Quality < qualityFloor {
			log.Printf("[coordinator] execution %s early stop: %s quality %.2f below floor",
				ec.ExecutionID, agentID, resp.Quality)
			return nil
		}
		if hasCompletionMarker(resp.Text) {
			log.Printf("[coordinator] execution %s early stop: %s signalled completion",
				ec.ExecutionID, agentID)
			return nil
		}
	}
	return nil
}

// processCollaborative runs a sequential pass and then bounded revision
// rounds in which each agent refines its answer given the peers' output.
func (c *Coordinator) processCollaborative(ctx context.Context, plan *models.ExecutionPlan, ec *models.ExecutionContext) error {
	if err := c.processSequential(ctx, plan, ec); err != nil {
		return err
	}
	if done(ec) {
		return nil
	}

	for round := 1; round <= c.revisionRounds; round++ {
		for _, agentID := range plan.Agents() {
			resp, err := c.runAgent(ctx, plan, ec, agentID, round)
			if err != nil {
				log.Printf("[coordinator] execution %s revision round %d ending early: %v",
					ec.ExecutionID, round, err)
				return nil
			}
			ec.CommitResponse(resp)
			if hasCompletionMarker(resp.Text) {
				return nil
			}
		}
	}
	return nil
}

// done reports whether the context's last committed response declared the
// task finished.
func done(ec *models.ExecutionContext) bool {
	responses := ec.Responses()
	if len(responses) == 0 {
		return false
	}
	return hasCompletionMarker(responses[len(responses)-1].Text)
}

func hasCompletionMarker(text string) bool {
	return strings.Contains(text, prompt.CompletionMarker)
}
