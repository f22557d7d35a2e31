package coordinator

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/Dixter999/agentmux/pkg/models"
)

// processParallel partitions the plan's agents into an independent subset
// that runs concurrently and a dependent remainder that runs ordered after
// it, then consolidates the committed responses with a deterministic
// synchronization pass.
func (c *Coordinator) processParallel(ctx context.Context, plan *models.ExecutionPlan, ec *models.ExecutionContext) error {
	independent, dependent := c.partition(plan.Agents())

	type outcome struct {
		resp models.AgentResponse
		err  error
	}
	outcomes := make([]outcome, len(independent))
	var wg sync.WaitGroup
	for i, agentID := range independent {
		wg.Add(1)
		go func(i int, agentID string) {
			defer wg.Done()
			resp, err := c.runAgent(ctx, plan, ec, agentID, 0)
			outcomes[i] = outcome{resp: resp, err: err}
		}(i, agentID)
	}
	wg.Wait()

	// Commit in plan order so the context is deterministic for a fixed
	// response set regardless of completion order.
	var firstErr error
	committed := 0
	for i, agentID := range independent {
		if outcomes[i].err != nil {
			log.Printf("[coordinator] execution %s parallel unit %s failed: %v",
				ec.ExecutionID, agentID, outcomes[i].err)
			if firstErr == nil {
				firstErr = outcomes[i].err
			}
			continue
		}
		ec.CommitResponse(outcomes[i].resp)
		committed++
	}

	for _, agentID := range dependent {
		resp, err := c.runAgent(ctx, plan, ec, agentID, 0)
		if err != nil {
			log.Printf("[coordinator] execution %s dependent unit %s failed: %v",
				ec.ExecutionID, agentID, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		ec.CommitResponse(resp)
		committed++
	}

	if committed == 0 {
		if firstErr == nil {
			firstErr = fmt.Errorf("no parallel unit produced a response")
		}
		return firstErr
	}

	ec.ReplaceResponses(c.synchronize(ec))
	return nil
}

// partition separates agents into a mutually compatible subset, greedily in
// plan order, and the dependent remainder.
func (c *Coordinator) partition(agents []string) (independent, dependent []string) {
	for _, candidate := range agents {
		compatible := true
		for _, member := range independent {
			if c.profiles.Incompatible(candidate, member) {
				compatible = false
				break
			}
		}
		if compatible {
			independent = append(independent, candidate)
		} else {
			dependent = append(dependent, candidate)
		}
	}
	return independent, dependent
}

// antonymPairs is the keyword heuristic behind contradiction detection.
var antonymPairs = [][2]string{
	{"increase", "decrease"},
	{"add", "remove"},
	{"enable", "disable"},
	{"synchronous", "asynchronous"},
	{"always", "never"},
	{"accept", "reject"},
	{"cache", "uncached"},
}

// synchronize is the deterministic post-parallel consolidation pass:
// same-type conflict resolution, then contradiction resolution, then
// complementarity tagging. It never mutates committed responses.
func (c *Coordinator) synchronize(ec *models.ExecutionContext) []models.AgentResponse {
	responses := ec.Responses()

	responses = c.resolveTypeConflicts(ec, responses)
	responses = c.resolveContradictions(ec, responses)
	c.tagComplementary(ec, responses)
	return responses
}

// resolveTypeConflicts keeps only the highest-quality response per agent
// type, where an agent's type is its dominant declared strength.
func (c *Coordinator) resolveTypeConflicts(ec *models.ExecutionContext, responses []models.AgentResponse) []models.AgentResponse {
	bestByType := make(map[models.TaskKind]int)
	for i := range responses {
		kind := c.agentType(responses[i].AgentID)
		best, seen := bestByType[kind]
		if !seen || responses[i].Quality > responses[best].Quality {
			bestByType[kind] = i
		}
	}
	keep := make(map[int]struct{}, len(bestByType))
	for _, i := range bestByType {
		keep[i] = struct{}{}
	}
	var out []models.AgentResponse
	for i := range responses {
		if _, ok := keep[i]; ok {
			out = append(out, responses[i])
		} else {
			log.Printf("[coordinator] execution %s dropping duplicate %s response (quality %.2f)",
				ec.ExecutionID, responses[i].AgentID, responses[i].Quality)
		}
	}
	return out
}

// agentType reduces an agent to its dominant strength, with a stable
// alphabetical tie-break.
func (c *Coordinator) agentType(agentID string) models.TaskKind {
	profile := c.profiles.Get(agentID)
	if profile == nil || len(profile.Strengths) == 0 {
		return models.TaskKind(agentID)
	}
	kinds := make([]models.TaskKind, 0, len(profile.Strengths))
	for kind := range profile.Strengths {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	best := kinds[0]
	for _, kind := range kinds[1:] {
		if profile.Strengths[kind] > profile.Strengths[best] {
			best = kind
		}
	}
	return best
}

// resolveContradictions drops the lower-quality side of any response pair
// whose texts take opposite positions per the antonym heuristic.
func (c *Coordinator) resolveContradictions(ec *models.ExecutionContext, responses []models.AgentResponse) []models.AgentResponse {
	dropped := make(map[int]struct{})
	for i := 0; i < len(responses); i++ {
		for j := i + 1; j < len(responses); j++ {
			if _, gone := dropped[i]; gone {
				break
			}
			if _, gone := dropped[j]; gone {
				continue
			}
			if !contradicts(responses[i].Text, responses[j].Text) {
				continue
			}
			loser := j
			if responses[j].Quality > responses[i].Quality {
				loser = i
			}
			dropped[loser] = struct{}{}
			log.Printf("[coordinator] execution %s dropping contradictory %s response",
				ec.ExecutionID, responses[loser].AgentID)
		}
	}
	var out []models.AgentResponse
	for i := range responses {
		if _, gone := dropped[i]; !gone {
			out = append(out, responses[i])
		}
	}
	return out
}

func contradicts(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	for _, pair := range antonymPairs {
		if (containsWord(la, pair[0]) && containsWord(lb, pair[1])) ||
			(containsWord(la, pair[1]) && containsWord(lb, pair[0])) {
			return true
		}
	}
	return false
}

func containsWord(text, word string) bool {
	for _, w := range strings.Fields(text) {
		if strings.Trim(w, ".,;:!?\"'()") == word {
			return true
		}
	}
	return false
}

// tagComplementary records which surviving response pairs come from agents
// with a declared complementary relationship.
func (c *Coordinator) tagComplementary(ec *models.ExecutionContext, responses []models.AgentResponse) {
	var pairs []string
	for i := 0; i < len(responses); i++ {
		for j := i + 1; j < len(responses); j++ {
			a, b := responses[i].AgentID, responses[j].AgentID
			if c.profiles.Complementary(a, b) {
				pairs = append(pairs, a+"+"+b)
			}
		}
	}
	if len(pairs) > 0 {
		ec.SetShared("complementary_pairs", pairs)
	}
}
