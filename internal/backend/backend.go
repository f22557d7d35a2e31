// Package backend provides the transports that turn a rendered prompt into
// raw model output: Anthropic (direct or Bedrock), OpenAI, Google Gemini,
// and a scripted offline transport for tests and dry runs.
package backend

import (
	"context"
	"fmt"
	"log"

	"github.com/Dixter999/agentmux/internal/coordinator"
	"github.com/Dixter999/agentmux/pkg/models"
)

// Reply is the raw outcome of one backend call.
type Reply struct {
	// Text is the model output.
	Text string
	// TokensIn is the prompt token count reported by the provider.
	TokensIn int64
	// TokensOut is the completion token count reported by the provider.
	TokensOut int64
}

// Backend sends one prompt to a provider.
type Backend interface {
	// Name is the identifier agent profiles reference.
	Name() string
	// Generate produces the model output for a rendered prompt.
	Generate(ctx context.Context, model string, cfg models.AgentConfig, prompt string) (Reply, error)
}

// Dispatcher routes invocations to the backend named by each agent's
// profile. It satisfies the coordinator's Invoker.
type Dispatcher struct {
	backends map[string]Backend
	tracker  *TokenTracker
}

// NewDispatcher builds a Dispatcher over the given backends.
func NewDispatcher(backends ...Backend) *Dispatcher {
	d := &Dispatcher{
		backends: make(map[string]Backend, len(backends)),
		tracker:  NewTokenTracker(),
	}
	for _, b := range backends {
		d.backends[b.Name()] = b
	}
	return d
}

// Register adds or replaces a backend.
func (d *Dispatcher) Register(b Backend) {
	d.backends[b.Name()] = b
}

// RegisterAs adds a backend under an explicit name, letting one transport
// stand in for another in offline runs.
func (d *Dispatcher) RegisterAs(name string, b Backend) {
	d.backends[name] = b
}

// Has reports whether a backend is registered under the name.
func (d *Dispatcher) Has(name string) bool {
	_, ok := d.backends[name]
	return ok
}

// Tracker returns the dispatcher's cumulative token tracker.
func (d *Dispatcher) Tracker() *TokenTracker {
	return d.tracker
}

// Invoke routes one rendered prompt to the profile's backend.
func (d *Dispatcher) Invoke(ctx context.Context, profile models.AgentProfile, cfg models.AgentConfig, rendered string) (coordinator.InvocationResult, error) {
	b, ok := d.backends[profile.Backend]
	if !ok {
		return coordinator.InvocationResult{}, fmt.Errorf("no backend registered for %q", profile.Backend)
	}
	reply, err := b.Generate(ctx, profile.Model, cfg, rendered)
	if err != nil {
		return coordinator.InvocationResult{}, fmt.Errorf("%s backend: %w", profile.Backend, err)
	}
	d.tracker.Add(reply.TokensIn, reply.TokensOut)
	log.Printf("[backend] %s/%s: %d in, %d out", profile.Backend, profile.Model, reply.TokensIn, reply.TokensOut)
	return coordinator.InvocationResult{
		Text:       reply.Text,
		TokensUsed: reply.TokensIn + reply.TokensOut,
	}, nil
}
