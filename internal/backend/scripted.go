package backend

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Dixter999/agentmux/pkg/models"
)

// Scripted is an offline transport for tests and dry runs. With no script
// it echoes a deterministic summary of the prompt; with one it plays the
// queued replies in order, repeating the last. One instance may serve
// concurrent callers, as the offline dispatcher shares it across backend
// names.
type Scripted struct {
	mu      sync.Mutex
	replies []Reply
	errs    []error
	calls   int
}

// NewScripted creates a scripted backend with optional canned replies.
func NewScripted(replies ...Reply) *Scripted {
	return &Scripted{replies: replies}
}

// FailWith queues an error to be returned instead of a reply.
func (s *Scripted) FailWith(err error) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
	return s
}

// Name returns the backend identifier.
func (s *Scripted) Name() string { return "scripted" }

// Generate plays the next scripted outcome.
func (s *Scripted) Generate(_ context.Context, model string, cfg models.AgentConfig, prompt string) (Reply, error) {
	s.mu.Lock()
	i := s.calls
	s.calls++
	var scriptedErr error
	if i < len(s.errs) {
		scriptedErr = s.errs[i]
	}
	var reply Reply
	scripted := scriptedErr == nil && len(s.replies) > 0
	if scripted {
		j := i
		if j >= len(s.replies) {
			j = len(s.replies) - 1
		}
		reply = s.replies[j]
	}
	s.mu.Unlock()

	if scriptedErr != nil {
		return Reply{}, scriptedErr
	}
	if scripted {
		return reply, nil
	}

	firstLine := prompt
	if idx := strings.IndexByte(prompt, '\n'); idx > 0 {
		firstLine = prompt[:idx]
	}
	text := fmt.Sprintf("Scripted reply from %s.\nEchoing: %s\nTemperature %.2f, budget %d tokens.",
		model, firstLine, cfg.Temperature, cfg.MaxTokens)
	return Reply{
		Text:      text,
		TokensIn:  int64(len(prompt) / 4),
		TokensOut: int64(len(text) / 4),
	}, nil
}

// Calls returns how many times Generate ran.
func (s *Scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
