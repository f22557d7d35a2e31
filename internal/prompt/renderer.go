// Package prompt turns a composed agent configuration and accumulated
// execution state into the literal request text sent to a backend.
package prompt

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/Dixter999/agentmux/pkg/models"
)

// CompletionMarker is the phrase an agent emits when nothing remains to do.
// Sequential runs stop early when they see it.
const CompletionMarker = "TASK COMPLETE"

// Request carries everything the renderer needs for one invocation.
type Request struct {
	// Task is the original request text.
	Task string
	// Profile is the agent being addressed.
	Profile models.AgentProfile
	// Config is the composed configuration for this invocation.
	Config models.AgentConfig
	// Prior holds the responses committed before this invocation, in order.
	Prior []models.AgentResponse
	// Round is the revision round; 0 for the initial pass.
	Round int
	// Simplified requests a reduced prompt built from the task core only.
	Simplified bool
}

const promptTemplate = `{{- if .SystemHint -}}
{{ .SystemHint }}

{{ end -}}
{{- if gt .Round 0 -}}
This is revision round {{ .Round }}. Review the peer responses below and refine your previous answer. Keep what is right, fix what is not.

{{ end -}}
Task:
{{ .Task }}
{{- if .Prior }}

Prior responses:
{{- range .Prior }}

[{{ .AgentID }}]
{{ .Text }}
{{- end }}
{{- end }}

Respond within {{ .MaxTokens }} tokens. End with the line "{{ .Marker }}" if the task needs no further work.
`

type templateData struct {
	SystemHint string
	Task       string
	Prior      []models.AgentResponse
	Round      int
	MaxTokens  int
	Marker     string
}

// Renderer renders invocation prompts from a parsed template. Safe for
// concurrent use after construction.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the built-in prompt template.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("prompt").Parse(promptTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing prompt template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render produces the request text for one invocation.
func (r *Renderer) Render(req Request) (string, error) {
	task := strings.TrimSpace(req.Task)
	if req.Simplified {
		task = Simplify(task)
	}
	data := templateData{
		SystemHint: req.Config.SystemHint,
		Task:       task,
		Prior:      req.Prior,
		Round:      req.Round,
		MaxTokens:  req.Config.MaxTokens,
		Marker:     CompletionMarker,
	}
	var b strings.Builder
	if err := r.tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return b.String(), nil
}

// Simplify reduces a request to its leading sentences so a struggling agent
// gets the core ask without the elaboration.
func Simplify(task string) string {
	sentences := splitSentences(task)
	if len(sentences) <= 2 {
		return task + "\n\nFocus on the core request only."
	}
	return strings.Join(sentences[:2], " ") + "\n\nFocus on the core request only."
}

func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			s := strings.TrimSpace(text[start : i+1])
			if s != "" {
				sentences = append(sentences, s)
			}
			start = i + 1
		}
	}
	if tail := strings.TrimSpace(text[start:]); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}
