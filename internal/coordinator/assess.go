package coordinator

import (
	"strings"
	"time"

	"github.com/Dixter999/agentmux/pkg/models"
)

// assessResponse turns raw backend text into a validated AgentResponse with
// extracted artifacts and a deterministic quality score.
func assessResponse(agentID, request, text string, tokens int64, duration time.Duration, round int, at time.Time) models.AgentResponse {
	artifacts := extractArtifacts(text)
	validationErrors := validate(text)
	resp := models.AgentResponse{
		AgentID:          agentID,
		Text:             text,
		Artifacts:        artifacts,
		ValidationErrors: validationErrors,
		TokensUsed:       tokens,
		Duration:         duration,
		Round:            round,
		CreatedAt:        at,
	}
	resp.Quality = scoreQuality(request, &resp)
	return resp
}

// extractArtifacts pulls fenced code blocks and step lists out of the text.
func extractArtifacts(text string) []models.Artifact {
	var artifacts []models.Artifact
	lines := strings.Split(text, "\n")

	var code []string
	var lang string
	inFence := false
	var steps []string
	flushSteps := func() {
		if len(steps) >= 2 {
			artifacts = append(artifacts, models.Artifact{
				Kind:    models.ArtifactInstructions,
				Content: strings.Join(steps, "\n"),
			})
		}
		steps = nil
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			if inFence {
				artifacts = append(artifacts, models.Artifact{
					Kind:     models.ArtifactCode,
					Language: lang,
					Content:  strings.Join(code, "\n"),
				})
				code, lang, inFence = nil, "", false
			} else {
				flushSteps()
				lang = strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
				inFence = true
			}
			continue
		}
		if inFence {
			code = append(code, line)
			continue
		}
		if isStepLine(trimmed) {
			steps = append(steps, trimmed)
		} else if trimmed != "" {
			flushSteps()
		}
	}
	flushSteps()
	return artifacts
}

func isStepLine(line string) bool {
	if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") {
		return true
	}
	for i, r := range line {
		if r >= '0' && r <= '9' {
			continue
		}
		return i > 0 && (r == '.' || r == ')')
	}
	return false
}

// validate collects structural problems with the raw text.
func validate(text string) []string {
	var errs []string
	if strings.TrimSpace(text) == "" {
		errs = append(errs, "response is empty")
	}
	if strings.Count(text, "```")%2 != 0 {
		errs = append(errs, "unterminated code fence")
	}
	return errs
}

// scoreQuality is a closed-form heuristic over response shape and request
// engagement. Identical inputs always score identically.
func scoreQuality(request string, resp *models.AgentResponse) float64 {
	score := 0.4

	words := len(strings.Fields(resp.Text))
	lengthBonus := float64(words) / 400
	if lengthBonus > 0.2 {
		lengthBonus = 0.2
	}
	score += lengthBonus

	if len(resp.CodeArtifacts()) > 0 {
		score += 0.15
	}
	if len(resp.Artifacts) > len(resp.CodeArtifacts()) {
		score += 0.05
	}
	score += 0.2 * requestOverlap(request, resp.Text)
	score -= 0.2 * float64(len(resp.ValidationErrors))

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// requestOverlap measures how many distinct significant request words recur
// in the response. Words of three runes or fewer are ignored.
func requestOverlap(request, response string) float64 {
	reqWords := significantWords(request)
	if len(reqWords) == 0 {
		return 1
	}
	respWords := significantWords(response)
	hits := 0
	for w := range reqWords {
		if _, ok := respWords[w]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(reqWords))
}

func significantWords(text string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(text))
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.Trim(w, ".,;:!?\"'()[]{}`")
		if len(w) > 3 {
			out[w] = struct{}{}
		}
	}
	return out
}
