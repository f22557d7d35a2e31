package backend

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/Dixter999/agentmux/pkg/models"
)

// Google is the Gemini transport.
type Google struct {
	client *genai.Client
}

// NewGoogle creates the Google backend.
func NewGoogle(apiKey string) (*Google, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google API key is required")
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating google client: %w", err)
	}
	return &Google{client: client}, nil
}

// Name returns the backend identifier.
func (g *Google) Name() string { return "google" }

// Generate sends the prompt to Gemini and concatenates the candidate parts.
func (g *Google) Generate(ctx context.Context, model string, cfg models.AgentConfig, prompt string) (Reply, error) {
	genCfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(cfg.Temperature)),
		MaxOutputTokens: int32(cfg.MaxTokens),
	}
	if cfg.SystemHint != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(cfg.SystemHint, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), genCfg)
	if err != nil {
		return Reply{}, fmt.Errorf("API call failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return Reply{}, fmt.Errorf("no candidates returned")
	}

	var text string
	if resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			text += part.Text
		}
	}
	reply := Reply{Text: text}
	if resp.UsageMetadata != nil {
		reply.TokensIn = int64(resp.UsageMetadata.PromptTokenCount)
		reply.TokensOut = int64(resp.UsageMetadata.CandidatesTokenCount)
	}
	return reply, nil
}
