package backend

import (
	"context"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	oaioption "github.com/openai/openai-go/option"

	"github.com/Dixter999/agentmux/pkg/models"
)

// OpenAI is the GPT transport.
type OpenAI struct {
	client openai.Client
}

// NewOpenAI creates the OpenAI backend. If apiKey is empty, the SDK reads
// OPENAI_API_KEY from the environment.
func NewOpenAI(apiKey string) (*OpenAI, error) {
	if apiKey == "" && os.Getenv("OPENAI_API_KEY") == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
	}
	var opts []oaioption.RequestOption
	if apiKey != "" {
		opts = append(opts, oaioption.WithAPIKey(apiKey))
	}
	return &OpenAI{client: openai.NewClient(opts...)}, nil
}

// Name returns the backend identifier.
func (o *OpenAI) Name() string { return "openai" }

// Generate sends the prompt as a chat completion.
func (o *OpenAI) Generate(ctx context.Context, model string, cfg models.AgentConfig, prompt string) (Reply, error) {
	messages := []openai.ChatCompletionMessageParamUnion{}
	if cfg.SystemHint != "" {
		messages = append(messages, openai.SystemMessage(cfg.SystemHint))
	}
	messages = append(messages, openai.UserMessage(prompt))

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(model),
		Messages:            messages,
		MaxCompletionTokens: openai.Int(int64(cfg.MaxTokens)),
		Temperature:         openai.Float(cfg.Temperature),
	})
	if err != nil {
		return Reply{}, fmt.Errorf("API call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Reply{}, fmt.Errorf("no choices returned")
	}
	return Reply{
		Text:      resp.Choices[0].Message.Content,
		TokensIn:  resp.Usage.PromptTokens,
		TokensOut: resp.Usage.CompletionTokens,
	}, nil
}
