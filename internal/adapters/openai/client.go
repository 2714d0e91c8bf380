package openai

import (
	"context"
	"fmt"

	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"psyconnect/internal/domain"
)

const (
	defaultModel       = sdk.ChatModelGPT4
	defaultMaxTokens   = 500
	defaultTemperature = 0.7
)

// Config holds settings for the OpenAI chat-completion client.
type Config struct {
	APIKey string
	Model  string
}

type client struct {
	api   sdk.Client
	model sdk.ChatModel
}

// NewClient returns a ChatCompleter backed by the OpenAI chat completions API.
func NewClient(cfg Config) domain.ChatCompleter {
	model := defaultModel
	if cfg.Model != "" {
		model = sdk.ChatModel(cfg.Model)
	}
	return &client{
		api:   sdk.NewClient(option.WithAPIKey(cfg.APIKey)),
		model: model,
	}
}

func (c *client) Complete(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	params := sdk.ChatCompletionNewParams{
		Model:       c.model,
		MaxTokens:   sdk.Int(defaultMaxTokens),
		Temperature: sdk.Float(defaultTemperature),
	}
	for _, m := range messages {
		switch m.Role {
		case domain.ChatRoleSystem:
			params.Messages = append(params.Messages, sdk.SystemMessage(m.Content))
		case domain.ChatRoleAssistant:
			params.Messages = append(params.Messages, sdk.AssistantMessage(m.Content))
		default:
			params.Messages = append(params.Messages, sdk.UserMessage(m.Content))
		}
	}
	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
