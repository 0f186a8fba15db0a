package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const deepseekBaseURL = "https://api.deepseek.com/v1"

// OpenAIGenerator talks to any OpenAI-compatible chat completion API.
// DeepSeek exposes the same wire format, so both share this client.
type OpenAIGenerator struct {
	client      *openai.Client
	name        string
	model       string
	temperature float32
}

// NewOpenAIGenerator creates a generator against the OpenAI API.
// Returns ErrNoCredentials when apiKey is empty.
func NewOpenAIGenerator(apiKey, model string, temperature float32) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: %w", ErrNoCredentials)
	}
	return &OpenAIGenerator{
		client:      openai.NewClient(apiKey),
		name:        "openai",
		model:       model,
		temperature: temperature,
	}, nil
}

// NewDeepSeekGenerator creates a generator against the DeepSeek API.
// Returns ErrNoCredentials when apiKey is empty.
func NewDeepSeekGenerator(apiKey, model string, temperature float32) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("deepseek: %w", ErrNoCredentials)
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = deepseekBaseURL
	return &OpenAIGenerator{
		client:      openai.NewClientWithConfig(cfg),
		name:        "deepseek",
		model:       model,
		temperature: temperature,
	}, nil
}

func (g *OpenAIGenerator) Name() string { return g.name }

func (g *OpenAIGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: g.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%s chat completion failed: %w", g.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices", g.name)
	}
	return resp.Choices[0].Message.Content, nil
}
