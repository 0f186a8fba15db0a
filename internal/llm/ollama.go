package llm

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

// OllamaGenerator talks to a local ollama server. It needs no credentials.
type OllamaGenerator struct {
	client      *api.Client
	model       string
	temperature float64
}

// NewOllamaGenerator creates an ollama-backed generator. The OLLAMA_HOST
// environment variable wins over baseURL when set.
func NewOllamaGenerator(baseURL, model string, temperature float64) (*OllamaGenerator, error) {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		// If env-based client fails, create one with the base URL
		parsedURL, parseErr := url.Parse(baseURL)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid base URL: %w", parseErr)
		}
		client = api.NewClient(parsedURL, nil)
	}

	return &OllamaGenerator{
		client:      client,
		model:       model,
		temperature: temperature,
	}, nil
}

func (g *OllamaGenerator) Name() string { return "ollama" }

func (g *OllamaGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	req := &api.ChatRequest{
		Model: g.model,
		Messages: []api.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream: new(bool), // false
		Options: map[string]interface{}{
			"temperature": g.temperature,
		},
	}

	var fullResponse strings.Builder
	err := g.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		fullResponse.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate failed: %w", err)
	}
	return fullResponse.String(), nil
}
