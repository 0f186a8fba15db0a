// Package llm provides the generative backends shared by the digest and
// writer pipelines. Remote OpenAI-compatible APIs and a local ollama server
// are exposed behind the same Generator interface.
package llm

import (
	"context"
	"errors"
)

// Generator produces a completion for a system/user prompt pair.
type Generator interface {
	// Name identifies the backend in logs.
	Name() string
	Generate(ctx context.Context, system, user string) (string, error)
}

// ErrNoCredentials marks a backend that cannot be constructed because its
// API key is missing from the environment.
var ErrNoCredentials = errors.New("no API credentials configured")
