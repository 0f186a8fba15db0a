// Package digest turns episode transcripts into structured summaries.
// Remote and local LLM extractors are tried in order, with a deterministic
// heuristic extractor at the end of the chain, so a transcript always yields
// a digest no matter which backends are reachable.
package digest

import "context"

// Digest is the structured summary of one episode transcript.
type Digest struct {
	KeyTopics []string `json:"key_topics"`
	Themes    []string `json:"themes"`
	Quotes    []string `json:"quotes"`
	Companies []string `json:"companies"`
	Summary   string   `json:"summary"`
}

// Extractor produces a Digest from a transcript.
type Extractor interface {
	// Name identifies the backend in logs.
	Name() string
	Extract(ctx context.Context, transcript string) (*Digest, error)
}
