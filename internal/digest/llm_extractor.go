package digest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"poddigest/internal/llm"
)

const extractSystemPrompt = "You are an analyst who extracts structured insights from podcast transcripts. Respond only with valid JSON."

const extractUserPrompt = `Analyze this podcast transcript and extract the following:

1. key_topics: the 5 most important topics discussed
2. themes: recurring themes across the conversation
3. quotes: up to 3 notable verbatim quotes
4. companies: names of companies or startups mentioned
5. summary: a 2-3 sentence summary of the episode

Respond ONLY with valid JSON in this exact format:
{
  "key_topics": ["..."],
  "themes": ["..."],
  "quotes": ["..."],
  "companies": ["..."],
  "summary": "..."
}

Transcript:
%s`

// maxTranscriptChars bounds the prompt size sent to remote APIs.
const maxTranscriptChars = 24000

// LLMExtractor wraps any llm.Generator as a digest extractor.
type LLMExtractor struct {
	gen llm.Generator
}

// NewLLMExtractor creates an extractor backed by gen.
func NewLLMExtractor(gen llm.Generator) *LLMExtractor {
	return &LLMExtractor{gen: gen}
}

func (e *LLMExtractor) Name() string { return e.gen.Name() }

func (e *LLMExtractor) Extract(ctx context.Context, transcript string) (*Digest, error) {
	prompt := fmt.Sprintf(extractUserPrompt, truncateText(transcript, maxTranscriptChars))
	response, err := e.gen.Generate(ctx, extractSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	var d Digest
	if err := json.Unmarshal([]byte(extractJSON(response)), &d); err != nil {
		return nil, fmt.Errorf("%s returned malformed digest JSON: %w", e.Name(), err)
	}
	return &d, nil
}

// truncateText truncates text to maxLen characters
func truncateText(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen] + "..."
}

// extractJSON attempts to extract JSON from a text response that might contain extra text
func extractJSON(text string) string {
	// Find first { and last }
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}
