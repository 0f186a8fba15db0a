package digest

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"poddigest/internal/llm"
)

var (
	fillerPattern     = regexp.MustCompile(`(?i)\b(um|uh|you know|i mean|sort of|kind of|basically|literally)\b[,.]?\s+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Cleaner prepares raw transcript text for extraction: filler words are
// stripped with regexes, and an optional LLM pass polishes punctuation and
// sentence boundaries. LLM failure degrades to the regex-cleaned text.
type Cleaner struct {
	gen    llm.Generator
	logger *zap.Logger
}

// NewCleaner creates a cleaner. gen may be nil, leaving only the regex pass.
func NewCleaner(gen llm.Generator, logger *zap.Logger) *Cleaner {
	return &Cleaner{gen: gen, logger: logger}
}

// CleanText strips filler words and collapses whitespace.
func CleanText(text string) string {
	text = fillerPattern.ReplaceAllString(text, "")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

const polishSystemPrompt = "You clean up podcast transcripts. Fix punctuation and sentence boundaries without changing the meaning or removing content. Respond with the cleaned transcript only."

// Clean runs the regex pass and, when an LLM is configured, the polish pass.
func (c *Cleaner) Clean(ctx context.Context, text string) string {
	cleaned := CleanText(text)
	if c.gen == nil || cleaned == "" {
		return cleaned
	}

	// Polishing very long transcripts costs more than it helps.
	if len(cleaned) > maxTranscriptChars {
		return cleaned
	}

	polished, err := c.gen.Generate(ctx, polishSystemPrompt, cleaned)
	if err != nil {
		c.logger.Warn("transcript polish failed, using regex-cleaned text", zap.Error(err))
		return cleaned
	}
	polished = strings.TrimSpace(polished)
	if polished == "" {
		return cleaned
	}
	return polished
}
