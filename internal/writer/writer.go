// Package writer generates blog posts from episode digests through an
// iterative draft, grade, revise loop, and derives social posts from the
// accepted draft.
package writer

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"poddigest/internal/llm"
)

var (
	gradePattern    = regexp.MustCompile(`GRADE:\s*([A-F][+-]?)`)
	scorePattern    = regexp.MustCompile(`SCORE:\s*(\d+(?:\.\d+)?)`)
	feedbackPattern = regexp.MustCompile(`(?s)FEEDBACK:\s*(.+)`)
)

// Source is the digest material a post is written from.
type Source struct {
	EpisodeTitle string
	PodcastTitle string
	Summary      string
	KeyTopics    []string
	Themes       []string
	Quotes       []string
	Companies    []string
}

// Iteration records one pass of the grading loop.
type Iteration struct {
	Draft    string
	Grade    string
	Score    float64
	Feedback string
}

// Post is the final written article. The last iteration's draft is the body,
// even when an earlier draft scored higher.
type Post struct {
	Topic       string
	Slug        string
	Body        string
	Grade       string
	Score       float64
	Iterations  []Iteration
	Source      Source
	Model       string
	GeneratedAt time.Time
}

// Writer runs the grading loop against a single LLM backend.
type Writer struct {
	gen           llm.Generator
	model         string
	targetScore   float64
	maxIterations int
	logger        *zap.Logger
}

// NewWriter creates a writer. A targetScore of 0 or a maxIterations of 0
// fall back to the defaults (91.0, 3).
func NewWriter(gen llm.Generator, model string, targetScore float64, maxIterations int, logger *zap.Logger) *Writer {
	if targetScore <= 0 {
		targetScore = 91.0
	}
	if maxIterations <= 0 {
		maxIterations = 3
	}
	return &Writer{
		gen:           gen,
		model:         model,
		targetScore:   targetScore,
		maxIterations: maxIterations,
		logger:        logger,
	}
}

// Write drafts a post on topic from src, then grades and revises it until
// the grade meets the target score or the iteration budget runs out.
func (w *Writer) Write(ctx context.Context, topic string, src Source) (*Post, error) {
	draft, err := w.gen.Generate(ctx, draftSystemPrompt, draftPrompt(topic, src))
	if err != nil {
		return nil, fmt.Errorf("initial draft failed: %w", err)
	}

	var iterations []Iteration
	for i := 0; i < w.maxIterations; i++ {
		gradeResp, err := w.gen.Generate(ctx, gradeSystemPrompt, gradePrompt(topic, draft))
		if err != nil {
			return nil, fmt.Errorf("grading iteration %d failed: %w", i+1, err)
		}
		it := parseGrade(gradeResp)
		it.Draft = draft
		iterations = append(iterations, it)

		w.logger.Info("graded draft",
			zap.Int("iteration", i+1),
			zap.String("grade", it.Grade),
			zap.Float64("score", it.Score))

		if it.Score >= w.targetScore {
			break
		}
		if i == w.maxIterations-1 {
			break
		}

		draft, err = w.gen.Generate(ctx, draftSystemPrompt, revisePrompt(topic, draft, it.Feedback))
		if err != nil {
			return nil, fmt.Errorf("revision iteration %d failed: %w", i+1, err)
		}
	}

	last := iterations[len(iterations)-1]
	return &Post{
		Topic:       topic,
		Slug:        Slugify(topic),
		Body:        last.Draft,
		Grade:       last.Grade,
		Score:       last.Score,
		Iterations:  iterations,
		Source:      src,
		Model:       w.model,
		GeneratedAt: time.Now(),
	}, nil
}

// parseGrade reads GRADE, SCORE and FEEDBACK fields from a grading response.
// Missing fields fall back to C, 75.0 and the raw response.
func parseGrade(response string) Iteration {
	it := Iteration{
		Grade:    "C",
		Score:    75.0,
		Feedback: strings.TrimSpace(response),
	}
	if m := gradePattern.FindStringSubmatch(response); m != nil {
		it.Grade = m[1]
	}
	if m := scorePattern.FindStringSubmatch(response); m != nil {
		if score, err := strconv.ParseFloat(m[1], 64); err == nil {
			it.Score = score
		}
	}
	if m := feedbackPattern.FindStringSubmatch(response); m != nil {
		it.Feedback = strings.TrimSpace(m[1])
	}
	return it
}

var (
	nonSlugChars   = regexp.MustCompile(`[^\w\s-]`)
	slugSeparators = regexp.MustCompile(`[\s_-]+`)
)

// Slugify turns a topic into a URL- and filename-safe slug.
func Slugify(topic string) string {
	slug := strings.ToLower(strings.TrimSpace(topic))
	slug = nonSlugChars.ReplaceAllString(slug, "")
	slug = slugSeparators.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
