package digest

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type fakeExtractor struct {
	name   string
	err    error
	digest *Digest
}

func (f *fakeExtractor) Name() string { return f.name }

func (f *fakeExtractor) Extract(ctx context.Context, transcript string) (*Digest, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.digest, nil
}

func TestServiceFirstExtractorWins(t *testing.T) {
	want := &Digest{Summary: "llm summary", KeyTopics: []string{"ai"}}
	svc := NewService(zap.NewNop(),
		&fakeExtractor{name: "a", digest: want},
		&fakeExtractor{name: "b", digest: &Digest{Summary: "other"}},
	)
	got := svc.Summarize(context.Background(), "transcript")
	if got.Summary != "llm summary" {
		t.Errorf("expected first extractor result, got %q", got.Summary)
	}
	if got.Quotes == nil || got.Companies == nil {
		t.Error("nil list fields should be normalized to empty slices")
	}
}

func TestServiceDegradesToHeuristic(t *testing.T) {
	svc := NewService(zap.NewNop(),
		&fakeExtractor{name: "a", err: errors.New("network down")},
		&fakeExtractor{name: "b", err: errors.New("bad json")},
	)
	got := svc.Summarize(context.Background(), "startup startup startup funding funding growth")
	if got == nil {
		t.Fatal("Summarize must never return nil")
	}
	if len(got.Themes) != 1 || got.Themes[0] != "general discussion" {
		t.Errorf("heuristic themes: got %v", got.Themes)
	}
}

func TestServiceNoExtractors(t *testing.T) {
	svc := NewService(zap.NewNop())
	got := svc.Summarize(context.Background(), "words words words")
	if got == nil {
		t.Fatal("Summarize must never return nil")
	}
}

func TestHeuristicTopWords(t *testing.T) {
	text := "kubernetes kubernetes kubernetes docker docker serverless serverless deploy deployment scaling testing short tiny"
	topics := topWords(text, 5)
	if len(topics) != 5 {
		t.Fatalf("expected 5 topics, got %d: %v", len(topics), topics)
	}
	if topics[0] != "kubernetes" {
		t.Errorf("most frequent word should lead: got %v", topics)
	}
	// docker and serverless are tied at 2; alphabetical order breaks the tie
	if topics[1] != "docker" || topics[2] != "serverless" {
		t.Errorf("tie-break not deterministic: %v", topics)
	}
}

func TestHeuristicIgnoresShortWords(t *testing.T) {
	topics := topWords("the the the and and cat dog", 5)
	if len(topics) != 0 {
		t.Errorf("words under 5 chars should be ignored, got %v", topics)
	}
}

func TestHeuristicCompanies(t *testing.T) {
	text := "We talked to Acme Corp and Widget Labs, plus Acme Corp again."
	companies := companyMentions(text)
	if len(companies) != 2 {
		t.Fatalf("expected 2 companies, got %v", companies)
	}
	if companies[0] != "acme corp" || companies[1] != "widget labs" {
		t.Errorf("companies: got %v", companies)
	}
}

func TestHeuristicNeverNilLists(t *testing.T) {
	d, err := NewHeuristic().Extract(context.Background(), "")
	if err != nil {
		t.Fatalf("heuristic must not fail: %v", err)
	}
	if d.KeyTopics == nil || d.Quotes == nil || d.Companies == nil || d.Themes == nil {
		t.Errorf("heuristic digest has nil lists: %+v", d)
	}
}

func TestExtractJSON(t *testing.T) {
	text := "Here is the result:\n```json\n{\"summary\": \"hi\"}\n```\nDone."
	if got := extractJSON(text); got != `{"summary": "hi"}` {
		t.Errorf("extractJSON: got %q", got)
	}
	// No braces at all: text passes through unchanged
	if got := extractJSON("no json here"); got != "no json here" {
		t.Errorf("extractJSON passthrough: got %q", got)
	}
}

func TestCleanText(t *testing.T) {
	in := "So, um, we basically   shipped it, you know the release went out."
	got := CleanText(in)
	want := "So, we shipped it, the release went out."
	if got != want {
		t.Errorf("CleanText: got %q, want %q", got, want)
	}
}

func TestCleanerDegradesWithoutLLM(t *testing.T) {
	c := NewCleaner(nil, zap.NewNop())
	got := c.Clean(context.Background(), "um  hello   world")
	if got != "hello world" {
		t.Errorf("Clean: got %q", got)
	}
}
