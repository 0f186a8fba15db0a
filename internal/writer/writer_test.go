package writer

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"
)

// scriptedGenerator answers grading prompts from a fixed score sequence and
// everything else with a counted draft.
type scriptedGenerator struct {
	scores     []float64
	gradeCalls int
	draftCalls int
}

func (g *scriptedGenerator) Name() string { return "scripted" }

func (g *scriptedGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	if system == gradeSystemPrompt {
		score := g.scores[g.gradeCalls]
		g.gradeCalls++
		return fmt.Sprintf("GRADE: B\nSCORE: %.0f\nFEEDBACK: tighten the intro", score), nil
	}
	g.draftCalls++
	return fmt.Sprintf("draft %d", g.draftCalls), nil
}

func testSource() Source {
	return Source{
		EpisodeTitle: "Episode 1",
		PodcastTitle: "Tech Talk",
		Summary:      "An episode about infrastructure.",
		KeyTopics:    []string{"infrastructure"},
	}
}

func TestWriteStopsAtTargetScore(t *testing.T) {
	gen := &scriptedGenerator{scores: []float64{60, 75, 95}}
	w := NewWriter(gen, "test-model", 91.0, 3, zap.NewNop())

	post, err := w.Write(context.Background(), "Scaling Databases", testSource())
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if len(post.Iterations) != 3 {
		t.Fatalf("expected 3 iterations, got %d", len(post.Iterations))
	}
	if post.Score != 95 {
		t.Errorf("final score: got %.0f, want 95", post.Score)
	}
	if post.Body != "draft 3" {
		t.Errorf("body should be the last draft, got %q", post.Body)
	}
	// Third grade met the target, so no fourth draft was requested
	if gen.draftCalls != 3 {
		t.Errorf("expected 3 draft calls, got %d", gen.draftCalls)
	}
}

func TestWriteExhaustsIterationBudget(t *testing.T) {
	gen := &scriptedGenerator{scores: []float64{60, 65, 70}}
	w := NewWriter(gen, "test-model", 91.0, 3, zap.NewNop())

	post, err := w.Write(context.Background(), "Scaling Databases", testSource())
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if len(post.Iterations) != 3 {
		t.Fatalf("expected 3 iterations, got %d", len(post.Iterations))
	}
	// Last iteration wins even though it never met the target
	if post.Score != 70 {
		t.Errorf("final score: got %.0f, want 70", post.Score)
	}
	if post.Body != "draft 3" {
		t.Errorf("body should be the last draft, got %q", post.Body)
	}
	// No revision after the final grade
	if gen.draftCalls != 3 {
		t.Errorf("expected 3 draft calls, got %d", gen.draftCalls)
	}
}

func TestWriteAcceptsFirstDraft(t *testing.T) {
	gen := &scriptedGenerator{scores: []float64{95}}
	w := NewWriter(gen, "test-model", 91.0, 3, zap.NewNop())

	post, err := w.Write(context.Background(), "Scaling Databases", testSource())
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if len(post.Iterations) != 1 {
		t.Fatalf("expected 1 iteration, got %d", len(post.Iterations))
	}
	if gen.draftCalls != 1 {
		t.Errorf("expected 1 draft call, got %d", gen.draftCalls)
	}
}

func TestDraftPromptStyleBrief(t *testing.T) {
	prompt := draftPrompt("Scaling Databases", testSource())
	for _, want := range []string{
		"500 words or less",
		"No section headers",
		"Strong hook",
		"ties back to the opening",
		"transition smoothly",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("draft prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "section headings") {
		t.Error("draft prompt must not ask for section headings")
	}
}

func TestGradePromptRubric(t *testing.T) {
	prompt := gradePrompt("Scaling Databases", "the draft")
	for _, criterion := range []string{
		"Hook/Opening (20 points)",
		"Argument Clarity (20 points)",
		"Evidence and Examples (20 points)",
		"Paragraph Structure (20 points)",
		"Conclusion Strength (20 points)",
	} {
		if !strings.Contains(prompt, criterion) {
			t.Errorf("grade prompt missing criterion %q", criterion)
		}
	}
}

func TestParseGrade(t *testing.T) {
	it := parseGrade("GRADE: A-\nSCORE: 92\nFEEDBACK: strong structure, minor nits")
	if it.Grade != "A-" {
		t.Errorf("grade: got %q", it.Grade)
	}
	if it.Score != 92 {
		t.Errorf("score: got %f", it.Score)
	}
	if it.Feedback != "strong structure, minor nits" {
		t.Errorf("feedback: got %q", it.Feedback)
	}
}

func TestParseGradeDefaults(t *testing.T) {
	raw := "I think this post is pretty good overall."
	it := parseGrade(raw)
	if it.Grade != "C" {
		t.Errorf("default grade: got %q, want C", it.Grade)
	}
	if it.Score != 75.0 {
		t.Errorf("default score: got %f, want 75.0", it.Score)
	}
	if it.Feedback != raw {
		t.Errorf("default feedback should be the raw response, got %q", it.Feedback)
	}
}

func TestParseGradeDecimalScore(t *testing.T) {
	it := parseGrade("GRADE: B+\nSCORE: 88.5\nFEEDBACK: nearly there")
	if it.Score != 88.5 {
		t.Errorf("decimal score: got %f", it.Score)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Scaling Databases", "scaling-databases"},
		{"What's Next for AI?", "whats-next-for-ai"},
		{"  spaced   out  ", "spaced-out"},
		{"already-a-slug", "already-a-slug"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParsePosts(t *testing.T) {
	resp := `Here you go:
POST 1: First one here.
POST 2: Second one,
spanning two lines.
POST 3: Third.`
	posts := parsePosts(resp)
	if len(posts) != 3 {
		t.Fatalf("expected 3 posts, got %d: %v", len(posts), posts)
	}
	if posts[0] != "First one here." {
		t.Errorf("first post: got %q", posts[0])
	}
	if !strings.Contains(posts[1], "spanning two lines.") {
		t.Errorf("multi-line post truncated: got %q", posts[1])
	}
}

func TestParsePostsNoMarkers(t *testing.T) {
	posts := parsePosts("Sorry, I cannot help with that.")
	if len(posts) != 0 {
		t.Errorf("expected empty list without markers, got %v", posts)
	}
}

func TestExtractQuotes(t *testing.T) {
	body := `He said "the future of infrastructure is boring technology" and later "short" plus "another genuinely interesting quotable line".`
	quotes := extractQuotes(body, 3)
	if len(quotes) != 2 {
		t.Fatalf("expected 2 quotes, got %d: %v", len(quotes), quotes)
	}
	if quotes[0] != "the future of infrastructure is boring technology" {
		t.Errorf("first quote: got %q", quotes[0])
	}
}

func TestExtractInsights(t *testing.T) {
	body := "Opening paragraph here. " +
		"The key takeaway is that boring technology keeps infrastructure teams shipping on schedule. " +
		"A crucial lesson: measure before you migrate anything important at all. " +
		"Short key note. " +
		"Nothing notable in this particular sentence beyond ordinary filler words and padding. " +
		"Closing thought."
	insights := extractInsights(body, 5)
	if len(insights) != 2 {
		t.Fatalf("expected 2 insights, got %d: %v", len(insights), insights)
	}
	if !strings.Contains(insights[0], "key takeaway") {
		t.Errorf("first insight: got %q", insights[0])
	}
	for _, in := range insights {
		if !strings.HasSuffix(in, ".") {
			t.Errorf("insight should end with a period: %q", in)
		}
	}
}

func TestExtractInsightsCap(t *testing.T) {
	sentence := "The key point repeats itself across many sentences in this long post body"
	body := strings.Repeat(sentence+". ", 8)
	insights := extractInsights(body, 5)
	if len(insights) != 5 {
		t.Errorf("expected insights capped at 5, got %d", len(insights))
	}
}

func TestSaveMarkdown(t *testing.T) {
	gen := &scriptedGenerator{scores: []float64{95}}
	w := NewWriter(gen, "test-model", 91.0, 3, zap.NewNop())
	post, err := w.Write(context.Background(), "Scaling Databases", testSource())
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	dir := t.TempDir()
	path, err := SaveMarkdown(post, dir)
	if err != nil {
		t.Fatalf("SaveMarkdown failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading artifact failed: %v", err)
	}
	content := string(data)
	for _, want := range []string{"slug: scaling-databases", "grade: B", "draft 1", "Grading history:"} {
		if !strings.Contains(content, want) {
			t.Errorf("artifact missing %q:\n%s", want, content)
		}
	}
	if !strings.HasSuffix(path, "-scaling-databases.md") {
		t.Errorf("artifact filename: got %s", path)
	}
}
