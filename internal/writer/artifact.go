package writer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SaveMarkdown writes the post as a markdown file with YAML front matter and
// an appended grading history. Returns the file path.
func SaveMarkdown(post *Post, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create posts dir: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: %q\n", post.Topic)
	fmt.Fprintf(&b, "slug: %s\n", post.Slug)
	fmt.Fprintf(&b, "date: %s\n", post.GeneratedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "podcast: %q\n", post.Source.PodcastTitle)
	fmt.Fprintf(&b, "episode: %q\n", post.Source.EpisodeTitle)
	fmt.Fprintf(&b, "grade: %s\n", post.Grade)
	fmt.Fprintf(&b, "score: %.1f\n", post.Score)
	fmt.Fprintf(&b, "model: %s\n", post.Model)
	b.WriteString("---\n\n")
	b.WriteString(post.Body)
	b.WriteString("\n\n<!--\nGrading history:\n")
	for i, it := range post.Iterations {
		fmt.Fprintf(&b, "  iteration %d: %s (%.1f) %s\n", i+1, it.Grade, it.Score, firstLine(it.Feedback))
	}
	b.WriteString("-->\n")

	path := filepath.Join(dir, fmt.Sprintf("%s-%s.md", post.GeneratedAt.Format("2006-01-02"), post.Slug))
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write post: %w", err)
	}
	return path, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
