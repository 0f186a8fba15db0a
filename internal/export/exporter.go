// Package export renders a day's digests to markdown, JSON or HTML.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"poddigest/internal/storage"
)

// Format names a supported export format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
)

// ErrUnsupportedFormat is returned for unknown formats. Callers exporting
// several formats treat it as a per-format failure, not a fatal one.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Formats lists the supported formats in render order.
var Formats = []Format{FormatMarkdown, FormatJSON, FormatHTML}

// ParseFormat maps a user-supplied name (including the md/htm shorthands)
// onto a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "html", "htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// Extension returns the file extension for a format.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return "md"
	case FormatJSON:
		return "json"
	default:
		return string(f)
	}
}

// Exporter renders digest documents.
type Exporter struct{}

func NewExporter() *Exporter { return &Exporter{} }

// Render produces the digest document for date in the given format.
func (e *Exporter) Render(summaries []storage.Summary, date string, format Format) (string, error) {
	switch format {
	case FormatMarkdown:
		return renderMarkdown(summaries, date), nil
	case FormatJSON:
		return renderJSON(summaries, date)
	case FormatHTML:
		return renderHTML(summaries, date)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// podcastGroup keeps one podcast's summaries together. Input is already
// ordered by podcast title, so grouping preserves that order.
type podcastGroup struct {
	Podcast   string
	Summaries []storage.Summary
}

func groupByPodcast(summaries []storage.Summary) []podcastGroup {
	var groups []podcastGroup
	for _, s := range summaries {
		if len(groups) == 0 || groups[len(groups)-1].Podcast != s.PodcastTitle {
			groups = append(groups, podcastGroup{Podcast: s.PodcastTitle})
		}
		last := &groups[len(groups)-1]
		last.Summaries = append(last.Summaries, s)
	}
	return groups
}

func renderMarkdown(summaries []storage.Summary, date string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Podcast Digest - %s\n\n", date)
	fmt.Fprintf(&b, "%d episode(s) processed.\n\n", len(summaries))

	for _, group := range groupByPodcast(summaries) {
		fmt.Fprintf(&b, "## %s\n\n", group.Podcast)
		for _, s := range group.Summaries {
			fmt.Fprintf(&b, "### %s\n\n", s.EpisodeTitle)
			if s.Summary != "" {
				fmt.Fprintf(&b, "%s\n\n", s.Summary)
			}
			if len(s.KeyTopics) > 0 {
				fmt.Fprintf(&b, "**Key topics:** %s\n\n", strings.Join(s.KeyTopics, ", "))
			}
			if len(s.Themes) > 0 {
				fmt.Fprintf(&b, "**Themes:** %s\n\n", strings.Join(s.Themes, ", "))
			}
			for _, q := range s.Quotes {
				fmt.Fprintf(&b, "> %s\n\n", q)
			}
			if len(s.Companies) > 0 {
				fmt.Fprintf(&b, "**Companies:** %s\n\n", strings.Join(s.Companies, ", "))
			}
		}
	}
	return b.String()
}

type jsonSummary struct {
	EpisodeID    int64    `json:"episode_id"`
	EpisodeTitle string   `json:"episode_title"`
	PodcastTitle string   `json:"podcast_title"`
	KeyTopics    []string `json:"key_topics"`
	Themes       []string `json:"themes"`
	Quotes       []string `json:"quotes"`
	Companies    []string `json:"companies"`
	Summary      string   `json:"summary"`
}

type jsonDocument struct {
	Date          string        `json:"date"`
	TotalEpisodes int           `json:"total_episodes"`
	Summaries     []jsonSummary `json:"summaries"`
}

func renderJSON(summaries []storage.Summary, date string) (string, error) {
	doc := jsonDocument{
		Date:          date,
		TotalEpisodes: len(summaries),
		Summaries:     make([]jsonSummary, 0, len(summaries)),
	}
	for _, s := range summaries {
		doc.Summaries = append(doc.Summaries, jsonSummary{
			EpisodeID:    s.EpisodeID,
			EpisodeTitle: s.EpisodeTitle,
			PodcastTitle: s.PodcastTitle,
			KeyTopics:    s.KeyTopics,
			Themes:       s.Themes,
			Quotes:       s.Quotes,
			Companies:    s.Companies,
			Summary:      s.Summary,
		})
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal digest: %w", err)
	}
	return string(data), nil
}
