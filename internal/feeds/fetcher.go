package feeds

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
)

type Fetcher struct {
	parser    *gofeed.Parser
	client    *http.Client
	sanitizer *bluemonday.Policy
}

// Item is one episode entry discovered in a podcast feed. Entries without an
// audio enclosure are never surfaced as Items.
type Item struct {
	Title           string
	Description     string
	AudioURL        string
	Published       *time.Time
	DurationSeconds *int64
}

// NewFetcher creates a new feed fetcher
func NewFetcher() *Fetcher {
	parser := gofeed.NewParser()
	parser.UserAgent = "poddigest/1.0"
	return &Fetcher{
		parser:    parser,
		client:    &http.Client{},
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// FetchEpisodes fetches a podcast feed and returns up to limit episode items,
// newest first as the feed orders them. Entries without an audio enclosure
// are skipped. An empty feed yields an empty slice, not an error.
func (f *Fetcher) FetchEpisodes(ctx context.Context, rssURL string, limit int) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rssURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", rssURL, err)
	}
	req.Header.Set("User-Agent", "poddigest/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed %s: %w", rssURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s returned status %d", rssURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed %s: %w", rssURL, err)
	}

	parsed, err := f.parser.ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", rssURL, err)
	}

	items := make([]Item, 0, limit)
	for _, entry := range parsed.Items {
		if limit > 0 && len(items) >= limit {
			break
		}
		audioURL := audioEnclosure(entry)
		if audioURL == "" {
			continue
		}

		item := Item{
			Title:       entry.Title,
			Description: f.sanitizeDescription(entry.Description),
			AudioURL:    audioURL,
		}
		if entry.PublishedParsed != nil {
			item.Published = entry.PublishedParsed
		} else if entry.UpdatedParsed != nil {
			item.Published = entry.UpdatedParsed
		}
		if entry.ITunesExt != nil {
			item.DurationSeconds = parseDuration(entry.ITunesExt.Duration)
		}
		items = append(items, item)
	}
	return items, nil
}

// audioEnclosure returns the URL of the first audio enclosure on an entry,
// or "" when the entry carries none.
func audioEnclosure(entry *gofeed.Item) string {
	for _, enc := range entry.Enclosures {
		if enc == nil || enc.URL == "" {
			continue
		}
		if strings.Contains(strings.ToLower(enc.Type), "audio") {
			return enc.URL
		}
	}
	return ""
}

func (f *Fetcher) sanitizeDescription(desc string) string {
	return strings.TrimSpace(f.sanitizer.Sanitize(desc))
}

// parseDuration converts an itunes:duration value to whole seconds. Feeds use
// either plain seconds ("1825") or clock notation ("30:25", "1:02:45").
func parseDuration(raw string) *int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var total int64
	for _, part := range strings.Split(raw, ":") {
		n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || n < 0 {
			return nil
		}
		total = total*60 + n
	}
	return &total
}
