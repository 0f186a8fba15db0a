package poddigest

import "time"

// Podcast represents a subscribed podcast feed.
type Podcast struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	RSSURL    string    `json:"rss_url"`
	Category  string    `json:"category,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Episode represents one podcast episode moving through the pipeline.
type Episode struct {
	ID           int64      `json:"id"`
	PodcastID    int64      `json:"podcast_id"`
	PodcastTitle string     `json:"podcast_title"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Published    *time.Time `json:"published,omitempty"`
	URL          string     `json:"url"`
	AudioPath    string     `json:"audio_path,omitempty"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Summary is the structured digest stored for a processed episode.
type Summary struct {
	ID           int64    `json:"id"`
	EpisodeID    int64    `json:"episode_id"`
	EpisodeTitle string   `json:"episode_title"`
	PodcastTitle string   `json:"podcast_title"`
	KeyTopics    []string `json:"key_topics"`
	Themes       []string `json:"themes"`
	Quotes       []string `json:"quotes"`
	Companies    []string `json:"companies"`
	Summary      string   `json:"summary"`
	DigestDate   string   `json:"digest_date"`
}

// FeedFetchResult summarizes the outcome of fetching one feed.
type FeedFetchResult struct {
	Podcast     string `json:"podcast"`
	NewEpisodes int    `json:"new_episodes"`
	Err         error  `json:"-"`
}

// FetchResult summarizes one fetch cycle across all configured feeds.
type FetchResult struct {
	Feeds       []FeedFetchResult `json:"feeds"`
	NewEpisodes int               `json:"new_episodes"`
}

// WriteIteration is one pass of the blog post grading loop.
type WriteIteration struct {
	Grade    string  `json:"grade"`
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// WriteResult is a finished blog post with its grading history, social
// derivatives and saved artifact path.
type WriteResult struct {
	Topic        string           `json:"topic"`
	Slug         string           `json:"slug"`
	Body         string           `json:"body"`
	Grade        string           `json:"grade"`
	Score        float64          `json:"score"`
	Iterations   []WriteIteration `json:"iterations"`
	Path         string           `json:"path"`
	Microblog    []string         `json:"microblog"`
	Professional []string         `json:"professional"`
	Quotes       []string         `json:"quotes"`
	Insights     []string         `json:"insights"`
}
