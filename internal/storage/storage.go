package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Status is the processing state of an episode. Transitions are strictly
// forward: downloaded -> transcribed -> processed.
type Status string

const (
	StatusDownloaded  Status = "downloaded"
	StatusTranscribed Status = "transcribed"
	StatusProcessed   Status = "processed"
)

type Store struct {
	db *sql.DB
}

type Podcast struct {
	ID        int64
	Title     string
	RSSURL    string
	Category  string
	CreatedAt time.Time
}

type Episode struct {
	ID              int64
	PodcastID       int64
	PodcastTitle    string
	Title           string
	Description     string
	Published       *time.Time
	URL             string
	AudioPath       string
	DurationSeconds *int64
	Status          Status
	CreatedAt       time.Time
}

type Segment struct {
	ID         int64
	EpisodeID  int64
	Speaker    *string
	StartSec   float64
	EndSec     float64
	Text       string
	Confidence float64
}

type Summary struct {
	ID           int64
	EpisodeID    int64
	EpisodeTitle string
	PodcastTitle string
	KeyTopics    []string
	Themes       []string
	Quotes       []string
	Companies    []string
	Summary      string
	DigestDate   string
	CreatedAt    time.Time
}

// NewStore creates a new database connection and initializes the schema
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_time_format=sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Initialize schema
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Podcast management

// AddPodcast inserts a podcast or returns the existing row ID when a podcast
// with the same RSS URL is already registered.
func (s *Store) AddPodcast(title, rssURL, category string) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO podcasts (title, rss_url, category) VALUES (?, ?, ?)
		 ON CONFLICT(rss_url) DO NOTHING`,
		title, rssURL, category,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to add podcast: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected > 0 {
		return result.LastInsertId()
	}

	var id int64
	err = s.db.QueryRow("SELECT id FROM podcasts WHERE rss_url = ?", rssURL).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to look up podcast by URL: %w", err)
	}
	return id, nil
}

// GetAllPodcasts returns all registered podcasts ordered by title.
func (s *Store) GetAllPodcasts() ([]Podcast, error) {
	rows, err := s.db.Query("SELECT id, title, rss_url, category, created_at FROM podcasts ORDER BY title")
	if err != nil {
		return nil, fmt.Errorf("failed to get podcasts: %w", err)
	}
	defer rows.Close()

	var podcasts []Podcast
	for rows.Next() {
		var p Podcast
		var category sql.NullString
		if err := rows.Scan(&p.ID, &p.Title, &p.RSSURL, &category, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan podcast: %w", err)
		}
		p.Category = category.String
		podcasts = append(podcasts, p)
	}
	return podcasts, rows.Err()
}

// Episode management

// AddEpisode inserts an episode. Episodes are deduplicated by URL: adding an
// episode whose URL already exists is a no-op that returns the existing row ID
// with created=false.
func (s *Store) AddEpisode(ep *Episode) (int64, bool, error) {
	status := ep.Status
	if status == "" {
		status = StatusDownloaded
	}
	result, err := s.db.Exec(
		`INSERT INTO episodes (podcast_id, title, description, published, url, audio_path, duration_seconds, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(url) DO NOTHING`,
		ep.PodcastID, ep.Title, ep.Description, ep.Published,
		ep.URL, nullString(ep.AudioPath), ep.DurationSeconds, status,
	)
	if err != nil {
		return 0, false, fmt.Errorf("failed to add episode: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected > 0 {
		id, err := result.LastInsertId()
		return id, true, err
	}

	var id int64
	err = s.db.QueryRow("SELECT id FROM episodes WHERE url = ?", ep.URL).Scan(&id)
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up episode by URL: %w", err)
	}
	return id, false, nil
}

// EpisodeExists reports whether an episode with the given URL is already stored.
func (s *Store) EpisodeExists(url string) (bool, error) {
	var id int64
	err := s.db.QueryRow("SELECT id FROM episodes WHERE url = ?", url).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check episode: %w", err)
	}
	return true, nil
}

// GetEpisode returns a single episode by ID, joined with its podcast title.
func (s *Store) GetEpisode(episodeID int64) (*Episode, error) {
	var e Episode
	var description, audioPath sql.NullString
	err := s.db.QueryRow(
		`SELECT e.id, e.podcast_id, p.title, e.title, e.description, e.published,
		        e.url, e.audio_path, e.duration_seconds, e.status, e.created_at
		 FROM episodes e
		 JOIN podcasts p ON e.podcast_id = p.id
		 WHERE e.id = ?`, episodeID,
	).Scan(&e.ID, &e.PodcastID, &e.PodcastTitle, &e.Title, &description, &e.Published,
		&e.URL, &audioPath, &e.DurationSeconds, &e.Status, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get episode %d: %w", episodeID, err)
	}
	e.Description = description.String
	e.AudioPath = audioPath.String
	return &e, nil
}

// GetEpisodesByStatus returns all episodes in the given status, newest first.
func (s *Store) GetEpisodesByStatus(status Status) ([]Episode, error) {
	query := `
		SELECT e.id, e.podcast_id, p.title, e.title, e.description, e.published,
		       e.url, e.audio_path, e.duration_seconds, e.status, e.created_at
		FROM episodes e
		JOIN podcasts p ON e.podcast_id = p.id
		WHERE e.status = ?
		ORDER BY e.published DESC
	`
	rows, err := s.db.Query(query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to get episodes by status: %w", err)
	}
	defer rows.Close()

	var episodes []Episode
	for rows.Next() {
		var e Episode
		var description, audioPath sql.NullString
		if err := rows.Scan(&e.ID, &e.PodcastID, &e.PodcastTitle, &e.Title, &description, &e.Published,
			&e.URL, &audioPath, &e.DurationSeconds, &e.Status, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan episode: %w", err)
		}
		e.Description = description.String
		e.AudioPath = audioPath.String
		episodes = append(episodes, e)
	}
	return episodes, rows.Err()
}

// AdvanceEpisodeStatus moves an episode from one status to the next. The
// update is guarded on the current status, so it both claims the episode for
// this process and refuses backward or repeated transitions. Returns true if
// the transition happened.
func (s *Store) AdvanceEpisodeStatus(episodeID int64, from, to Status) (bool, error) {
	result, err := s.db.Exec(
		"UPDATE episodes SET status = ? WHERE id = ? AND status = ?",
		to, episodeID, from,
	)
	if err != nil {
		return false, fmt.Errorf("failed to advance episode status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return affected > 0, nil
}

// CountEpisodesByStatus returns the number of episodes in each status.
func (s *Store) CountEpisodesByStatus() (map[Status]int, error) {
	rows, err := s.db.Query("SELECT status, COUNT(*) FROM episodes GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to count episodes: %w", err)
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var status Status
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// Transcript management

// AddTranscriptSegments appends transcript segments for an episode. The table
// is append-only: re-transcribing an episode whose earlier attempt wrote rows
// but failed before the status flip will store those segments again.
func (s *Store) AddTranscriptSegments(episodeID int64, segments []Segment) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO transcripts (episode_id, speaker, start_sec, end_sec, text, confidence)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, seg := range segments {
		if _, err := stmt.Exec(episodeID, seg.Speaker, seg.StartSec, seg.EndSec, seg.Text, seg.Confidence); err != nil {
			return fmt.Errorf("failed to insert segment: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit segments: %w", err)
	}
	return nil
}

// GetTranscriptSegments returns an episode's transcript ordered by start time.
func (s *Store) GetTranscriptSegments(episodeID int64) ([]Segment, error) {
	rows, err := s.db.Query(
		`SELECT id, episode_id, speaker, start_sec, end_sec, text, confidence
		 FROM transcripts WHERE episode_id = ? ORDER BY start_sec`,
		episodeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get transcript segments: %w", err)
	}
	defer rows.Close()

	var segments []Segment
	for rows.Next() {
		var seg Segment
		if err := rows.Scan(&seg.ID, &seg.EpisodeID, &seg.Speaker, &seg.StartSec, &seg.EndSec, &seg.Text, &seg.Confidence); err != nil {
			return nil, fmt.Errorf("failed to scan segment: %w", err)
		}
		segments = append(segments, seg)
	}
	return segments, rows.Err()
}

// Summary management

// AddSummary stores a digest for an episode. List fields are stored as JSON
// arrays. Summaries carry no uniqueness constraint: re-processing an episode
// for the same date produces a second row.
func (s *Store) AddSummary(sum *Summary) (int64, error) {
	topics, err := marshalList(sum.KeyTopics)
	if err != nil {
		return 0, err
	}
	themes, err := marshalList(sum.Themes)
	if err != nil {
		return 0, err
	}
	quotes, err := marshalList(sum.Quotes)
	if err != nil {
		return 0, err
	}
	companies, err := marshalList(sum.Companies)
	if err != nil {
		return 0, err
	}

	result, err := s.db.Exec(
		`INSERT INTO summaries (episode_id, key_topics, themes, quotes, companies, summary, digest_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sum.EpisodeID, topics, themes, quotes, companies, sum.Summary, sum.DigestDate,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to add summary: %w", err)
	}
	return result.LastInsertId()
}

// GetSummariesByDate returns all summaries for a digest date, joined with
// episode and podcast titles, grouped by podcast.
func (s *Store) GetSummariesByDate(date string) ([]Summary, error) {
	query := `
		SELECT s.id, s.episode_id, e.title, p.title,
		       s.key_topics, s.themes, s.quotes, s.companies, s.summary, s.digest_date, s.created_at
		FROM summaries s
		JOIN episodes e ON s.episode_id = e.id
		JOIN podcasts p ON e.podcast_id = p.id
		WHERE s.digest_date = ?
		ORDER BY p.title, e.title
	`
	rows, err := s.db.Query(query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get summaries by date: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var sum Summary
		var topics, themes, quotes, companies string
		var text sql.NullString
		if err := rows.Scan(&sum.ID, &sum.EpisodeID, &sum.EpisodeTitle, &sum.PodcastTitle,
			&topics, &themes, &quotes, &companies, &text, &sum.DigestDate, &sum.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		sum.Summary = text.String
		if sum.KeyTopics, err = unmarshalList(topics); err != nil {
			return nil, err
		}
		if sum.Themes, err = unmarshalList(themes); err != nil {
			return nil, err
		}
		if sum.Quotes, err = unmarshalList(quotes); err != nil {
			return nil, err
		}
		if sum.Companies, err = unmarshalList(companies); err != nil {
			return nil, err
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

func marshalList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to marshal list: %w", err)
	}
	return string(data), nil
}

func unmarshalList(data string) ([]string, error) {
	var items []string
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal list: %w", err)
	}
	return items, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
