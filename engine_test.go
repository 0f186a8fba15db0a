package poddigest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"poddigest/internal/storage"
)

func newTestEngine(t *testing.T, feeds ...storage.FeedConfig) *Engine {
	t.Helper()
	// Keep backend construction deterministic regardless of the host env
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("DEEPSEEK_API_KEY", "")

	dir := t.TempDir()
	cfg := storage.DefaultConfig()
	cfg.Database.Path = filepath.Join(dir, "test.db")
	cfg.Paths.AudioDir = filepath.Join(dir, "audio")
	cfg.Paths.ExportDir = filepath.Join(dir, "digests")
	cfg.Paths.PostsDir = filepath.Join(dir, "posts")
	cfg.Feeds = feeds

	engine, err := NewEngine(cfg, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	t.Cleanup(func() { engine.Close() })
	return engine
}

func seedTranscribedEpisode(t *testing.T, e *Engine) int64 {
	t.Helper()
	podcastID, err := e.store.AddPodcast("Tech Talk", "https://example.com/feed.xml", "")
	if err != nil {
		t.Fatalf("AddPodcast: %v", err)
	}
	id, _, err := e.store.AddEpisode(&storage.Episode{
		PodcastID: podcastID,
		Title:     "Episode 1",
		URL:       "https://example.com/ep1.mp3",
		AudioPath: "/tmp/ep1.mp3",
	})
	if err != nil {
		t.Fatalf("AddEpisode: %v", err)
	}
	if err := e.store.AddTranscriptSegments(id, []storage.Segment{
		{StartSec: 0, EndSec: 5, Text: "We talked about kubernetes scaling with Acme Corp engineers.", Confidence: 1.0},
		{StartSec: 5, EndSec: 9, Text: "Serverless platforms came up repeatedly as well.", Confidence: 1.0},
	}); err != nil {
		t.Fatalf("AddTranscriptSegments: %v", err)
	}
	if _, err := e.store.AdvanceEpisodeStatus(id, storage.StatusDownloaded, storage.StatusTranscribed); err != nil {
		t.Fatalf("AdvanceEpisodeStatus: %v", err)
	}
	return id
}

func TestNewEngine(t *testing.T) {
	engine := newTestEngine(t)
	if engine.store == nil {
		t.Fatal("store is nil")
	}
	if engine.fetcher == nil {
		t.Fatal("fetcher is nil")
	}
	if engine.transcribe == nil {
		t.Fatal("transcribe service is nil")
	}
	if engine.digest == nil {
		t.Fatal("digest service is nil")
	}
	// No credentials were available, so the writer backend must be absent
	if engine.writer != nil {
		t.Error("writer should be nil without credentials")
	}
}

func TestFetchEmptyFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<?xml version="1.0"?><rss version="2.0"><channel><title>Quiet</title></channel></rss>`))
	}))
	defer server.Close()

	engine := newTestEngine(t, storage.FeedConfig{Name: "Quiet Show", URL: server.URL})

	result, err := engine.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result.NewEpisodes != 0 {
		t.Errorf("expected 0 new episodes, got %d", result.NewEpisodes)
	}
	if len(result.Feeds) != 1 || result.Feeds[0].Err != nil {
		t.Errorf("empty feed should succeed: %+v", result.Feeds)
	}

	counts, err := engine.StatusCounts()
	if err != nil {
		t.Fatalf("StatusCounts: %v", err)
	}
	if counts["downloaded"] != 0 {
		t.Errorf("expected no downloaded episodes, got %d", counts["downloaded"])
	}
}

func TestFetchUnreachableFeedIsNotFatal(t *testing.T) {
	engine := newTestEngine(t,
		storage.FeedConfig{Name: "Broken", URL: "http://127.0.0.1:1/feed.xml"},
	)
	result, err := engine.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch should not fail on an unreachable feed: %v", err)
	}
	if len(result.Feeds) != 1 || result.Feeds[0].Err == nil {
		t.Errorf("expected per-feed error, got %+v", result.Feeds)
	}
}

func TestDigestEpisodeWithHeuristicFallback(t *testing.T) {
	engine := newTestEngine(t)
	id := seedTranscribedEpisode(t, engine)

	if err := engine.DigestEpisode(context.Background(), id, "2026-08-29"); err != nil {
		t.Fatalf("DigestEpisode: %v", err)
	}

	summaries, err := engine.SummariesByDate("2026-08-29")
	if err != nil {
		t.Fatalf("SummariesByDate: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	s := summaries[0]
	if len(s.KeyTopics) == 0 {
		t.Error("heuristic digest should extract key topics")
	}
	if s.Summary == "" {
		t.Error("digest summary should never be empty")
	}

	counts, _ := engine.StatusCounts()
	if counts["processed"] != 1 {
		t.Errorf("episode should be processed, counts: %v", counts)
	}

	// Re-digesting a processed episode must fail the status guard
	if err := engine.DigestEpisode(context.Background(), id, "2026-08-29"); err == nil {
		t.Error("expected error digesting a processed episode")
	}
}

func TestTranscribeEpisodeWrongStatus(t *testing.T) {
	engine := newTestEngine(t)
	id := seedTranscribedEpisode(t, engine)

	err := engine.TranscribeEpisode(context.Background(), id)
	if err == nil {
		t.Fatal("expected error transcribing an already-transcribed episode")
	}
	if !strings.Contains(err.Error(), "expected") {
		t.Errorf("error should name the status mismatch: %v", err)
	}
}

func TestExportFormats(t *testing.T) {
	engine := newTestEngine(t)
	id := seedTranscribedEpisode(t, engine)
	if err := engine.DigestEpisode(context.Background(), id, "2026-08-29"); err != nil {
		t.Fatalf("DigestEpisode: %v", err)
	}

	for _, format := range []string{"markdown", "json", "html"} {
		out, err := engine.Export("2026-08-29", format)
		if err != nil {
			t.Errorf("Export(%s): %v", format, err)
			continue
		}
		if !strings.Contains(out, "Episode 1") {
			t.Errorf("Export(%s) missing episode title", format)
		}
	}

	if _, err := engine.Export("2026-08-29", "pdf"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestEpisodesByStatusUnknown(t *testing.T) {
	engine := newTestEngine(t)
	if _, err := engine.EpisodesByStatus("pending"); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestWritePostWithoutBackend(t *testing.T) {
	engine := newTestEngine(t)
	_, err := engine.WritePost(context.Background(), "Some Topic", "2026-08-29")
	if err == nil {
		t.Fatal("expected error without writer backend")
	}
}

func TestClose(t *testing.T) {
	engine := newTestEngine(t)
	if err := engine.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
