// Package poddigest is the public API for the podcast digest pipeline:
// fetching episodes from RSS feeds, transcribing their audio, summarizing
// transcripts into digests, exporting digest documents and writing blog
// posts from them.
package poddigest

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"poddigest/internal/audio"
	"poddigest/internal/digest"
	"poddigest/internal/export"
	"poddigest/internal/feeds"
	"poddigest/internal/llm"
	"poddigest/internal/storage"
	"poddigest/internal/transcribe"
	"poddigest/internal/writer"
)

const (
	feedTimeout       = 30 * time.Second
	downloadTimeout   = 5 * time.Minute
	transcribeTimeout = 10 * time.Minute
	digestTimeout     = 2 * time.Minute
	writeTimeout      = 15 * time.Minute
)

// Engine wires the storage, fetch, transcription, digest, export and writer
// components into one pipeline.
type Engine struct {
	store      *storage.Store
	fetcher    *feeds.Fetcher
	downloader *audio.Downloader
	transcribe *transcribe.Service
	cleaner    *digest.Cleaner
	digest     *digest.Service
	writer     *writer.Writer
	exporter   *export.Exporter
	config     *storage.Config
	logger     *zap.Logger
}

// NewEngine creates an engine from config. LLM backends without credentials
// are left out of their fallback chains; the digest chain always ends in the
// heuristic extractor, so digesting works with no credentials at all.
func NewEngine(cfg *storage.Config, logger *zap.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = storage.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := storage.NewStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	e := &Engine{
		store:      store,
		fetcher:    feeds.NewFetcher(),
		downloader: audio.NewDownloader(cfg.Paths.AudioDir, cfg.Fetch.AudioFormat, logger),
		exporter:   export.NewExporter(),
		config:     cfg,
		logger:     logger,
	}

	e.transcribe = buildTranscribeService(cfg, logger)

	extractors, cleanGen := buildExtractors(cfg, logger)
	e.digest = digest.NewService(logger, extractors...)
	e.cleaner = digest.NewCleaner(cleanGen, logger)

	if gen := buildGenerator(cfg.Writer.Provider, cfg.Writer.Model, cfg.Digest.OllamaBaseURL, 0.7, logger); gen != nil {
		e.writer = writer.NewWriter(gen, cfg.Writer.Model, cfg.Writer.TargetScore, cfg.Writer.MaxIterations, logger)
	}

	return e, nil
}

// buildTranscribeService orders the transcription providers so the
// configured one is tried first.
func buildTranscribeService(cfg *storage.Config, logger *zap.Logger) *transcribe.Service {
	api := transcribe.NewWhisperAPI(os.Getenv("OPENAI_API_KEY"))
	local := transcribe.NewWhisperCPP(cfg.Transcribe.WhisperBinary, cfg.Transcribe.WhisperModel)

	if cfg.Transcribe.Provider == "whisper-cpp" {
		return transcribe.NewService(logger, local, api)
	}
	return transcribe.NewService(logger, api, local)
}

// buildExtractors assembles the digest extractor chain, configured provider
// first, remaining backends after it. The second return value is the
// generator the transcript cleaner polishes with, nil when none is usable.
func buildExtractors(cfg *storage.Config, logger *zap.Logger) ([]digest.Extractor, llm.Generator) {
	ordered := []string{cfg.Digest.Provider}
	for _, name := range []string{"openai", "deepseek", "ollama"} {
		if name != cfg.Digest.Provider {
			ordered = append(ordered, name)
		}
	}

	var extractors []digest.Extractor
	var cleanGen llm.Generator
	for _, name := range ordered {
		model := cfg.Digest.Model
		if name == "ollama" && cfg.Digest.Provider != "ollama" {
			model = "llama3"
		}
		gen := buildGenerator(name, model, cfg.Digest.OllamaBaseURL, 0.2, logger)
		if gen == nil {
			continue
		}
		if cleanGen == nil {
			cleanGen = gen
		}
		extractors = append(extractors, digest.NewLLMExtractor(gen))
	}
	return extractors, cleanGen
}

// buildGenerator constructs one LLM backend, or nil when its credentials
// are missing.
func buildGenerator(provider, model, ollamaBaseURL string, temperature float64, logger *zap.Logger) llm.Generator {
	switch provider {
	case "openai":
		gen, err := llm.NewOpenAIGenerator(os.Getenv("OPENAI_API_KEY"), model, float32(temperature))
		if err != nil {
			logger.Info("openai backend disabled", zap.Error(err))
			return nil
		}
		return gen
	case "deepseek":
		gen, err := llm.NewDeepSeekGenerator(os.Getenv("DEEPSEEK_API_KEY"), model, float32(temperature))
		if err != nil {
			logger.Info("deepseek backend disabled", zap.Error(err))
			return nil
		}
		return gen
	case "ollama":
		gen, err := llm.NewOllamaGenerator(ollamaBaseURL, model, temperature)
		if err != nil {
			logger.Info("ollama backend disabled", zap.Error(err))
			return nil
		}
		return gen
	default:
		logger.Warn("unknown LLM provider", zap.String("provider", provider))
		return nil
	}
}

// Fetch pulls every configured feed, downloads new episode audio and stores
// episode rows. A failing feed or episode is reported and skipped, never
// fatal; only database errors abort the cycle.
func (e *Engine) Fetch(ctx context.Context) (*FetchResult, error) {
	result := &FetchResult{}
	for _, feed := range e.config.Feeds {
		name := feed.Name
		if name == "" {
			name = feed.URL
		}
		fr := FeedFetchResult{Podcast: name}

		podcastID, err := e.store.AddPodcast(name, feed.URL, feed.Category)
		if err != nil {
			return nil, err
		}

		feedCtx, cancel := context.WithTimeout(ctx, feedTimeout)
		items, err := e.fetcher.FetchEpisodes(feedCtx, feed.URL, e.config.Fetch.MaxEpisodesPerFeed)
		cancel()
		if err != nil {
			e.logger.Warn("feed fetch failed", zap.String("feed", feed.URL), zap.Error(err))
			fr.Err = err
			result.Feeds = append(result.Feeds, fr)
			continue
		}

		for _, item := range items {
			exists, err := e.store.EpisodeExists(item.AudioURL)
			if err != nil {
				return nil, err
			}
			if exists {
				continue
			}

			dlCtx, cancel := context.WithTimeout(ctx, downloadTimeout)
			path, err := e.downloader.Download(dlCtx, item.AudioURL, item.Title)
			cancel()
			if err != nil {
				e.logger.Warn("episode download failed",
					zap.String("episode", item.Title), zap.Error(err))
				continue
			}

			// The row is written only after the audio artifact exists.
			_, created, err := e.store.AddEpisode(&storage.Episode{
				PodcastID:       podcastID,
				Title:           item.Title,
				Description:     item.Description,
				Published:       item.Published,
				URL:             item.AudioURL,
				AudioPath:       path,
				DurationSeconds: item.DurationSeconds,
				Status:          storage.StatusDownloaded,
			})
			if err != nil {
				os.Remove(path)
				return nil, err
			}
			if created {
				fr.NewEpisodes++
			}
		}

		result.Feeds = append(result.Feeds, fr)
		result.NewEpisodes += fr.NewEpisodes
	}
	return result, nil
}

// EpisodesByStatus returns episodes currently in the given pipeline status.
func (e *Engine) EpisodesByStatus(status string) ([]Episode, error) {
	s, err := parseStatus(status)
	if err != nil {
		return nil, err
	}
	episodes, err := e.store.GetEpisodesByStatus(s)
	if err != nil {
		return nil, err
	}
	return episodesFromInternal(episodes), nil
}

// TranscribeEpisode transcribes one downloaded episode. Segments are
// persisted before the guarded status flip, so a crash between the two
// leaves the episode claimable again.
func (e *Engine) TranscribeEpisode(ctx context.Context, episodeID int64) error {
	ep, err := e.store.GetEpisode(episodeID)
	if err != nil {
		return err
	}
	if ep.Status != storage.StatusDownloaded {
		return fmt.Errorf("episode %d is %q, expected %q", episodeID, ep.Status, storage.StatusDownloaded)
	}
	if ep.AudioPath == "" {
		return fmt.Errorf("episode %d has no audio file", episodeID)
	}
	if _, err := os.Stat(ep.AudioPath); err != nil {
		return fmt.Errorf("episode %d audio missing: %w", episodeID, err)
	}

	tctx, cancel := context.WithTimeout(ctx, transcribeTimeout)
	defer cancel()
	result, err := e.transcribe.Transcribe(tctx, ep.AudioPath)
	if err != nil {
		return err
	}

	segments := make([]storage.Segment, 0, len(result.Segments))
	for _, seg := range result.Segments {
		segments = append(segments, storage.Segment{
			Speaker:    seg.Speaker,
			StartSec:   seg.StartSec,
			EndSec:     seg.EndSec,
			Text:       seg.Text,
			Confidence: seg.Confidence,
		})
	}
	if err := e.store.AddTranscriptSegments(episodeID, segments); err != nil {
		return err
	}

	claimed, err := e.store.AdvanceEpisodeStatus(episodeID, storage.StatusDownloaded, storage.StatusTranscribed)
	if err != nil {
		return err
	}
	if !claimed {
		return fmt.Errorf("episode %d was advanced by another process", episodeID)
	}
	e.logger.Info("episode transcribed",
		zap.Int64("episode", episodeID),
		zap.String("provider", result.Provider),
		zap.Int("segments", len(segments)))
	return nil
}

// DigestEpisode summarizes one transcribed episode into a digest for the
// given date. The digest row is persisted before the guarded status flip.
func (e *Engine) DigestEpisode(ctx context.Context, episodeID int64, date string) error {
	ep, err := e.store.GetEpisode(episodeID)
	if err != nil {
		return err
	}
	if ep.Status != storage.StatusTranscribed {
		return fmt.Errorf("episode %d is %q, expected %q", episodeID, ep.Status, storage.StatusTranscribed)
	}

	segments, err := e.store.GetTranscriptSegments(episodeID)
	if err != nil {
		return err
	}
	transcript := transcriptText(segments)
	if transcript == "" {
		return fmt.Errorf("episode %d has an empty transcript", episodeID)
	}

	dctx, cancel := context.WithTimeout(ctx, digestTimeout)
	defer cancel()
	transcript = e.cleaner.Clean(dctx, transcript)
	d := e.digest.Summarize(dctx, transcript)

	if _, err := e.store.AddSummary(&storage.Summary{
		EpisodeID:  episodeID,
		KeyTopics:  d.KeyTopics,
		Themes:     d.Themes,
		Quotes:     d.Quotes,
		Companies:  d.Companies,
		Summary:    d.Summary,
		DigestDate: date,
	}); err != nil {
		return err
	}

	claimed, err := e.store.AdvanceEpisodeStatus(episodeID, storage.StatusTranscribed, storage.StatusProcessed)
	if err != nil {
		return err
	}
	if !claimed {
		return fmt.Errorf("episode %d was advanced by another process", episodeID)
	}
	return nil
}

// SummariesByDate returns the digests recorded for a date.
func (e *Engine) SummariesByDate(date string) ([]Summary, error) {
	summaries, err := e.store.GetSummariesByDate(date)
	if err != nil {
		return nil, err
	}
	return summariesFromInternal(summaries), nil
}

// Export renders the digest document for a date in the given format.
func (e *Engine) Export(date, format string) (string, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return "", err
	}
	summaries, err := e.store.GetSummariesByDate(date)
	if err != nil {
		return "", err
	}
	return e.exporter.Render(summaries, date, f)
}

// StatusCounts returns the number of episodes per pipeline status.
func (e *Engine) StatusCounts() (map[string]int, error) {
	counts, err := e.store.CountEpisodesByStatus()
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(counts))
	for status, n := range counts {
		out[string(status)] = n
	}
	return out, nil
}

// WritePost writes a blog post on topic from a date's digests, saves the
// markdown artifact and derives social posts. An empty topic falls back to
// the first digest's episode title.
func (e *Engine) WritePost(ctx context.Context, topic, date string) (*WriteResult, error) {
	if e.writer == nil {
		return nil, fmt.Errorf("no writer backend available: provider %q needs credentials", e.config.Writer.Provider)
	}

	summaries, err := e.store.GetSummariesByDate(date)
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, fmt.Errorf("no digests recorded for %s", date)
	}

	primary := summaries[0]
	if topic == "" {
		topic = primary.EpisodeTitle
	}
	src := writer.Source{
		EpisodeTitle: primary.EpisodeTitle,
		PodcastTitle: primary.PodcastTitle,
		Summary:      primary.Summary,
		KeyTopics:    primary.KeyTopics,
		Themes:       primary.Themes,
		Quotes:       primary.Quotes,
		Companies:    primary.Companies,
	}

	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	post, err := e.writer.Write(wctx, topic, src)
	if err != nil {
		return nil, err
	}

	path, err := writer.SaveMarkdown(post, e.config.Paths.PostsDir)
	if err != nil {
		return nil, err
	}

	social := e.writer.Social(wctx, post)

	result := &WriteResult{
		Topic:        post.Topic,
		Slug:         post.Slug,
		Body:         post.Body,
		Grade:        post.Grade,
		Score:        post.Score,
		Path:         path,
		Microblog:    social.Microblog,
		Professional: social.Professional,
		Quotes:       social.Quotes,
		Insights:     social.Insights,
	}
	for _, it := range post.Iterations {
		result.Iterations = append(result.Iterations, WriteIteration{
			Grade:    it.Grade,
			Score:    it.Score,
			Feedback: it.Feedback,
		})
	}
	return result, nil
}

// Close releases all resources held by the engine.
func (e *Engine) Close() error {
	return e.store.Close()
}

func parseStatus(status string) (storage.Status, error) {
	switch storage.Status(status) {
	case storage.StatusDownloaded, storage.StatusTranscribed, storage.StatusProcessed:
		return storage.Status(status), nil
	default:
		return "", fmt.Errorf("unknown status %q", status)
	}
}

func transcriptText(segments []storage.Segment) string {
	r := transcribe.Result{}
	for _, seg := range segments {
		r.Segments = append(r.Segments, transcribe.Segment{Text: seg.Text})
	}
	return r.Text()
}

// --- internal type conversion helpers ---

func episodeFromInternal(ep storage.Episode) Episode {
	return Episode{
		ID:           ep.ID,
		PodcastID:    ep.PodcastID,
		PodcastTitle: ep.PodcastTitle,
		Title:        ep.Title,
		Description:  ep.Description,
		Published:    ep.Published,
		URL:          ep.URL,
		AudioPath:    ep.AudioPath,
		Status:       string(ep.Status),
		CreatedAt:    ep.CreatedAt,
	}
}

func episodesFromInternal(episodes []storage.Episode) []Episode {
	out := make([]Episode, len(episodes))
	for i, ep := range episodes {
		out[i] = episodeFromInternal(ep)
	}
	return out
}

func summaryFromInternal(s storage.Summary) Summary {
	return Summary{
		ID:           s.ID,
		EpisodeID:    s.EpisodeID,
		EpisodeTitle: s.EpisodeTitle,
		PodcastTitle: s.PodcastTitle,
		KeyTopics:    s.KeyTopics,
		Themes:       s.Themes,
		Quotes:       s.Quotes,
		Companies:    s.Companies,
		Summary:      s.Summary,
		DigestDate:   s.DigestDate,
	}
}

func summariesFromInternal(summaries []storage.Summary) []Summary {
	out := make([]Summary, len(summaries))
	for i, s := range summaries {
		out[i] = summaryFromInternal(s)
	}
	return out
}
