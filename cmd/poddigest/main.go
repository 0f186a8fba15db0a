package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"poddigest"
	"poddigest/internal/export"
	"poddigest/internal/output"
	"poddigest/internal/storage"
)

var (
	configPath string
	verbose    bool
	cfg        *storage.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "poddigest",
		Short: "Podcast digest pipeline - fetch, transcribe, summarize and write about podcast episodes",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(fetchCmd())
	rootCmd.AddCommand(transcribeCmd())
	rootCmd.AddCommand(digestCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(writeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() error {
	// API keys may live in a .env next to the binary; absence is fine.
	godotenv.Load()

	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg = storage.DefaultConfig()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	logCfg := zap.NewProductionConfig()
	logCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	return logCfg.Build()
}

func newEngine() (*poddigest.Engine, *zap.Logger, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	engine, err := poddigest.NewEngine(cfg, logger)
	if err != nil {
		logger.Sync()
		return nil, nil, err
	}
	return engine, logger, nil
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a default config file, the database and working directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter()

			if _, err := os.Stat(configPath); err == nil {
				return fmt.Errorf("config file already exists: %s", configPath)
			}
			if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
				return fmt.Errorf("failed to create config directory: %w", err)
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			if err := os.WriteFile(configPath, data, 0644); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			formatter.Info("Created default config at %s", configPath)

			for _, dir := range []string{cfg.Paths.AudioDir, cfg.Paths.ExportDir, cfg.Paths.PostsDir} {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("failed to create directory %s: %w", dir, err)
				}
			}

			// Opening the store creates the database and applies the schema.
			store, err := storage.NewStore(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer store.Close()

			formatter.Info("Initialized database at %s", cfg.Database.Path)
			formatter.Info("Add your feeds to %s and run: poddigest fetch", configPath)
			return nil
		},
	}
}

func fetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Fetch all configured feeds and download new episode audio",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter()

			if len(cfg.Feeds) == 0 {
				formatter.Warning("no feeds configured in %s", configPath)
				return nil
			}

			engine, logger, err := newEngine()
			if err != nil {
				return err
			}
			defer logger.Sync()
			defer engine.Close()

			result, err := engine.Fetch(context.Background())
			if err != nil {
				return err
			}

			rows := make([]output.FetchRow, 0, len(result.Feeds))
			for _, fr := range result.Feeds {
				rows = append(rows, output.FetchRow{
					Podcast:     fr.Podcast,
					NewEpisodes: fr.NewEpisodes,
					Err:         fr.Err,
				})
			}
			formatter.FetchTable(rows)
			return nil
		},
	}
}

func transcribeCmd() *cobra.Command {
	var episodeID int64
	var model string
	cmd := &cobra.Command{
		Use:   "transcribe",
		Short: "Transcribe downloaded episodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			formatter := output.NewFormatter()

			if model != "" {
				cfg.Transcribe.WhisperModel = model
			}

			engine, logger, err := newEngine()
			if err != nil {
				return err
			}
			defer logger.Sync()
			defer engine.Close()

			if episodeID > 0 {
				if err := engine.TranscribeEpisode(ctx, episodeID); err != nil {
					formatter.ItemFail("episode %d: %v", episodeID, err)
					return err
				}
				formatter.ItemOK("episode %d transcribed", episodeID)
				return nil
			}

			episodes, err := engine.EpisodesByStatus("downloaded")
			if err != nil {
				return err
			}
			if len(episodes) == 0 {
				formatter.Info("No episodes waiting for transcription")
				return nil
			}

			formatter.Info("Transcribing %d episode(s)...", len(episodes))
			failed := 0
			for _, ep := range episodes {
				if err := engine.TranscribeEpisode(ctx, ep.ID); err != nil {
					formatter.ItemFail("%s: %v", ep.Title, err)
					failed++
					continue
				}
				formatter.ItemOK("%s", ep.Title)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d episodes failed", failed, len(episodes))
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&episodeID, "episode-id", 0, "transcribe a specific episode")
	cmd.Flags().StringVarP(&model, "model", "m", "", "whisper model to use (overrides config)")
	return cmd
}

func digestCmd() *cobra.Command {
	var date string
	var episodeID int64
	var provider string
	var model string
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Summarize transcribed episodes into a daily digest",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			formatter := output.NewFormatter()

			if provider != "" {
				cfg.Digest.Provider = provider
			}
			if model != "" {
				cfg.Digest.Model = model
			}

			engine, logger, err := newEngine()
			if err != nil {
				return err
			}
			defer logger.Sync()
			defer engine.Close()

			if episodeID > 0 {
				if err := engine.DigestEpisode(ctx, episodeID, date); err != nil {
					formatter.ItemFail("episode %d: %v", episodeID, err)
					return err
				}
				formatter.ItemOK("episode %d digested", episodeID)
				return nil
			}

			episodes, err := engine.EpisodesByStatus("transcribed")
			if err != nil {
				return err
			}
			if len(episodes) == 0 {
				formatter.Info("No episodes waiting for digestion")
				return nil
			}

			formatter.Info("Digesting %d episode(s) for %s...", len(episodes), date)
			failed := 0
			for _, ep := range episodes {
				if err := engine.DigestEpisode(ctx, ep.ID, date); err != nil {
					formatter.ItemFail("%s: %v", ep.Title, err)
					failed++
					continue
				}
				formatter.ItemOK("%s", ep.Title)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d episodes failed", failed, len(episodes))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", time.Now().Format("2006-01-02"), "digest date (YYYY-MM-DD)")
	cmd.Flags().Int64Var(&episodeID, "episode-id", 0, "digest a specific episode")
	cmd.Flags().StringVarP(&provider, "provider", "p", "", "LLM provider (openai, deepseek, ollama; overrides config)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "LLM model to use (overrides config)")
	return cmd
}

func exportCmd() *cobra.Command {
	var date string
	var formats []string
	var outputPath string
	var toStdout bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a date's digest as markdown, json or html",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter()

			if outputPath != "" && len(formats) > 1 {
				return fmt.Errorf("--output requires a single --format")
			}

			engine, logger, err := newEngine()
			if err != nil {
				return err
			}
			defer logger.Sync()
			defer engine.Close()

			render := func(format string) (string, error) {
				return engine.Export(date, format)
			}
			save := func(f export.Format, doc string) (string, error) {
				if toStdout {
					fmt.Print(doc)
					return "stdout", nil
				}
				path := outputPath
				if path == "" {
					if err := os.MkdirAll(cfg.Paths.ExportDir, 0755); err != nil {
						return "", fmt.Errorf("failed to create export directory: %w", err)
					}
					path = filepath.Join(cfg.Paths.ExportDir, fmt.Sprintf("digest-%s.%s", date, f.Extension()))
				}
				if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
					return "", fmt.Errorf("failed to write export: %w", err)
				}
				return path, nil
			}

			failed := exportFormats(formatter, formats, render, save)
			if failed > 0 {
				return fmt.Errorf("%d of %d formats failed", failed, len(formats))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", time.Now().Format("2006-01-02"), "digest date (YYYY-MM-DD)")
	cmd.Flags().StringSliceVarP(&formats, "format", "f", []string{"markdown"}, "export format, repeatable (markdown, json, html)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file path (single format only)")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "print documents instead of writing files")
	return cmd
}

// exportFormats renders and saves each requested format. An unsupported or
// failing format is reported per format; the remaining formats still run.
// Returns the number of failed formats.
func exportFormats(formatter *output.Formatter, formats []string, render func(format string) (string, error), save func(f export.Format, doc string) (string, error)) int {
	failed := 0
	for _, name := range formats {
		f, err := export.ParseFormat(name)
		if err != nil {
			formatter.ItemFail("%s: %v", name, err)
			failed++
			continue
		}
		doc, err := render(name)
		if err != nil {
			formatter.ItemFail("%s: %v", name, err)
			failed++
			continue
		}
		path, err := save(f, doc)
		if err != nil {
			formatter.ItemFail("%s: %v", name, err)
			failed++
			continue
		}
		formatter.ItemOK("%s exported to %s", name, path)
	}
	return failed
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show episode counts per pipeline status",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter()

			engine, logger, err := newEngine()
			if err != nil {
				return err
			}
			defer logger.Sync()
			defer engine.Close()

			counts, err := engine.StatusCounts()
			if err != nil {
				return err
			}
			byStatus := make(map[storage.Status]int, len(counts))
			for status, n := range counts {
				byStatus[storage.Status(status)] = n
			}
			formatter.StatusTable(byStatus)
			return nil
		},
	}
}

func writeCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "write [topic]",
		Short: "Write a blog post from a date's digests, graded and revised until it scores well",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			formatter := output.NewFormatter()

			topic := ""
			if len(args) > 0 {
				topic = args[0]
			}

			engine, logger, err := newEngine()
			if err != nil {
				return err
			}
			defer logger.Sync()
			defer engine.Close()

			result, err := engine.WritePost(ctx, topic, date)
			if err != nil {
				return err
			}

			formatter.Info("Wrote %q (grade %s, score %.1f, %d iteration(s))",
				result.Topic, result.Grade, result.Score, len(result.Iterations))
			formatter.Info("Saved to %s", result.Path)

			if len(result.Microblog) > 0 {
				formatter.Info("\nMicroblog posts:")
				for _, post := range result.Microblog {
					formatter.ItemOK("%s", post)
				}
			}
			if len(result.Professional) > 0 {
				formatter.Info("\nProfessional posts:")
				for _, post := range result.Professional {
					formatter.ItemOK("%s", post)
				}
			}
			if len(result.Quotes) > 0 {
				formatter.Info("\nQuotable:")
				for _, quote := range result.Quotes {
					formatter.ItemOK("%q", quote)
				}
			}
			if len(result.Insights) > 0 {
				formatter.Info("\nKey insights:")
				for _, insight := range result.Insights {
					formatter.ItemOK("%s", insight)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", time.Now().Format("2006-01-02"), "digest date (YYYY-MM-DD)")
	return cmd
}
