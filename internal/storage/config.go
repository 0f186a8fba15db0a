package storage

type FeedConfig struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Category string `yaml:"category,omitempty"`
}

type Config struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Paths struct {
		AudioDir  string `yaml:"audio_dir"`
		ExportDir string `yaml:"export_dir"`
		PostsDir  string `yaml:"posts_dir"`
	} `yaml:"paths"`

	Feeds []FeedConfig `yaml:"feeds"`

	Fetch struct {
		MaxEpisodesPerFeed int    `yaml:"max_episodes_per_feed"`
		AudioFormat        string `yaml:"audio_format"`
	} `yaml:"fetch"`

	Transcribe struct {
		Provider      string `yaml:"provider"`
		WhisperBinary string `yaml:"whisper_binary,omitempty"`
		WhisperModel  string `yaml:"whisper_model,omitempty"`
	} `yaml:"transcribe"`

	Digest struct {
		Provider      string `yaml:"provider"`
		Model         string `yaml:"model"`
		OllamaBaseURL string `yaml:"ollama_base_url"`
	} `yaml:"digest"`

	Writer struct {
		Provider      string  `yaml:"provider"`
		Model         string  `yaml:"model"`
		TargetScore   float64 `yaml:"target_score"`
		MaxIterations int     `yaml:"max_iterations"`
	} `yaml:"writer"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Database.Path = "./poddigest.db"
	cfg.Paths.AudioDir = "./audio"
	cfg.Paths.ExportDir = "./digests"
	cfg.Paths.PostsDir = "./posts"
	cfg.Fetch.MaxEpisodesPerFeed = 5
	cfg.Fetch.AudioFormat = "mp3"
	cfg.Transcribe.Provider = "whisper-api"
	cfg.Digest.Provider = "openai"
	cfg.Digest.Model = "gpt-4o-mini"
	cfg.Digest.OllamaBaseURL = "http://localhost:11434"
	cfg.Writer.Provider = "openai"
	cfg.Writer.Model = "gpt-4o"
	cfg.Writer.TargetScore = 91.0
	cfg.Writer.MaxIterations = 3
	return cfg
}
