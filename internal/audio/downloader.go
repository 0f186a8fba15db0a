package audio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// Downloader fetches episode audio over HTTP and normalizes it with ffmpeg
// to 16 kHz mono, the rate speech models expect.
type Downloader struct {
	client *http.Client
	dir    string
	format string
	logger *zap.Logger
}

// NewDownloader creates a downloader writing normalized audio into dir.
// Format is the output container, "mp3" or "wav".
func NewDownloader(dir, format string, logger *zap.Logger) *Downloader {
	if format == "" {
		format = "mp3"
	}
	return &Downloader{
		client: &http.Client{},
		dir:    dir,
		format: format,
		logger: logger,
	}
}

// Download fetches audioURL and returns the path of the normalized local file.
// The raw download is discarded once normalization succeeds. No file is left
// behind on failure.
func (d *Downloader) Download(ctx context.Context, audioURL, title string) (string, error) {
	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create audio dir: %w", err)
	}

	raw, err := d.fetch(ctx, audioURL)
	if err != nil {
		return "", err
	}
	defer os.Remove(raw)

	out := filepath.Join(d.dir, fmt.Sprintf("%s-%s.%s", SafeName(title), uuid.NewString()[:8], d.format))
	if err := d.normalize(ctx, raw, out); err != nil {
		os.Remove(out)
		return "", err
	}
	return out, nil
}

func (d *Downloader) fetch(ctx context.Context, audioURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request for %s: %w", audioURL, err)
	}
	req.Header.Set("User-Agent", "poddigest/1.0")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", audioURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s returned status %d", audioURL, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(d.dir, "download-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write download: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	return tmp.Name(), nil
}

// normalize converts to 16 kHz mono with loudness normalization. Some files
// make the loudnorm filter fail, so a plain rate/channel conversion is
// attempted before giving up.
func (d *Downloader) normalize(ctx context.Context, in, out string) error {
	args := normalizeArgs(in, out, d.format, true)
	if err := runFFmpeg(ctx, args); err != nil {
		d.logger.Warn("loudness normalization failed, converting without it",
			zap.String("input", in), zap.Error(err))
		if err := runFFmpeg(ctx, normalizeArgs(in, out, d.format, false)); err != nil {
			return fmt.Errorf("ffmpeg conversion failed: %w", err)
		}
	}
	return nil
}

func normalizeArgs(in, out, format string, loudnorm bool) []string {
	args := []string{"-y", "-i", in, "-ar", "16000", "-ac", "1"}
	if format == "wav" {
		args = append(args, "-c:a", "pcm_s16le")
	}
	if loudnorm {
		args = append(args, "-af", "loudnorm")
	}
	return append(args, out)
}

func runFFmpeg(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s", err, lastLine(stderr.String()))
	}
	return nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return lines[len(lines)-1]
}

// SafeName turns an episode title into a filesystem-safe base name.
func SafeName(title string) string {
	name := unsafeChars.ReplaceAllString(strings.TrimSpace(title), "-")
	name = strings.Trim(name, "-")
	if len(name) > 80 {
		name = name[:80]
	}
	if name == "" {
		name = "episode"
	}
	return name
}
