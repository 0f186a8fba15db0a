package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// WhisperCPP transcribes audio with a local whisper.cpp binary.
type WhisperCPP struct {
	binaryPath string
	modelPath  string
}

// NewWhisperCPP creates the local provider. Paths may be empty or wrong;
// Available reports the problem.
func NewWhisperCPP(binaryPath, modelPath string) *WhisperCPP {
	return &WhisperCPP{
		binaryPath: binaryPath,
		modelPath:  modelPath,
	}
}

func (w *WhisperCPP) Name() string { return "whisper-cpp" }

func (w *WhisperCPP) Available() error {
	if w.binaryPath == "" || w.modelPath == "" {
		return fmt.Errorf("%w: whisper.cpp binary or model not configured", ErrUnavailable)
	}
	if _, err := os.Stat(w.binaryPath); err != nil {
		return fmt.Errorf("%w: binary %s: %v", ErrUnavailable, w.binaryPath, err)
	}
	if _, err := os.Stat(w.modelPath); err != nil {
		return fmt.Errorf("%w: model %s: %v", ErrUnavailable, w.modelPath, err)
	}
	return nil
}

// whisperOutput mirrors the JSON file whisper.cpp writes with -oj.
// Offsets are milliseconds.
type whisperOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

func (w *WhisperCPP) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	outDir, err := os.MkdirTemp("", "whisper-cpp-")
	if err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	defer os.RemoveAll(outDir)
	outBase := filepath.Join(outDir, "transcript")

	args := []string{
		"-m", w.modelPath,
		"-f", audioPath,
		"-oj",
		"-of", outBase,
		"-np",
	}
	cmd := exec.CommandContext(ctx, w.binaryPath, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("whisper.cpp failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	data, err := os.ReadFile(outBase + ".json")
	if err != nil {
		return nil, fmt.Errorf("failed to read whisper.cpp output: %w", err)
	}
	return parseWhisperOutput(data, w.Name())
}

func parseWhisperOutput(data []byte, provider string) (*Result, error) {
	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse whisper.cpp output: %w", err)
	}

	result := &Result{
		Language: out.Result.Language,
		Provider: provider,
	}
	if result.Language == "" {
		result.Language = "en"
	}
	for _, seg := range out.Transcription {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		result.Segments = append(result.Segments, Segment{
			StartSec: float64(seg.Offsets.From) / 1000.0,
			EndSec:   float64(seg.Offsets.To) / 1000.0,
			Text:     text,
			// whisper.cpp reports no usable per-segment score
			Confidence: 1.0,
		})
	}
	return result, nil
}
