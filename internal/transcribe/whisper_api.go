package transcribe

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// WhisperAPI transcribes audio with the hosted OpenAI Whisper API.
type WhisperAPI struct {
	client *openai.Client
	apiKey string
}

// NewWhisperAPI creates the hosted Whisper provider. An empty apiKey is
// allowed; Available reports the problem.
func NewWhisperAPI(apiKey string) *WhisperAPI {
	return &WhisperAPI{
		client: openai.NewClient(apiKey),
		apiKey: apiKey,
	}
}

func (w *WhisperAPI) Name() string { return "whisper-api" }

func (w *WhisperAPI) Available() error {
	if w.apiKey == "" {
		return fmt.Errorf("%w: OPENAI_API_KEY not set", ErrUnavailable)
	}
	return nil
}

func (w *WhisperAPI) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("whisper API transcription failed: %w", err)
	}

	result := &Result{
		Language: resp.Language,
		Provider: w.Name(),
	}
	for _, seg := range resp.Segments {
		result.Segments = append(result.Segments, Segment{
			StartSec: seg.Start,
			EndSec:   seg.End,
			Text:     seg.Text,
			// The API exposes no per-segment accuracy score; no_speech_prob
			// is the closest signal it gives us.
			Confidence: seg.NoSpeechProb,
		})
	}
	return result, nil
}
