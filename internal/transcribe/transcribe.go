// Package transcribe converts episode audio into timed transcript segments.
// Two providers exist: the hosted Whisper API and a local whisper.cpp
// binary. The Service runs a preferred/fallback chain over them.
package transcribe

import (
	"context"
	"errors"
	"strings"
)

// ErrUnavailable marks a provider that cannot run at all in this
// environment, such as a missing API key or binary. It is distinct from a
// transcription failure, but both send the Service to the next provider.
var ErrUnavailable = errors.New("transcription backend unavailable")

// Segment is one timed span of transcribed speech. Confidence semantics are
// provider-specific and not normalized: the Whisper API reports
// no_speech_prob (lower is better) while whisper.cpp reports a constant 1.0.
type Segment struct {
	StartSec   float64
	EndSec     float64
	Text       string
	Speaker    *string
	Confidence float64
}

// Result is a full transcription of one audio file.
type Result struct {
	Segments []Segment
	Language string
	Provider string
}

// Transcriber is a single transcription backend.
type Transcriber interface {
	// Name identifies the backend in logs and results.
	Name() string
	// Available reports whether the backend can run, wrapping
	// ErrUnavailable when it cannot.
	Available() error
	Transcribe(ctx context.Context, audioPath string) (*Result, error)
}

// Text joins all segment texts into a single transcript string.
func (r *Result) Text() string {
	parts := make([]string, 0, len(r.Segments))
	for _, seg := range r.Segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
