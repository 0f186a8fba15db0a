package transcribe

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Service runs a chain of transcription providers. The first one that is
// available and succeeds wins; unavailability and runtime failure both
// degrade to the next provider.
type Service struct {
	chain  []Transcriber
	logger *zap.Logger
}

// NewService builds a service trying providers in the given order.
func NewService(logger *zap.Logger, providers ...Transcriber) *Service {
	return &Service{chain: providers, logger: logger}
}

// Transcribe runs the provider chain on one audio file.
func (s *Service) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	var lastErr error
	for _, t := range s.chain {
		if err := t.Available(); err != nil {
			s.logger.Warn("transcription provider unavailable",
				zap.String("provider", t.Name()), zap.Error(err))
			lastErr = err
			continue
		}
		result, err := t.Transcribe(ctx, audioPath)
		if err != nil {
			s.logger.Warn("transcription provider failed",
				zap.String("provider", t.Name()), zap.Error(err))
			lastErr = err
			continue
		}
		if len(result.Segments) == 0 {
			s.logger.Warn("transcription produced no segments",
				zap.String("provider", t.Name()))
			lastErr = fmt.Errorf("%s produced no segments", t.Name())
			continue
		}
		return result, nil
	}
	if lastErr == nil {
		lastErr = errors.New("no transcription providers configured")
	}
	return nil, fmt.Errorf("all transcription providers failed: %w", lastErr)
}
