package digest

import (
	"context"

	"go.uber.org/zap"
)

// Service runs the extractor chain over a transcript. The chain always ends
// with the heuristic extractor, so Summarize never fails.
type Service struct {
	chain     []Extractor
	heuristic *Heuristic
	logger    *zap.Logger
}

// NewService builds a service trying extractors in the given order before
// falling back to the heuristic.
func NewService(logger *zap.Logger, extractors ...Extractor) *Service {
	return &Service{
		chain:     extractors,
		heuristic: NewHeuristic(),
		logger:    logger,
	}
}

// Summarize produces a digest for the transcript. LLM failures degrade down
// the chain; the heuristic result is returned when every backend fails.
func (s *Service) Summarize(ctx context.Context, transcript string) *Digest {
	for _, e := range s.chain {
		d, err := e.Extract(ctx, transcript)
		if err != nil {
			s.logger.Warn("digest extractor failed",
				zap.String("extractor", e.Name()), zap.Error(err))
			continue
		}
		s.normalize(d)
		return d
	}

	s.logger.Info("using heuristic digest extraction")
	d, _ := s.heuristic.Extract(ctx, transcript)
	return d
}

// normalize replaces nil list fields so downstream JSON marshaling always
// emits arrays.
func (s *Service) normalize(d *Digest) {
	if d.KeyTopics == nil {
		d.KeyTopics = []string{}
	}
	if d.Themes == nil {
		d.Themes = []string{}
	}
	if d.Quotes == nil {
		d.Quotes = []string{}
	}
	if d.Companies == nil {
		d.Companies = []string{}
	}
}
