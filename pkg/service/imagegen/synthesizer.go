package imagegen

import (
	"context"
	"time"

	"github.com/garage-lab/gearbox/pkg/domain/model"
	"github.com/garage-lab/gearbox/pkg/utils/logging"
)

// Backend renders one illustration for a prompt and returns its URL.
// Implementations may return an empty URL to signal "no image available"
// without an error.
type Backend interface {
	Render(ctx context.Context, prompt string) (string, error)
}

// Synthesizer illustrates the steps of a guide. Steps are processed strictly
// sequentially in step order with one call in flight at a time, because the
// image backend is rate-limited per caller. A failed or timed-out render
// leaves that step without an image and processing continues; Illustrate
// never fails the guide and never retries.
type Synthesizer struct {
	backend     Backend
	stepTimeout time.Duration
}

// SynthesizerOption is a functional option for Synthesizer configuration
type SynthesizerOption func(*Synthesizer)

// WithStepTimeout bounds each per-step render call
func WithStepTimeout(d time.Duration) SynthesizerOption {
	return func(s *Synthesizer) {
		s.stepTimeout = d
	}
}

// NewSynthesizer creates a Synthesizer. A nil backend is allowed and leaves
// every step unillustrated.
func NewSynthesizer(backend Backend, opts ...SynthesizerOption) *Synthesizer {
	s := &Synthesizer{
		backend:     backend,
		stepTimeout: 30 * time.Second,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Illustrate returns the steps with ImageURL populated where rendering
// succeeded. The returned slice preserves the input order; no step is
// skipped or reordered even when its illustration fails.
func (s *Synthesizer) Illustrate(ctx context.Context, steps []model.RepairStep) []model.RepairStep {
	out := append([]model.RepairStep(nil), steps...)
	if s.backend == nil {
		return out
	}

	logger := logging.From(ctx)

	for i := range out {
		url, err := s.renderStep(ctx, out[i].ImagePrompt)
		if err != nil {
			logger.Warn("step illustration failed, continuing without image",
				"step", out[i].Number,
				"error", err.Error(),
			)
			continue
		}
		out[i].ImageURL = url
	}

	return out
}

func (s *Synthesizer) renderStep(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.stepTimeout)
	defer cancel()

	return s.backend.Render(ctx, prompt)
}
