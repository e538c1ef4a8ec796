package usecase

import (
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/garage-lab/gearbox/pkg/domain/interfaces"
	"github.com/garage-lab/gearbox/pkg/service/catalog"
	"github.com/garage-lab/gearbox/pkg/service/imagegen"
	"github.com/garage-lab/gearbox/pkg/service/textgen"
)

// Defaults for the pipeline policy knobs
const (
	DefaultMaxAttempts  = 2
	DefaultRetryDelay   = 2 * time.Second
	DefaultFreeLimit    = 1
	DefaultWaitInterval = 500 * time.Millisecond
	DefaultWaitBudget   = 90 * time.Second
)

// UseCases wires the guide pipeline: validation, cache, usage gate, retried
// text generation and sequential illustration.
type UseCases struct {
	repo        interfaces.Repository
	textGen     textgen.Service
	synthesizer *imagegen.Synthesizer
	catalog     *catalog.Catalog

	maxAttempts  int
	retryDelay   time.Duration
	freeLimit    int
	waitInterval time.Duration
	waitBudget   time.Duration

	flight singleflight.Group
}

type Option func(*UseCases)

// WithRetryPolicy sets the text generation attempt budget and the fixed
// delay between attempts
func WithRetryPolicy(maxAttempts int, delay time.Duration) Option {
	return func(uc *UseCases) {
		uc.maxAttempts = maxAttempts
		uc.retryDelay = delay
	}
}

// WithFreeLimit sets how many new generations a free subject gets per period
func WithFreeLimit(limit int) Option {
	return func(uc *UseCases) {
		uc.freeLimit = limit
	}
}

// WithCommitWait tunes how a caller that lost the reservation race polls for
// the winner's committed result
func WithCommitWait(interval, budget time.Duration) Option {
	return func(uc *UseCases) {
		uc.waitInterval = interval
		uc.waitBudget = budget
	}
}

func New(repo interfaces.Repository, textGen textgen.Service, synthesizer *imagegen.Synthesizer, cat *catalog.Catalog, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:        repo,
		textGen:     textGen,
		synthesizer: synthesizer,
		catalog:     cat,

		maxAttempts:  DefaultMaxAttempts,
		retryDelay:   DefaultRetryDelay,
		freeLimit:    DefaultFreeLimit,
		waitInterval: DefaultWaitInterval,
		waitBudget:   DefaultWaitBudget,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// Catalog exposes the vehicle catalog for read-only surfaces
func (uc *UseCases) Catalog() *catalog.Catalog {
	return uc.catalog
}
