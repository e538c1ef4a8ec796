package config

import (
	"log/slog"
	"time"

	"github.com/garage-lab/gearbox/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Quota holds the free-tier gating and retry policy knobs
type Quota struct {
	freeLimit   int
	maxAttempts int
	retryDelay  time.Duration
}

// Flags returns CLI flags for quota and retry configuration
func (q *Quota) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "free-limit",
			Usage:       "New generations allowed per free subject per month",
			Value:       usecase.DefaultFreeLimit,
			Sources:     cli.EnvVars("GEARBOX_FREE_LIMIT"),
			Destination: &q.freeLimit,
		},
		&cli.IntFlag{
			Name:        "generation-attempts",
			Usage:       "Text generation attempt budget",
			Value:       usecase.DefaultMaxAttempts,
			Sources:     cli.EnvVars("GEARBOX_GENERATION_ATTEMPTS"),
			Destination: &q.maxAttempts,
		},
		&cli.DurationFlag{
			Name:        "generation-retry-delay",
			Usage:       "Delay between text generation attempts",
			Value:       usecase.DefaultRetryDelay,
			Sources:     cli.EnvVars("GEARBOX_GENERATION_RETRY_DELAY"),
			Destination: &q.retryDelay,
		},
	}
}

// LogValue returns log attributes for the quota configuration
func (q *Quota) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("free_limit", q.freeLimit),
		slog.Int("max_attempts", q.maxAttempts),
		slog.Duration("retry_delay", q.retryDelay),
	)
}

// Validate checks the configured values
func (q *Quota) Validate() error {
	if q.freeLimit < 0 {
		return goerr.New("free-limit must not be negative", goerr.V("limit", q.freeLimit))
	}
	if q.maxAttempts < 1 {
		return goerr.New("generation-attempts must be at least 1", goerr.V("attempts", q.maxAttempts))
	}
	return nil
}

// Options returns the usecase options for this configuration
func (q *Quota) Options() []usecase.Option {
	return []usecase.Option{
		usecase.WithFreeLimit(q.freeLimit),
		usecase.WithRetryPolicy(q.maxAttempts, q.retryDelay),
	}
}
