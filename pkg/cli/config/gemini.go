package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/garage-lab/gearbox/pkg/service/textgen"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/urfave/cli/v3"
)

// Gemini holds configuration for the Gemini text generation client
type Gemini struct {
	projectID string
	location  string
	timeout   time.Duration
}

// Flags returns CLI flags for Gemini configuration
func (g *Gemini) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini API (required)",
			Sources:     cli.EnvVars("GEARBOX_GEMINI_PROJECT"),
			Destination: &g.projectID,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini API",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEARBOX_GEMINI_LOCATION"),
			Destination: &g.location,
		},
		&cli.DurationFlag{
			Name:        "gemini-timeout",
			Usage:       "Timeout for one text generation call",
			Value:       60 * time.Second,
			Sources:     cli.EnvVars("GEARBOX_GEMINI_TIMEOUT"),
			Destination: &g.timeout,
		},
	}
}

// LogAttrs returns log attributes for the Gemini configuration
func (g *Gemini) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("project_id", g.projectID),
		slog.String("location", g.location),
		slog.Duration("timeout", g.timeout),
	}
}

// Configure creates the text generation service from the configured flags
func (g *Gemini) Configure(ctx context.Context) (textgen.Service, error) {
	if g.projectID == "" {
		return nil, goerr.New("gemini-project is required")
	}

	client, err := gemini.New(ctx, g.projectID, g.location)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini client")
	}

	return textgen.New(client, textgen.WithTimeout(g.timeout))
}
