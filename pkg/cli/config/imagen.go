package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/garage-lab/gearbox/pkg/service/imagegen"
	"github.com/garage-lab/gearbox/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Imagen holds configuration for step illustration
type Imagen struct {
	projectID   string
	location    string
	bucket      string
	model       string
	stepTimeout time.Duration
}

// Flags returns CLI flags for image generation configuration
func (i *Imagen) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "imagen-project",
			Usage:       "Google Cloud project ID for Imagen (empty disables illustrations)",
			Sources:     cli.EnvVars("GEARBOX_IMAGEN_PROJECT"),
			Destination: &i.projectID,
		},
		&cli.StringFlag{
			Name:        "imagen-location",
			Usage:       "Google Cloud location for Imagen",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEARBOX_IMAGEN_LOCATION"),
			Destination: &i.location,
		},
		&cli.StringFlag{
			Name:        "imagen-bucket",
			Usage:       "GCS bucket for generated step images",
			Sources:     cli.EnvVars("GEARBOX_IMAGEN_BUCKET"),
			Destination: &i.bucket,
		},
		&cli.StringFlag{
			Name:        "imagen-model",
			Usage:       "Imagen model name",
			Value:       imagegen.DefaultImagenModel,
			Sources:     cli.EnvVars("GEARBOX_IMAGEN_MODEL"),
			Destination: &i.model,
		},
		&cli.DurationFlag{
			Name:        "imagen-step-timeout",
			Usage:       "Timeout for one step illustration call",
			Value:       30 * time.Second,
			Sources:     cli.EnvVars("GEARBOX_IMAGEN_STEP_TIMEOUT"),
			Destination: &i.stepTimeout,
		},
	}
}

// LogAttrs returns log attributes for the Imagen configuration
func (i *Imagen) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("project_id", i.projectID),
		slog.String("location", i.location),
		slog.String("bucket", i.bucket),
		slog.String("model", i.model),
	}
}

// Configure creates the step synthesizer. Without a project and bucket the
// backend is disabled and every step degrades to no image.
func (i *Imagen) Configure(ctx context.Context) (*imagegen.Synthesizer, error) {
	if i.projectID == "" || i.bucket == "" {
		logging.Default().Info("Imagen not configured, step illustrations disabled")
		return imagegen.NewSynthesizer(nil), nil
	}

	backend, err := imagegen.NewImagenBackend(ctx, i.projectID, i.location, i.bucket,
		imagegen.WithModel(i.model))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Imagen backend")
	}

	return imagegen.NewSynthesizer(backend, imagegen.WithStepTimeout(i.stepTimeout)), nil
}
