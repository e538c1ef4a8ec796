package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/garage-lab/gearbox/pkg/cli/config"
	httpctrl "github.com/garage-lab/gearbox/pkg/controller/http"
	"github.com/garage-lab/gearbox/pkg/usecase"
	"github.com/garage-lab/gearbox/pkg/utils/logging"
	"github.com/garage-lab/gearbox/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdServe(version string) *cli.Command {
	var (
		addr       string
		repoCfg    config.Repository
		geminiCfg  config.Gemini
		imagenCfg  config.Imagen
		quotaCfg   config.Quota
		catalogCfg config.Catalog
		sentryCfg  config.Sentry
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Listen address",
			Value:       "127.0.0.1:8080",
			Sources:     cli.EnvVars("GEARBOX_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, imagenCfg.Flags()...)
	flags = append(flags, quotaCfg.Flags()...)
	flags = append(flags, catalogCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the guide generation HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			if err := quotaCfg.Validate(); err != nil {
				return err
			}

			sentryClose, err := sentryCfg.Configure(version)
			if err != nil {
				return err
			}
			defer sentryClose()

			uc, closeRepo, err := buildUseCases(ctx, &repoCfg, &geminiCfg, &imagenCfg, &quotaCfg, &catalogCfg)
			if err != nil {
				return err
			}
			defer closeRepo()

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logger.Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logger.Info("Server shutdown completed")
				return nil
			}
		},
	}
}

// buildUseCases wires the repository, generation services and catalog into
// the pipeline. The returned closer releases the repository.
func buildUseCases(ctx context.Context, repoCfg *config.Repository, geminiCfg *config.Gemini, imagenCfg *config.Imagen, quotaCfg *config.Quota, catalogCfg *config.Catalog) (*usecase.UseCases, func(), error) {
	repo, err := repoCfg.Configure(ctx)
	if err != nil {
		return nil, nil, err
	}
	closeRepo := func() {
		safe.Close(ctx, repo)
	}

	textGen, err := geminiCfg.Configure(ctx)
	if err != nil {
		closeRepo()
		return nil, nil, err
	}

	synthesizer, err := imagenCfg.Configure(ctx)
	if err != nil {
		closeRepo()
		return nil, nil, err
	}

	cat, err := catalogCfg.Configure()
	if err != nil {
		closeRepo()
		return nil, nil, err
	}

	uc := usecase.New(repo, textGen, synthesizer, cat, quotaCfg.Options()...)
	return uc, closeRepo, nil
}
