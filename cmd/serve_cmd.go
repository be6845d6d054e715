package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"vlog-gallery/pkg/config"
	"vlog-gallery/pkg/handlers"
	"vlog-gallery/pkg/services"
)

const shutdownTimeout = 10 * time.Second

// newServeCmd creates a new command for serving the web application
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long:  `Start the web server to serve the catalog API, the media files and the frontend via HTTP.`,
		Run: func(cmd *cobra.Command, args []string) {
			cfg := mustLoadConfig()
			if err := RunServer(cmd.Context(), cfg); err != nil {
				log.Fatal().Err(err).Msg("Server error")
			}
		},
	}
}

// RunServer serves the gallery until ctx is cancelled, then shuts down gracefully
func RunServer(ctx context.Context, cfg *config.Config) error {
	svc := services.InitService(cfg)

	prober := services.NewFFmpegProber(cfg.FFmpegPath, cfg.FFprobePath, cfg.ProbeTimeout)
	if err := prober.Check(ctx); err != nil {
		log.Warn().Err(err).Msg("ffmpeg is not available, thumbnails and durations will fall back to defaults")
	}

	// No write timeout: media responses may stream for as long as the client watches.
	srv := &http.Server{
		Addr:              cfg.ServerAddress(),
		Handler:           handlers.NewRouter(svc),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		cfg.LogServerStartMessage()
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
		_ = srv.Close()
	}
	log.Info().Msg("Server stopped")
	return nil
}
