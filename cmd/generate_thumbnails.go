package cmd

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"vlog-gallery/pkg/services"
)

// Command options
var forceRegenerate bool

// newGenerateThumbnailsCmd creates a new command for generating thumbnails for videos
func newGenerateThumbnailsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate-thumbnails",
		Short: "Generate thumbnails for videos without existing thumbnails",
		Long: `Generate a .jpg thumbnail next to every video that does not have one yet.
Frames that come out as a single solid color are retried further into the video.`,
		Run: func(cmd *cobra.Command, args []string) {
			cfg := mustLoadConfig()

			// Check if ffmpeg is installed
			prober := services.NewFFmpegProber(cfg.FFmpegPath, cfg.FFprobePath, cfg.ProbeTimeout)
			if err := prober.Check(cmd.Context()); err != nil {
				log.Fatal().Err(err).Msg("FFmpeg is required but not found")
			}

			svc := services.InitService(cfg)
			if err := generateThumbnails(cmd.Context(), cmd.OutOrStdout(), svc, forceRegenerate); err != nil {
				log.Fatal().Err(err).Msg("Thumbnail generation failed")
			}
		},
	}

	// Add command-specific flags
	cmd.Flags().BoolVarP(&forceRegenerate, "force", "f", false, "Force regeneration of all thumbnails, even if they exist")

	return cmd
}

// generateThumbnails creates thumbnails for videos that don't have them
func generateThumbnails(ctx context.Context, w io.Writer, svc *services.Service, force bool) error {
	fmt.Fprintln(w, "Scanning media root for videos without thumbnails...")

	var processed atomic.Int64
	result, err := svc.BulkGenerateThumbnails(ctx, force, func(videoPath, outcome string) {
		n := processed.Add(1)
		fmt.Fprintf(w, "  [%d] %-9s %s\n", n, outcome, videoPath)
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\nSummary:\n")
	fmt.Fprintf(w, "  Total videos: %d\n", result.Total)
	fmt.Fprintf(w, "  Thumbnails generated: %d\n", result.Generated)
	fmt.Fprintf(w, "  Already present: %d\n", result.Skipped)
	fmt.Fprintf(w, "  Still blank after retry: %d\n", result.Blank)
	fmt.Fprintf(w, "  Failed: %d\n", result.Failed)
	return nil
}
