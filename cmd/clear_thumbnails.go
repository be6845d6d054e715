package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"vlog-gallery/pkg/services"
)

// newClearThumbnailsCmd creates a new command for deleting generated thumbnails
func newClearThumbnailsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-thumbnails [path...]",
		Short: "Delete generated thumbnails",
		Long: `Delete the thumbnails at the given paths (relative to the media root), or every
video thumbnail when no path is given. Creator avatars are never touched.`,
		Run: func(cmd *cobra.Command, args []string) {
			svc := services.InitService(mustLoadConfig())
			if err := clearThumbnails(cmd.Context(), cmd.OutOrStdout(), svc, args); err != nil {
				log.Fatal().Err(err).Msg("Failed to clear thumbnails")
			}
		},
	}
}

// clearThumbnails removes the named thumbnails, or all of them
func clearThumbnails(ctx context.Context, w io.Writer, svc *services.Service, paths []string) error {
	if len(paths) == 0 {
		deleted, err := svc.BulkClearThumbnails(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Deleted %d thumbnails\n", deleted)
		return nil
	}

	for _, path := range paths {
		if err := svc.ClearThumbnail(path); err != nil {
			return fmt.Errorf("clear %s: %w", path, err)
		}
		fmt.Fprintf(w, "Deleted %s\n", path)
	}
	return nil
}
