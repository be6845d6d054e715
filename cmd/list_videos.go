package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"vlog-gallery/pkg/services"
)

// newListVideosCmd creates a new command for listing videos
func newListVideosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-videos [creator]",
		Short: "List videos, newest first",
		Long: `List the video catalog for every creator, or for a single creator when one is given.
Missing thumbnails are generated on the way, exactly as the web API does.`,
		Args: cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			svc := services.InitService(mustLoadConfig())

			creator := ""
			if len(args) > 0 {
				creator = args[0]
			}
			if err := listVideos(cmd.Context(), cmd.OutOrStdout(), svc, creator); err != nil {
				log.Fatal().Err(err).Msg("Failed to list videos")
			}
		},
	}
}

// listVideos displays the catalog for one creator or all of them
func listVideos(ctx context.Context, w io.Writer, svc *services.Service, creator string) error {
	videos, err := svc.ListVideos(ctx, creator)
	if err != nil {
		return err
	}

	if creator != "" {
		fmt.Fprintf(w, "Creator: %s\n", creator)
	}
	fmt.Fprintf(w, "Videos: %d\n", len(videos))
	fmt.Fprintln(w, "================")

	for _, video := range videos {
		fmt.Fprintf(w, "%d. %s\n", video.ID, video.Title)
		fmt.Fprintf(w, "   Author: %s  Date: %s  Duration: %s  Size: %s\n",
			video.Author, video.Time, video.Duration, video.FileSize)
		fmt.Fprintf(w, "   URL: %s\n", video.VideoURL)
		fmt.Fprintf(w, "   Thumbnail: %s\n", video.ThumbnailURL)
		fmt.Fprintln(w)
	}
	return nil
}
