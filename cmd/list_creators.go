package cmd

import (
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"vlog-gallery/pkg/services"
)

// newListCreatorsCmd creates a new command for listing creators
func newListCreatorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-creators",
		Short: "List all creators",
		Long:  `List every creator folder under the media root.`,
		Run: func(cmd *cobra.Command, args []string) {
			svc := services.InitService(mustLoadConfig())
			if err := listCreators(cmd.OutOrStdout(), svc); err != nil {
				log.Fatal().Err(err).Msg("Failed to list creators")
			}
		},
	}
}

// listCreators displays all creator folders
func listCreators(w io.Writer, svc *services.Service) error {
	creators, err := svc.ListCreators()
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "Creators:")
	fmt.Fprintln(w, "=========")

	for _, creator := range creators {
		fmt.Fprintf(w, "%s\n", creator.Name)
		fmt.Fprintf(w, "  Path: %s\n", creator.Path)
	}

	fmt.Fprintf(w, "\nTotal: %d creators\n", len(creators))
	return nil
}
