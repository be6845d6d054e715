package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"vlog-gallery/pkg/models"
	"vlog-gallery/pkg/services"
)

// catalogExport is the document written by the export command
type catalogExport struct {
	Creators []models.Creator `json:"creators" yaml:"creators"`
	Videos   []models.Video   `json:"videos" yaml:"videos"`
}

// newExportCmd creates a new command for exporting catalog data
func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [format]",
		Short: "Export catalog data",
		Long:  `Export all creators and videos in the specified format. Currently supported formats: json, yaml.`,
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			svc := services.InitService(mustLoadConfig())

			format := "json"
			if len(args) > 0 {
				format = args[0]
			}
			if err := exportData(cmd.Context(), cmd.OutOrStdout(), svc, format); err != nil {
				log.Fatal().Err(err).Msg("Export failed")
			}
		},
	}
}

// exportData exports catalog data in the specified format
func exportData(ctx context.Context, w io.Writer, svc *services.Service, format string) error {
	var marshal func(any) ([]byte, error)
	switch format {
	case "json":
		marshal = func(v any) ([]byte, error) { return json.MarshalIndent(v, "", "  ") }
	case "yaml", "yml":
		marshal = yaml.Marshal
	default:
		return fmt.Errorf("unsupported export format %q, supported formats: json, yaml", format)
	}

	creators, err := svc.ListCreators()
	if err != nil {
		return err
	}
	videos, err := svc.ListVideos(ctx, "")
	if err != nil {
		return err
	}

	data, err := marshal(catalogExport{Creators: creators, Videos: videos})
	if err != nil {
		return fmt.Errorf("error marshaling data: %w", err)
	}

	_, err = w.Write(data)
	return err
}
