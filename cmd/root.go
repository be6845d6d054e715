package cmd

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"vlog-gallery/pkg/config"
)

// Configuration flags
var (
	mediaRoot  string
	portNumber string
	publicDir  string
	baseURL    string
	debug      bool
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vlog-gallery",
		Short: "Vlog Gallery serves a folder of vlog videos as a browsable gallery",
		Long: `Vlog Gallery is a command line application that scans a media folder laid out as
<creator>/<YYYYMMDD...>.mp4, extracts thumbnails and durations with ffmpeg, and
serves the catalog, the media files and a single-page frontend over HTTP.`,
		SilenceUsage: true,
	}

	// Define persistent flags that will be available for all commands
	rootCmd.PersistentFlags().StringVarP(&mediaRoot, "media-root", "m", "", "Set the MEDIA_ROOT (overrides environment variable)")
	rootCmd.PersistentFlags().StringVarP(&portNumber, "port", "p", "", "Set the PORT (overrides environment variable)")
	rootCmd.PersistentFlags().StringVar(&publicDir, "public-dir", "", "Set the PUBLIC_DIR (overrides environment variable)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Set the BASE_URL (overrides environment variable)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	// Add commands to root
	rootCmd.AddCommand(newListCreatorsCmd())
	rootCmd.AddCommand(newListVideosCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newGenerateThumbnailsCmd())
	rootCmd.AddCommand(newClearThumbnailsCmd())

	return rootCmd
}

// LoadConfig loads configuration with respect to command line flags
func LoadConfig() (*config.Config, error) {
	// Set environment variables from flags if provided
	if mediaRoot != "" {
		os.Setenv("MEDIA_ROOT", mediaRoot)
	}

	if portNumber != "" {
		os.Setenv("PORT", portNumber)
	}

	if publicDir != "" {
		os.Setenv("PUBLIC_DIR", publicDir)
	}

	if baseURL != "" {
		os.Setenv("BASE_URL", baseURL)
	}

	if debug {
		os.Setenv("LOG_LEVEL", "debug")
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// Load configuration from environment variables (potentially set above)
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	SetupLogging(cfg.LogLevel)
	return cfg, nil
}

// SetupLogging applies the configured log level to zerolog and gin
func SetupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		log.Warn().Str("level", level).Msg("Unknown log level, using info")
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if lvl <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
}

// mustLoadConfig loads configuration or exits
func mustLoadConfig() *config.Config {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	return cfg
}
