package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	MediaRoot string
	Port      string
	PublicDir string
	ViewsDir  string
	BaseURL   string

	FFmpegPath      string
	FFprobePath     string
	ProbeTimeout    time.Duration
	Workers         int
	ThumbnailWidth  int
	ThumbnailSecond int

	DurationCacheTTL time.Duration
	EnableAdmin      bool
	LogLevel         string
}

// ErrMediaRootNotSet is returned when the MEDIA_ROOT setting resolves to an empty path
var ErrMediaRootNotSet = errors.New("MEDIA_ROOT not set")

// envMappings binds config keys to their environment variables.
var envMappings = map[string]string{
	"MediaRoot":        "MEDIA_ROOT",
	"Port":             "PORT",
	"PublicDir":        "PUBLIC_DIR",
	"ViewsDir":         "VIEWS_DIR",
	"BaseURL":          "BASE_URL",
	"FFmpegPath":       "FFMPEG_PATH",
	"FFprobePath":      "FFPROBE_PATH",
	"ProbeTimeout":     "PROBE_TIMEOUT",
	"Workers":          "WORKERS",
	"ThumbnailWidth":   "THUMBNAIL_WIDTH",
	"ThumbnailSecond":  "THUMBNAIL_SECOND",
	"DurationCacheTTL": "DURATION_CACHE_TTL",
	"EnableAdmin":      "ENABLE_ADMIN",
	"LogLevel":         "LOG_LEVEL",
}

// Load loads configuration from defaults, an optional gallery.yaml and environment variables
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, env := range envMappings {
		if err := v.BindEnv(key, env); err != nil {
			log.Warn().Err(err).Msgf("Failed to bind environment variable %s for %s", env, key)
		}
	}

	v.SetConfigName("gallery")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.vlog-gallery")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug().Msg("Config file not found, using environment variables and defaults")
	} else {
		log.Info().Msgf("Using config file: %s", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	log.Debug().
		Str("media_root", cfg.MediaRoot).
		Str("port", cfg.Port).
		Int("workers", cfg.Workers).
		Msg("Config loaded")

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("MediaRoot", filepath.Join(".", "public", "vlog"))
	v.SetDefault("Port", "3000")
	v.SetDefault("PublicDir", filepath.Join(".", "public"))
	v.SetDefault("ViewsDir", filepath.Join(".", "views"))
	v.SetDefault("BaseURL", "")
	v.SetDefault("FFmpegPath", "ffmpeg")
	v.SetDefault("FFprobePath", "ffprobe")
	v.SetDefault("ProbeTimeout", 30*time.Second)
	v.SetDefault("Workers", runtime.NumCPU())
	v.SetDefault("ThumbnailWidth", 480)
	v.SetDefault("ThumbnailSecond", 1)
	v.SetDefault("DurationCacheTTL", 10*time.Minute)
	v.SetDefault("EnableAdmin", false)
	v.SetDefault("LogLevel", "info")
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.MediaRoot) == "" {
		return ErrMediaRootNotSet
	}
	if c.Workers <= 0 {
		return fmt.Errorf("WORKERS must be positive, got %d", c.Workers)
	}
	if c.ThumbnailWidth <= 0 {
		return fmt.Errorf("THUMBNAIL_WIDTH must be positive, got %d", c.ThumbnailWidth)
	}
	if c.ThumbnailSecond < 0 {
		return fmt.Errorf("THUMBNAIL_SECOND must not be negative, got %d", c.ThumbnailSecond)
	}
	return nil
}

// ServerAddress returns the server address with port
func (c *Config) ServerAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// LogServerStartMessage logs where the server can be reached
func (c *Config) LogServerStartMessage() {
	log.Info().Msgf("Starting server at port %s", c.Port)
	log.Info().Msgf("Gallery URL: http://localhost:%s/", c.Port)
	log.Info().Msgf("Media root: %s", c.MediaRoot)
	if c.EnableAdmin {
		log.Warn().Msg("Admin thumbnail endpoints are enabled")
	}
}
