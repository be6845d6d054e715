package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"vlog-gallery/pkg/config"
	"vlog-gallery/pkg/metrics"
	"vlog-gallery/pkg/models"
)

const (
	videoExtension = ".mp4"
	thumbExtension = ".jpg"
	avatarFileName = "tx.jpg"

	// PlaceholderThumbnail is served in place of a thumbnail that could not be extracted
	PlaceholderThumbnail = "/placeholder.svg"

	defaultLikes = "0"
)

// Service handles operations related to creators and their videos
type Service struct {
	config        *config.Config
	prober        Prober
	durationCache *cache.Cache
	thumbnails    singleflight.Group
}

var (
	// defaultService is the singleton instance used by the CLI commands
	defaultService *Service
	once           sync.Once
)

// InitService initializes the shared service with an ffmpeg-backed prober
func InitService(cfg *config.Config) *Service {
	once.Do(func() {
		defaultService = NewService(cfg, NewFFmpegProber(cfg.FFmpegPath, cfg.FFprobePath, cfg.ProbeTimeout))
	})
	return defaultService
}

// NewService creates a service reading the media root from cfg
func NewService(cfg *config.Config, prober Prober) *Service {
	s := &Service{
		config: cfg,
		prober: prober,
	}
	if cfg.DurationCacheTTL > 0 {
		s.durationCache = cache.New(cfg.DurationCacheTTL, 2*cfg.DurationCacheTTL)
	}
	return s
}

// Config returns the configuration the service was built with
func (s *Service) Config() *config.Config {
	return s.config
}

// videoFile is a candidate .mp4 found while walking the media root
type videoFile struct {
	Creator string
	Name    string
	Path    string
}

func isVideoFile(entry fs.DirEntry) bool {
	return !entry.IsDir() && strings.HasSuffix(strings.ToLower(entry.Name()), videoExtension)
}

// isMissingDir reports errors meaning "there is no such directory to list"
func isMissingDir(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}

// ListCreators returns every immediate subdirectory of the media root
func (s *Service) ListCreators() ([]models.Creator, error) {
	entries, err := os.ReadDir(s.config.MediaRoot)
	if err != nil {
		return nil, fmt.Errorf("read media root: %w", err)
	}

	creators := make([]models.Creator, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		creators = append(creators, models.Creator{
			ID:   entry.Name(),
			Name: entry.Name(),
			Path: MediaPrefix + "/" + entry.Name(),
		})
	}

	sort.SliceStable(creators, func(i, j int) bool {
		return naturalLess(creators[i].Name, creators[j].Name)
	})
	return creators, nil
}

// collectFiles lists candidate videos for one creator, or for every creator
// when creator is empty. A missing directory yields no files and no error.
func (s *Service) collectFiles(creator string) ([]videoFile, error) {
	if creator != "" {
		dir, err := resolveChild(s.config.MediaRoot, creator)
		if err != nil {
			log.Warn().Str("creator", creator).Msg("Rejected creator outside media root")
			return nil, nil
		}
		return listCreatorDir(creator, dir)
	}

	entries, err := os.ReadDir(s.config.MediaRoot)
	if err != nil {
		if isMissingDir(err) {
			log.Warn().Str("path", s.config.MediaRoot).Msg("Media root does not exist")
			return nil, nil
		}
		return nil, fmt.Errorf("read media root: %w", err)
	}

	var files []videoFile
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(s.config.MediaRoot, entry.Name())
		creatorFiles, err := listCreatorDir(entry.Name(), dir)
		if err != nil {
			log.Error().Err(err).Str("creator", entry.Name()).Msg("Skipping unreadable creator folder")
			continue
		}
		files = append(files, creatorFiles...)
	}
	return files, nil
}

func listCreatorDir(creator, dir string) ([]videoFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if isMissingDir(err) {
			log.Debug().Str("path", dir).Msg("Creator folder does not exist")
			return nil, nil
		}
		return nil, fmt.Errorf("read creator folder %s: %w", creator, err)
	}

	files := make([]videoFile, 0, len(entries))
	for _, entry := range entries {
		if !isVideoFile(entry) {
			continue
		}
		files = append(files, videoFile{
			Creator: creator,
			Name:    entry.Name(),
			Path:    filepath.Join(dir, entry.Name()),
		})
	}
	return files, nil
}

// ListVideos returns the catalog for one creator, or for all creators when
// creator is empty, newest first. Files that fail to process are dropped.
func (s *Service) ListVideos(ctx context.Context, creator string) ([]models.Video, error) {
	files, err := s.collectFiles(creator)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	results := make([]*models.Video, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)
	for i, file := range files {
		g.Go(func() error {
			video, err := s.buildVideo(gctx, file)
			if err != nil {
				metrics.CatalogFilesSkipped.Inc()
				log.Error().Err(err).Str("path", file.Path).Msg("Failed to process video file")
				return nil
			}
			results[i] = video
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	videos := make([]models.Video, 0, len(results))
	for _, v := range results {
		if v != nil {
			videos = append(videos, *v)
		}
	}

	sortVideos(videos)
	for i := range videos {
		videos[i].ID = i + 1
	}

	log.Debug().
		Str("creator", creator).
		Int("files", len(files)).
		Int("videos", len(videos)).
		Dur("elapsed", time.Since(started)).
		Msg("Built video catalog")

	return videos, nil
}

// sortVideos orders by date descending, then filename and creator ascending
func sortVideos(videos []models.Video) {
	sort.SliceStable(videos, func(i, j int) bool {
		a, b := videos[i], videos[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if a.FileName != b.FileName {
			return naturalLess(a.FileName, b.FileName)
		}
		return naturalLess(a.Author, b.Author)
	})
}

func (s *Service) buildVideo(ctx context.Context, file videoFile) (*models.Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(file.Path)
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", file.Path)
	}

	title := titleOf(file.Name)
	base := s.config.BaseURL

	thumbnailURL := MediaURL(base, file.Creator, title+thumbExtension)
	if _, err := s.EnsureThumbnail(ctx, file.Path); err != nil {
		log.Warn().Err(err).Str("path", file.Path).Msg("Thumbnail unavailable, using placeholder")
		thumbnailURL = base + PlaceholderThumbnail
	}

	return &models.Video{
		Key:          VideoKey(file.Creator, file.Name),
		Title:        title,
		Author:       file.Creator,
		Time:         FormatFilenameDate(file.Name),
		Duration:     s.durationFor(ctx, file.Path, info),
		Likes:        defaultLikes,
		VideoURL:     MediaURL(base, file.Creator, file.Name),
		ThumbnailURL: thumbnailURL,
		AvatarURL:    MediaURL(base, file.Creator, avatarFileName),
		FileSize:     FormatFileSize(info.Size()),
		Date:         ParseFilenameDate(file.Name),
		FileName:     file.Name,
		Path:         file.Path,
	}, nil
}

// titleOf strips the video extension regardless of case
func titleOf(name string) string {
	if strings.HasSuffix(strings.ToLower(name), videoExtension) {
		return name[:len(name)-len(videoExtension)]
	}
	return name
}

// ThumbnailPath returns the conventional thumbnail location for a video
func ThumbnailPath(videoPath string) string {
	dir, name := filepath.Split(videoPath)
	return filepath.Join(dir, titleOf(name)+thumbExtension)
}

// FormatFileSize renders a size in megabytes with two decimals, e.g. "12.34MB"
func FormatFileSize(size int64) string {
	return fmt.Sprintf("%.2fMB", float64(size)/(1024*1024))
}

// GetDuration probes a video's duration. It never fails: any problem
// yields DefaultDuration.
func (s *Service) GetDuration(ctx context.Context, videoPath string) string {
	info, err := os.Stat(videoPath)
	if err != nil {
		metrics.DurationProbes.WithLabelValues("error").Inc()
		log.Error().Err(err).Str("path", videoPath).Msg("Failed to stat video for duration")
		return DefaultDuration
	}
	return s.durationFor(ctx, videoPath, info)
}

func (s *Service) durationFor(ctx context.Context, videoPath string, info os.FileInfo) string {
	key := fmt.Sprintf("%s|%d|%d", videoPath, info.Size(), info.ModTime().UnixNano())
	if s.durationCache != nil {
		if cached, found := s.durationCache.Get(key); found {
			metrics.DurationProbes.WithLabelValues("cached").Inc()
			return cached.(string)
		}
	}

	seconds, err := s.prober.ProbeDuration(ctx, videoPath)
	if err != nil {
		metrics.DurationProbes.WithLabelValues("error").Inc()
		log.Error().Err(err).Str("path", videoPath).Msg("Failed to probe video duration")
		return DefaultDuration
	}
	metrics.DurationProbes.WithLabelValues("ok").Inc()

	formatted := FormatDuration(seconds)
	if s.durationCache != nil {
		s.durationCache.Set(key, formatted, cache.DefaultExpiration)
	}
	log.Debug().Str("path", videoPath).Str("duration", formatted).Msg("Probed video duration")
	return formatted
}

// EnsureThumbnail returns the thumbnail path for a video, extracting a frame
// first if no thumbnail exists. An existing file is never regenerated.
// Concurrent callers share one extraction, which outlives the cancellation
// of whichever caller started it and is bounded by the prober timeout only.
func (s *Service) EnsureThumbnail(ctx context.Context, videoPath string) (string, error) {
	thumbPath := ThumbnailPath(videoPath)
	if fileExists(thumbPath) {
		metrics.ThumbnailGenerations.WithLabelValues("cached").Inc()
		return thumbPath, nil
	}

	shared := context.WithoutCancel(ctx)
	_, err, _ := s.thumbnails.Do(thumbPath, func() (interface{}, error) {
		if fileExists(thumbPath) {
			return nil, nil
		}
		return nil, s.generateThumbnail(shared, videoPath, thumbPath, s.config.ThumbnailSecond)
	})
	if err != nil {
		return "", err
	}
	return thumbPath, nil
}

func (s *Service) generateThumbnail(ctx context.Context, videoPath, thumbPath string, atSeconds int) error {
	data, err := s.prober.ExtractFrame(ctx, videoPath, atSeconds, s.config.ThumbnailWidth)
	if err != nil {
		metrics.ThumbnailGenerations.WithLabelValues("error").Inc()
		return fmt.Errorf("extract frame: %w", err)
	}
	if err := writeFileAtomic(thumbPath, data); err != nil {
		metrics.ThumbnailGenerations.WithLabelValues("error").Inc()
		return err
	}
	metrics.ThumbnailGenerations.WithLabelValues("ok").Inc()
	log.Info().Str("path", thumbPath).Msg("Generated thumbnail")
	return nil
}
