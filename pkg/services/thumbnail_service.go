package services

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	// colorDifferenceThreshold defines the minimum difference between color components
	// to consider two pixels as different colors (accounts for compression artifacts)
	colorDifferenceThreshold = 256 // About 1 unit difference in 8-bit color

	// retrySecondsMultiplier moves the retry frame further into the video
	// when the first extracted frame is a solid color
	retrySecondsMultiplier = 5
)

// ErrBlankThumbnail is returned when a thumbnail is a single solid color
var ErrBlankThumbnail = errors.New("thumbnail appears to be a solid color")

// BulkResult summarizes a bulk thumbnail run
type BulkResult struct {
	Total     int `json:"total"`
	Generated int `json:"generated"`
	Skipped   int `json:"skipped"`
	Blank     int `json:"blank"`
	Failed    int `json:"failed"`
}

// ProgressCallback receives the outcome for each processed video. Calls are serialized.
type ProgressCallback func(videoPath string, outcome string)

// BulkGenerateThumbnails generates thumbnails for every video under the media
// root. Existing thumbnails are kept unless force is set. A solid-color frame
// is retried once further into the video.
func (s *Service) BulkGenerateThumbnails(ctx context.Context, force bool, progressCb ProgressCallback) (BulkResult, error) {
	sendProgress := func(path, outcome string) {
		if progressCb != nil {
			progressCb(path, outcome)
		}
	}

	files, err := s.collectFiles("")
	if err != nil {
		return BulkResult{}, err
	}

	var (
		mu     sync.Mutex
		result = BulkResult{Total: len(files)}
	)
	record := func(path, outcome string, counter *int) {
		mu.Lock()
		defer mu.Unlock()
		*counter++
		sendProgress(path, outcome)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)
	for _, file := range files {
		g.Go(func() error {
			thumbPath := ThumbnailPath(file.Path)
			if !force && fileExists(thumbPath) {
				record(file.Path, "skipped", &result.Skipped)
				return nil
			}

			err := s.regenerateThumbnail(gctx, file.Path, thumbPath)
			switch {
			case errors.Is(err, ErrBlankThumbnail):
				log.Warn().Str("path", thumbPath).Msg("Thumbnail is still blank after retry")
				record(file.Path, "blank", &result.Blank)
			case err != nil:
				log.Error().Err(err).Str("path", file.Path).Msg("Error creating thumbnail")
				record(file.Path, "failed", &result.Failed)
			default:
				record(file.Path, "generated", &result.Generated)
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

func (s *Service) regenerateThumbnail(ctx context.Context, videoPath, thumbPath string) error {
	_, err, _ := s.thumbnails.Do(thumbPath, func() (interface{}, error) {
		if err := s.generateThumbnail(ctx, videoPath, thumbPath, s.config.ThumbnailSecond); err != nil {
			return nil, err
		}
		if err := validateThumbnail(thumbPath); !errors.Is(err, ErrBlankThumbnail) {
			return nil, err
		}

		retryAt := s.config.ThumbnailSecond * retrySecondsMultiplier
		if retryAt == 0 {
			retryAt = retrySecondsMultiplier
		}
		log.Debug().Str("path", thumbPath).Int("at", retryAt).Msg("Retrying blank thumbnail")
		if err := s.generateThumbnail(ctx, videoPath, thumbPath, retryAt); err != nil {
			return nil, err
		}
		return nil, validateThumbnail(thumbPath)
	})
	return err
}

// ClearThumbnail removes the thumbnail at rel (relative to the media root).
// Only a .jpg with a sibling .mp4 of the same name counts as a thumbnail,
// so creator avatars and unrelated images are left alone.
func (s *Service) ClearThumbnail(rel string) error {
	path, err := ResolveUnder(s.config.MediaRoot, rel)
	if err != nil {
		return err
	}
	if !strings.EqualFold(filepath.Ext(path), thumbExtension) {
		return fmt.Errorf("%s is not a thumbnail: %w", rel, ErrNotFound)
	}
	if !hasSiblingVideo(path) {
		return fmt.Errorf("no video for thumbnail %s: %w", rel, ErrNotFound)
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("thumbnail %s: %w", rel, ErrNotFound)
		}
		return fmt.Errorf("failed to delete thumbnail: %w", err)
	}
	log.Info().Str("path", path).Msg("Cleared thumbnail")
	return nil
}

func hasSiblingVideo(thumbPath string) bool {
	base := strings.TrimSuffix(thumbPath, filepath.Ext(thumbPath))
	for _, ext := range []string{videoExtension, strings.ToUpper(videoExtension)} {
		if fileExists(base + ext) {
			return true
		}
	}
	return false
}

// BulkClearThumbnails removes the thumbnail of every video under the media root
func (s *Service) BulkClearThumbnails(ctx context.Context) (int, error) {
	files, err := s.collectFiles("")
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		thumbPath := ThumbnailPath(file.Path)
		if err := os.Remove(thumbPath); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				log.Error().Err(err).Str("path", thumbPath).Msg("Error deleting thumbnail")
			}
			continue
		}
		deleted++
	}
	return deleted, nil
}

// validateThumbnail checks that a thumbnail is not a solid color by sampling
// a 10x10 grid of pixels against the first pixel.
func validateThumbnail(thumbnailPath string) error {
	f, err := os.Open(thumbnailPath)
	if err != nil {
		return fmt.Errorf("failed to open thumbnail: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("failed to decode thumbnail: %w", err)
	}

	bounds := img.Bounds()
	sampleSize := 10
	stepX := max(bounds.Dx()/sampleSize, 1)
	stepY := max(bounds.Dy()/sampleSize, 1)

	r1, g1, b1, a1 := img.At(bounds.Min.X, bounds.Min.Y).RGBA()

	differentPixels := 0
	totalSamples := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			totalSamples++
			r2, g2, b2, a2 := img.At(x, y).RGBA()
			if differs(r1, r2) || differs(g1, g2) || differs(b1, b2) || differs(a1, a2) {
				differentPixels++
			}
		}
	}

	if totalSamples > 0 && float64(differentPixels)/float64(totalSamples) < 0.01 {
		return fmt.Errorf("%w (only %d/%d sampled pixels differ)", ErrBlankThumbnail, differentPixels, totalSamples)
	}
	return nil
}

func differs(a, b uint32) bool {
	d := int64(a) - int64(b)
	if d < 0 {
		d = -d
	}
	return d > colorDifferenceThreshold
}
