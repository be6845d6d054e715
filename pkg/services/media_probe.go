package services

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Prober extracts metadata from video files
type Prober interface {
	// ExtractFrame returns a JPEG of the frame at atSeconds, scaled to widthPx
	// wide with proportional height.
	ExtractFrame(ctx context.Context, path string, atSeconds, widthPx int) ([]byte, error)
	// ProbeDuration returns the container duration in seconds.
	ProbeDuration(ctx context.Context, path string) (float64, error)
}

// FFmpegProber implements Prober with the ffmpeg and ffprobe binaries
type FFmpegProber struct {
	FFmpegPath  string
	FFprobePath string
	// Timeout bounds each external process; zero means no limit.
	Timeout time.Duration
}

// NewFFmpegProber creates a prober using the given binaries
func NewFFmpegProber(ffmpegPath, ffprobePath string, timeout time.Duration) *FFmpegProber {
	return &FFmpegProber{
		FFmpegPath:  ffmpegPath,
		FFprobePath: ffprobePath,
		Timeout:     timeout,
	}
}

// Check verifies that ffmpeg and ffprobe are installed and accessible
func (p *FFmpegProber) Check(ctx context.Context) error {
	for _, bin := range []string{p.FFmpegPath, p.FFprobePath} {
		cmd := exec.CommandContext(ctx, bin, "-version")
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("%s not found or not working: %w", bin, err)
		}
	}
	return nil
}

func (p *FFmpegProber) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.Timeout)
}

// ExtractFrame implements Prober
func (p *FFmpegProber) ExtractFrame(ctx context.Context, path string, atSeconds, widthPx int) ([]byte, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	cmd := exec.CommandContext(ctx,
		p.FFmpegPath,
		"-v", "error",
		"-ss", ffmpegTimestamp(atSeconds*1000),
		"-i", path,
		"-frames:v", "1",
		"-vf", fmt.Sprintf("scale=%d:-2", widthPx),
		"-q:v", "2",
		"-f", "image2pipe",
		"-vcodec", "mjpeg",
		"pipe:1",
	)

	var stdout bytes.Buffer
	var stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %w, stderr: %s", err, stderr.String())
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no frame at %ds for %s", atSeconds, path)
	}
	return stdout.Bytes(), nil
}

// ProbeDuration implements Prober
func (p *FFmpegProber) ProbeDuration(ctx context.Context, path string) (float64, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	cmd := exec.CommandContext(ctx,
		p.FFprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w, stderr: %s", err, stderr.String())
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", strings.TrimSpace(string(out)), err)
	}
	return seconds, nil
}

// ffmpegTimestamp converts milliseconds to HH:MM:SS.mmm
func ffmpegTimestamp(ms int) string {
	totalSeconds := ms / 1000
	milliseconds := ms % 1000

	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, milliseconds)
}

// DefaultDuration is shown when a duration cannot be probed
const DefaultDuration = "00:00"

// FormatDuration renders seconds as MM:SS, or H:MM:SS from one hour upwards
func FormatDuration(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return DefaultDuration
	}

	total := int64(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}
