package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vlog-gallery/pkg/config"
)

// fakeProber records calls and returns canned results
type fakeProber struct {
	mu            sync.Mutex
	frameCalls    map[string]int
	durationCalls map[string]int
	frameAt       []int

	duration    float64
	durationErr error
	frameErr    error
	// solidAt lists timestamps that yield a single-color frame
	solidAt map[int]bool
}

func newFakeProber() *fakeProber {
	return &fakeProber{
		frameCalls:    map[string]int{},
		durationCalls: map[string]int{},
		duration:      65.4,
		solidAt:       map[int]bool{},
	}
}

func (f *fakeProber) ExtractFrame(_ context.Context, path string, atSeconds, widthPx int) ([]byte, error) {
	f.mu.Lock()
	f.frameCalls[path]++
	f.frameAt = append(f.frameAt, atSeconds)
	err := f.frameErr
	solid := f.solidAt[atSeconds]
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return testJPEG(widthPx/10, solid), nil
}

func (f *fakeProber) ProbeDuration(_ context.Context, path string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.durationCalls[path]++
	return f.duration, f.durationErr
}

func (f *fakeProber) totalFrameCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.frameCalls {
		n += c
	}
	return n
}

func (f *fakeProber) durationCallsFor(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.durationCalls[path]
}

var errProbe = errors.New("probe exploded")

// testJPEG encodes a horizontal gradient, or a flat gray image when solid
func testJPEG(width int, solid bool) []byte {
	if width < 10 {
		width = 10
	}
	img := image.NewRGBA(image.Rect(0, 0, width, width*9/16))
	for y := 0; y < img.Bounds().Dy(); y++ {
		for x := 0; x < width; x++ {
			c := color.RGBA{R: 128, G: 128, B: 128, A: 255}
			if !solid {
				v := uint8(x * 255 / (width - 1))
				c = color.RGBA{R: v, G: 255 - v, B: v / 2, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func testConfig(root string) *config.Config {
	return &config.Config{
		MediaRoot:        root,
		Workers:          4,
		ThumbnailWidth:   480,
		ThumbnailSecond:  1,
		DurationCacheTTL: time.Minute,
	}
}

// writeFile creates parent directories and writes size bytes to root/rel
func writeFile(t *testing.T, root, rel string, size int) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte{'v'}, size), 0o644))
	return path
}
