package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"vlog-gallery/pkg/config"
	"vlog-gallery/pkg/services"
)

type stubProber struct{}

func (stubProber) ExtractFrame(context.Context, string, int, int) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 0, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (stubProber) ProbeDuration(context.Context, string) (float64, error) {
	return 3725, nil
}

func newTestService(t *testing.T, files ...string) (*services.Service, string) {
	t.Helper()
	root := t.TempDir()
	for _, rel := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("video"), 0o644))
	}
	cfg := &config.Config{
		MediaRoot:        root,
		Workers:          2,
		ThumbnailWidth:   480,
		ThumbnailSecond:  1,
		DurationCacheTTL: time.Minute,
	}
	return services.NewService(cfg, stubProber{}), root
}

func TestListCreators(t *testing.T) {
	svc, _ := newTestService(t, "creator10/a.mp4", "creator2/b.mp4")

	var out bytes.Buffer
	require.NoError(t, listCreators(&out, svc))

	text := out.String()
	assert.Contains(t, text, "creator2\n  Path: /media/creator2")
	assert.Contains(t, text, "Total: 2 creators")
	assert.Less(t, bytes.Index(out.Bytes(), []byte("creator2")), bytes.Index(out.Bytes(), []byte("creator10")))
}

func TestListVideos(t *testing.T) {
	svc, _ := newTestService(t, "alice/20240101.mp4", "bob/20240202 trip.mp4")

	var out bytes.Buffer
	require.NoError(t, listVideos(context.Background(), &out, svc, "bob"))

	text := out.String()
	assert.Contains(t, text, "Creator: bob")
	assert.Contains(t, text, "Videos: 1")
	assert.Contains(t, text, "1. 20240202 trip")
	assert.Contains(t, text, "Duration: 1:02:05")
	assert.NotContains(t, text, "alice")
}

func TestExportData(t *testing.T) {
	svc, _ := newTestService(t, "alice/20240101.mp4", "bob/20240202.mp4")

	var out bytes.Buffer
	require.NoError(t, exportData(context.Background(), &out, svc, "json"))

	var doc struct {
		Creators []map[string]any `json:"creators"`
		Videos   []map[string]any `json:"videos"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Len(t, doc.Creators, 2)
	require.Len(t, doc.Videos, 2)
	assert.Equal(t, "20240202", doc.Videos[0]["title"])

	out.Reset()
	require.NoError(t, exportData(context.Background(), &out, svc, "yaml"))
	var yamlDoc struct {
		Videos []map[string]any `yaml:"videos"`
	}
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &yamlDoc))
	require.Len(t, yamlDoc.Videos, 2)
	assert.Equal(t, "/media/bob/20240202.mp4", yamlDoc.Videos[0]["videoUrl"])
	assert.NotContains(t, yamlDoc.Videos[0], "path")

	err := exportData(context.Background(), &out, svc, "xml")
	assert.ErrorContains(t, err, "unsupported export format")
}

func TestGenerateAndClearThumbnails(t *testing.T) {
	svc, root := newTestService(t, "alice/20240101.mp4", "alice/20240102.mp4")

	var out bytes.Buffer
	require.NoError(t, generateThumbnails(context.Background(), &out, svc, false))
	assert.Contains(t, out.String(), "Thumbnails generated: 2")
	assert.FileExists(t, filepath.Join(root, "alice", "20240101.jpg"))

	out.Reset()
	require.NoError(t, generateThumbnails(context.Background(), &out, svc, false))
	assert.Contains(t, out.String(), "Already present: 2")

	out.Reset()
	require.NoError(t, clearThumbnails(context.Background(), &out, svc, []string{"alice/20240101.jpg"}))
	assert.Contains(t, out.String(), "Deleted alice/20240101.jpg")
	assert.NoFileExists(t, filepath.Join(root, "alice", "20240101.jpg"))

	err := clearThumbnails(context.Background(), &out, svc, []string{"alice/20240101.jpg"})
	assert.ErrorIs(t, err, services.ErrNotFound)

	out.Reset()
	require.NoError(t, clearThumbnails(context.Background(), &out, svc, nil))
	assert.Contains(t, out.String(), "Deleted 1 thumbnails")
}

func TestNewRootCmd_Commands(t *testing.T) {
	root := NewRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{
		"list-creators", "list-videos", "export", "serve", "generate-thumbnails", "clear-thumbnails",
	}, names)
	assert.NotNil(t, root.PersistentFlags().Lookup("media-root"))
	assert.NotNil(t, root.PersistentFlags().Lookup("debug"))
}
