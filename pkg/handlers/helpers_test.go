package handlers

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"vlog-gallery/pkg/config"
	"vlog-gallery/pkg/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubProber struct{}

func (stubProber) ExtractFrame(_ context.Context, _ string, _, widthPx int) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 24))
	for y := 0; y < 24; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 6), G: uint8(y * 10), B: 80, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (stubProber) ProbeDuration(context.Context, string) (float64, error) {
	return 125, nil
}

// testEnv is a temporary public dir with a media root below it
type testEnv struct {
	dir       string
	mediaRoot string
	cfg       *config.Config
	router    *gin.Engine
}

func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		dir:       dir,
		mediaRoot: filepath.Join(dir, "public", "vlog"),
	}
	require.NoError(t, os.MkdirAll(env.mediaRoot, 0o755))

	env.cfg = &config.Config{
		MediaRoot:        env.mediaRoot,
		PublicDir:        filepath.Join(dir, "public"),
		ViewsDir:         filepath.Join(dir, "views"),
		Workers:          2,
		ThumbnailWidth:   480,
		ThumbnailSecond:  1,
		DurationCacheTTL: time.Minute,
	}
	for _, m := range mutate {
		m(env.cfg)
	}
	env.router = NewRouter(services.NewService(env.cfg, stubProber{}))
	return env
}

func (e *testEnv) write(t *testing.T, rel string, data []byte) string {
	t.Helper()
	path := filepath.Join(e.dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func (e *testEnv) do(method, target string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) get(target string) *httptest.ResponseRecorder {
	return e.do(http.MethodGet, target, nil, nil)
}

func sequentialBytes(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}
