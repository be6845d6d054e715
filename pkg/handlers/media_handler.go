package handlers

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"vlog-gallery/pkg/metrics"
	"vlog-gallery/pkg/services"
)

const defaultMediaType = "video/mp4"

// errUnsatisfiable means the range starts beyond the end of the file
var errUnsatisfiable = errors.New("range not satisfiable")

type byteRange struct {
	start, end int64
}

func (r byteRange) length() int64 {
	return r.end - r.start + 1
}

// parseRange reads a single "bytes=<start>-[<end>]" range. A nil range with
// a nil error means the header should be ignored and the whole file sent.
func parseRange(header string, size int64) (*byteRange, error) {
	rangeSet, ok := strings.CutPrefix(strings.TrimSpace(header), "bytes=")
	if !ok || strings.Contains(rangeSet, ",") {
		return nil, nil
	}

	startStr, endStr, ok := strings.Cut(rangeSet, "-")
	startStr, endStr = strings.TrimSpace(startStr), strings.TrimSpace(endStr)
	if !ok || startStr == "" {
		return nil, nil
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return nil, nil
	}

	end := size - 1
	if endStr != "" {
		end, err = strconv.ParseInt(endStr, 10, 64)
		if err != nil || end < 0 {
			return nil, nil
		}
		if end > size-1 {
			end = size - 1
		}
	}

	if start >= size || start > end {
		return nil, errUnsatisfiable
	}
	return &byteRange{start: start, end: end}, nil
}

func mediaType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".mp4" {
		return defaultMediaType
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return defaultMediaType
}

// MediaHandler streams a file from the media root, honouring single byte
// ranges. Paths are decoded form-style and must stay inside the media root.
func (h *Handlers) MediaHandler(c *gin.Context) {
	raw := strings.TrimPrefix(c.Request.URL.EscapedPath(), services.MediaPrefix+"/")
	rel, err := services.DecodeRequestPath(raw)
	if err != nil {
		log.Warn().Err(err).Str("path", raw).Msg("Undecodable media path")
		c.String(http.StatusNotFound, "File not found")
		return
	}

	path, err := services.ResolveUnder(h.svc.Config().MediaRoot, rel)
	if err != nil {
		log.Warn().Str("path", rel).Msg("Rejected media path outside media root")
		c.String(http.StatusNotFound, "File not found")
		return
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug().Str("path", path).Msg("Media file does not exist")
			c.String(http.StatusNotFound, "File not found")
			return
		}
		log.Error().Err(err).Str("path", path).Msg("Failed to open media file")
		errorJSON(c, http.StatusInternalServerError, "failed to open media file")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to stat media file")
		errorJSON(c, http.StatusInternalServerError, "failed to stat media file")
		return
	}
	if !info.Mode().IsRegular() {
		c.String(http.StatusNotFound, "File not found")
		return
	}

	size := info.Size()
	header := c.Writer.Header()
	header.Set("Access-Control-Allow-Origin", "*")
	header.Set("Access-Control-Allow-Headers", "Range")
	header.Set("Accept-Ranges", "bytes")

	rng, err := parseRange(c.GetHeader("Range"), size)
	if errors.Is(err, errUnsatisfiable) {
		header.Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		c.Status(http.StatusRequestedRangeNotSatisfiable)
		return
	}

	status := http.StatusOK
	length := size
	if rng != nil {
		if _, err := f.Seek(rng.start, io.SeekStart); err != nil {
			log.Error().Err(err).Str("path", path).Msg("Failed to seek media file")
			errorJSON(c, http.StatusInternalServerError, "failed to read media file")
			return
		}
		status = http.StatusPartialContent
		length = rng.length()
		header.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", rng.start, rng.end, size))
	}

	header.Set("Content-Type", mediaType(path))
	header.Set("Content-Length", strconv.FormatInt(length, 10))
	c.Status(status)
	c.Writer.WriteHeaderNow()

	if c.Request.Method == http.MethodHead {
		return
	}

	written, err := io.CopyN(c.Writer, f, length)
	metrics.MediaBytesServed.Add(float64(written))
	if err != nil {
		// Headers are gone; the short body makes net/http drop the connection.
		log.Warn().Err(err).
			Str("path", path).
			Int64("written", written).
			Int64("expected", length).
			Msg("Media stream interrupted")
		c.Abort()
	}
}
