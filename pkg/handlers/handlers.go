package handlers

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/eknkc/pug"
	"github.com/eknkc/pug/compiler"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"vlog-gallery/pkg/models"
	"vlog-gallery/pkg/services"
)

const (
	indexFile       = "index.html"
	galleryTemplate = "gallery.pug"
	galleryPath     = "/gallery"
	activeClass     = "active"
	apiPrefix       = "/api/"
)

func errorJSON(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// CreatorsHandler lists every creator folder as JSON
func (h *Handlers) CreatorsHandler(c *gin.Context) {
	creators, err := h.svc.ListCreators()
	if err != nil {
		log.Error().Err(err).Msg("Failed to read creators")
		errorJSON(c, http.StatusInternalServerError, "failed to read creators")
		return
	}
	c.JSON(http.StatusOK, creators)
}

// VideosHandler lists videos for all creators, or for the :creator parameter
func (h *Handlers) VideosHandler(c *gin.Context) {
	creator := c.Param("creator")

	videos, err := h.svc.ListVideos(c.Request.Context(), creator)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Debug().Str("creator", creator).Msg("Client went away while listing videos")
			c.Abort()
			return
		}
		log.Error().Err(err).Str("creator", creator).Msg("Failed to read videos")
		errorJSON(c, http.StatusInternalServerError, "failed to read videos: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, videos)
}

// GalleryPageHandler renders the server-side gallery page for browsers without JavaScript
func (h *Handlers) GalleryPageHandler(c *gin.Context) {
	creator := c.Param("creator")
	log.Debug().Str("creator", creator).Msg("Generating gallery page")

	creators, err := h.svc.ListCreators()
	if err != nil {
		log.Error().Err(err).Msg("Failed to read creators")
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}

	videos, err := h.svc.ListVideos(c.Request.Context(), creator)
	if err != nil {
		log.Error().Err(err).Str("creator", creator).Msg("Failed to read videos")
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}

	tmpl, err := compileView(h.svc.Config().ViewsDir, galleryTemplate)
	if err != nil {
		log.Error().Err(err).Msg("Template error")
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, galleryIndex(creators, videos, creator))
	if err != nil {
		log.Error().Err(err).Msg("Template execution error")
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func compileView(viewsDir, name string) (*template.Template, error) {
	dir, err := filepath.Abs(viewsDir)
	if err != nil {
		return nil, err
	}
	return pug.CompileFile(name, pug.Options{Dir: compiler.FsDir(dir)})
}

func galleryIndex(creators []models.Creator, videos []models.Video, active string) models.Index {
	index := models.Index{
		Nav:    make([]models.NavLink, 0, len(creators)),
		Videos: videos,
		Active: active,
	}
	if active == "" {
		index.AllClass = activeClass
	}
	for _, creator := range creators {
		link := models.NavLink{
			Name: creator.Name,
			Href: galleryPath + "/" + url.PathEscape(creator.ID),
		}
		if creator.ID == active {
			link.Class = activeClass
		}
		index.Nav = append(index.Nav, link)
	}
	return index
}

// StaticHandler serves frontend assets from the public directory and falls
// back to index.html for client-side routes. Unknown API paths get a JSON 404.
func (h *Handlers) StaticHandler(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, apiPrefix) {
		errorJSON(c, http.StatusNotFound, "not found")
		return
	}
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.String(http.StatusNotFound, "Not found")
		return
	}

	publicDir := h.svc.Config().PublicDir
	if c.Request.URL.Path != "/" {
		path, err := services.ResolveUnder(publicDir, c.Request.URL.Path)
		if err == nil && serveFile(c, path) {
			return
		}
	}

	indexPath := filepath.Join(publicDir, indexFile)
	if !serveFile(c, indexPath) {
		log.Error().Str("path", indexPath).Msg("index.html does not exist")
		c.String(http.StatusNotFound, "index.html not found")
	}
}

// serveFile writes a regular file with http.ServeContent and reports whether
// it did. The request path is never consulted, so paths the router left
// uncleaned still reach the fallback.
func serveFile(c *gin.Context, path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
	return true
}
