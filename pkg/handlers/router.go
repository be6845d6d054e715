package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"

	"vlog-gallery/pkg/metrics"
	"vlog-gallery/pkg/services"
)

// Handlers serves the gallery API, media files and frontend assets
type Handlers struct {
	svc *services.Service
}

// New creates handlers backed by svc
func New(svc *services.Service) *Handlers {
	return &Handlers{svc: svc}
}

// NewRouter wires every route of the gallery server
func NewRouter(svc *services.Service) *gin.Engine {
	h := New(svc)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(RequestLogger())
	router.Use(RequestMetrics())
	router.Use(CORS())

	router.GET("/health", HealthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.GET("/creators", h.CreatorsHandler)
	api.GET("/videos", h.VideosHandler)
	api.GET("/videos/:creator", h.VideosHandler)

	if svc.Config().EnableAdmin {
		admin := api.Group("/admin/thumbnails")
		admin.POST("/generate", h.GenerateThumbnailsHandler)
		admin.POST("/clear", h.ClearThumbnailHandler)
		admin.POST("/clear-all", h.BulkClearThumbnailsHandler)
	}

	router.GET(services.MediaPrefix+"/*filepath", h.MediaHandler)
	router.HEAD(services.MediaPrefix+"/*filepath", h.MediaHandler)

	router.GET("/gallery", h.GalleryPageHandler)
	router.GET("/gallery/:creator", h.GalleryPageHandler)

	router.NoRoute(h.StaticHandler)

	return router
}

const requestIDHeader = "X-Request-ID"

// RequestID tags every request with an id, reusing one supplied by a proxy
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = xid.New().String()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs every request through zerolog
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		event := log.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = log.Error()
		}
		event.
			Str("request_id", c.GetString(requestIDHeader)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Int("bytes", c.Writer.Size()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	}
}

// RequestMetrics records request counts and latencies per route
func RequestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// CORS allows any origin to read the API and media
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		if c.Request.Method == http.MethodOptions {
			c.Header("Access-Control-Allow-Methods", "GET, HEAD, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Range, Content-Type")
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// HealthHandler reports that the server is up
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
