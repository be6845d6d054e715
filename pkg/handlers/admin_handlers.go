package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"vlog-gallery/pkg/services"
)

// GenerateThumbnailsHandler handles API requests to generate all missing thumbnails
func (h *Handlers) GenerateThumbnailsHandler(c *gin.Context) {
	var req struct {
		Force bool `json:"force"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		errorJSON(c, http.StatusBadRequest, "invalid request body")
		return
	}

	log.Info().Bool("force", req.Force).Msg("Bulk generating thumbnails")

	result, err := h.svc.BulkGenerateThumbnails(c.Request.Context(), req.Force, nil)
	if err != nil {
		log.Error().Err(err).Msg("Error in bulk generate")
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Bulk thumbnail generation completed",
		"result":  result,
	})
}

// ClearThumbnailHandler handles API requests to clear a single thumbnail
func (h *Handlers) ClearThumbnailHandler(c *gin.Context) {
	var req struct {
		Path string `json:"path" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid request body")
		return
	}

	log.Info().Str("path", req.Path).Msg("Clearing thumbnail")

	if err := h.svc.ClearThumbnail(req.Path); err != nil {
		if errors.Is(err, services.ErrNotFound) || errors.Is(err, services.ErrOutsideRoot) {
			errorJSON(c, http.StatusNotFound, "thumbnail not found")
			return
		}
		log.Error().Err(err).Msg("Error clearing thumbnail")
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Thumbnail cleared successfully",
	})
}

// BulkClearThumbnailsHandler handles API requests to clear all thumbnails
func (h *Handlers) BulkClearThumbnailsHandler(c *gin.Context) {
	log.Info().Msg("Bulk clearing thumbnails")

	deleted, err := h.svc.BulkClearThumbnails(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Error in bulk clear")
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "All thumbnails cleared successfully",
		"deleted": deleted,
	})
}
