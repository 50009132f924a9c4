package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/redisplay/simple-gallery/internal/middleware"
)

// Resolution bounds enforced at this layer; the stores accept what they are
// given.
const (
	minResolution = 320
	maxResolution = 8192
)

func (h HandlerSet) GetMaxResolution(c *gin.Context) {
	g, _ := middleware.GalleryFrom(c)

	pixels, err := g.Settings.MaxResolution(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"maxResolution": pixels})
}

type setMaxResolutionRequest struct {
	MaxResolution int `json:"maxResolution" binding:"required"`
}

func (h HandlerSet) SetMaxResolution(c *gin.Context) {
	g, _ := middleware.GalleryFrom(c)

	var req setMaxResolutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.MaxResolution < minResolution || req.MaxResolution > maxResolution {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_value"})
		return
	}

	if err := g.Settings.SetMaxResolution(c.Request.Context(), req.MaxResolution); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"maxResolution": req.MaxResolution})
}
