package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/redisplay/simple-gallery/internal/middleware"
	"github.com/redisplay/simple-gallery/internal/service"
)

// DeliverNext advances the caller's token and returns the selected picture
// with its addressable file reference.
func (h HandlerSet) DeliverNext(c *gin.Context) {
	g, _ := middleware.GalleryFrom(c)
	token := middleware.ViewerTokenFrom(c)

	mode, err := service.ParseMode(c.Query("mode"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_mode"})
		return
	}

	p, err := g.Delivery.Next(c.Request.Context(), token, mode)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	resp, err := h.pictureResponse(c, g, p)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
