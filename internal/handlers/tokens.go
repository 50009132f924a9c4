package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/redisplay/simple-gallery/internal/middleware"
	"github.com/redisplay/simple-gallery/internal/security"
)

type tokenResponse struct {
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h HandlerSet) ListTokens(c *gin.Context) {
	g, _ := middleware.GalleryFrom(c)

	tokens, err := g.Tokens.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	items := make([]tokenResponse, 0, len(tokens))
	for _, t := range tokens {
		items = append(items, tokenResponse{Token: t.Token, CreatedAt: t.CreatedAt})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h HandlerSet) CreateToken(c *gin.Context) {
	g, _ := middleware.GalleryFrom(c)

	token, err := security.NewViewerToken()
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	created, err := g.Tokens.Create(c.Request.Context(), token)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, tokenResponse{Token: created.Token, CreatedAt: created.CreatedAt})
}

func (h HandlerSet) DeleteToken(c *gin.Context) {
	g, _ := middleware.GalleryFrom(c)

	if err := g.Tokens.Delete(c.Request.Context(), c.Param("token")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
