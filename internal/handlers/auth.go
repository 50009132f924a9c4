package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/redisplay/simple-gallery/internal/middleware"
	"github.com/redisplay/simple-gallery/internal/security"
)

type loginRequest struct {
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) Login(c *gin.Context) {
	g, ok := middleware.GalleryFrom(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, exists, err := g.Settings.PasswordHash(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if !exists {
		c.JSON(http.StatusForbidden, gin.H{"error": "gallery_not_provisioned"})
		return
	}

	valid, err := security.VerifyPassword(req.Password, hash)
	if err != nil || !valid {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
		return
	}

	token, err := security.GenerateAdminToken(h.cfg.Security.JWTSecret, g.Key, h.cfg.Security.JWTTTL)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

type changePasswordRequest struct {
	Password string `json:"password" binding:"required,min=8"`
}

func (h HandlerSet) ChangePassword(c *gin.Context) {
	g, ok := middleware.GalleryFrom(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if err := g.Settings.SetPasswordHash(c.Request.Context(), hash); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.Status(http.StatusNoContent)
}
