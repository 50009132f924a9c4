package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/redisplay/simple-gallery/internal/tenant"
)

const galleryContextKey = "gallery"

// Gallery resolves the :gallery path key to its tenant instance. Key
// validation happens here so nothing below ever sees an unvetted key.
func Gallery(registry *tenant.Registry, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Param("gallery")

		g, err := registry.Get(c.Request.Context(), key)
		if err != nil {
			if errors.Is(err, tenant.ErrInvalidKey) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown_gallery"})
				return
			}
			log.Error().Err(err).Str("gallery", key).Msg("open gallery failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
			return
		}

		c.Set(galleryContextKey, g)
		c.Next()
	}
}

// GalleryFrom returns the tenant resolved by Gallery; ok is false when the
// middleware did not run.
func GalleryFrom(c *gin.Context) (*tenant.Gallery, bool) {
	val, exists := c.Get(galleryContextKey)
	if !exists {
		return nil, false
	}
	g, ok := val.(*tenant.Gallery)
	return g, ok
}
