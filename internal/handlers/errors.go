package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/redisplay/simple-gallery/internal/repository"
	"github.com/redisplay/simple-gallery/internal/service"
	"github.com/redisplay/simple-gallery/internal/storage"
)

// respondError maps the stores' typed outcomes to transport codes. The empty
// collection gets its own code: clients retry a 404 empty_collection later,
// a plain not_found they don't.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	switch {
	case errors.Is(err, repository.ErrTokenNotFound):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, service.ErrEmptyCollection):
		c.JSON(http.StatusNotFound, gin.H{"error": "empty_collection"})
	case errors.Is(err, repository.ErrPictureNotFound), errors.Is(err, storage.ErrBlobNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	case errors.Is(err, repository.ErrDuplicateFilename):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict"})
	case errors.Is(err, service.ErrUnsupportedMedia), errors.Is(err, service.ErrUnknownMode):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid"})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
	}
}
