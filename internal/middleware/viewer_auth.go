package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/redisplay/simple-gallery/internal/repository"
)

const viewerTokenContextKey = "viewer_token"

// ViewerAuth requires a known access token, from the Authorization header or
// a token query parameter. Unknown and revoked tokens get the same answer;
// the response must not reveal whether a token ever existed. Runs after
// Gallery.
func ViewerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		g, ok := GalleryFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
			return
		}

		token := ""
		if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		} else {
			token = c.Query("token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		if _, err := g.Tokens.Get(c.Request.Context(), token); err != nil {
			if errors.Is(err, repository.ErrTokenNotFound) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
			return
		}

		c.Set(viewerTokenContextKey, token)
		c.Next()
	}
}

// ViewerTokenFrom returns the token vetted by ViewerAuth.
func ViewerTokenFrom(c *gin.Context) string {
	return c.GetString(viewerTokenContextKey)
}
