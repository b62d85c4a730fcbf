package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "stocktracker/internal/errors"
)

// APIKeyAuth creates a Gin middleware that validates the X-API-Key header
// against apiKey. An empty apiKey disables the guarded routes entirely.
func APIKeyAuth(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.AbortWithStatusJSON(apperrors.ErrAdminDisabled.StatusCode, ErrorBody(apperrors.ErrAdminDisabled))
			return
		}
		key := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			c.AbortWithStatusJSON(apperrors.ErrInvalidAPIKey.StatusCode, ErrorBody(apperrors.ErrInvalidAPIKey))
			return
		}
		c.Next()
	}
}
