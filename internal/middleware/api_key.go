package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "cashtrackr/internal/errors"
)

// APIKey guards operator endpoints such as /metrics with the X-API-Key
// header. An empty key leaves the endpoint open.
func APIKey(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}
		key := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			abortWithError(c, apperrors.ErrInvalidAPIKey)
			return
		}
		c.Next()
	}
}
