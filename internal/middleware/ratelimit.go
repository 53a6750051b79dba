package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "cashtrackr/internal/errors"
	"cashtrackr/internal/logger"
	"cashtrackr/internal/metrics"
	"cashtrackr/internal/ratelimit"
)

// RateLimit throttles requests per client IP. When the limiter backend is
// unavailable the request is let through and the failure logged.
func RateLimit(limiter ratelimit.Limiter, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.Get().Warnw("rate limiter unavailable, allowing request",
				"error", err,
				"path", c.Request.URL.Path,
			)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

		if !res.Allowed {
			retry := int(math.Ceil(res.RetryAfter.Seconds()))
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			m.ObserveRateLimited(c.FullPath())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": apperrors.ErrTooManyRequests.Message})
			return
		}
		c.Next()
	}
}
