package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"cashtrackr/internal/logger"
)

const requestIDKey = "requestID"

// RequestLogging tags each request with an X-Request-ID and logs it once
// it completes.
func RequestLogging() gin.HandlerFunc {
	return requestLogging(logger.Get())
}

func requestLogging(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := uuid.New().String()
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		fields := []interface{}{
			"request_id", requestID,
			"method", c.Request.Method,
			"route", route,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"bytes", c.Writer.Size(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if uid, ok := c.Get(UserIDKey); ok {
			fields = append(fields, "user_id", uid)
		}
		log.Infow("request", fields...)
	}
}
