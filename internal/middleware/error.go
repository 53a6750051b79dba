package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "cashtrackr/internal/errors"
	"cashtrackr/internal/logger"
	"cashtrackr/internal/validator"
)

// ErrorHandler returns a Gin middleware that converts errors set on the Gin
// context into consistent JSON error responses. AppErrors are returned with
// their code and message; unexpected errors are logged and return a generic
// internal error to avoid leaking details.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		// Process the last error (most relevant in a middleware chain)
		writeError(c, c.Errors.Last().Err)
	}
}

// abortWithError writes err as the response and stops the handler chain.
func abortWithError(c *gin.Context, err error) {
	writeError(c, err)
	c.Abort()
}

// abortWithFieldErrors stops the chain with a 400 listing invalid fields.
func abortWithFieldErrors(c *gin.Context, fields ...validator.FieldError) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"errors": fields})
}

func writeError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"message", appErr.Message,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, gin.H{"error": appErr.Message, "code": appErr.Code})
		return
	}

	// Unexpected error: log full details, return generic message
	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, gin.H{
		"error": apperrors.ErrInternalServer.Message,
		"code":  apperrors.ErrInternalServer.Code,
	})
}
