package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	apperrors "cashtrackr/internal/errors"
	"cashtrackr/internal/logger"
	"cashtrackr/internal/middleware"
	"cashtrackr/internal/validator"
)

// ErrorResponse represents a domain error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ValidationErrorResponse lists every invalid input field.
type ValidationErrorResponse struct {
	Errors []validator.FieldError `json:"errors"`
}

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (uint, error) {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return 0, apperrors.ErrUnauthorized
	}
	return userID.(uint), nil
}

// bindJSON decodes the request body into obj and validates it. On failure
// it writes a 400 listing the invalid fields and returns false.
func bindJSON(c *gin.Context, obj interface{}) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		rejectBody(c, err)
		return false
	}

	if errors.Is(err, io.EOF) {
		// An empty body is checked like {}.
		if err = binding.Validator.ValidateStruct(obj); err == nil {
			return true
		}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		// Decoding skips the mistyped field; report the other fields too.
		if verr := binding.Validator.ValidateStruct(obj); verr != nil {
			err = errors.Join(err, verr)
		}
	}

	fields := validator.Translate(obj, err, validator.LocationBody)
	if len(fields) == 0 {
		rejectBody(c, err)
		return false
	}
	c.JSON(http.StatusBadRequest, ValidationErrorResponse{Errors: fields})
	return false
}

// rejectBody answers a body that could not be decoded. The client sent it,
// so it is only logged at debug level.
func rejectBody(c *gin.Context, err error) {
	logger.Get().Debugw("rejected request body",
		"error", err.Error(),
		"route", c.FullPath(),
	)
	c.JSON(http.StatusBadRequest, ValidationErrorResponse{
		Errors: []validator.FieldError{validator.NewBodyError(validator.MalformedBodyMessage)},
	})
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, ErrorResponse{Error: appErr.Message, Code: appErr.Code})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, ErrorResponse{
		Error: apperrors.ErrInternalServer.Message,
		Code:  apperrors.ErrInternalServer.Code,
	})
}
