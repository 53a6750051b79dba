// Package errors provides custom error types for the CashTrackr API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
// Messages are user-facing and localized (es).
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"error"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is matches two AppErrors by code, so a wrapped sentinel still satisfies
// errors.Is against the bare sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// Access middleware errors.
var (
	ErrUnauthorized   = &AppError{Code: "UNAUTHORIZED", Message: "No autorizado", StatusCode: http.StatusUnauthorized}
	ErrInvalidBearer  = &AppError{Code: "INVALID_BEARER", Message: "Token No Válido", StatusCode: http.StatusUnauthorized}
	ErrSessionInvalid = &AppError{Code: "SESSION_INVALID", Message: "Error al obtener el usuario", StatusCode: http.StatusInternalServerError}
	ErrUserLoadFailed = &AppError{Code: "USER_LOAD_FAILED", Message: "Error al obtener el usuario", StatusCode: http.StatusInternalServerError}
	ErrInvalidAPIKey  = &AppError{Code: "INVALID_API_KEY", Message: "Clave de API no válida", StatusCode: http.StatusUnauthorized}
)

// Auth flow errors.
var (
	ErrDuplicateEmail         = &AppError{Code: "DUPLICATE_EMAIL", Message: "El Usuario ya está registrado", StatusCode: http.StatusConflict}
	ErrUserNotFound           = &AppError{Code: "USER_NOT_FOUND", Message: "El Usuario no existe", StatusCode: http.StatusNotFound}
	ErrAccountNotConfirmed    = &AppError{Code: "ACCOUNT_NOT_CONFIRMED", Message: "La cuenta no ha sido confirmada", StatusCode: http.StatusForbidden}
	ErrInvalidCredentials     = &AppError{Code: "INVALID_CREDENTIALS", Message: "Contraseña incorrecta", StatusCode: http.StatusUnauthorized}
	ErrInvalidToken           = &AppError{Code: "INVALID_TOKEN", Message: "Token no válido", StatusCode: http.StatusUnauthorized}
	ErrTokenNotFound          = &AppError{Code: "TOKEN_NOT_FOUND", Message: "Token no válido", StatusCode: http.StatusNotFound}
	ErrCurrentPasswordInvalid = &AppError{Code: "CURRENT_PASSWORD_INVALID", Message: "El password actual es incorrecto", StatusCode: http.StatusUnauthorized}
	ErrPasswordMismatch       = &AppError{Code: "PASSWORD_MISMATCH", Message: "El password es incorrecto", StatusCode: http.StatusUnauthorized}
	ErrCreateAccount          = &AppError{Code: "CREATE_ACCOUNT_FAILED", Message: "Error al crear la cuenta", StatusCode: http.StatusInternalServerError}
)

// Ownership errors. A wrong owner is reported as 401 by convention.
var (
	ErrForbiddenAction = &AppError{Code: "FORBIDDEN_ACTION", Message: "Acción no válida", StatusCode: http.StatusUnauthorized}
)

// General errors.
var (
	ErrInvalidInput    = &AppError{Code: "INVALID_INPUT", Message: "Datos no válidos", StatusCode: http.StatusBadRequest}
	ErrTooManyRequests = &AppError{Code: "TOO_MANY_REQUESTS", Message: "Demasiadas solicitudes, por favor intenta nuevamente más tarde", StatusCode: http.StatusTooManyRequests}
	ErrInternalServer  = &AppError{Code: "INTERNAL_ERROR", Message: "Hubo un error", StatusCode: http.StatusInternalServerError}
)

// Budget errors.
var (
	ErrBudgetNotFound = &AppError{Code: "BUDGET_NOT_FOUND", Message: "Presupuesto no encontrado", StatusCode: http.StatusNotFound}
	ErrBudgetLoad     = &AppError{Code: "BUDGET_LOAD_FAILED", Message: "Error al obtener el presupuesto", StatusCode: http.StatusInternalServerError}
	ErrBudgetList     = &AppError{Code: "BUDGET_LIST_FAILED", Message: "Error al obtener los presupuestos", StatusCode: http.StatusInternalServerError}
	ErrBudgetCreate   = &AppError{Code: "BUDGET_CREATE_FAILED", Message: "Error al crear el presupuesto", StatusCode: http.StatusInternalServerError}
)

// Expense errors.
var (
	ErrExpenseNotFound = &AppError{Code: "EXPENSE_NOT_FOUND", Message: "Gasto no encontrado", StatusCode: http.StatusNotFound}
	ErrExpenseLoad     = &AppError{Code: "EXPENSE_LOAD_FAILED", Message: "Error al obtener el gasto", StatusCode: http.StatusInternalServerError}
	ErrExpenseCreate   = &AppError{Code: "EXPENSE_CREATE_FAILED", Message: "Error al crear el gasto", StatusCode: http.StatusInternalServerError}
)
