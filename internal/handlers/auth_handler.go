package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cashtrackr/internal/auth"
	apperrors "cashtrackr/internal/errors"
	"cashtrackr/internal/middleware"
	"cashtrackr/internal/services"
	"cashtrackr/internal/validator"
)

const tokenMessage = "Token no válido"

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService  services.AuthServicer
	auditService services.AuditServicer
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService services.AuthServicer, auditService services.AuditServicer) *AuthHandler {
	return &AuthHandler{authService: authService, auditService: auditService}
}

// CreateAccountRequest represents the registration request payload
type CreateAccountRequest struct {
	Name     string `json:"name" binding:"required,max=60" msg:"El nombre es obligatorio" msg_max:"El nombre no puede superar los 60 caracteres"`
	Email    string `json:"email" binding:"required,email,max=60" msg:"El email no es válido" msg_max:"El email no puede superar los 60 caracteres"`
	Password string `json:"password" binding:"required,min=8,max=72" msg:"La contraseña debe tener al menos 8 caracteres" msg_max:"La contraseña no puede superar los 72 caracteres"`
}

// TokenRequest carries a 6-digit confirmation or reset code
type TokenRequest struct {
	Token string `json:"token" binding:"required,token6" msg:"Token no válido"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" msg:"El email no es válido"`
	Password string `json:"password" binding:"required" msg:"El password es obligatorio"`
}

// ForgotPasswordRequest starts a password reset
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email" msg:"El email no es válido"`
}

// ResetPasswordRequest carries the new password; the token is in the path
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=8,max=72" msg:"La contraseña debe tener al menos 8 caracteres" msg_max:"La contraseña no puede superar los 72 caracteres"`
}

// UpdatePasswordRequest changes the password of the signed-in account
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required" msg:"El password actual no puede ir vacío"`
	Password        string `json:"password" binding:"required,min=8,max=72" msg:"La contraseña debe tener al menos 8 caracteres" msg_max:"La contraseña no puede superar los 72 caracteres"`
}

// CheckPasswordRequest re-checks the password of the signed-in account
type CheckPasswordRequest struct {
	Password string `json:"password" binding:"required" msg:"El password no puede ir vacío"`
}

// CreateAccount handles user registration
// @Summary     Create an account
// @Description Register an unconfirmed account and email a 6-digit confirmation code
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body CreateAccountRequest true "Account data"
// @Success     201 {string} string "Cuenta creada exitosamente"
// @Failure     400 {object} ValidationErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Email already registered"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/create-account [post]
func (h *AuthHandler) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.CreateAccount(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(user.ID, services.ActionCreateAccount, services.ResourceUser, user.ID, c.ClientIP(), map[string]interface{}{
		"email": user.Email,
	})

	c.JSON(http.StatusCreated, "Cuenta creada exitosamente")
}

// ConfirmAccount consumes a confirmation code
// @Summary     Confirm an account
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body TokenRequest true "Confirmation code"
// @Success     200 {string} string "Cuenta confirmada exitosamente"
// @Failure     400 {object} ValidationErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid token"
// @Failure     429 {object} ErrorResponse "Too many requests"
// @Router      /auth/confirm-account [post]
func (h *AuthHandler) ConfirmAccount(c *gin.Context) {
	var req TokenRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.ConfirmAccount(c.Request.Context(), req.Token)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(user.ID, services.ActionConfirmAccount, services.ResourceUser, user.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, "Cuenta confirmada exitosamente")
}

// Login handles user login
// @Summary     Login user
// @Description Authenticate a confirmed account and get a session token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "User login credentials"
// @Success     200 {string} string "Session token"
// @Failure     400 {object} ValidationErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Wrong password"
// @Failure     403 {object} ErrorResponse "Account not confirmed"
// @Failure     404 {object} ErrorResponse "Unknown email"
// @Failure     429 {object} ErrorResponse "Too many requests"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, token)
}

// ForgotPassword emails a reset code
// @Summary     Request a password reset
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body ForgotPasswordRequest true "Account email"
// @Success     200 {string} string "Revisa tu email para instrucciones"
// @Failure     400 {object} ValidationErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Unknown email"
// @Failure     429 {object} ErrorResponse "Too many requests"
// @Router      /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(user.ID, services.ActionForgotPassword, services.ResourceUser, user.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, "Revisa tu email para instrucciones")
}

// ValidateToken checks a reset code without consuming it
// @Summary     Validate a reset code
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body TokenRequest true "Reset code"
// @Success     200 {string} string "Token válido, asigna un nuevo password"
// @Failure     400 {object} ValidationErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Unknown token"
// @Failure     429 {object} ErrorResponse "Too many requests"
// @Router      /auth/validate-token [post]
func (h *AuthHandler) ValidateToken(c *gin.Context) {
	var req TokenRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.ValidateToken(c.Request.Context(), req.Token); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, "Token válido, asigna un nuevo password")
}

// ResetPassword sets a new password using a reset code
// @Summary     Reset the password
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       token   path string               true "Reset code"
// @Param       request body ResetPasswordRequest true "New password"
// @Success     200 {string} string "El password se modificó correctamente"
// @Failure     400 {object} ValidationErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Unknown token"
// @Failure     429 {object} ErrorResponse "Too many requests"
// @Router      /auth/reset-password/{token} [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	token := c.Param("token")
	if len(token) != auth.TokenLength || !isDigits(token) {
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{Errors: []validator.FieldError{
			validator.NewFieldError("token", validator.LocationParams, tokenMessage, token),
		}})
		return
	}

	var req ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.ResetPassword(c.Request.Context(), token, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(user.ID, services.ActionResetPassword, services.ResourceUser, user.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, "El password se modificó correctamente")
}

// GetUser returns the signed-in account
// @Summary     Get the current user
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} middleware.AuthUser "Current user"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Session or user lookup failed"
// @Router      /auth/user [get]
func (h *AuthHandler) GetUser(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondWithError(c, apperrors.ErrUnauthorized)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdatePassword changes the password of the signed-in account
// @Summary     Change the password
// @Tags        auth
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdatePasswordRequest true "Current and new password"
// @Success     200 {string} string "El password se modificó correctamente"
// @Failure     400 {object} ValidationErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Wrong current password"
// @Router      /auth/update-password [post]
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdatePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.UpdatePassword(c.Request.Context(), userID, req.CurrentPassword, req.Password); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.ActionUpdatePassword, services.ResourceUser, userID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, "El password se modificó correctamente")
}

// CheckPassword confirms the password of the signed-in account
// @Summary     Check the password
// @Tags        auth
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CheckPasswordRequest true "Password"
// @Success     200 {string} string "Password Correcto"
// @Failure     400 {object} ValidationErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Wrong password"
// @Router      /auth/check-password [post]
func (h *AuthHandler) CheckPassword(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CheckPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.CheckPassword(c.Request.Context(), userID, req.Password); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, "Password Correcto")
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
