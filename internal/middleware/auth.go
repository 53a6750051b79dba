package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "cashtrackr/internal/errors"
	"cashtrackr/internal/models"
)

// Context keys set by the access and ownership middlewares.
const (
	UserKey    = "user"
	UserIDKey  = "userID"
	BudgetKey  = "budget"
	ExpenseKey = "expense"
)

// AuthUser is the public view of the authenticated account.
type AuthUser struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SessionVerifier resolves a bearer token to an account id.
type SessionVerifier interface {
	Verify(token string) (uint, error)
}

// UserLoader loads the account behind a verified session.
type UserLoader interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

// Authenticate validates the bearer token and attaches the account to the
// request. Verification and lookup failures answer 500 with distinct codes.
func Authenticate(sessions SessionVerifier, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}

		// Only the second segment matters; the scheme word is not checked.
		parts := strings.Split(header, " ")
		if len(parts) < 2 || parts[1] == "" {
			abortWithError(c, apperrors.ErrInvalidBearer)
			return
		}

		accountID, err := sessions.Verify(parts[1])
		if err != nil {
			abortWithError(c, apperrors.Wrap(apperrors.ErrSessionInvalid, err))
			return
		}

		user, err := users.GetUserByID(c.Request.Context(), accountID)
		if err != nil {
			abortWithError(c, apperrors.Wrap(apperrors.ErrUserLoadFailed, err))
			return
		}

		c.Set(UserKey, AuthUser{ID: user.ID, Name: user.Name, Email: user.Email})
		c.Set(UserIDKey, user.ID)
		c.Next()
	}
}

// CurrentUser returns the account set by Authenticate.
func CurrentUser(c *gin.Context) (AuthUser, bool) {
	v, ok := c.Get(UserKey)
	if !ok {
		return AuthUser{}, false
	}
	user, ok := v.(AuthUser)
	return user, ok
}
