package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"cashtrackr/internal/auth"
	"cashtrackr/internal/email"
	apperrors "cashtrackr/internal/errors"
	"cashtrackr/internal/logger"
	"cashtrackr/internal/models"
)

// authService implements the account lifecycle: registration, confirmation,
// login and password recovery.
type authService struct {
	db        *gorm.DB
	users     UserServicer
	sessions  *auth.SessionManager
	outbox    EmailOutbox
	templates *email.Templates
}

// NewAuthService creates a new AuthServicer.
func NewAuthService(
	db *gorm.DB,
	users UserServicer,
	sessions *auth.SessionManager,
	outbox EmailOutbox,
	templates *email.Templates,
) AuthServicer {
	return &authService{
		db:        db,
		users:     users,
		sessions:  sessions,
		outbox:    outbox,
		templates: templates,
	}
}

// CreateAccount registers an unconfirmed account and queues its
// confirmation email in the same transaction. A failed delivery does not
// fail the registration; the outbox retries it.
func (s *authService) CreateAccount(ctx context.Context, name, emailAddr, password string) (*models.User, error) {
	exists, err := s.users.EmailExists(ctx, emailAddr)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCreateAccount, err)
	}
	if exists {
		return nil, apperrors.ErrDuplicateEmail
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCreateAccount, err)
	}
	token, err := auth.GenerateToken()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCreateAccount, err)
	}
	msg, err := s.templates.ConfirmationEmail(name, emailAddr, token)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCreateAccount, err)
	}

	user := &models.User{
		Name:     name,
		Email:    emailAddr,
		Password: hash,
		Token:    &token,
	}

	var outboxID string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.users.CreateUser(tx, user); err != nil {
			return err
		}
		id, err := s.outbox.Enqueue(tx, msg)
		outboxID = id
		return err
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperrors.Wrap(apperrors.ErrCreateAccount, err)
	}

	s.dispatch(ctx, outboxID, user.ID)
	return user, nil
}

// ConfirmAccount consumes a confirmation token.
func (s *authService) ConfirmAccount(ctx context.Context, token string) (*models.User, error) {
	return s.users.ConfirmByToken(ctx, token)
}

// Login checks credentials in order (existence, confirmation, password) and
// returns a signed session token.
func (s *authService) Login(ctx context.Context, emailAddr, password string) (string, error) {
	user, err := s.users.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		return "", err
	}
	if !user.Confirmed {
		return "", apperrors.ErrAccountNotConfirmed
	}

	ok, err := auth.CheckPassword(password, user.Password)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !ok {
		return "", apperrors.ErrInvalidCredentials
	}

	session, err := s.sessions.Generate(user.ID)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return session, nil
}

// ForgotPassword issues a new token for the account and queues the reset
// email in the same transaction.
func (s *authService) ForgotPassword(ctx context.Context, emailAddr string) (*models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		return nil, err
	}

	token, err := auth.GenerateToken()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	msg, err := s.templates.PasswordResetEmail(user.Name, user.Email, token)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var outboxID string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.users.SetToken(tx, user.ID, token); err != nil {
			return err
		}
		id, err := s.outbox.Enqueue(tx, msg)
		outboxID = id
		return err
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user.Token = &token
	s.dispatch(ctx, outboxID, user.ID)
	return user, nil
}

// ValidateToken reports whether token is pending on some account.
func (s *authService) ValidateToken(ctx context.Context, token string) error {
	_, err := s.users.GetUserByToken(ctx, token)
	return err
}

// ResetPassword hashes the new password and swaps it in while consuming
// the token.
func (s *authService) ResetPassword(ctx context.Context, token, password string) (*models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.users.ResetPasswordByToken(ctx, token, hash)
}

// UpdatePassword changes the password after verifying the current one.
func (s *authService) UpdatePassword(ctx context.Context, userID uint, currentPassword, password string) error {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := auth.CheckPassword(currentPassword, user.Password)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !ok {
		return apperrors.ErrCurrentPasswordInvalid
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.users.UpdatePasswordHash(ctx, user.ID, hash)
}

// CheckPassword verifies password against the account's stored hash.
func (s *authService) CheckPassword(ctx context.Context, userID uint, password string) error {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := auth.CheckPassword(password, user.Password)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !ok {
		return apperrors.ErrPasswordMismatch
	}
	return nil
}

// dispatch attempts immediate delivery of a queued email. Failures stay in
// the outbox for the periodic flush.
func (s *authService) dispatch(ctx context.Context, outboxID string, userID uint) {
	if err := s.outbox.Dispatch(ctx, outboxID); err != nil {
		logger.Get().Warnw("email delivery deferred to outbox",
			"outbox_id", outboxID,
			"user_id", userID,
			"error", err,
		)
	}
}
