package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "cashtrackr/internal/errors"
	"cashtrackr/internal/models"
)

// userService handles the account directory.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

// CreateUser inserts user using tx. Emails are stored exactly as given.
func (s *userService) CreateUser(tx *gorm.DB, user *models.User) error {
	if err := tx.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrDuplicateEmail
		}
		return apperrors.Wrap(apperrors.ErrCreateAccount, err)
	}
	return nil
}

// EmailExists reports whether an account uses email.
func (s *userService) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

// GetUserByEmail retrieves a user by email
func (s *userService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetUserByToken retrieves the user holding a pending token.
func (s *userService) GetUserByToken(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("token = ?", token).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTokenNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// SetToken stores a new pending token using tx, replacing any previous one.
func (s *userService) SetToken(tx *gorm.DB, userID uint, token string) error {
	res := tx.Model(&models.User{}).Where("id = ?", userID).Update("token", token)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// ConfirmByToken confirms the unconfirmed account holding token and clears
// the token in the same statement. Of two concurrent calls with the same
// token exactly one succeeds.
func (s *userService) ConfirmByToken(ctx context.Context, token string) (*models.User, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.Where("token = ? AND confirmed = ?", token, false).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	res := db.Model(&models.User{}).
		Where("id = ? AND token = ? AND confirmed = ?", user.ID, token, false).
		Updates(map[string]interface{}{"confirmed": true, "token": nil})
	if res.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrInvalidToken
	}

	user.Confirmed = true
	user.Token = nil
	return &user, nil
}

// ResetPasswordByToken replaces the password of the account holding token
// and clears the token in the same statement.
func (s *userService) ResetPasswordByToken(ctx context.Context, token, passwordHash string) (*models.User, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.Where("token = ?", token).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTokenNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	res := db.Model(&models.User{}).
		Where("id = ? AND token = ?", user.ID, token).
		Updates(map[string]interface{}{"password": passwordHash, "token": nil})
	if res.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrTokenNotFound
	}

	user.Password = passwordHash
	user.Token = nil
	return &user, nil
}

// UpdatePasswordHash stores a new password hash.
func (s *userService) UpdatePasswordHash(ctx context.Context, userID uint, passwordHash string) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("password", passwordHash)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}
