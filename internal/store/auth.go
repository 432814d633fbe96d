package store

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/oomslab/ooms-core/internal/common/errorx"
)

// Login authenticates by email and password. The same AUTH_FAILED
// result covers unknown email, deactivated account, and a wrong
// password, so callers cannot probe the roster.
func (s *Store) Login(ctx context.Context, email, password string) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).Where("email = ? AND is_active = ?", email, true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.ErrAuthFailed
		}
		return nil, errorx.Storage(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, errorx.ErrAuthFailed
	}

	if err := s.fillRoleName(ctx, &user); err != nil {
		return nil, err
	}

	if err := s.RecordAction(ctx, &user.ID, ActionUserLogin, "users", &user.ID, nil); err != nil {
		s.logger.Warn("record login audit", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	user.PasswordHash = ""
	return &user, nil
}

// GetUser returns one user by id with the role name filled in.
func (s *Store) GetUser(ctx context.Context, id int64) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.ErrUserNotFound
		}
		return nil, errorx.Storage(err)
	}
	if err := s.fillRoleName(ctx, &user); err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return &user, nil
}

func (s *Store) fillRoleName(ctx context.Context, user *User) error {
	var role Role
	err := s.db.WithContext(ctx).First(&role, user.RoleID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return errorx.Storage(err)
	}
	user.RoleName = role.Name
	return nil
}
