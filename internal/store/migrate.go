package store

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Temporary credentials for users created by migration or roster
// bootstrap. Holders are expected to change them on first login.
const (
	migratedStaffPassword = "staff123"
	defaultUserPassword   = "password123"
)

func (s *Store) seedRoles(ctx context.Context) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Role{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	roles := []Role{
		{ID: RoleAdmin, Name: "Admin"},
		{ID: RoleUser, Name: "User"},
	}
	return s.db.WithContext(ctx).Create(&roles).Error
}

// seedDefaultItems inserts two starter items into an empty catalog so
// a fresh installation has something to order.
func (s *Store) seedDefaultItems(ctx context.Context) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Item{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	one, two := 1, 2
	items := []Item{
		{Name: "Boxed meal A", Price: 500, IsActive: true, DisplayOrder: &one},
		{Name: "Boxed meal B", Price: 600, IsActive: true, DisplayOrder: &two},
	}
	return s.db.WithContext(ctx).Create(&items).Error
}

// migrateLegacyStaff copies every active legacy staff row into the
// users table. The name-based existence check makes the migration
// idempotent, so re-running it after partial completion never
// duplicates users.
func (s *Store) migrateLegacyStaff(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var staff []Staff
		if err := tx.Where("is_active = ?", true).Find(&staff).Error; err != nil {
			return err
		}

		for _, member := range staff {
			var count int64
			if err := tx.Model(&User{}).Where("name = ?", member.Name).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				s.logger.Debug("legacy staff already migrated", zap.String("name", member.Name))
				continue
			}

			hash, err := bcrypt.GenerateFromPassword([]byte(migratedStaffPassword), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash temporary password: %w", err)
			}
			user := User{
				Name:         member.Name,
				Email:        syntheticEmail(member.Name),
				PasswordHash: string(hash),
				RoleID:       RoleUser,
				IsActive:     member.IsActive,
				DisplayOrder: member.DisplayOrder,
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			s.logger.Info("migrated legacy staff", zap.String("name", member.Name), zap.Int64("user_id", user.ID))
		}
		return nil
	})
}

// syntheticEmail derives a deterministic local address from a name by
// stripping whitespace. Used for migrated staff and roster bootstrap
// entries that have no real mailbox.
func syntheticEmail(name string) string {
	return strings.Join(strings.Fields(name), "") + "@ooms.local"
}
