package store

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/oomslab/ooms-core/internal/common/errorx"
)

// ListUsers returns all active users ordered for display, with role
// names resolved and password hashes blanked.
func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("display_order, name").
		Find(&users).Error
	if err != nil {
		return nil, errorx.Storage(err)
	}
	if err := s.fillRoleNames(ctx, users); err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// ListStaff returns the active role-User users, the roster the weekly
// order grid is built from.
func (s *Store) ListStaff(ctx context.Context) ([]User, error) {
	var users []User
	err := s.db.WithContext(ctx).
		Where("role_id = ? AND is_active = ?", RoleUser, true).
		Order("display_order, name").
		Find(&users).Error
	if err != nil {
		return nil, errorx.Storage(err)
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

func (s *Store) fillRoleNames(ctx context.Context, users []User) error {
	var roles []Role
	if err := s.db.WithContext(ctx).Find(&roles).Error; err != nil {
		return errorx.Storage(err)
	}
	names := make(map[int64]string, len(roles))
	for _, r := range roles {
		names[r.ID] = r.Name
	}
	for i := range users {
		users[i].RoleName = names[users[i].RoleID]
	}
	return nil
}

// AddUser creates a user. An empty email gets a synthetic local
// address derived from the name; an empty password gets the default
// bootstrap password. The hash never leaves the store.
func (s *Store) AddUser(ctx context.Context, name, email, password string, roleID int64, displayOrder *int) (*User, error) {
	if name == "" {
		return nil, errorx.Validationf("user name must not be empty")
	}
	if roleID == 0 {
		roleID = RoleUser
	}
	if email == "" {
		email = syntheticEmail(name)
	}
	if password == "" {
		password = defaultUserPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errorx.Storage(err)
	}

	user := User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		RoleID:       roleID,
		IsActive:     true,
		DisplayOrder: displayOrder,
	}
	err = s.withTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return recordAction(tx, nil, ActionUserCreate, "users", &user.ID, map[string]any{
			"name": name, "email": email, "role_id": roleID,
		})
	})
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return &user, nil
}

// AddStaff creates a roster entry: a role-User user with synthetic
// credentials, the way migrated legacy staff are shaped.
func (s *Store) AddStaff(ctx context.Context, name string, displayOrder *int) (*User, error) {
	return s.AddUser(ctx, name, "", "", RoleUser, displayOrder)
}

// UpdateUser rewrites a user's profile fields and audits the change
// with the old and new values.
func (s *Store) UpdateUser(ctx context.Context, id int64, name, email string, roleID int64, isActive bool, displayOrder *int) error {
	return s.withTx(ctx, func(tx *gorm.DB) error {
		var old User
		if err := tx.First(&old, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errorx.ErrUserNotFound
			}
			return err
		}

		updates := map[string]any{
			"name":          name,
			"email":         email,
			"role_id":       roleID,
			"is_active":     isActive,
			"display_order": displayOrder,
		}
		if err := tx.Model(&User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		return recordAction(tx, nil, ActionUserUpdate, "users", &id, map[string]any{
			"old": map[string]any{"name": old.Name, "email": old.Email, "role_id": old.RoleID, "is_active": old.IsActive},
			"new": map[string]any{"name": name, "email": email, "role_id": roleID, "is_active": isActive},
		})
	})
}

// DeactivateUser soft-deletes a user. Reversible via UpdateUser; the
// row and its orders are retained.
func (s *Store) DeactivateUser(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *gorm.DB) error {
		// Existence check instead of the affected-row count: mysql
		// reports zero changed rows for an already-inactive user.
		var user User
		if err := tx.Select("id").First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errorx.ErrUserNotFound
			}
			return err
		}
		if err := tx.Model(&User{}).Where("id = ?", id).Update("is_active", false).Error; err != nil {
			return err
		}
		return recordAction(tx, nil, ActionUserDeactivate, "users", &id, nil)
	})
}

// PurgeUserOrders irreversibly deletes every order the user owns, then
// deactivates the user row. This is the destructive admin action; it
// never physically drops the user itself.
func (s *Store) PurgeUserOrders(ctx context.Context, id int64) error {
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		var user User
		if err := tx.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errorx.ErrUserNotFound
			}
			return err
		}

		var orderCount int64
		if err := tx.Model(&Order{}).Where("user_id = ?", id).Count(&orderCount).Error; err != nil {
			return err
		}

		if orderCount > 0 {
			if err := tx.Exec(
				`DELETE FROM order_detail_options WHERE order_detail_id IN (
					SELECT od.id FROM order_details od
					JOIN orders o ON od.order_id = o.id
					WHERE o.user_id = ?)`, id).Error; err != nil {
				return err
			}
			if err := tx.Exec(
				`DELETE FROM order_details WHERE order_id IN (
					SELECT id FROM orders WHERE user_id = ?)`, id).Error; err != nil {
				return err
			}
			if err := tx.Where("user_id = ?", id).Delete(&Order{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&User{}).Where("id = ?", id).Update("is_active", false).Error; err != nil {
			return err
		}
		return recordAction(tx, nil, ActionUserPurgeOrders, "users", &id, map[string]any{
			"name":        user.Name,
			"order_count": orderCount,
		})
	})
	if err != nil {
		return err
	}
	s.logger.Info("purged user orders", zap.Int64("user_id", id))
	return nil
}

// ListItems returns active items ordered for display, each with its
// options preloaded.
func (s *Store) ListItems(ctx context.Context) ([]Item, error) {
	var items []Item
	err := s.db.WithContext(ctx).
		Preload("Options").
		Where("is_active = ?", true).
		Order("display_order, name").
		Find(&items).Error
	if err != nil {
		return nil, errorx.Storage(err)
	}
	return items, nil
}

// AddItem creates an item.
func (s *Store) AddItem(ctx context.Context, name string, price int64, displayOrder *int) (*Item, error) {
	if name == "" {
		return nil, errorx.Validationf("item name must not be empty")
	}
	if price < 0 {
		return nil, errorx.Validationf("item price must not be negative, got %d", price)
	}

	item := Item{Name: name, Price: price, IsActive: true, DisplayOrder: displayOrder}
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		return recordAction(tx, nil, ActionItemCreate, "items", &item.ID, map[string]any{
			"name": name, "price": price,
		})
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItem rewrites an item's fields.
func (s *Store) UpdateItem(ctx context.Context, id int64, name string, price int64, isActive bool, displayOrder *int) error {
	if price < 0 {
		return errorx.Validationf("item price must not be negative, got %d", price)
	}
	return s.withTx(ctx, func(tx *gorm.DB) error {
		var item Item
		if err := tx.Select("id").First(&item, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errorx.New("ITEM_NOT_FOUND", errorx.KindNotFound, "item not found")
			}
			return err
		}
		err := tx.Model(&Item{}).Where("id = ?", id).Updates(map[string]any{
			"name":          name,
			"price":         price,
			"is_active":     isActive,
			"display_order": displayOrder,
		}).Error
		if err != nil {
			return err
		}
		return recordAction(tx, nil, ActionItemUpdate, "items", &id, map[string]any{
			"name": name, "price": price, "is_active": isActive,
		})
	})
}

// DeactivateItem soft-deletes an item; past order lines keep pointing
// at it.
func (s *Store) DeactivateItem(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *gorm.DB) error {
		var item Item
		if err := tx.Select("id").First(&item, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errorx.New("ITEM_NOT_FOUND", errorx.KindNotFound, "item not found")
			}
			return err
		}
		if err := tx.Model(&Item{}).Where("id = ?", id).Update("is_active", false).Error; err != nil {
			return err
		}
		return recordAction(tx, nil, ActionItemDeactivate, "items", &id, nil)
	})
}

// AddItemOption attaches an option to an item.
func (s *Store) AddItemOption(ctx context.Context, itemID int64, name string, priceAdjustment int64) (*ItemOption, error) {
	if name == "" {
		return nil, errorx.Validationf("option name must not be empty")
	}
	var item Item
	if err := s.db.WithContext(ctx).First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New("ITEM_NOT_FOUND", errorx.KindNotFound, "item not found")
		}
		return nil, errorx.Storage(err)
	}

	opt := ItemOption{ItemID: itemID, Name: name, PriceAdjustment: priceAdjustment}
	if err := s.withTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&opt).Error
	}); err != nil {
		return nil, err
	}
	return &opt, nil
}
