package store

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/oomslab/ooms-core/internal/common/errorx"
)

// SettingAdminPassword is the settings key holding the unlock secret.
const SettingAdminPassword = "admin_password"

// PasswordVerifier compares a stored secret against a supplied
// password. Pluggable so the plaintext legacy scheme can be replaced
// by a hashed one without touching the lock contract.
type PasswordVerifier interface {
	Verify(stored, supplied string) error
}

// PlaintextVerifier matches the legacy data files, where the admin
// password is stored verbatim in the settings table.
type PlaintextVerifier struct{}

func (PlaintextVerifier) Verify(stored, supplied string) error {
	if subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) != 1 {
		return errorx.ErrAuthFailed.WithMessage("password does not match")
	}
	return nil
}

// BcryptVerifier treats the stored setting as a bcrypt hash.
type BcryptVerifier struct{}

func (BcryptVerifier) Verify(stored, supplied string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)); err != nil {
		return errorx.ErrAuthFailed.WithMessage("password does not match")
	}
	return nil
}

// LockWeek flips every open order in [start, end] to locked and stamps
// locked_at. Order details are untouched. Returns the number of orders
// locked.
func (s *Store) LockWeek(ctx context.Context, start, end string) (int64, error) {
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&Order{}).
		Where("order_date BETWEEN ? AND ? AND status = ?", start, end, StatusOpen).
		Updates(map[string]any{"status": StatusLocked, "locked_at": now})
	if res.Error != nil {
		return 0, errorx.Storage(res.Error)
	}
	s.logger.Info("week locked",
		zap.String("start", start), zap.String("end", end), zap.Int64("orders", res.RowsAffected))
	return res.RowsAffected, nil
}

// UnlockWeek reopens the locked orders in [start, end] after verifying
// the supplied password against the stored admin secret. A failed
// verification mutates nothing.
func (s *Store) UnlockWeek(ctx context.Context, password, start, end string) (int64, error) {
	stored, err := s.GetSetting(ctx, SettingAdminPassword)
	if err != nil {
		return 0, err
	}
	if stored == "" {
		return 0, errorx.ErrAuthFailed.WithMessage("admin password is not configured")
	}
	if err := s.verifier.Verify(stored, password); err != nil {
		return 0, err
	}

	res := s.db.WithContext(ctx).Model(&Order{}).
		Where("order_date BETWEEN ? AND ? AND status = ?", start, end, StatusLocked).
		Updates(map[string]any{"status": StatusOpen, "locked_at": nil})
	if res.Error != nil {
		return 0, errorx.Storage(res.Error)
	}
	s.logger.Info("week unlocked",
		zap.String("start", start), zap.String("end", end), zap.Int64("orders", res.RowsAffected))
	return res.RowsAffected, nil
}

// LockMonth closes a calendar month: every open order in it is locked
// with the closing actor stamped. There is no month unlock; closing is
// financially final, unlike the reversible week lock.
func (s *Store) LockMonth(ctx context.Context, year, month int, actorID int64) error {
	if month < 1 || month > 12 {
		return errorx.Validationf("month must be 1..12, got %d", month)
	}
	start, end := monthRange(year, month)
	monthKey := fmt.Sprintf("%04d-%02d", year, month)
	now := time.Now()

	return s.withTx(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&Order{}).
			Where("order_date BETWEEN ? AND ? AND status = ?", start, end, StatusOpen).
			Updates(map[string]any{
				"status":            StatusLocked,
				"locked_at":         now,
				"locked_by_user_id": actorID,
			})
		if res.Error != nil {
			return res.Error
		}
		return recordAction(tx, &actorID, ActionMonthLock, "orders", nil, map[string]any{
			"month":         monthKey,
			"orders_locked": res.RowsAffected,
		})
	})
}
