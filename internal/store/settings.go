package store

import (
	"context"
	"errors"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oomslab/ooms-core/internal/common/errorx"
)

// GetSettings returns the whole settings map. Absent keys are simply
// absent, never empty-string writes.
func (s *Store) GetSettings(ctx context.Context) (Settings, error) {
	var rows []Setting
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, errorx.Storage(err)
	}
	settings := make(Settings, len(rows))
	for _, row := range rows {
		settings[row.Key] = row.Value
	}
	return settings, nil
}

// GetSetting returns one value, or "" when the key is unset.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var row Setting
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", errorx.Storage(err)
	}
	return row.Value, nil
}

// SaveSettings upserts only the provided keys; existing keys not in
// the partial map are left untouched (merge, not replace).
func (s *Store) SaveSettings(ctx context.Context, partial Settings) error {
	if len(partial) == 0 {
		return nil
	}

	keys := make([]string, 0, len(partial))
	for key := range partial {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return s.withTx(ctx, func(tx *gorm.DB) error {
		for _, key := range keys {
			row := Setting{Key: key, Value: partial[key]}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value"}),
			}).Create(&row).Error
			if err != nil {
				return err
			}
		}
		// Audit the touched keys only; values may contain the admin secret.
		return recordAction(tx, nil, ActionSettingsUpdate, "settings", nil, map[string]any{
			"keys": keys,
		})
	})
}
