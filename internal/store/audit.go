package store

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/oomslab/ooms-core/internal/common/errorx"
)

// Audit action tags. Kept as plain strings in the table; these are the
// tags the core itself writes.
const (
	ActionUserLogin       = "USER_LOGIN"
	ActionUserCreate      = "USER_CREATE"
	ActionUserUpdate      = "USER_UPDATE"
	ActionUserDeactivate  = "USER_DEACTIVATE"
	ActionUserPurgeOrders = "USER_DELETE_WITH_ORDERS"
	ActionItemCreate      = "ITEM_CREATE"
	ActionItemUpdate      = "ITEM_UPDATE"
	ActionItemDeactivate  = "ITEM_DEACTIVATE"
	ActionOrderCreate     = "ORDER_CREATE"
	ActionOrderCancel     = "ORDER_CANCEL"
	ActionOrderDelete     = "ORDER_DELETE"
	ActionMonthLock       = "MONTH_LOCK"
	ActionSettingsUpdate  = "SETTINGS_UPDATE"
)

// RecordAction appends one immutable audit row outside of any caller
// transaction.
func (s *Store) RecordAction(ctx context.Context, actorID *int64, action, targetEntity string, targetID *int64, details any) error {
	return s.withTx(ctx, func(tx *gorm.DB) error {
		return recordAction(tx, actorID, action, targetEntity, targetID, details)
	})
}

// recordAction writes an audit row on the given handle, which may be a
// transaction owned by the mutating operation being audited.
func recordAction(tx *gorm.DB, actorID *int64, action, targetEntity string, targetID *int64, details any) error {
	var payload string
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("marshal audit details: %w", err)
		}
		payload = string(raw)
	}
	entry := AuditLog{
		UserID:       actorID,
		Action:       action,
		TargetEntity: targetEntity,
		TargetID:     targetID,
		Details:      payload,
	}
	return tx.Create(&entry).Error
}

// QueryAuditLog returns one page of audit rows, newest first, joined
// with the actor's name, plus the total matching count.
func (s *Store) QueryAuditLog(ctx context.Context, filter AuditFilter) (*AuditPage, error) {
	base := s.db.WithContext(ctx).Model(&AuditLog{})
	if filter.ActorID != nil {
		base = base.Where("audit_logs.user_id = ?", *filter.ActorID)
	}
	if filter.Action != "" {
		base = base.Where("audit_logs.action = ?", filter.Action)
	}
	if filter.TargetEntity != "" {
		base = base.Where("audit_logs.target_entity = ?", filter.TargetEntity)
	}
	if filter.From != nil {
		base = base.Where("audit_logs.created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		base = base.Where("audit_logs.created_at <= ?", *filter.To)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, errorx.Storage(err)
	}

	q := base.Session(&gorm.Session{}).
		Select("audit_logs.*, users.name AS actor_name").
		Joins("LEFT JOIN users ON audit_logs.user_id = users.id").
		Order("audit_logs.created_at DESC, audit_logs.id DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}

	var logs []AuditLog
	if err := q.Find(&logs).Error; err != nil {
		return nil, errorx.Storage(err)
	}

	return &AuditPage{Logs: logs, Total: total}, nil
}
