package store

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/oomslab/ooms-core/internal/common/errorx"
)

// OrdersForWeek returns the raw order lines for the week starting at
// weekStart, restricted to active users, in grid fill order.
func (s *Store) OrdersForWeek(ctx context.Context, weekStart string) ([]WeeklyOrderLine, error) {
	end, err := weekEnd(weekStart)
	if err != nil {
		return nil, err
	}

	var lines []WeeklyOrderLine
	err = s.db.WithContext(ctx).
		Raw(`SELECT o.user_id AS staff_id, o.order_date, od.item_id, od.quantity, o.status
FROM orders o
JOIN order_details od ON o.id = od.order_id
JOIN users u ON o.user_id = u.id
WHERE o.order_date BETWEEN ? AND ? AND u.is_active = ?
ORDER BY o.order_date, o.user_id`, weekStart, end, true).
		Scan(&lines).Error
	if err != nil {
		return nil, errorx.Storage(err)
	}
	return lines, nil
}

// SaveWeeklyOrders replaces the stored state of a week with the
// complete desired state the UI holds, inside one transaction: every
// existing order whose date falls in [WeekStart, WeekEnd] is deleted
// regardless of which staff appear in StaffIDsOnScreen, then the
// incoming lines are regrouped and reinserted. The date-range delete
// scope means a staff member removed from the on-screen roster loses
// that week's stored orders.
//
// Lines belonging to staff deactivated between UI load and save are
// silently dropped rather than failing the save. That is a policy
// decision, not validation: the rest of the payload must land even
// when the roster changed underneath the screen.
//
// An empty StaffIDsOnScreen means the UI had nothing loaded; the call
// is a no-op so a stray save can never wipe a week.
func (s *Store) SaveWeeklyOrders(ctx context.Context, payload WeeklySavePayload) error {
	if len(payload.StaffIDsOnScreen) == 0 {
		s.logger.Warn("weekly save with empty roster ignored",
			zap.String("week_start", payload.WeekStart),
			zap.String("week_end", payload.WeekEnd))
		return nil
	}
	if _, err := weekEnd(payload.WeekStart); err != nil {
		return err
	}

	type group struct {
		staffID int64
		date    string
		lines   []WeeklyOrderLine
	}

	err := s.withTx(ctx, func(tx *gorm.DB) error {
		var existingIDs []int64
		err := tx.Model(&Order{}).
			Where("order_date BETWEEN ? AND ?", payload.WeekStart, payload.WeekEnd).
			Pluck("id", &existingIDs).Error
		if err != nil {
			return err
		}
		if err := cascadeDeleteOrders(tx, existingIDs); err != nil {
			return err
		}

		var activeIDs []int64
		if err := tx.Model(&User{}).Where("is_active = ?", true).Pluck("id", &activeIDs).Error; err != nil {
			return err
		}
		active := make(map[int64]bool, len(activeIDs))
		for _, id := range activeIDs {
			active[id] = true
		}

		type key struct {
			staffID int64
			date    string
		}
		groups := make(map[key]*group)
		var order []key
		dropped := 0
		for _, line := range payload.Orders {
			if !active[line.StaffID] {
				dropped++
				continue
			}
			k := key{line.StaffID, line.OrderDate}
			g, ok := groups[k]
			if !ok {
				g = &group{staffID: line.StaffID, date: line.OrderDate}
				groups[k] = g
				order = append(order, k)
			}
			g.lines = append(g.lines, line)
		}

		inserted := 0
		for _, k := range order {
			g := groups[k]
			row := Order{OrderDate: g.date, UserID: g.staffID, Status: StatusOpen}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			for _, line := range g.lines {
				detail := OrderDetail{OrderID: row.ID, ItemID: line.ItemID, Quantity: line.Quantity}
				if err := tx.Create(&detail).Error; err != nil {
					return err
				}
			}
			inserted++
		}

		s.logger.Info("weekly orders replaced",
			zap.String("week_start", payload.WeekStart),
			zap.String("week_end", payload.WeekEnd),
			zap.Int("deleted", len(existingIDs)),
			zap.Int("inserted", inserted),
			zap.Int("dropped_inactive_lines", dropped))
		return nil
	})
	return err
}
