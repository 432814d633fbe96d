package store

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/oomslab/ooms-core/internal/common/errorx"
)

// CreateOrder inserts one order with its lines and option links in one
// transaction and returns the created order id.
func (s *Store) CreateOrder(ctx context.Context, order NewOrder) (int64, error) {
	if len(order.Lines) == 0 {
		return 0, errorx.Validationf("order must contain at least one line")
	}
	if _, err := weekEnd(order.OrderDate); err != nil {
		return 0, err
	}
	for _, line := range order.Lines {
		if line.Quantity <= 0 {
			return 0, errorx.Validationf("quantity must be positive, got %d", line.Quantity)
		}
	}

	var orderID int64
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		row := Order{OrderDate: order.OrderDate, UserID: order.UserID, Status: StatusOpen}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		orderID = row.ID

		for _, line := range order.Lines {
			detail := OrderDetail{OrderID: row.ID, ItemID: line.ItemID, Quantity: line.Quantity}
			if line.Remarks != "" {
				remarks := line.Remarks
				detail.Remarks = &remarks
			}
			if err := tx.Create(&detail).Error; err != nil {
				return err
			}
			for _, optionID := range line.OptionIDs {
				link := OrderDetailOption{OrderDetailID: detail.ID, OptionID: optionID}
				if err := tx.Create(&link).Error; err != nil {
					return err
				}
			}
		}

		return recordAction(tx, &order.UserID, ActionOrderCreate, "orders", &row.ID, map[string]any{
			"order_date":  order.OrderDate,
			"items_count": len(order.Lines),
		})
	})
	if err != nil {
		return 0, err
	}
	return orderID, nil
}

// CancelOrder removes an order owned by the given user. Locked orders
// are refused; use DeleteOrder for the admin override.
func (s *Store) CancelOrder(ctx context.Context, orderID, userID int64) error {
	return s.withTx(ctx, func(tx *gorm.DB) error {
		var order Order
		err := tx.Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errorx.ErrOrderNotFound
			}
			return err
		}
		if order.Status == StatusLocked {
			return errorx.ErrOrderLocked
		}

		if err := cascadeDeleteOrders(tx, []int64{orderID}); err != nil {
			return err
		}
		return recordAction(tx, &userID, ActionOrderCancel, "orders", &orderID, map[string]any{
			"order_date": order.OrderDate,
		})
	})
}

// DeleteOrder removes an order unconditionally, lock state included.
// This is the admin path; the asymmetry with CancelOrder is deliberate.
func (s *Store) DeleteOrder(ctx context.Context, orderID int64) error {
	return s.withTx(ctx, func(tx *gorm.DB) error {
		if err := cascadeDeleteOrders(tx, []int64{orderID}); err != nil {
			return err
		}
		return recordAction(tx, nil, ActionOrderDelete, "orders", &orderID, nil)
	})
}

// cascadeDeleteOrders removes option links, details and the orders
// themselves, child tables first.
func cascadeDeleteOrders(tx *gorm.DB, orderIDs []int64) error {
	if len(orderIDs) == 0 {
		return nil
	}
	if err := tx.Exec(
		`DELETE FROM order_detail_options WHERE order_detail_id IN (
			SELECT id FROM order_details WHERE order_id IN ?)`, orderIDs).Error; err != nil {
		return err
	}
	if err := tx.Where("order_id IN ?", orderIDs).Delete(&OrderDetail{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", orderIDs).Delete(&Order{}).Error
}

// viewRow is the scan target for the denormalized order queries.
type viewRow struct {
	ID         int64
	OrderDate  string
	UserName   string
	ItemName   string
	Quantity   int
	Price      int64
	TotalPrice int64
	Remarks    *string
	Status     string
	DetailID   int64
}

const orderViewSelect = `
SELECT o.id, o.order_date, u.name AS user_name, i.name AS item_name,
       od.quantity, i.price, od.quantity * i.price AS total_price,
       od.remarks, o.status, od.id AS detail_id
FROM orders o
JOIN users u ON o.user_id = u.id
JOIN order_details od ON o.id = od.order_id
JOIN items i ON od.item_id = i.id`

// OrdersByDate returns one denormalized view row per order line for a
// calendar date, ordered for the daily list screen.
func (s *Store) OrdersByDate(ctx context.Context, date string) ([]OrderView, error) {
	var rows []viewRow
	err := s.db.WithContext(ctx).
		Raw(orderViewSelect+`
WHERE o.order_date = ?
ORDER BY u.display_order, u.name, i.display_order, i.name`, date).
		Scan(&rows).Error
	if err != nil {
		return nil, errorx.Storage(err)
	}
	return s.buildViews(ctx, rows)
}

// OrdersByUser returns a user's order lines, optionally bounded by an
// inclusive date range, newest date first.
func (s *Store) OrdersByUser(ctx context.Context, userID int64, from, to *string) ([]OrderView, error) {
	query := orderViewSelect + ` WHERE o.user_id = ?`
	args := []any{userID}
	if from != nil {
		query += ` AND o.order_date >= ?`
		args = append(args, *from)
	}
	if to != nil {
		query += ` AND o.order_date <= ?`
		args = append(args, *to)
	}
	query += ` ORDER BY o.order_date DESC, i.display_order, i.name`

	var rows []viewRow
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, errorx.Storage(err)
	}
	return s.buildViews(ctx, rows)
}

// buildViews attaches option names to the scanned rows. Options are
// fetched in one query and grouped per detail to keep the main view
// query portable across dialects.
func (s *Store) buildViews(ctx context.Context, rows []viewRow) ([]OrderView, error) {
	views := make([]OrderView, 0, len(rows))
	if len(rows) == 0 {
		return views, nil
	}

	detailIDs := make([]int64, len(rows))
	for i, row := range rows {
		detailIDs[i] = row.DetailID
	}

	type optionRow struct {
		OrderDetailID int64
		Name          string
	}
	var options []optionRow
	err := s.db.WithContext(ctx).
		Raw(`SELECT odo.order_detail_id, io.name
FROM order_detail_options odo
JOIN item_options io ON odo.option_id = io.id
WHERE odo.order_detail_id IN ?
ORDER BY io.id`, detailIDs).
		Scan(&options).Error
	if err != nil {
		return nil, errorx.Storage(err)
	}

	byDetail := make(map[int64][]string)
	for _, opt := range options {
		byDetail[opt.OrderDetailID] = append(byDetail[opt.OrderDetailID], opt.Name)
	}

	for _, row := range rows {
		view := OrderView{
			ID:         row.ID,
			OrderDate:  row.OrderDate,
			UserName:   row.UserName,
			ItemName:   row.ItemName,
			Quantity:   row.Quantity,
			Price:      row.Price,
			TotalPrice: row.TotalPrice,
			Options:    byDetail[row.DetailID],
			Status:     row.Status,
		}
		if view.Options == nil {
			view.Options = []string{}
		}
		if row.Remarks != nil {
			view.Remarks = *row.Remarks
		}
		views = append(views, view)
	}
	return views, nil
}

// OptionNames joins a view row's option names the way the daily list
// renders them.
func OptionNames(view OrderView) string {
	return strings.Join(view.Options, ",")
}
