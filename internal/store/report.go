package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/oomslab/ooms-core/internal/common/errorx"
)

// weekdayLabels are Monday-first; reporting weeks start on Monday.
var weekdayLabels = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

func weekdayLabel(date string) (string, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return "", errorx.Validationf("invalid date %q: %v", date, err)
	}
	return weekdayLabels[(int(t.Weekday())+6)%7], nil
}

type weeklyAggRow struct {
	OrderDate     string `gorm:"column:order_date"`
	ItemName      string `gorm:"column:item_name"`
	DisplayOrder  *int   `gorm:"column:display_order"`
	TotalQuantity int    `gorm:"column:total_quantity"`
}

// WeeklyReport aggregates one week's quantities per item and per day.
// Orders of inactive users are excluded; lock state does not matter.
func (s *Store) WeeklyReport(ctx context.Context, weekStart string) (*WeeklyReport, error) {
	end, err := weekEnd(weekStart)
	if err != nil {
		return nil, err
	}

	var rows []weeklyAggRow
	err = s.db.WithContext(ctx).Raw(`
		SELECT o.order_date AS order_date,
		       i.name AS item_name,
		       i.display_order AS display_order,
		       SUM(od.quantity) AS total_quantity
		FROM orders o
		JOIN order_details od ON od.order_id = o.id
		JOIN items i ON i.id = od.item_id
		JOIN users u ON u.id = o.user_id
		WHERE o.order_date BETWEEN ? AND ? AND u.is_active = ?
		GROUP BY o.order_date, i.name, i.display_order
		ORDER BY o.order_date, i.display_order, i.name`,
		weekStart, end, true).Scan(&rows).Error
	if err != nil {
		return nil, errorx.Storage(err)
	}

	report := &WeeklyReport{
		WeekStart: weekStart,
		WeekEnd:   end,
		Items:     map[string]map[string]int{},
		Totals:    map[string]int{},
	}

	byDate := map[string][]ItemTotal{}
	itemTotals := map[string]int{}
	var itemOrder []string
	for _, row := range rows {
		label, err := weekdayLabel(row.OrderDate)
		if err != nil {
			return nil, err
		}
		if report.Items[row.ItemName] == nil {
			report.Items[row.ItemName] = map[string]int{}
			itemOrder = append(itemOrder, row.ItemName)
		}
		report.Items[row.ItemName][label] += row.TotalQuantity
		report.Totals[label] += row.TotalQuantity
		itemTotals[row.ItemName] += row.TotalQuantity
		byDate[row.OrderDate] = append(byDate[row.OrderDate], ItemTotal{
			ItemName:      row.ItemName,
			TotalQuantity: row.TotalQuantity,
		})
	}

	for _, name := range itemOrder {
		report.TotalSummary = append(report.TotalSummary, ItemTotal{
			ItemName:      name,
			TotalQuantity: itemTotals[name],
		})
	}

	// One entry per calendar day, order-free days included, so the grid
	// renders all seven columns.
	start, _ := time.Parse(dateLayout, weekStart)
	for d := 0; d < 7; d++ {
		date := start.AddDate(0, 0, d).Format(dateLayout)
		day := DaySummary{Date: date, Items: byDate[date]}
		if day.Items == nil {
			day.Items = []ItemTotal{}
		}
		report.Days = append(report.Days, day)
	}

	return report, nil
}

type monthlyAggRow struct {
	StaffName    string `gorm:"column:staff_name"`
	DisplayOrder *int   `gorm:"column:display_order"`
	TotalAmount  int64  `gorm:"column:total_amount"`
}

// MonthlyReport sums each user's spend for the "YYYY-MM" month, for
// payroll deduction. Inactive users are included: money owed by staff
// who left mid-month still has to be deducted. A month counts as
// locked as soon as any order in it carries the locked status, even
// while other weeks of the month are still open.
func (s *Store) MonthlyReport(ctx context.Context, month string) (*MonthlyReport, error) {
	start, end, err := monthRangeFromKey(month)
	if err != nil {
		return nil, err
	}

	var rows []monthlyAggRow
	err = s.db.WithContext(ctx).Raw(`
		SELECT u.name AS staff_name,
		       u.display_order AS display_order,
		       SUM(od.quantity * i.price) AS total_amount
		FROM orders o
		JOIN order_details od ON od.order_id = o.id
		JOIN items i ON i.id = od.item_id
		JOIN users u ON u.id = o.user_id
		WHERE o.order_date BETWEEN ? AND ?
		GROUP BY u.id, u.name, u.display_order
		ORDER BY u.display_order, u.name`,
		start, end).Scan(&rows).Error
	if err != nil {
		return nil, errorx.Storage(err)
	}

	report := &MonthlyReport{Month: month, StaffTotals: []StaffTotal{}}
	for _, row := range rows {
		report.StaffTotals = append(report.StaffTotals, StaffTotal{
			StaffName:   row.StaffName,
			TotalAmount: row.TotalAmount,
		})
		report.GrandTotal += row.TotalAmount
	}

	var last Order
	err = s.db.WithContext(ctx).
		Where("order_date BETWEEN ? AND ? AND status = ?", start, end, StatusLocked).
		Order("locked_at DESC").
		First(&last).Error
	switch {
	case err == nil:
		report.IsLocked = true
		report.LockedAt = last.LockedAt
		if last.LockedByUserID != nil {
			var actor User
			if err := s.db.WithContext(ctx).
				Select("name").
				First(&actor, *last.LockedByUserID).Error; err == nil {
				report.LockedBy = &actor.Name
			}
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// no locked order, the month is still open
	default:
		return nil, errorx.Storage(err)
	}

	return report, nil
}
