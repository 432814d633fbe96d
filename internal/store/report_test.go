package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeeklyReport(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tanaka := addTestStaff(t, s, "Tanaka")
	suzuki := addTestStaff(t, s, "Suzuki")
	items := seededItems(t, s)

	// Monday 2026-08-24 and Wednesday 2026-08-26.
	require.NoError(t, s.SaveWeeklyOrders(ctx, WeeklySavePayload{
		StaffIDsOnScreen: []int64{tanaka.ID, suzuki.ID},
		WeekStart:        "2026-08-24",
		WeekEnd:          "2026-08-30",
		Orders: []WeeklyOrderLine{
			{StaffID: tanaka.ID, OrderDate: "2026-08-24", ItemID: items[0].ID, Quantity: 2},
			{StaffID: suzuki.ID, OrderDate: "2026-08-24", ItemID: items[0].ID, Quantity: 1},
			{StaffID: suzuki.ID, OrderDate: "2026-08-26", ItemID: items[1].ID, Quantity: 1},
		},
	}))

	report, err := s.WeeklyReport(ctx, "2026-08-24")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-24", report.WeekStart)
	assert.Equal(t, "2026-08-30", report.WeekEnd)

	assert.Equal(t, 3, report.Items[items[0].Name]["Mon"])
	assert.Equal(t, 1, report.Items[items[1].Name]["Wed"])
	assert.Equal(t, 3, report.Totals["Mon"])
	assert.Equal(t, 1, report.Totals["Wed"])
	assert.Zero(t, report.Totals["Tue"])

	require.Len(t, report.TotalSummary, 2)
	assert.Equal(t, ItemTotal{ItemName: items[0].Name, TotalQuantity: 3}, report.TotalSummary[0])
	assert.Equal(t, ItemTotal{ItemName: items[1].Name, TotalQuantity: 1}, report.TotalSummary[1])

	require.Len(t, report.Days, 7)
	assert.Equal(t, "2026-08-24", report.Days[0].Date)
	require.Len(t, report.Days[0].Items, 1)
	assert.Equal(t, 3, report.Days[0].Items[0].TotalQuantity)
	assert.Empty(t, report.Days[1].Items)
	assert.Equal(t, "2026-08-30", report.Days[6].Date)
}

func TestWeeklyReportExcludesInactiveUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tanaka := addTestStaff(t, s, "Tanaka")
	items := seededItems(t, s)

	_, err := s.CreateOrder(ctx, NewOrder{
		OrderDate: "2026-08-24",
		UserID:    tanaka.ID,
		Lines:     []OrderLine{{ItemID: items[0].ID, Quantity: 1}},
	})
	require.NoError(t, err)
	require.NoError(t, s.DeactivateUser(ctx, tanaka.ID))

	report, err := s.WeeklyReport(ctx, "2026-08-24")
	require.NoError(t, err)
	assert.Empty(t, report.TotalSummary)
	assert.Empty(t, report.Totals)
}

func TestMonthlyReport(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tanaka := addTestStaff(t, s, "Tanaka")
	suzuki := addTestStaff(t, s, "Suzuki")
	items := seededItems(t, s)

	// Tanaka: 3 x 500 = 1500, Suzuki: 1 x 600 = 600.
	_, err := s.CreateOrder(ctx, NewOrder{
		OrderDate: "2026-08-03",
		UserID:    tanaka.ID,
		Lines:     []OrderLine{{ItemID: items[0].ID, Quantity: 2}},
	})
	require.NoError(t, err)
	_, err = s.CreateOrder(ctx, NewOrder{
		OrderDate: "2026-08-17",
		UserID:    tanaka.ID,
		Lines:     []OrderLine{{ItemID: items[0].ID, Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = s.CreateOrder(ctx, NewOrder{
		OrderDate: "2026-08-17",
		UserID:    suzuki.ID,
		Lines:     []OrderLine{{ItemID: items[1].ID, Quantity: 1}},
	})
	require.NoError(t, err)

	// September order must not leak into August.
	_, err = s.CreateOrder(ctx, NewOrder{
		OrderDate: "2026-09-01",
		UserID:    tanaka.ID,
		Lines:     []OrderLine{{ItemID: items[0].ID, Quantity: 5}},
	})
	require.NoError(t, err)

	report, err := s.MonthlyReport(ctx, "2026-08")
	require.NoError(t, err)
	assert.Equal(t, "2026-08", report.Month)
	require.Len(t, report.StaffTotals, 2)
	assert.Equal(t, StaffTotal{StaffName: "Suzuki", TotalAmount: 600}, findStaffTotal(t, report, "Suzuki"))
	assert.Equal(t, StaffTotal{StaffName: "Tanaka", TotalAmount: 1500}, findStaffTotal(t, report, "Tanaka"))
	assert.Equal(t, int64(2100), report.GrandTotal)
	assert.False(t, report.IsLocked)
}

func TestMonthlyReportKeepsInactiveUserSpend(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tanaka := addTestStaff(t, s, "Tanaka")
	items := seededItems(t, s)

	_, err := s.CreateOrder(ctx, NewOrder{
		OrderDate: "2026-08-03",
		UserID:    tanaka.ID,
		Lines:     []OrderLine{{ItemID: items[0].ID, Quantity: 3}},
	})
	require.NoError(t, err)
	require.NoError(t, s.DeactivateUser(ctx, tanaka.ID))

	report, err := s.MonthlyReport(ctx, "2026-08")
	require.NoError(t, err)
	assert.Equal(t, int64(1500), report.GrandTotal)
	require.Len(t, report.StaffTotals, 1)
	assert.Equal(t, "Tanaka", report.StaffTotals[0].StaffName)
}

func findStaffTotal(t *testing.T, report *MonthlyReport, name string) StaffTotal {
	t.Helper()
	for _, st := range report.StaffTotals {
		if st.StaffName == name {
			return st
		}
	}
	t.Fatalf("no staff total for %s", name)
	return StaffTotal{}
}

func TestMonthlyReportLockState(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tanaka := addTestStaff(t, s, "Tanaka")
	items := seededItems(t, s)

	_, err := s.CreateOrder(ctx, NewOrder{
		OrderDate: "2026-08-03",
		UserID:    tanaka.ID,
		Lines:     []OrderLine{{ItemID: items[0].ID, Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, s.LockMonth(ctx, 2026, 8, tanaka.ID))

	report, err := s.MonthlyReport(ctx, "2026-08")
	require.NoError(t, err)
	assert.True(t, report.IsLocked)
	assert.NotNil(t, report.LockedAt)
	require.NotNil(t, report.LockedBy)
	assert.Equal(t, "Tanaka", *report.LockedBy)

	// A month without any orders is not considered locked.
	empty, err := s.MonthlyReport(ctx, "2026-07")
	require.NoError(t, err)
	assert.False(t, empty.IsLocked)
	assert.Zero(t, empty.GrandTotal)
}

func TestMonthlyReportLockedByPartialWeekLock(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tanaka := addTestStaff(t, s, "Tanaka")
	items := seededItems(t, s)

	// First and third week of August.
	for _, date := range []string{"2026-08-03", "2026-08-17"} {
		_, err := s.CreateOrder(ctx, NewOrder{
			OrderDate: date,
			UserID:    tanaka.ID,
			Lines:     []OrderLine{{ItemID: items[0].ID, Quantity: 1}},
		})
		require.NoError(t, err)
	}

	_, err := s.LockWeek(ctx, "2026-08-03", "2026-08-09")
	require.NoError(t, err)

	// One locked order is enough; the still-open third week does not
	// keep the month reporting as open.
	report, err := s.MonthlyReport(ctx, "2026-08")
	require.NoError(t, err)
	assert.True(t, report.IsLocked)
	assert.NotNil(t, report.LockedAt)
}
