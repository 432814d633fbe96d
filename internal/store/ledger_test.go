package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oomslab/ooms-core/internal/common/errorx"
)

func seededItems(t *testing.T, s *Store) []Item {
	t.Helper()
	items, err := s.ListItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	return items
}

func TestCreateOrderValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := addTestStaff(t, s, "Tanaka")
	items := seededItems(t, s)

	_, err := s.CreateOrder(ctx, NewOrder{OrderDate: "2026-08-24", UserID: user.ID})
	require.Error(t, err)
	var xerr *errorx.Error
	require.True(t, errors.As(err, &xerr))
	assert.Equal(t, "VALIDATION_ERROR", xerr.Code)

	_, err = s.CreateOrder(ctx, NewOrder{
		OrderDate: "2026-08-24",
		UserID:    user.ID,
		Lines:     []OrderLine{{ItemID: items[0].ID, Quantity: 0}},
	})
	require.True(t, errors.As(err, &xerr))
	assert.Equal(t, "VALIDATION_ERROR", xerr.Code)

	_, err = s.CreateOrder(ctx, NewOrder{
		OrderDate: "24/08/2026",
		UserID:    user.ID,
		Lines:     []OrderLine{{ItemID: items[0].ID, Quantity: 1}},
	})
	assert.Error(t, err)
}

func TestCreateOrderAndViewByDate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := addTestStaff(t, s, "Tanaka")
	items := seededItems(t, s)

	opt, err := s.AddItemOption(ctx, items[0].ID, "Large rice", 50)
	require.NoError(t, err)

	_, err = s.CreateOrder(ctx, NewOrder{
		OrderDate: "2026-08-24",
		UserID:    user.ID,
		Lines: []OrderLine{
			{ItemID: items[0].ID, Quantity: 2, Remarks: "no pickles", OptionIDs: []int64{opt.ID}},
			{ItemID: items[1].ID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	views, err := s.OrdersByDate(ctx, "2026-08-24")
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, "Tanaka", views[0].UserName)
	assert.Equal(t, items[0].Name, views[0].ItemName)
	assert.Equal(t, 2, views[0].Quantity)
	assert.Equal(t, items[0].Price*2, views[0].TotalPrice)
	assert.Equal(t, "no pickles", views[0].Remarks)
	assert.Equal(t, []string{"Large rice"}, views[0].Options)
	assert.Equal(t, "Large rice", OptionNames(views[0]))
	assert.Equal(t, StatusOpen, views[0].Status)

	assert.Equal(t, []string{}, views[1].Options)

	empty, err := s.OrdersByDate(ctx, "2026-08-25")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestOrdersByUserDateRange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := addTestStaff(t, s, "Tanaka")
	items := seededItems(t, s)

	for _, date := range []string{"2026-08-03", "2026-08-10", "2026-08-17"} {
		_, err := s.CreateOrder(ctx, NewOrder{
			OrderDate: date,
			UserID:    user.ID,
			Lines:     []OrderLine{{ItemID: items[0].ID, Quantity: 1}},
		})
		require.NoError(t, err)
	}

	all, err := s.OrdersByUser(ctx, user.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2026-08-17", all[0].OrderDate)

	from, to := "2026-08-05", "2026-08-12"
	bounded, err := s.OrdersByUser(ctx, user.ID, &from, &to)
	require.NoError(t, err)
	require.Len(t, bounded, 1)
	assert.Equal(t, "2026-08-10", bounded[0].OrderDate)
}

func TestCancelOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := addTestStaff(t, s, "Tanaka")
	other := addTestStaff(t, s, "Suzuki")
	items := seededItems(t, s)

	orderID, err := s.CreateOrder(ctx, NewOrder{
		OrderDate: "2026-08-24",
		UserID:    owner.ID,
		Lines:     []OrderLine{{ItemID: items[0].ID, Quantity: 1}},
	})
	require.NoError(t, err)

	err = s.CancelOrder(ctx, orderID, other.ID)
	assert.True(t, errors.Is(err, errorx.ErrOrderNotFound))

	require.NoError(t, s.CancelOrder(ctx, orderID, owner.ID))

	views, err := s.OrdersByDate(ctx, "2026-08-24")
	require.NoError(t, err)
	assert.Empty(t, views)

	var details int64
	require.NoError(t, s.db.Model(&OrderDetail{}).Count(&details).Error)
	assert.Zero(t, details)
}

func TestCancelOrderRefusesLocked(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := addTestStaff(t, s, "Tanaka")
	items := seededItems(t, s)

	orderID, err := s.CreateOrder(ctx, NewOrder{
		OrderDate: "2026-08-24",
		UserID:    owner.ID,
		Lines:     []OrderLine{{ItemID: items[0].ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = s.LockWeek(ctx, "2026-08-24", "2026-08-30")
	require.NoError(t, err)

	err = s.CancelOrder(ctx, orderID, owner.ID)
	assert.True(t, errors.Is(err, errorx.ErrOrderLocked))

	// The admin delete ignores the lock.
	require.NoError(t, s.DeleteOrder(ctx, orderID))
	views, err := s.OrdersByDate(ctx, "2026-08-24")
	require.NoError(t, err)
	assert.Empty(t, views)
}
