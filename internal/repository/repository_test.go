package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"gym_manager/internal/models"
	"gym_manager/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProduct(t *testing.T, store *Store, stock int) *models.CafeProduct {
	t.Helper()
	product := &models.CafeProduct{Name: "Tea", Category: "beverage", Price: 2, StockQuantity: stock, Status: "active"}
	require.NoError(t, store.Products.Create(context.Background(), product))
	return product
}

func TestDecrementStockIsConditional(t *testing.T) {
	store := NewStore(testutil.NewDB(t))
	ctx := context.Background()
	product := newProduct(t, store, 3)

	rows, err := store.Products.DecrementStock(ctx, product.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	rows, err = store.Products.DecrementStock(ctx, product.ID, 2)
	require.NoError(t, err)
	assert.Zero(t, rows)

	rows, err = store.Products.DecrementStock(ctx, product.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	reloaded, err := store.Products.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Zero(t, reloaded.StockQuantity)
}

func TestProductUpdateLeavesStock(t *testing.T) {
	store := NewStore(testutil.NewDB(t))
	ctx := context.Background()
	product := newProduct(t, store, 7)

	product.Name = "Green Tea"
	product.StockQuantity = 100
	require.NoError(t, store.Products.Update(ctx, product))

	reloaded, err := store.Products.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Green Tea", reloaded.Name)
	assert.Equal(t, 7, reloaded.StockQuantity)
}

func TestTransactionRollsBack(t *testing.T) {
	store := NewStore(testutil.NewDB(t))
	ctx := context.Background()
	product := newProduct(t, store, 5)
	boom := errors.New("boom")

	err := store.Transaction(ctx, func(tx *Store) error {
		if _, err := tx.Products.DecrementStock(ctx, product.ID, 5); err != nil {
			return err
		}
		if err := tx.Orders.Create(ctx, &models.CafeOrder{OrderNumber: "ORD-1", PaymentMethod: "cash", CreatedBy: 1}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	reloaded, err := store.Products.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, reloaded.StockQuantity)
	orders, err := store.Orders.List(ctx, OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestMarkCancelledOnlyOnce(t *testing.T) {
	store := NewStore(testutil.NewDB(t))
	ctx := context.Background()
	order := &models.CafeOrder{OrderNumber: "ORD-2", PaymentMethod: "cash", Status: "completed", CreatedBy: 1}
	require.NoError(t, store.Orders.Create(ctx, order))

	rows, err := store.Orders.MarkCancelled(ctx, order.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	rows, err = store.Orders.MarkCancelled(ctx, order.ID, time.Now())
	require.NoError(t, err)
	assert.Zero(t, rows)
}

func TestNotificationExistsSince(t *testing.T) {
	store := NewStore(testutil.NewDB(t))
	ctx := context.Background()
	at := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.Notifications.Create(ctx, &models.Notification{MemberID: 1, Type: "membership_expired", Title: "t", CreatedAt: at}))

	exists, err := store.Notifications.ExistsSince(ctx, 1, "membership_expired", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.Notifications.ExistsSince(ctx, 1, "membership_expired", time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = store.Notifications.ExistsSince(ctx, 1, "membership_expiring", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestListActiveEndingBefore(t *testing.T) {
	store := NewStore(testutil.NewDB(t))
	ctx := context.Background()
	end := func(y int, m time.Month, d int) *time.Time {
		v := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &v
	}
	members := []*models.Member{
		{MemberCode: "A", FirstName: "A", LastName: "A", Phone: "1", Status: "active", MembershipEnd: end(2024, 1, 5)},
		{MemberCode: "B", FirstName: "B", LastName: "B", Phone: "2", Status: "active", MembershipEnd: end(2024, 2, 1)},
		{MemberCode: "C", FirstName: "C", LastName: "C", Phone: "3", Status: "inactive", MembershipEnd: end(2024, 1, 1)},
		{MemberCode: "D", FirstName: "D", LastName: "D", Phone: "4", Status: "active"},
	}
	for _, m := range members {
		require.NoError(t, store.Members.Create(ctx, m))
	}

	due, err := store.Members.ListActiveEndingBefore(ctx, time.Date(2024, 1, 18, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "A", due[0].MemberCode)
}
