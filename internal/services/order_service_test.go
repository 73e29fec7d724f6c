package services

import (
	"context"
	"testing"

	"gym_manager/internal/models"
	"gym_manager/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestPlaceOrderDecrementsStockAndSnapshotsPrice(t *testing.T) {
	f := newFixture(t)
	coffee := f.product(t, "Coffee", 10, 5)
	svc := NewCafeOrderService(f.store)
	ctx := context.Background()

	order, err := svc.PlaceOrder(ctx, f.admin.ID, PlaceOrderInput{
		Items: []OrderItemInput{{ProductID: coffee.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, 20.0, order.TotalAmount)
	assert.Equal(t, string(models.OrderCompleted), order.Status)
	assert.Equal(t, string(models.PaymentCash), order.PaymentMethod)
	assert.Nil(t, order.MemberID)
	assert.Regexp(t, `^ORD-\d{8}-[0-9A-F]{6}$`, order.OrderNumber)
	assert.Equal(t, 3, f.stock(t, coffee.ID))

	// A later price change leaves the order untouched.
	coffee.Price = 12
	require.NoError(t, f.store.Products.Update(ctx, coffee))

	stored, err := svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, 10.0, stored.Items[0].UnitPrice)
	assert.Equal(t, 20.0, stored.Items[0].Subtotal)
	assert.Equal(t, "Coffee", stored.Items[0].ProductName)
	assert.Equal(t, 20.0, stored.TotalAmount)
}

func TestPlaceOrderIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", 10, 5)
	b := f.product(t, "B", 4, 0)
	svc := NewCafeOrderService(f.store)

	_, err := svc.PlaceOrder(context.Background(), f.admin.ID, PlaceOrderInput{
		Items: []OrderItemInput{{ProductID: a.ID, Quantity: 2}, {ProductID: b.ID, Quantity: 1}},
	})
	var se *InsufficientStockError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, b.ID, se.ProductID)
	assert.Equal(t, 1, se.Requested)
	assert.Equal(t, 0, se.Available)

	assert.Equal(t, 5, f.stock(t, a.ID))
	assert.Zero(t, f.count(t, &models.CafeOrder{}))
	assert.Zero(t, f.count(t, &models.CafeOrderItem{}))
}

func TestPlaceOrderIgnoresClientTotal(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", 2.5, 10)
	b := f.product(t, "B", 1.1, 10)
	svc := NewCafeOrderService(f.store)

	claimed := 1.0
	order, err := svc.PlaceOrder(context.Background(), f.admin.ID, PlaceOrderInput{
		Items:       []OrderItemInput{{ProductID: a.ID, Quantity: 3}, {ProductID: b.ID, Quantity: 3}},
		ClientTotal: &claimed,
	})
	require.NoError(t, err)
	assert.Equal(t, 10.8, order.TotalAmount)
}

func TestPlaceOrderForMember(t *testing.T) {
	f := newFixture(t)
	plan := f.plan(t, "Monthly", 30, 30)
	member := f.member(t, plan, date(2024, 1, 1))
	shake := f.product(t, "Shake", 6, 3)
	svc := NewCafeOrderService(f.store)

	order, err := svc.PlaceOrder(context.Background(), f.admin.ID, PlaceOrderInput{
		MemberID:      &member.ID,
		Items:         []OrderItemInput{{ProductID: shake.ID, Quantity: 1}},
		PaymentMethod: string(models.PaymentCreditCard),
	})
	require.NoError(t, err)
	require.NotNil(t, order.MemberID)
	assert.Equal(t, member.ID, *order.MemberID)

	missing := uint(999)
	_, err = svc.PlaceOrder(context.Background(), f.admin.ID, PlaceOrderInput{
		MemberID: &missing,
		Items:    []OrderItemInput{{ProductID: shake.ID, Quantity: 1}},
	})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "member", nf.Entity)
	assert.Equal(t, 2, f.stock(t, shake.ID))
}

func TestPlaceOrderRejects(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", 10, 5)
	retired := f.product(t, "Retired", 3, 5)
	retired.Status = string(models.ProductInactive)
	require.NoError(t, f.store.Products.Update(context.Background(), retired))
	svc := NewCafeOrderService(f.store)
	ctx := context.Background()

	var ve *ValidationError
	_, err := svc.PlaceOrder(ctx, f.admin.ID, PlaceOrderInput{})
	assert.ErrorAs(t, err, &ve)
	_, err = svc.PlaceOrder(ctx, f.admin.ID, PlaceOrderInput{Items: []OrderItemInput{{ProductID: a.ID, Quantity: 0}}})
	assert.ErrorAs(t, err, &ve)
	_, err = svc.PlaceOrder(ctx, f.admin.ID, PlaceOrderInput{Items: []OrderItemInput{{ProductID: 0, Quantity: 1}}})
	assert.ErrorAs(t, err, &ve)
	_, err = svc.PlaceOrder(ctx, f.admin.ID, PlaceOrderInput{Items: []OrderItemInput{{ProductID: a.ID, Quantity: 1}}, PaymentMethod: "tab"})
	assert.ErrorAs(t, err, &ve)

	var nf *NotFoundError
	_, err = svc.PlaceOrder(ctx, f.admin.ID, PlaceOrderInput{Items: []OrderItemInput{{ProductID: a.ID, Quantity: 1}, {ProductID: 999, Quantity: 1}}})
	assert.ErrorAs(t, err, &nf)

	var ie *InvalidStateError
	_, err = svc.PlaceOrder(ctx, f.admin.ID, PlaceOrderInput{Items: []OrderItemInput{{ProductID: retired.ID, Quantity: 1}}})
	assert.ErrorAs(t, err, &ie)

	assert.Equal(t, 5, f.stock(t, a.ID))
	assert.Zero(t, f.count(t, &models.CafeOrder{}))
}

func TestCancelOrderRestoresStockOnce(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", 10, 5)
	svc := NewCafeOrderService(f.store)
	ctx := context.Background()

	order, err := svc.PlaceOrder(ctx, f.admin.ID, PlaceOrderInput{Items: []OrderItemInput{{ProductID: a.ID, Quantity: 2}}})
	require.NoError(t, err)
	require.Equal(t, 3, f.stock(t, a.ID))

	cancelled, err := svc.CancelOrder(ctx, f.admin.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.OrderCancelled), cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, 5, f.stock(t, a.ID))

	_, err = svc.CancelOrder(ctx, f.admin.ID, order.ID)
	var ie *InvalidStateError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 5, f.stock(t, a.ID))

	_, err = svc.CancelOrder(ctx, f.admin.ID, 999)
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)

	activity, err := f.store.Activity.GetByEntity(ctx, "cafe_order", order.ID)
	require.NoError(t, err)
	assert.Len(t, activity, 2)
}

func TestRestock(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", 10, 1)
	svc := NewCafeOrderService(f.store)
	ctx := context.Background()

	product, err := svc.Restock(ctx, f.admin.ID, a.ID, 9)
	require.NoError(t, err)
	assert.Equal(t, 10, product.StockQuantity)

	var ve *ValidationError
	_, err = svc.Restock(ctx, f.admin.ID, a.ID, 0)
	assert.ErrorAs(t, err, &ve)
	var nf *NotFoundError
	_, err = svc.Restock(ctx, f.admin.ID, 999, 1)
	assert.ErrorAs(t, err, &nf)
}

func TestListOrdersFiltersByStatus(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", 1, 10)
	svc := NewCafeOrderService(f.store)
	ctx := context.Background()

	first, err := svc.PlaceOrder(ctx, f.admin.ID, PlaceOrderInput{Items: []OrderItemInput{{ProductID: a.ID, Quantity: 1}}})
	require.NoError(t, err)
	_, err = svc.PlaceOrder(ctx, f.admin.ID, PlaceOrderInput{Items: []OrderItemInput{{ProductID: a.ID, Quantity: 1}}})
	require.NoError(t, err)
	_, err = svc.CancelOrder(ctx, f.admin.ID, first.ID)
	require.NoError(t, err)

	cancelled, err := svc.ListOrders(ctx, repository.OrderFilter{Status: string(models.OrderCancelled)})
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	assert.Equal(t, first.ID, cancelled[0].ID)

	all, err := svc.ListOrders(ctx, repository.OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.ListOrders(ctx, repository.OrderFilter{Status: "open"})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

// The stored total is the sum of line subtotals, a rejected order changes no
// stock, and cancelling puts back exactly what the order took.
func TestOrderStockProperties(t *testing.T) {
	f := newFixture(t)
	svc := NewCafeOrderService(f.store)
	ctx := context.Background()

	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 4).Draw(rt, "products")
		var ids []uint
		before := map[uint]int{}
		for i := 0; i < n; i++ {
			product := &models.CafeProduct{
				Name:          "P",
				Category:      string(models.CategoryFood),
				Price:         float64(rapid.IntRange(1, 5000).Draw(rt, "cents")) / 100,
				StockQuantity: rapid.IntRange(0, 10).Draw(rt, "stock"),
				Status:        string(models.ProductActive),
			}
			if err := f.store.Products.Create(ctx, product); err != nil {
				rt.Fatalf("create product: %v", err)
			}
			ids = append(ids, product.ID)
			before[product.ID] = product.StockQuantity
		}

		var items []OrderItemInput
		for i, id := range ids {
			if i > 0 && !rapid.Bool().Draw(rt, "include") {
				continue
			}
			items = append(items, OrderItemInput{ProductID: id, Quantity: rapid.IntRange(1, 6).Draw(rt, "qty")})
		}

		stockOf := func(id uint) int {
			p, err := f.store.Products.GetByID(ctx, id)
			if err != nil {
				rt.Fatalf("load product: %v", err)
			}
			return p.StockQuantity
		}

		order, err := svc.PlaceOrder(ctx, f.admin.ID, PlaceOrderInput{Items: items})
		if err != nil {
			if _, ok := err.(*InsufficientStockError); !ok {
				rt.Fatalf("unexpected error: %v", err)
			}
			for _, id := range ids {
				if got := stockOf(id); got != before[id] {
					rt.Fatalf("rejected order moved stock of %d: %d -> %d", id, before[id], got)
				}
			}
			return
		}

		var sum float64
		for _, item := range order.Items {
			sum += item.Subtotal
		}
		if roundMoney(sum) != order.TotalAmount {
			rt.Fatalf("total %.2f != sum of subtotals %.2f", order.TotalAmount, sum)
		}
		for _, item := range items {
			if got := stockOf(item.ProductID); got != before[item.ProductID]-item.Quantity {
				rt.Fatalf("stock of %d = %d, want %d", item.ProductID, got, before[item.ProductID]-item.Quantity)
			}
		}

		if _, err := svc.CancelOrder(ctx, f.admin.ID, order.ID); err != nil {
			rt.Fatalf("cancel: %v", err)
		}
		for _, id := range ids {
			if got := stockOf(id); got != before[id] {
				rt.Fatalf("cancel left stock of %d at %d, want %d", id, got, before[id])
			}
		}
	})
}
