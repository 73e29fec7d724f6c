package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"gym_manager/internal/metrics"
	"gym_manager/internal/models"
	"gym_manager/internal/repository"
)

type OrderItemInput struct {
	ProductID uint
	Quantity  int
}

type PlaceOrderInput struct {
	MemberID      *uint
	Items         []OrderItemInput
	PaymentMethod string
	// ClientTotal is what the till displayed. It is only compared against the
	// computed total; the computed total is what gets stored.
	ClientTotal *float64
}

type CafeOrderService interface {
	PlaceOrder(ctx context.Context, adminID uint, in PlaceOrderInput) (*models.CafeOrder, error)
	CancelOrder(ctx context.Context, adminID, orderID uint) (*models.CafeOrder, error)
	GetOrder(ctx context.Context, id uint) (*models.CafeOrder, error)
	ListOrders(ctx context.Context, filter repository.OrderFilter) ([]models.CafeOrder, error)
	Restock(ctx context.Context, adminID, productID uint, quantity int) (*models.CafeProduct, error)
}

type cafeOrderService struct {
	store *repository.Store
	now   func() time.Time
}

func NewCafeOrderService(store *repository.Store) CafeOrderService {
	return &cafeOrderService{store: store, now: time.Now}
}

func validateOrder(in *PlaceOrderInput) error {
	if len(in.Items) == 0 {
		return validationErr("items", "at least one item is required")
	}
	for i, item := range in.Items {
		if item.ProductID == 0 {
			return validationErr(fmt.Sprintf("items[%d].product_id", i), "is required")
		}
		if item.Quantity <= 0 {
			return validationErr(fmt.Sprintf("items[%d].quantity", i), "must be greater than zero")
		}
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = string(models.PaymentCash)
	}
	if !models.ValidPaymentMethod(in.PaymentMethod) {
		return validationErr("payment_method", "is not supported")
	}
	return nil
}

// PlaceOrder reserves stock for every line and writes the order in one
// transaction. Each reservation is a conditional decrement; the first line
// that cannot be covered rolls back everything, including earlier lines.
func (s *cafeOrderService) PlaceOrder(ctx context.Context, adminID uint, in PlaceOrderInput) (*models.CafeOrder, error) {
	if err := validateOrder(&in); err != nil {
		return nil, err
	}
	now := s.now()

	var order *models.CafeOrder
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if in.MemberID != nil {
			if _, err := tx.Members.GetByID(ctx, *in.MemberID); err != nil {
				return translate(err, "load member", "member", *in.MemberID)
			}
		}

		order = &models.CafeOrder{
			OrderNumber:   OrderNumber(now),
			MemberID:      in.MemberID,
			PaymentMethod: in.PaymentMethod,
			Status:        string(models.OrderCompleted),
			CreatedBy:     adminID,
		}
		if err := tx.Orders.Create(ctx, order); err != nil {
			return err
		}

		var total float64
		for _, line := range in.Items {
			item, err := reserveLine(ctx, tx, order.ID, line)
			if err != nil {
				return err
			}
			total += item.Subtotal
			order.Items = append(order.Items, *item)
		}

		order.TotalAmount = roundMoney(total)
		if err := tx.Orders.UpdateTotal(ctx, order.ID, order.TotalAmount); err != nil {
			return err
		}
		return tx.Activity.Create(ctx, &models.ActivityLog{
			AdminID:    adminID,
			Action:     models.ActionOrderPlaced,
			EntityType: "cafe_order",
			EntityID:   order.ID,
			Details:    fmt.Sprintf("Order %s, %d line(s), total %.2f", order.OrderNumber, len(order.Items), order.TotalAmount),
		})
	})
	if err != nil {
		metrics.CafeOrders.WithLabelValues("rejected").Inc()
		return nil, translate(err, "place order", "cafe product", nil)
	}

	metrics.CafeOrders.WithLabelValues("placed").Inc()
	if in.ClientTotal != nil && math.Abs(*in.ClientTotal-order.TotalAmount) >= 0.005 {
		log.Printf("Order %s: client total %.2f differs from computed %.2f, stored computed", order.OrderNumber, *in.ClientTotal, order.TotalAmount)
	}
	return order, nil
}

func reserveLine(ctx context.Context, tx *repository.Store, orderID uint, line OrderItemInput) (*models.CafeOrderItem, error) {
	product, err := tx.Products.GetByID(ctx, line.ProductID)
	if err != nil {
		return nil, translate(err, "load product", "cafe product", line.ProductID)
	}
	if product.Status != string(models.ProductActive) {
		return nil, &InvalidStateError{Entity: "cafe product", Message: fmt.Sprintf("%s is not available", product.Name)}
	}
	insufficient := &InsufficientStockError{
		ProductID:   product.ID,
		ProductName: product.Name,
		Requested:   line.Quantity,
		Available:   product.StockQuantity,
	}
	if product.StockQuantity < line.Quantity {
		return nil, insufficient
	}

	rows, err := tx.Products.DecrementStock(ctx, product.ID, line.Quantity)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// Another order took the stock between the read and the update.
		if current, err := tx.Products.GetByID(ctx, product.ID); err == nil {
			insufficient.Available = current.StockQuantity
		}
		return nil, insufficient
	}

	item := &models.CafeOrderItem{
		OrderID:     orderID,
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    line.Quantity,
		UnitPrice:   product.Price,
		Subtotal:    roundMoney(product.Price * float64(line.Quantity)),
	}
	if err := tx.OrderItems.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// CancelOrder returns every line's quantity to stock and marks the order
// cancelled. Only completed orders can be cancelled, so stock is restored at
// most once per order.
func (s *cafeOrderService) CancelOrder(ctx context.Context, adminID, orderID uint) (*models.CafeOrder, error) {
	now := s.now()
	var order *models.CafeOrder
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		current, err := tx.Orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if current.Status != string(models.OrderCompleted) {
			return &InvalidStateError{Entity: "cafe order", Message: fmt.Sprintf("order %s is already %s", current.OrderNumber, current.Status)}
		}

		items, err := tx.OrderItems.GetByOrderID(ctx, orderID)
		if err != nil {
			return err
		}
		for _, item := range items {
			if _, err := tx.Products.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		rows, err := tx.Orders.MarkCancelled(ctx, orderID, now)
		if err != nil {
			return err
		}
		if rows == 0 {
			return &InvalidStateError{Entity: "cafe order", Message: fmt.Sprintf("order %s was cancelled concurrently", current.OrderNumber)}
		}
		if err := tx.Activity.Create(ctx, &models.ActivityLog{
			AdminID:    adminID,
			Action:     models.ActionOrderCancelled,
			EntityType: "cafe_order",
			EntityID:   orderID,
			Details:    fmt.Sprintf("Cancelled %s, restored %d line(s)", current.OrderNumber, len(items)),
		}); err != nil {
			return err
		}
		order, err = tx.Orders.GetByID(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, translate(err, "cancel order", "cafe order", orderID)
	}
	metrics.CafeOrders.WithLabelValues("cancelled").Inc()
	return order, nil
}

func (s *cafeOrderService) GetOrder(ctx context.Context, id uint) (*models.CafeOrder, error) {
	order, err := s.store.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "load order", "cafe order", id)
	}
	return order, nil
}

func (s *cafeOrderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]models.CafeOrder, error) {
	if filter.Status != "" && filter.Status != string(models.OrderCompleted) && filter.Status != string(models.OrderCancelled) {
		return nil, validationErr("status", "must be completed or cancelled")
	}
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}
	orders, err := s.store.Orders.List(ctx, filter)
	if err != nil {
		return nil, translate(err, "list orders", "cafe order", nil)
	}
	return orders, nil
}

// Restock is the only path that raises stock outside of a cancellation.
func (s *cafeOrderService) Restock(ctx context.Context, adminID, productID uint, quantity int) (*models.CafeProduct, error) {
	if quantity <= 0 {
		return nil, validationErr("quantity", "must be greater than zero")
	}
	var product *models.CafeProduct
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		rows, err := tx.Products.IncrementStock(ctx, productID, quantity)
		if err != nil {
			return err
		}
		if rows == 0 {
			return &NotFoundError{Entity: "cafe product", ID: productID}
		}
		if product, err = tx.Products.GetByID(ctx, productID); err != nil {
			return err
		}
		return tx.Activity.Create(ctx, &models.ActivityLog{
			AdminID:    adminID,
			Action:     models.ActionProductRestock,
			EntityType: "cafe_product",
			EntityID:   productID,
			Details:    fmt.Sprintf("Added %d to %s, now %d", quantity, product.Name, product.StockQuantity),
		})
	})
	if err != nil {
		return nil, translate(err, "restock product", "cafe product", productID)
	}
	return product, nil
}
