package repository

import (
	"context"
	"time"

	"gym_manager/internal/models"

	"gorm.io/gorm"
)

type OrderFilter struct {
	From   *time.Time
	To     *time.Time
	Status string
	Limit  int
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.CafeOrder) error
	GetByID(ctx context.Context, id uint) (*models.CafeOrder, error)
	List(ctx context.Context, filter OrderFilter) ([]models.CafeOrder, error)
	UpdateTotal(ctx context.Context, id uint, total float64) error
	MarkCancelled(ctx context.Context, id uint, at time.Time) (int64, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *models.CafeOrder) error {
	return r.db.WithContext(ctx).Omit("Items").Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id uint) (*models.CafeOrder, error) {
	var order models.CafeOrder
	err := r.db.WithContext(ctx).Preload("Items").First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]models.CafeOrder, error) {
	var orders []models.CafeOrder
	q := r.db.WithContext(ctx).Preload("Items").Order("created_at DESC, id DESC")
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at < ?", *filter.To)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	err := q.Find(&orders).Error
	return orders, err
}

func (r *orderRepository) UpdateTotal(ctx context.Context, id uint, total float64) error {
	return r.db.WithContext(ctx).Model(&models.CafeOrder{}).Where("id = ?", id).Update("total_amount", total).Error
}

// MarkCancelled only transitions orders that are still completed, so two
// concurrent cancellations cannot both succeed.
func (r *orderRepository) MarkCancelled(ctx context.Context, id uint, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.CafeOrder{}).
		Where("id = ? AND status = ?", id, string(models.OrderCompleted)).
		Updates(map[string]interface{}{
			"status":       string(models.OrderCancelled),
			"cancelled_at": at,
		})
	return res.RowsAffected, res.Error
}
