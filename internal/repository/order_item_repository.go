package repository

import (
	"context"

	"gym_manager/internal/models"

	"gorm.io/gorm"
)

type OrderItemRepository interface {
	Create(ctx context.Context, orderItem *models.CafeOrderItem) error
	GetByOrderID(ctx context.Context, orderID uint) ([]models.CafeOrderItem, error)
	CountByProductID(ctx context.Context, productID uint) (int64, error)
}

type orderItemRepository struct {
	db *gorm.DB
}

func NewOrderItemRepository(db *gorm.DB) OrderItemRepository {
	return &orderItemRepository{db: db}
}

func (r *orderItemRepository) Create(ctx context.Context, orderItem *models.CafeOrderItem) error {
	return r.db.WithContext(ctx).Create(orderItem).Error
}

func (r *orderItemRepository) GetByOrderID(ctx context.Context, orderID uint) ([]models.CafeOrderItem, error) {
	var orderItems []models.CafeOrderItem
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id").Find(&orderItems).Error
	return orderItems, err
}

func (r *orderItemRepository) CountByProductID(ctx context.Context, productID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CafeOrderItem{}).Where("product_id = ?", productID).Count(&count).Error
	return count, err
}
