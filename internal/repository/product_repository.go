package repository

import (
	"context"

	"gym_manager/internal/models"

	"gorm.io/gorm"
)

type ProductFilter struct {
	Category string
	Status   string
	Search   string
}

type ProductRepository interface {
	Create(ctx context.Context, product *models.CafeProduct) error
	GetByID(ctx context.Context, id uint) (*models.CafeProduct, error)
	List(ctx context.Context, filter ProductFilter) ([]models.CafeProduct, error)
	Update(ctx context.Context, product *models.CafeProduct) error
	Delete(ctx context.Context, id uint) (int64, error)
	DecrementStock(ctx context.Context, id uint, quantity int) (int64, error)
	IncrementStock(ctx context.Context, id uint, quantity int) (int64, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *models.CafeProduct) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepository) GetByID(ctx context.Context, id uint) (*models.CafeProduct, error) {
	var product models.CafeProduct
	err := r.db.WithContext(ctx).First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]models.CafeProduct, error) {
	var products []models.CafeProduct
	q := r.db.WithContext(ctx).Order("category, name")
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		q = q.Where("name LIKE ?", "%"+filter.Search+"%")
	}
	err := q.Find(&products).Error
	return products, err
}

// Update writes every column except stock_quantity, which only moves through
// DecrementStock and IncrementStock.
func (r *productRepository) Update(ctx context.Context, product *models.CafeProduct) error {
	return r.db.WithContext(ctx).Model(product).Select("name", "description", "category", "price", "cost_price", "status").Updates(product).Error
}

func (r *productRepository) Delete(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.CafeProduct{}, id)
	return res.RowsAffected, res.Error
}

// DecrementStock is a single conditional UPDATE. Zero rows affected means the
// product is missing or holds less than quantity; the caller must treat that
// as a failed reservation.
func (r *productRepository) DecrementStock(ctx context.Context, id uint, quantity int) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.CafeProduct{}).
		Where("id = ? AND stock_quantity >= ?", id, quantity).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	return res.RowsAffected, res.Error
}

func (r *productRepository) IncrementStock(ctx context.Context, id uint, quantity int) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.CafeProduct{}).
		Where("id = ?", id).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", quantity))
	return res.RowsAffected, res.Error
}
