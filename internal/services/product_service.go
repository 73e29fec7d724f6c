package services

import (
	"context"
	"fmt"
	"strings"

	"gym_manager/internal/models"
	"gym_manager/internal/repository"
)

type ProductInput struct {
	Name        string
	Description string
	Category    string
	Price       float64
	CostPrice   float64
	Status      string
	// Only read on create; later changes go through Restock or orders.
	StockQuantity int
}

type CafeProductService interface {
	CreateProduct(ctx context.Context, in ProductInput) (*models.CafeProduct, error)
	UpdateProduct(ctx context.Context, id uint, in ProductInput) (*models.CafeProduct, error)
	GetProduct(ctx context.Context, id uint) (*models.CafeProduct, error)
	ListProducts(ctx context.Context, filter repository.ProductFilter) ([]models.CafeProduct, error)
	DeleteProduct(ctx context.Context, id uint) error
}

type cafeProductService struct {
	store *repository.Store
}

func NewCafeProductService(store *repository.Store) CafeProductService {
	return &cafeProductService{store: store}
}

func validateProduct(in *ProductInput) error {
	in.Name = strings.TrimSpace(in.Name)
	switch {
	case in.Name == "":
		return validationErr("name", "is required")
	case !models.ValidProductCategory(in.Category):
		return validationErr("category", "must be food, beverage, supplement or other")
	case in.Price <= 0:
		return validationErr("price", "must be greater than zero")
	case in.CostPrice < 0:
		return validationErr("cost_price", "must not be negative")
	case in.StockQuantity < 0:
		return validationErr("stock_quantity", "must not be negative")
	}
	if in.Status == "" {
		in.Status = string(models.ProductActive)
	}
	if !models.ValidProductStatus(in.Status) {
		return validationErr("status", "must be active or inactive")
	}
	return nil
}

func (s *cafeProductService) CreateProduct(ctx context.Context, in ProductInput) (*models.CafeProduct, error) {
	if err := validateProduct(&in); err != nil {
		return nil, err
	}
	product := &models.CafeProduct{
		Name:          in.Name,
		Description:   in.Description,
		Category:      in.Category,
		Price:         roundMoney(in.Price),
		CostPrice:     roundMoney(in.CostPrice),
		StockQuantity: in.StockQuantity,
		Status:        in.Status,
	}
	if err := s.store.Products.Create(ctx, product); err != nil {
		return nil, translate(err, "create product", "cafe product", nil)
	}
	return product, nil
}

func (s *cafeProductService) UpdateProduct(ctx context.Context, id uint, in ProductInput) (*models.CafeProduct, error) {
	in.StockQuantity = 0
	if err := validateProduct(&in); err != nil {
		return nil, err
	}
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	product.Name = in.Name
	product.Description = in.Description
	product.Category = in.Category
	product.Price = roundMoney(in.Price)
	product.CostPrice = roundMoney(in.CostPrice)
	product.Status = in.Status
	if err := s.store.Products.Update(ctx, product); err != nil {
		return nil, translate(err, "update product", "cafe product", id)
	}
	return product, nil
}

func (s *cafeProductService) GetProduct(ctx context.Context, id uint) (*models.CafeProduct, error) {
	product, err := s.store.Products.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "load product", "cafe product", id)
	}
	return product, nil
}

func (s *cafeProductService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]models.CafeProduct, error) {
	if filter.Category != "" && !models.ValidProductCategory(filter.Category) {
		return nil, validationErr("category", "must be food, beverage, supplement or other")
	}
	if filter.Status != "" && !models.ValidProductStatus(filter.Status) {
		return nil, validationErr("status", "must be active or inactive")
	}
	products, err := s.store.Products.List(ctx, filter)
	if err != nil {
		return nil, translate(err, "list products", "cafe product", nil)
	}
	return products, nil
}

// DeleteProduct refuses products that appear on any order line, cancelled
// orders included, so order history keeps resolving.
func (s *cafeProductService) DeleteProduct(ctx context.Context, id uint) error {
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		used, err := tx.OrderItems.CountByProductID(ctx, id)
		if err != nil {
			return err
		}
		if used > 0 {
			return &InvalidStateError{
				Entity:  "cafe product",
				Message: fmt.Sprintf("product appears on %d order line(s); deactivate it instead", used),
			}
		}
		rows, err := tx.Products.Delete(ctx, id)
		if err != nil {
			return err
		}
		if rows == 0 {
			return &NotFoundError{Entity: "cafe product", ID: id}
		}
		return nil
	})
	return translate(err, "delete product", "cafe product", id)
}
