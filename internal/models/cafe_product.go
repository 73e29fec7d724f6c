package models

import (
	"time"
)

type CafeProduct struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Name          string    `json:"name" gorm:"not null"`
	Description   string    `json:"description" gorm:"type:text"`
	Category      string    `json:"category" gorm:"not null;index"` // food, beverage, supplement, other
	Price         float64   `json:"price" gorm:"type:decimal(10,2);not null"`
	CostPrice     float64   `json:"cost_price" gorm:"type:decimal(10,2);not null"`
	StockQuantity int       `json:"stock_quantity" gorm:"not null;default:0"`
	Status        string    `json:"status" gorm:"default:'active'"` // active, inactive
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ProductCategory string

const (
	CategoryFood       ProductCategory = "food"
	CategoryBeverage   ProductCategory = "beverage"
	CategorySupplement ProductCategory = "supplement"
	CategoryOther      ProductCategory = "other"
)

func ValidProductCategory(category string) bool {
	switch ProductCategory(category) {
	case CategoryFood, CategoryBeverage, CategorySupplement, CategoryOther:
		return true
	}
	return false
}

type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductInactive ProductStatus = "inactive"
)

func ValidProductStatus(status string) bool {
	return status == string(ProductActive) || status == string(ProductInactive)
}
