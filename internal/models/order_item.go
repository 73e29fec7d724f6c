package models

import (
	"time"
)

// CafeOrderItem snapshots the product name and unit price at order time.
type CafeOrderItem struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	OrderID     uint      `json:"order_id" gorm:"not null;index"`
	ProductID   uint      `json:"product_id" gorm:"not null;index"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity" gorm:"not null"`
	UnitPrice   float64   `json:"unit_price" gorm:"type:decimal(10,2);not null"`
	Subtotal    float64   `json:"subtotal" gorm:"type:decimal(10,2);not null"`
	CreatedAt   time.Time `json:"created_at"`
}
