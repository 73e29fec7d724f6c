package models

import (
	"time"
)

type CafeOrder struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	OrderNumber   string          `json:"order_number" gorm:"size:40;unique;not null"`
	MemberID      *uint           `json:"member_id" gorm:"index"` // nil for guest checkout
	TotalAmount   float64         `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	PaymentMethod string          `json:"payment_method" gorm:"not null"`
	Status        string          `json:"status" gorm:"default:'completed';index"` // completed, cancelled
	CreatedBy     uint            `json:"created_by" gorm:"not null"`
	CancelledAt   *time.Time      `json:"cancelled_at"`
	Items         []CafeOrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type OrderStatus string

const (
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)
