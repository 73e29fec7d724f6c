package models

import (
	"time"
)

type ActivityLog struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	AdminID    uint      `json:"admin_id" gorm:"not null;index"`
	Action     string    `json:"action" gorm:"not null"` // member_enrolled, order_placed, ...
	EntityType string    `json:"entity_type" gorm:"not null"`
	EntityID   uint      `json:"entity_id"`
	Details    string    `json:"details" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at"`
}

const (
	ActionMemberEnrolled  = "member_enrolled"
	ActionMemberRenewed   = "member_renewed"
	ActionMemberDeleted   = "member_deleted"
	ActionPaymentRecorded = "payment_recorded"
	ActionOrderPlaced     = "order_placed"
	ActionOrderCancelled  = "order_cancelled"
	ActionProductRestock  = "product_restocked"
)
