package models

import (
	"time"
)

// Notification is an in-app notice shown to staff on the dashboard.
type Notification struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	MemberID  uint      `json:"member_id" gorm:"not null;index"`
	Type      string    `json:"type" gorm:"not null;index"` // membership_expired, membership_expiring
	Title     string    `json:"title" gorm:"not null"`
	Message   string    `json:"message" gorm:"type:text"`
	IsRead    bool      `json:"is_read" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

type NotificationType string

const (
	NotificationExpired  NotificationType = "membership_expired"
	NotificationExpiring NotificationType = "membership_expiring"
)

// NotificationLog records one delivery attempt through the SMS gateway.
type NotificationLog struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	MemberID        *uint     `json:"member_id" gorm:"index"`
	Phone           string    `json:"phone" gorm:"not null"`
	Message         string    `json:"message" gorm:"type:text;not null"`
	Type            string    `json:"type" gorm:"not null;index"` // welcome, expiry_reminder, bulk, custom
	Status          string    `json:"status" gorm:"not null"`     // sent, failed
	ProviderMessage string    `json:"provider_message" gorm:"type:text"`
	CreatedBy       uint      `json:"created_by"`
	CreatedAt       time.Time `json:"created_at" gorm:"index"`
}

type MessageType string

const (
	MessageWelcome        MessageType = "welcome"
	MessageExpiryReminder MessageType = "expiry_reminder"
	MessageBulk           MessageType = "bulk"
	MessageCustom         MessageType = "custom"
)

const (
	DeliverySent   = "sent"
	DeliveryFailed = "failed"
)
