package models

import (
	"time"
)

type Member struct {
	ID                    uint            `json:"id" gorm:"primaryKey"`
	MemberCode            string          `json:"member_code" gorm:"size:32;uniqueIndex;not null"`
	FirstName             string          `json:"first_name" gorm:"not null"`
	LastName              string          `json:"last_name" gorm:"not null"`
	Email                 string          `json:"email"`
	Phone                 string          `json:"phone" gorm:"not null;index"`
	DateOfBirth           *time.Time      `json:"date_of_birth" gorm:"type:date"`
	Gender                string          `json:"gender"`
	Address               string          `json:"address" gorm:"type:text"`
	EmergencyContactName  string          `json:"emergency_contact_name"`
	EmergencyContactPhone string          `json:"emergency_contact_phone"`
	MembershipPlanID      *uint           `json:"membership_plan_id" gorm:"index"`
	MembershipPlan        *MembershipPlan `json:"membership_plan,omitempty" gorm:"foreignKey:MembershipPlanID"`
	MembershipStart       *time.Time      `json:"membership_start" gorm:"type:date"`
	MembershipEnd         *time.Time      `json:"membership_end" gorm:"type:date;index"`
	Status                string          `json:"status" gorm:"default:'active';index"` // active, inactive, pending
	Notes                 string          `json:"notes" gorm:"type:text"`
	CreatedBy             uint            `json:"created_by"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

func (m *Member) FullName() string {
	return m.FirstName + " " + m.LastName
}

type MemberStatus string

const (
	MemberActive   MemberStatus = "active"
	MemberInactive MemberStatus = "inactive"
	MemberPending  MemberStatus = "pending"
)

func ValidMemberStatus(status string) bool {
	switch MemberStatus(status) {
	case MemberActive, MemberInactive, MemberPending:
		return true
	}
	return false
}

// MembershipHistory is append-only: one row per enrollment or renewal.
type MembershipHistory struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	MemberID  uint      `json:"member_id" gorm:"not null;index"`
	PlanID    uint      `json:"plan_id" gorm:"not null;index"`
	StartDate time.Time `json:"start_date" gorm:"type:date;not null"`
	EndDate   time.Time `json:"end_date" gorm:"type:date;not null"`
	PaymentID *uint     `json:"payment_id"`
	Status    string    `json:"status" gorm:"default:'active'"`
	CreatedAt time.Time `json:"created_at"`
}

func (MembershipHistory) TableName() string {
	return "membership_history"
}
