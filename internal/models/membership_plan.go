package models

import (
	"time"

	"gorm.io/datatypes"
)

type MembershipPlan struct {
	ID           uint                        `json:"id" gorm:"primaryKey"`
	Name         string                      `json:"name" gorm:"not null"`
	DurationDays int                         `json:"duration_days" gorm:"not null"`
	Price        float64                     `json:"price" gorm:"type:decimal(10,2);not null"`
	Description  string                      `json:"description" gorm:"type:text"`
	Features     datatypes.JSONSlice[string] `json:"features"`
	Status       string                      `json:"status" gorm:"default:'active'"` // active, inactive
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

type PlanStatus string

const (
	PlanActive   PlanStatus = "active"
	PlanInactive PlanStatus = "inactive"
)

func ValidPlanStatus(status string) bool {
	return status == string(PlanActive) || status == string(PlanInactive)
}
