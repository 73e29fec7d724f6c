package models

import (
	"time"
)

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"unique;not null"`
	Email        string    `json:"email" gorm:"unique;not null"`
	PhoneNumber  string    `json:"phone_number"`
	Role         string    `json:"role" gorm:"default:'staff'"` // super_admin, admin, staff
	PasswordHash string    `json:"-" gorm:"not null"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type UserRole string

const (
	SuperAdmin UserRole = "super_admin"
	Admin      UserRole = "admin"
	Staff      UserRole = "staff"
)

// HasRole reports whether the user holds one of the allowed roles.
func (u *User) HasRole(allowed ...UserRole) bool {
	for _, role := range allowed {
		if u.Role == string(role) {
			return true
		}
	}
	return false
}
