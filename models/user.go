package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleAdmin     = "admin"
	RoleLandlord  = "landlord"
	RoleCaretaker = "caretaker"
	RoleTenant    = "tenant"
	RoleAgent     = "agent"
)

type User struct {
	gorm.Model
	Email        string     `gorm:"unique;not null" json:"email"`
	PhoneNumber  string     `json:"phone_number"`
	Password     string     `gorm:"not null" json:"-"`
	Role         string     `gorm:"not null" json:"role"`
	TenantID     *uint      `gorm:"index" json:"tenant_id"`
	LastLogoutAt *time.Time `gorm:"column:last_logout_at" json:"-"`
}
