package models

import "gorm.io/gorm"

type Tenant struct {
	gorm.Model
	Name        string `gorm:"not null" json:"name"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
}
