package models

import "gorm.io/gorm"

type Unit struct {
	gorm.Model
	UnitCode     string `gorm:"unique;not null" json:"unit_code"`
	MeterNumber  string `gorm:"not null" json:"meter_number"`
	PropertyName string `json:"property_name"`
	TenantID     *uint  `gorm:"index" json:"tenant_id"`
}
