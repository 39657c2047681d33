package models

import "gorm.io/gorm"

// Keys understood by the vending flow. Values live in the database so admins
// can change tariffs without a redeploy; they are read fresh on every
// operation.
const (
	SettingServiceFeePercent = "service_fee_percent"
	SettingTariffPerUnit     = "tariff_per_unit"
	SettingSmsTemplate       = "sms_template"
)

type AdminSetting struct {
	gorm.Model
	Key   string `gorm:"column:setting_key;unique;not null" json:"key"`
	Value string `gorm:"column:setting_value;type:text" json:"value"`
}

func (AdminSetting) TableName() string {
	return "admin_settings"
}
