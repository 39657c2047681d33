package utils

import (
	"strconv"
	"strings"

	"github.com/QhromaLabs/aquavolt-sub001/models"

	"gorm.io/gorm"
)

// Fallbacks used when the corresponding admin_settings row is missing or
// unparseable.
const (
	DefaultFeePercent  = 5.0
	DefaultTariff      = 28.0
	DefaultSmsTemplate = "Meter {meter}: token {token}. Units: {units}. Amount: KES {amount}. Thank you {name}."
)

// SettingsProvider is how the vending flow reads tunables and provider
// credentials. Every call goes back to the store; nothing is cached across
// invocations, so an admin edit takes effect on the next payment.
type SettingsProvider interface {
	Setting(key string) (string, error)
	Credentials(service string) (*models.ApiCredential, error)
	FeePercent() float64
	Tariff() float64
	SmsTemplate() string
}

type DBSettings struct {
	DB *gorm.DB
}

func (s *DBSettings) Setting(key string) (string, error) {
	var row models.AdminSetting
	if err := s.DB.Where("setting_key = ?", key).First(&row).Error; err != nil {
		return "", err
	}
	return row.Value, nil
}

func (s *DBSettings) Credentials(service string) (*models.ApiCredential, error) {
	var cred models.ApiCredential
	if err := s.DB.Where("service = ?", service).First(&cred).Error; err != nil {
		return nil, err
	}
	return &cred, nil
}

func (s *DBSettings) FeePercent() float64 {
	return s.floatSetting(models.SettingServiceFeePercent, DefaultFeePercent)
}

// Tariff is KES per vendable unit. A zero or negative tariff would make the
// unit computation divide by zero, so it falls back to the default.
func (s *DBSettings) Tariff() float64 {
	v := s.floatSetting(models.SettingTariffPerUnit, DefaultTariff)
	if v <= 0 {
		return DefaultTariff
	}
	return v
}

func (s *DBSettings) SmsTemplate() string {
	raw, err := s.Setting(models.SettingSmsTemplate)
	if err != nil || strings.TrimSpace(raw) == "" {
		return DefaultSmsTemplate
	}
	return raw
}

func (s *DBSettings) floatSetting(key string, fallback float64) float64 {
	raw, err := s.Setting(key)
	if err != nil {
		return fallback
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
