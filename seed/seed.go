// seed/seed.go
package seed

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/QhromaLabs/aquavolt-sub001/models"
	"github.com/QhromaLabs/aquavolt-sub001/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedDefaultSettings writes the fee, tariff and SMS template rows if they do
// not exist yet. Existing values are never overwritten.
func SeedDefaultSettings() error {
	defaults := map[string]string{
		models.SettingServiceFeePercent: fmt.Sprintf("%g", utils.DefaultFeePercent),
		models.SettingTariffPerUnit:     fmt.Sprintf("%g", utils.DefaultTariff),
		models.SettingSmsTemplate:       utils.DefaultSmsTemplate,
	}

	for key, value := range defaults {
		var existing models.AdminSetting
		err := utils.DB.Where("setting_key = ?", key).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := utils.DB.Create(&models.AdminSetting{Key: key, Value: value}).Error; err != nil {
			return err
		}
		log.Printf("Seeded default setting %s", key)
	}

	return nil
}

// SeedAdminUser bootstraps the first admin account from ADMIN_EMAIL and
// ADMIN_PASSWORD. Skipped when the variables are unset or the user exists.
func SeedAdminUser() {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("ADMIN_EMAIL/ADMIN_PASSWORD not set. Skipping admin bootstrap.")
		return
	}

	var existing models.User
	if err := utils.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Failed to hash admin password: %v", err)
		return
	}

	admin := models.User{
		Email:    email,
		Password: string(hashed),
		Role:     models.RoleAdmin,
	}
	if err := utils.DB.Create(&admin).Error; err != nil {
		log.Printf("Failed to seed admin user: %v", err)
		return
	}

	log.Printf("Admin user %s seeded successfully.", email)
}
