package migrations

import (
	"github.com/QhromaLabs/aquavolt-sub001/models"
	"github.com/QhromaLabs/aquavolt-sub001/utils"
)

func MigrateConfig() {
	utils.DB.AutoMigrate(&models.AdminSetting{}, &models.ApiCredential{})
}

func MigrateDirectory() {
	utils.DB.AutoMigrate(&models.User{}, &models.Tenant{}, &models.Unit{})
}

func MigrateLedger() {
	utils.DB.AutoMigrate(&models.MpesaPayment{}, &models.Topup{}, &models.SmsLog{}, &models.ApiLog{})
}
