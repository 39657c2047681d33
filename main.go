package main

import (
	"log"
	"os"
	"time"

	"github.com/QhromaLabs/aquavolt-sub001/handlers/auth"
	"github.com/QhromaLabs/aquavolt-sub001/handlers/payments"
	"github.com/QhromaLabs/aquavolt-sub001/handlers/settings"
	"github.com/QhromaLabs/aquavolt-sub001/handlers/topups"
	"github.com/QhromaLabs/aquavolt-sub001/handlers/units"
	"github.com/QhromaLabs/aquavolt-sub001/migrations"
	"github.com/QhromaLabs/aquavolt-sub001/models"
	"github.com/QhromaLabs/aquavolt-sub001/seed"
	"github.com/QhromaLabs/aquavolt-sub001/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env file:", err)
	}
}

func main() {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"https://portal.aquavolt.co.ke"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
	}))

	utils.ConnectDatabase()

	migrations.MigrateConfig()
	migrations.MigrateDirectory()
	migrations.MigrateLedger()

	// Seed Initial Data
	if err := seed.SeedDefaultSettings(); err != nil {
		log.Fatalf("Failed to seed default settings: %v", err)
	}
	seed.SeedAdminUser()

	settingsProvider := &utils.DBSettings{DB: utils.DB}

	paymentHandler := &payments.Handler{
		DB:       utils.DB,
		Settings: settingsProvider,
		Gateway:  utils.NewMpesaClient(settingsProvider),
		Vendor:   utils.NewVendorClient(utils.DB, settingsProvider),
		SMS:      utils.NewSmsSender(utils.DB, settingsProvider),
	}
	topupHandler := &topups.Handler{DB: utils.DB}
	unitHandler := &units.Handler{DB: utils.DB}
	settingHandler := &settings.Handler{DB: utils.DB}

	r.POST("/login", auth.Login)
	r.POST("/mpesa/callback", paymentHandler.MpesaCallback)

	protected := r.Group("/")
	protected.Use(auth.AuthMiddleware())
	{
		protected.POST("/initiate-mpesa-payment", paymentHandler.InitiateMpesaPayment)
		protected.GET("/payments/:checkout_id/status", paymentHandler.PaymentStatus)
		protected.GET("/topups", topupHandler.ListTopups)
		protected.GET("/units", unitHandler.ListUnits)
	}

	admin := r.Group("/admin")
	admin.Use(auth.AuthMiddleware(), auth.RequireRole(models.RoleAdmin, models.RoleLandlord))
	{
		admin.GET("/settings", settingHandler.GetSettings)
		admin.PUT("/settings", settingHandler.UpdateSettings)
		admin.PUT("/credentials/:service", settingHandler.UpdateCredential)
		admin.POST("/units", unitHandler.CreateUnit)
		admin.POST("/payments/:checkout_id/retry-vend", paymentHandler.RetryVend)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
