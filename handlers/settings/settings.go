package settings

import (
	"net/http"

	"github.com/QhromaLabs/aquavolt-sub001/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	DB *gorm.DB
}

// GetSettings returns all tunables (fee percent, tariff, SMS template).
func (h *Handler) GetSettings(c *gin.Context) {
	var rows []models.AdminSetting
	if err := h.DB.Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch settings"})
		return
	}

	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	c.JSON(http.StatusOK, gin.H{"settings": out})
}

// UpdateSettings upserts the posted key/value pairs. Changes take effect on
// the next payment; nothing is cached.
func (h *Handler) UpdateSettings(c *gin.Context) {
	var body map[string]string
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	for key, value := range body {
		var row models.AdminSetting
		if err := h.DB.Where("setting_key = ?", key).First(&row).Error; err != nil {
			row = models.AdminSetting{Key: key, Value: value}
			if err := h.DB.Create(&row).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save setting " + key})
				return
			}
			continue
		}
		row.Value = value
		if err := h.DB.Save(&row).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save setting " + key})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Settings updated"})
}

// UpdateCredential upserts the credential row for one of the known services.
func (h *Handler) UpdateCredential(c *gin.Context) {
	service := c.Param("service")
	if service != models.ServiceMpesa && service != models.ServiceVendor && service != models.ServiceSms {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown service"})
		return
	}

	var body struct {
		BaseURL        string `json:"base_url"`
		ConsumerKey    string `json:"consumer_key"`
		ConsumerSecret string `json:"consumer_secret"`
		Shortcode      string `json:"shortcode"`
		Passkey        string `json:"passkey"`
		CallbackURL    string `json:"callback_url"`
		Username       string `json:"username"`
		ApiKey         string `json:"api_key"`
		SenderID       string `json:"sender_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	var cred models.ApiCredential
	if err := h.DB.Where("service = ?", service).First(&cred).Error; err != nil {
		cred = models.ApiCredential{Service: service}
	}

	cred.BaseURL = body.BaseURL
	cred.ConsumerKey = body.ConsumerKey
	cred.ConsumerSecret = body.ConsumerSecret
	cred.Shortcode = body.Shortcode
	cred.Passkey = body.Passkey
	cred.CallbackURL = body.CallbackURL
	cred.Username = body.Username
	cred.ApiKey = body.ApiKey
	cred.SenderID = body.SenderID

	if err := h.DB.Save(&cred).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Credentials updated", "service": service})
}
