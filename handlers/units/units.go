package units

import (
	"net/http"
	"strings"

	"github.com/QhromaLabs/aquavolt-sub001/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	DB *gorm.DB
}

func (h *Handler) ListUnits(c *gin.Context) {
	var units []models.Unit
	if err := h.DB.Order("unit_code").Find(&units).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch units"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"units": units})
}

func (h *Handler) CreateUnit(c *gin.Context) {
	var req struct {
		UnitCode     string `json:"unit_code"`
		MeterNumber  string `json:"meter_number"`
		PropertyName string `json:"property_name"`
		TenantID     *uint  `json:"tenant_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	if strings.TrimSpace(req.UnitCode) == "" || strings.TrimSpace(req.MeterNumber) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unit_code and meter_number are required"})
		return
	}

	unit := models.Unit{
		UnitCode:     req.UnitCode,
		MeterNumber:  req.MeterNumber,
		PropertyName: req.PropertyName,
		TenantID:     req.TenantID,
	}
	if err := h.DB.Create(&unit).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create unit"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"unit": unit})
}
