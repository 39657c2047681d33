package topups

import (
	"net/http"

	"github.com/QhromaLabs/aquavolt-sub001/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	DB *gorm.DB
}

// ListTopups returns the purchase history, newest first, optionally filtered
// by unit or tenant.
func (h *Handler) ListTopups(c *gin.Context) {
	q := h.DB.Order("created_at DESC").Limit(100)
	if v := c.Query("unit_id"); v != "" {
		q = q.Where("unit_id = ?", v)
	}
	if v := c.Query("tenant_id"); v != "" {
		q = q.Where("tenant_id = ?", v)
	}

	var topups []models.Topup
	if err := q.Find(&topups).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch topups"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"topups": topups})
}
