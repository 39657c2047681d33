package payments

import (
	"log"
	"net/http"
	"strings"

	"github.com/QhromaLabs/aquavolt-sub001/models"
	"github.com/QhromaLabs/aquavolt-sub001/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler wires the purchase flow together. Settings and credentials are read
// through the provider on every request, never cached here.
type Handler struct {
	DB       *gorm.DB
	Settings utils.SettingsProvider
	Gateway  *utils.MpesaClient
	Vendor   *utils.VendorClient
	SMS      *utils.SmsSender
}

type initiatePaymentRequest struct {
	PhoneNumber string  `json:"phone_number"`
	Amount      float64 `json:"amount"`
	UnitID      *uint   `json:"unit_id"`
	TenantID    *uint   `json:"tenant_id"`
}

// InitiateMpesaPayment submits an STK push for a token purchase and records
// the pending payment. Gateway rejections come back as HTTP 200 with
// success:false; only transport-level trouble produces a 5xx.
func (h *Handler) InitiateMpesaPayment(c *gin.Context) {
	var req initiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request payload"})
		return
	}

	if strings.TrimSpace(req.PhoneNumber) == "" || req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Phone number and a positive amount are required"})
		return
	}

	phone := utils.NormalizeMsisdn(req.PhoneNumber)

	accountReference := "AQUAVOLT"
	if req.UnitID != nil {
		var unit models.Unit
		if err := h.DB.First(&unit, *req.UnitID).Error; err == nil {
			accountReference = unit.UnitCode
		}
	}

	accessToken, err := h.Gateway.AccessToken()
	if err != nil {
		log.Printf("Gateway token exchange failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Could not reach the payment gateway. Please try again."})
		return
	}

	resp, err := h.Gateway.STKPush(accessToken, phone, req.Amount, accountReference, "Prepaid electricity purchase")
	if err != nil {
		log.Printf("STK push failed for %s: %v", phone, err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Could not reach the payment gateway. Please try again."})
		return
	}

	if !resp.Accepted() {
		// Normal rejection channel, not an error.
		c.JSON(http.StatusOK, gin.H{"success": false, "message": resp.Message()})
		return
	}

	payment := models.MpesaPayment{
		CheckoutRequestID: resp.CheckoutRequestID,
		MerchantRequestID: resp.MerchantRequestID,
		PhoneNumber:       phone,
		Amount:            req.Amount,
		UnitID:            req.UnitID,
		TenantID:          req.TenantID,
		Status:            models.PaymentStatusPending,
	}
	if err := h.DB.Create(&payment).Error; err != nil {
		log.Printf("Failed to record pending payment %s: %v", resp.CheckoutRequestID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Payment was submitted but could not be recorded. Contact support."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"checkout_request_id": resp.CheckoutRequestID,
		"customer_message":    resp.CustomerMessage,
	})
}

// PaymentStatus is what the purchasing client polls after an STK push.
func (h *Handler) PaymentStatus(c *gin.Context) {
	checkoutID := c.Param("checkout_id")

	var payment models.MpesaPayment
	if err := h.DB.Where("checkout_request_id = ?", checkoutID).First(&payment).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		return
	}

	out := gin.H{
		"status":         payment.Status,
		"receipt_number": payment.ReceiptNumber,
	}

	switch payment.Status {
	case models.PaymentStatusSuccess:
		if payment.TokenVended {
			out["status"] = "vended"
			if payment.TopupID != nil {
				var topup models.Topup
				if err := h.DB.First(&topup, *payment.TopupID).Error; err == nil {
					out["token"] = topup.Token
					out["units"] = topup.AmountVended
				}
			}
		} else {
			// Paid but the vend did not go through; keep diagnostics internal.
			out["status"] = "error"
			out["message"] = "We could not complete your purchase. Please check your purchase history."
		}
	case models.PaymentStatusFailed, models.PaymentStatusCancelled:
		out["status"] = "error"
		out["message"] = "We could not complete your purchase. Please check your purchase history."
	case models.PaymentStatusTimeout:
		out["status"] = "timeout"
	}

	c.JSON(http.StatusOK, out)
}
