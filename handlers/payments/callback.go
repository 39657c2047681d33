package payments

import (
	"encoding/json"
	"io"
	"log"
	"math"
	"net/http"

	"github.com/QhromaLabs/aquavolt-sub001/models"
	"github.com/QhromaLabs/aquavolt-sub001/utils"

	"github.com/gin-gonic/gin"
)

// MpesaCallback receives the gateway's asynchronous payment result. The
// gateway retries the same notification on anything but a timely 200, so this
// handler always acks and keeps internal failures to the logs.
func (h *Handler) MpesaCallback(c *gin.Context) {
	ack := gin.H{"result": "ok"}

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Printf("Failed to read callback body: %v", err)
		c.JSON(http.StatusOK, ack)
		return
	}

	var payload utils.StkCallbackPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Printf("Malformed callback payload: %v", err)
		c.JSON(http.StatusOK, ack)
		return
	}

	cb := payload.Body.StkCallback
	if cb.CheckoutRequestID == "" {
		log.Printf("Callback without a CheckoutRequestID, ignoring")
		c.JSON(http.StatusOK, ack)
		return
	}

	var payment models.MpesaPayment
	if err := h.DB.Where("checkout_request_id = ?", cb.CheckoutRequestID).First(&payment).Error; err != nil {
		log.Printf("Callback for unknown checkout %s: %v", cb.CheckoutRequestID, err)
		c.JSON(http.StatusOK, ack)
		return
	}

	// Status only ever moves off pending. Re-deliveries for a settled payment
	// skip straight to the idempotency gate below.
	if payment.Status == models.PaymentStatusPending {
		status := utils.ClassifyResultCode(cb.ResultCode)
		updates := map[string]interface{}{
			"status":       status,
			"result_code":  cb.ResultCode,
			"result_desc":  cb.ResultDesc,
			"raw_callback": string(raw),
		}
		if status == models.PaymentStatusSuccess {
			updates["receipt_number"] = cb.ReceiptNumber()
			updates["transaction_date"] = utils.FormatTransactionDate(cb.TransactionDate())
		}
		if err := h.DB.Model(&payment).Updates(updates).Error; err != nil {
			log.Printf("Failed to update payment %s: %v", cb.CheckoutRequestID, err)
			c.JSON(http.StatusOK, ack)
			return
		}
		code := cb.ResultCode
		payment.Status = status
		payment.ResultCode = &code
		payment.ResultDesc = cb.ResultDesc
		payment.ReceiptNumber = cb.ReceiptNumber()
	}

	h.settleVend(&payment)

	c.JSON(http.StatusOK, ack)
}

// settleVend runs the idempotency gate and, when it wins the claim, converts
// the paid amount into units, vends, records the topup and notifies the
// customer. Everything in here is logged-and-swallowed; the callback ack
// never depends on it.
func (h *Handler) settleVend(payment *models.MpesaPayment) {
	if payment.Status != models.PaymentStatusSuccess || payment.TokenVended || payment.UnitID == nil {
		return
	}

	// Atomic claim: of two near-simultaneous deliveries for the same checkout
	// id, only one sees RowsAffected == 1.
	claim := h.DB.Model(&models.MpesaPayment{}).
		Where("checkout_request_id = ? AND token_vended = ? AND status = ?",
			payment.CheckoutRequestID, false, models.PaymentStatusSuccess).
		Update("token_vended", true)
	if claim.Error != nil {
		log.Printf("Vend claim failed for %s: %v", payment.CheckoutRequestID, claim.Error)
		return
	}
	if claim.RowsAffected == 0 {
		// Duplicate delivery; already vended or being vended. Not an error.
		return
	}

	var unit models.Unit
	if err := h.DB.First(&unit, *payment.UnitID).Error; err != nil {
		log.Printf("Vend aborted for %s, unit %d not found: %v", payment.CheckoutRequestID, *payment.UnitID, err)
		h.releaseClaim(payment.CheckoutRequestID)
		utils.SendVendFailureAlert(payment.CheckoutRequestID, "", payment.Amount, "unit not found")
		return
	}

	feePercent := h.Settings.FeePercent()
	tariff := h.Settings.Tariff()
	fee := round2(payment.Amount * feePercent / 100)
	units := round2((payment.Amount - fee) / tariff)

	result := h.Vendor.Vend(unit.MeterNumber, units)
	if !result.Success {
		log.Printf("Vend failed for checkout %s: %s", payment.CheckoutRequestID, result.Error)
		h.releaseClaim(payment.CheckoutRequestID)
		utils.SendVendFailureAlert(payment.CheckoutRequestID, unit.MeterNumber, payment.Amount, result.Error)
		return
	}

	// The vendor's reported unit count is authoritative; the local estimate
	// only covers responses that omit it.
	vended := units
	if result.Units > 0 {
		vended = result.Units
	}

	topup := models.Topup{
		UnitID:              unit.ID,
		TenantID:            payment.TenantID,
		AmountPaid:          payment.Amount,
		AmountVended:        vended,
		FeeAmount:           fee,
		Token:               result.Token,
		VendorTransactionID: result.TransactionID,
		VendorStatus:        "success",
		ReceiptNumber:       payment.ReceiptNumber,
	}
	if err := h.DB.Create(&topup).Error; err != nil {
		// The token is already issued. Keep the claim so a duplicate callback
		// cannot charge the vendor twice; this needs operator attention.
		log.Printf("CRITICAL: vended token for checkout %s but could not record topup: %v", payment.CheckoutRequestID, err)
		utils.SendVendFailureAlert(payment.CheckoutRequestID, unit.MeterNumber, payment.Amount, "token issued but topup row not recorded: "+err.Error())
		return
	}

	if err := h.DB.Model(&models.MpesaPayment{}).
		Where("checkout_request_id = ?", payment.CheckoutRequestID).
		Update("topup_id", topup.ID).Error; err != nil {
		log.Printf("Failed to link topup %d to payment %s: %v", topup.ID, payment.CheckoutRequestID, err)
	}
	payment.TokenVended = true
	topupID := topup.ID
	payment.TopupID = &topupID

	tenantName := ""
	if payment.TenantID != nil {
		var tenant models.Tenant
		if err := h.DB.First(&tenant, *payment.TenantID).Error; err == nil {
			tenantName = tenant.Name
		}
	}

	// Fire-and-forget relative to the vend: the SMS sender logs its own
	// outcome and never fails the flow.
	h.SMS.SendTopupConfirmation(&topup, payment.PhoneNumber, tenantName, unit.MeterNumber)
}

// releaseClaim re-opens the idempotency gate after a failed vend so the
// payment stays manually retryable.
func (h *Handler) releaseClaim(checkoutID string) {
	if err := h.DB.Model(&models.MpesaPayment{}).
		Where("checkout_request_id = ?", checkoutID).
		Update("token_vended", false).Error; err != nil {
		log.Printf("Failed to release vend claim for %s: %v", checkoutID, err)
	}
}

// RetryVend lets an admin re-run vending for a paid purchase whose vend
// failed. It goes through the same claim gate, so a double click cannot vend
// twice.
func (h *Handler) RetryVend(c *gin.Context) {
	checkoutID := c.Param("checkout_id")

	var payment models.MpesaPayment
	if err := h.DB.Where("checkout_request_id = ?", checkoutID).First(&payment).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		return
	}

	if payment.Status != models.PaymentStatusSuccess {
		c.JSON(http.StatusConflict, gin.H{"error": "Payment is not in a successful state"})
		return
	}
	if payment.TokenVended {
		c.JSON(http.StatusConflict, gin.H{"error": "Payment has already been vended"})
		return
	}
	if payment.UnitID == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Payment has no unit to vend for"})
		return
	}

	h.settleVend(&payment)

	c.JSON(http.StatusOK, gin.H{
		"checkout_request_id": payment.CheckoutRequestID,
		"token_vended":        payment.TokenVended,
		"topup_id":            payment.TopupID,
	})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
