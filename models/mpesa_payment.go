package models

import "gorm.io/gorm"

// Payment lifecycle. A payment starts as pending and moves to exactly one
// terminal state; terminal states never change again.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusSuccess   = "success"
	PaymentStatusFailed    = "failed"
	PaymentStatusCancelled = "cancelled"
	PaymentStatusTimeout   = "timeout"
)

type MpesaPayment struct {
	gorm.Model
	CheckoutRequestID string  `gorm:"unique;not null" json:"checkout_request_id"`
	MerchantRequestID string  `json:"merchant_request_id"`
	PhoneNumber       string  `gorm:"not null" json:"phone_number"`
	Amount            float64 `gorm:"not null" json:"amount"`
	UnitID            *uint   `gorm:"index" json:"unit_id"`
	TenantID          *uint   `gorm:"index" json:"tenant_id"`
	Status            string  `gorm:"not null;default:'pending'" json:"status"`
	ResultCode        *int    `json:"result_code"`
	ResultDesc        string  `json:"result_desc"`
	ReceiptNumber     string  `json:"receipt_number"`
	TransactionDate   string  `json:"transaction_date"`
	RawCallback       string  `gorm:"type:text" json:"-"`
	TokenVended       bool    `gorm:"default:false" json:"token_vended"`
	TopupID           *uint   `json:"topup_id"`
}
