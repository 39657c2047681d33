package models

import "gorm.io/gorm"

// Topup is the ledger of issued meter tokens. Rows are append-only: once a
// vendor token has been recorded it is never edited or removed.
type Topup struct {
	gorm.Model
	UnitID              uint    `gorm:"not null;index" json:"unit_id"`
	TenantID            *uint   `gorm:"index" json:"tenant_id"`
	AmountPaid          float64 `gorm:"not null" json:"amount_paid"`
	AmountVended        float64 `gorm:"not null" json:"amount_vended"`
	FeeAmount           float64 `json:"fee_amount"`
	Token               string  `gorm:"not null" json:"token"`
	VendorTransactionID string  `json:"vendor_transaction_id"`
	VendorStatus        string  `json:"vendor_status"`
	VendorMessage       string  `json:"vendor_message"`
	ReceiptNumber       string  `json:"receipt_number"`
}
