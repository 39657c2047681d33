package models

import "gorm.io/gorm"

const (
	SmsStatusSuccess = "success"
	SmsStatusFailed  = "failed"
	SmsStatusSkipped = "skipped"
)

// SmsLog records every confirmation attempt, including the ones that never
// reached the provider. It is an audit trail, not a retry queue.
type SmsLog struct {
	gorm.Model
	Phone        string `gorm:"not null" json:"phone"`
	Message      string `gorm:"type:text" json:"message"`
	Status       string `gorm:"not null" json:"status"`
	Provider     string `json:"provider"`
	Response     string `gorm:"type:text" json:"response"`
	ErrorMessage string `json:"error_message"`
	TopupID      *uint  `gorm:"index" json:"topup_id"`
}
