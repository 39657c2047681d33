package models

import "gorm.io/gorm"

// ApiLog keeps request/response snapshots of outbound vendor calls. One row
// per call regardless of outcome.
type ApiLog struct {
	gorm.Model
	LogType    string `gorm:"not null;index" json:"log_type"` // e.g. "token_vend"
	Status     string `gorm:"not null" json:"status"`
	RequestRef string `json:"request_ref"`
	Request    string `gorm:"type:text" json:"request"`
	Response   string `gorm:"type:text" json:"response"`
}
