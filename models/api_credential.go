package models

import (
	"time"

	"gorm.io/gorm"
)

// Services with a credential row.
const (
	ServiceMpesa  = "mpesa"
	ServiceVendor = "vendor"
	ServiceSms    = "sms"
)

// ApiCredential holds per-provider secrets and the vendor's cached access
// token. One row per service; updated in place, last writer wins.
type ApiCredential struct {
	gorm.Model
	Service        string     `gorm:"unique;not null" json:"service"`
	BaseURL        string     `json:"base_url"`
	ConsumerKey    string     `json:"consumer_key"`
	ConsumerSecret string     `json:"-"`
	Shortcode      string     `json:"shortcode"`
	Passkey        string     `json:"-"`
	CallbackURL    string     `json:"callback_url"`
	Username       string     `json:"username"`
	ApiKey         string     `json:"-"`
	SenderID       string     `json:"sender_id"`
	AccessToken    string     `json:"-"`
	TokenExpiry    *time.Time `json:"token_expiry"`
}

func (ApiCredential) TableName() string {
	return "api_credentials"
}
