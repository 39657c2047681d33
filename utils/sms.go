package utils

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/QhromaLabs/aquavolt-sub001/models"

	"gorm.io/gorm"
)

const smsProvider = "africastalking"

// RenderSmsTemplate substitutes {placeholder} tokens in the template.
// Placeholders without a value are left in the message as-is.
func RenderSmsTemplate(template string, vars map[string]string) string {
	out := template
	for name, value := range vars {
		out = strings.ReplaceAll(out, "{"+name+"}", value)
	}
	return out
}

// SmsSender sends topup confirmations and records one SmsLog row per attempt,
// whatever the outcome.
type SmsSender struct {
	DB       *gorm.DB
	Settings SettingsProvider
	HTTP     *http.Client
}

func NewSmsSender(db *gorm.DB, settings SettingsProvider) *SmsSender {
	return &SmsSender{
		DB:       db,
		Settings: settings,
		HTTP:     &http.Client{Timeout: 15 * time.Second},
	}
}

type smsProviderResponse struct {
	SMSMessageData struct {
		Recipients []struct {
			Status string `json:"status"`
			Cost   string `json:"cost"`
		} `json:"Recipients"`
	} `json:"SMSMessageData"`
}

// SendTopupConfirmation sends exactly one SMS for the topup. A notification
// failure never unwinds the vend already recorded; the caller gets the log
// row, not an error.
func (s *SmsSender) SendTopupConfirmation(topup *models.Topup, phone, tenantName, meterNumber string) *models.SmsLog {
	message := RenderSmsTemplate(s.Settings.SmsTemplate(), map[string]string{
		"token":  topup.Token,
		"units":  strconv.FormatFloat(topup.AmountVended, 'f', -1, 64),
		"amount": strconv.FormatFloat(topup.AmountPaid, 'f', -1, 64),
		"meter":  meterNumber,
		"name":   tenantName,
	})
	to := PlusPhone(phone)

	cred, err := s.Settings.Credentials(models.ServiceSms)
	if err != nil || cred.BaseURL == "" || cred.Username == "" || cred.ApiKey == "" {
		return s.logAttempt(to, message, models.SmsStatusSkipped, "", "sms credentials are not configured", topup)
	}

	form := url.Values{}
	form.Set("username", cred.Username)
	form.Set("to", to)
	form.Set("message", message)
	if cred.SenderID != "" {
		form.Set("from", cred.SenderID)
	}

	req, err := http.NewRequest(http.MethodPost,
		strings.TrimRight(cred.BaseURL, "/")+"/version1/messaging", strings.NewReader(form.Encode()))
	if err != nil {
		return s.logAttempt(to, message, models.SmsStatusFailed, "", err.Error(), topup)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apiKey", cred.ApiKey)

	resp, err := s.HTTP.Do(req)
	if err != nil {
		return s.logAttempt(to, message, models.SmsStatusFailed, "", err.Error(), topup)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var out smsProviderResponse
	_ = json.Unmarshal(body, &out)

	status := models.SmsStatusFailed
	errMsg := "provider reported no successful recipient"
	if len(out.SMSMessageData.Recipients) > 0 && strings.EqualFold(out.SMSMessageData.Recipients[0].Status, "Success") {
		status = models.SmsStatusSuccess
		errMsg = ""
	}
	return s.logAttempt(to, message, status, string(body), errMsg, topup)
}

func (s *SmsSender) logAttempt(phone, message, status, response, errMsg string, topup *models.Topup) *models.SmsLog {
	entry := models.SmsLog{
		Phone:        phone,
		Message:      message,
		Status:       status,
		Provider:     smsProvider,
		Response:     response,
		ErrorMessage: errMsg,
	}
	if topup != nil && topup.ID != 0 {
		id := topup.ID
		entry.TopupID = &id
	}
	if err := s.DB.Create(&entry).Error; err != nil {
		log.Printf("Failed to write sms log: %v", err)
	}
	return &entry
}
