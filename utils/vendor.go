package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/QhromaLabs/aquavolt-sub001/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VendResult is the tagged outcome of a vendor charge call. Callers must
// branch on Success; nothing here panics past the client boundary.
type VendResult struct {
	Success       bool
	Token         string
	TransactionID string
	MeterNumber   string
	Units         float64
	ClearTime     string
	Error         string
}

// VendorClient talks to the prepaid-meter vendor. It keeps the vendor's
// bearer token in the credentials row and refreshes it when the stored expiry
// has passed. Concurrent refreshes can race; last write to the row wins.
type VendorClient struct {
	DB       *gorm.DB
	Settings SettingsProvider
	HTTP     *http.Client
}

func NewVendorClient(db *gorm.DB, settings SettingsProvider) *VendorClient {
	return &VendorClient{
		DB:       db,
		Settings: settings,
		HTTP:     &http.Client{Timeout: 30 * time.Second},
	}
}

type vendorAuthResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		Token  string `json:"token"`
		Expire int64  `json:"expire"` // seconds until the token expires
	} `json:"data"`
}

func (v *VendorClient) accessToken(cred *models.ApiCredential) (string, error) {
	if cred.AccessToken != "" && cred.TokenExpiry != nil && time.Now().Before(*cred.TokenExpiry) {
		return cred.AccessToken, nil
	}

	body, _ := json.Marshal(map[string]string{
		"username": cred.Username,
		"password": cred.ApiKey,
	})
	resp, err := v.HTTP.Post(strings.TrimRight(cred.BaseURL, "/")+"/api/token", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	var out vendorAuthResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("unexpected vendor auth response: %s", string(respBody))
	}
	if out.Code != 200 || out.Data.Token == "" {
		return "", fmt.Errorf("vendor auth rejected: %s", out.Msg)
	}

	expiry := time.Now().Add(time.Duration(out.Data.Expire) * time.Second)
	if err := v.DB.Model(&models.ApiCredential{}).
		Where("service = ?", models.ServiceVendor).
		Updates(map[string]interface{}{"access_token": out.Data.Token, "token_expiry": expiry}).Error; err != nil {
		log.Printf("Failed to store refreshed vendor token: %v", err)
	}
	return out.Data.Token, nil
}

type vendorChargeResponse struct {
	Code      int    `json:"code"`
	Msg       string `json:"msg"`
	RequestID string `json:"requestId"`
	Data      struct {
		Form      string  `json:"form"`
		FlowNo    string  `json:"flowNo"`
		MeterNo   string  `json:"meterNo"`
		Value     float64 `json:"value"`
		ClearTime string  `json:"clearTime"`
	} `json:"data"`
}

// Vend charges meterNo with the given number of units. Every call leaves one
// token_vend audit row behind, success or not.
func (v *VendorClient) Vend(meterNo string, units float64) VendResult {
	request, _ := json.Marshal(map[string]interface{}{
		"meterNo": meterNo,
		"money":   units,
	})

	cred, err := v.Settings.Credentials(models.ServiceVendor)
	if err != nil {
		v.audit("failed", string(request), err.Error())
		return VendResult{Error: "vendor credentials are not configured"}
	}

	token, err := v.accessToken(cred)
	if err != nil {
		v.audit("failed", string(request), err.Error())
		return VendResult{Error: err.Error()}
	}

	req, err := http.NewRequest(http.MethodPost,
		strings.TrimRight(cred.BaseURL, "/")+"/api/charge", bytes.NewReader(request))
	if err != nil {
		v.audit("failed", string(request), err.Error())
		return VendResult{Error: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.HTTP.Do(req)
	if err != nil {
		v.audit("failed", string(request), err.Error())
		return VendResult{Error: err.Error()}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	var out vendorChargeResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		v.audit("failed", string(request), string(respBody))
		return VendResult{Error: fmt.Sprintf("unexpected vendor response: %s", string(respBody))}
	}

	if out.Code != 200 {
		v.audit("failed", string(request), string(respBody))
		return VendResult{Error: out.Msg}
	}

	v.audit("success", string(request), string(respBody))
	return VendResult{
		Success:       true,
		Token:         out.Data.Form,
		TransactionID: out.Data.FlowNo,
		MeterNumber:   out.Data.MeterNo,
		Units:         out.Data.Value,
		ClearTime:     out.Data.ClearTime,
	}
}

func (v *VendorClient) audit(status, request, response string) {
	entry := models.ApiLog{
		LogType:    "token_vend",
		Status:     status,
		RequestRef: uuid.NewString(),
		Request:    request,
		Response:   response,
	}
	if err := v.DB.Create(&entry).Error; err != nil {
		log.Printf("Failed to write token_vend audit log: %v", err)
	}
}
