package utils

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/QhromaLabs/aquavolt-sub001/models"
)

// The gateway expects timestamps in Nairobi time whatever timezone the server
// runs in.
var eatZone = time.FixedZone("EAT", 3*60*60)

// StkTimestamp formats t as YYYYMMDDHHMMSS in the gateway's fixed UTC+3 zone.
func StkTimestamp(t time.Time) string {
	return t.In(eatZone).Format("20060102150405")
}

// StkPassword derives the push-payment password for a shortcode at the given
// timestamp.
func StkPassword(shortcode, passkey, timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(shortcode + passkey + timestamp))
}

// ClassifyResultCode maps a gateway result code to a payment status. The
// mapping is total: anything the gateway invents later lands on failed.
func ClassifyResultCode(code int) string {
	switch code {
	case 0:
		return models.PaymentStatusSuccess
	case 1032:
		return models.PaymentStatusCancelled
	case 1037:
		return models.PaymentStatusTimeout
	default:
		return models.PaymentStatusFailed
	}
}

// FormatTransactionDate reformats the gateway's packed YYYYMMDDHHMMSS value
// into a readable date-time. Unparseable input is passed through untouched.
func FormatTransactionDate(packed string) string {
	t, err := time.Parse("20060102150405", packed)
	if err != nil {
		return packed
	}
	return t.Format("2006-01-02 15:04:05")
}

type StkCallbackItem struct {
	Name  string      `json:"Name"`
	Value interface{} `json:"Value"`
}

type StkCallback struct {
	MerchantRequestID string `json:"MerchantRequestID"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
	ResultCode        int    `json:"ResultCode"`
	ResultDesc        string `json:"ResultDesc"`
	CallbackMetadata  struct {
		Item []StkCallbackItem `json:"Item"`
	} `json:"CallbackMetadata"`
}

// StkCallbackPayload is the envelope the gateway posts to the callback URL.
type StkCallbackPayload struct {
	Body struct {
		StkCallback StkCallback `json:"stkCallback"`
	} `json:"Body"`
}

func (cb *StkCallback) metadataValue(name string) (interface{}, bool) {
	for _, item := range cb.CallbackMetadata.Item {
		if item.Name == name {
			return item.Value, true
		}
	}
	return nil, false
}

// ReceiptNumber returns the MpesaReceiptNumber metadata item, if present.
func (cb *StkCallback) ReceiptNumber() string {
	v, ok := cb.metadataValue("MpesaReceiptNumber")
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// TransactionDate returns the packed numeric transaction-date string. The
// gateway sends it as a JSON number, so it usually arrives as a float64.
func (cb *StkCallback) TransactionDate() string {
	v, ok := cb.metadataValue("TransactionDate")
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

type StkPushResponse struct {
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	CustomerMessage     string `json:"CustomerMessage"`
	ErrorMessage        string `json:"errorMessage"`
}

// Accepted reports whether the gateway accepted the push request. A non-"0"
// ResponseCode is the gateway's normal rejection channel, not a transport
// failure.
func (r *StkPushResponse) Accepted() bool {
	return r.ResponseCode == "0"
}

// Message picks the most useful human-readable string out of a rejection.
func (r *StkPushResponse) Message() string {
	if r.ErrorMessage != "" {
		return r.ErrorMessage
	}
	if r.ResponseDescription != "" {
		return r.ResponseDescription
	}
	return "Payment request was rejected by the gateway"
}

// MpesaClient talks to the mobile-money gateway. Credentials are read fresh
// from the store on every call.
type MpesaClient struct {
	Settings SettingsProvider
	HTTP     *http.Client
}

func NewMpesaClient(settings SettingsProvider) *MpesaClient {
	return &MpesaClient{
		Settings: settings,
		HTTP:     &http.Client{Timeout: 30 * time.Second},
	}
}

// AccessToken performs the client-credentials exchange. The whole payment
// initiation fails if this does not return HTTP success.
func (m *MpesaClient) AccessToken() (string, error) {
	cred, err := m.Settings.Credentials(models.ServiceMpesa)
	if err != nil {
		return "", fmt.Errorf("mpesa credentials: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost,
		strings.TrimRight(cred.BaseURL, "/")+"/oauth/v1/generate?grant_type=client_credentials", nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(cred.ConsumerKey, cred.ConsumerSecret)

	resp, err := m.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token exchange returned status %d: %s", resp.StatusCode, string(body))
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", errors.New("token exchange returned an empty access_token")
	}
	return out.AccessToken, nil
}

// STKPush submits a push-payment request for the normalized phone number.
func (m *MpesaClient) STKPush(accessToken, phoneNumber string, amount float64, accountReference, description string) (*StkPushResponse, error) {
	cred, err := m.Settings.Credentials(models.ServiceMpesa)
	if err != nil {
		return nil, fmt.Errorf("mpesa credentials: %w", err)
	}

	timestamp := StkTimestamp(time.Now())
	payload := map[string]interface{}{
		"BusinessShortCode": cred.Shortcode,
		"Password":          StkPassword(cred.Shortcode, cred.Passkey, timestamp),
		"Timestamp":         timestamp,
		"TransactionType":   "CustomerPayBillOnline",
		"Amount":            amount,
		"PartyA":            phoneNumber,
		"PartyB":            cred.Shortcode,
		"PhoneNumber":       phoneNumber,
		"CallBackURL":       cred.CallbackURL,
		"AccountReference":  accountReference,
		"TransactionDesc":   description,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost,
		strings.TrimRight(cred.BaseURL, "/")+"/mpesa/stkpush/v1/processrequest", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := m.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	var out StkPushResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("unexpected gateway response: %s", string(respBody))
	}
	return &out, nil
}
