package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/QhromaLabs/aquavolt-sub001/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func vendorTestSettings(baseURL string, token string, expiry time.Time) *stubSettings {
	return &stubSettings{
		creds: map[string]*models.ApiCredential{
			models.ServiceVendor: {
				Service:     models.ServiceVendor,
				BaseURL:     baseURL,
				Username:    "vendor-user",
				ApiKey:      "vendor-secret",
				AccessToken: token,
				TokenExpiry: &expiry,
			},
		},
	}
}

func TestVendSuccess(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/charge" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer vendor-token" {
			t.Errorf("Authorization = %q, want Bearer vendor-token", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode charge body: %v", err)
		}
		w.Write([]byte(`{
			"code": 200, "msg": "ok", "requestId": "req-1",
			"data": {"form": "1234-5678-9012-3456-7890", "flowNo": "FL-001", "meterNo": "54401234567", "value": 17.5, "clearTime": ""}
		}`))
	}))
	defer server.Close()

	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	mock.ExpectExec("INSERT INTO `api_logs`").WillReturnResult(sqlmock.NewResult(1, 1))

	client := NewVendorClient(db, vendorTestSettings(server.URL, "vendor-token", time.Now().Add(time.Hour)))
	result := client.Vend("54401234567", 16.96)

	if !result.Success {
		t.Fatalf("Vend failed: %s", result.Error)
	}
	if result.Token != "1234-5678-9012-3456-7890" {
		t.Errorf("Token = %q", result.Token)
	}
	if result.TransactionID != "FL-001" {
		t.Errorf("TransactionID = %q", result.TransactionID)
	}
	if result.Units != 17.5 {
		t.Errorf("Units = %v, want the vendor's reported value", result.Units)
	}

	if gotBody["meterNo"] != "54401234567" {
		t.Errorf("meterNo = %v", gotBody["meterNo"])
	}
	// The charge carries units, not shillings.
	if gotBody["money"] != 16.96 {
		t.Errorf("money = %v, want 16.96", gotBody["money"])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("audit log was not written: %v", err)
	}
}

func TestVendVendorRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": 500, "msg": "insufficient vendor balance"}`))
	}))
	defer server.Close()

	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	mock.ExpectExec("INSERT INTO `api_logs`").WillReturnResult(sqlmock.NewResult(1, 1))

	client := NewVendorClient(db, vendorTestSettings(server.URL, "vendor-token", time.Now().Add(time.Hour)))
	result := client.Vend("54401234567", 10)

	if result.Success {
		t.Fatal("expected a rejected vend")
	}
	if result.Error != "insufficient vendor balance" {
		t.Errorf("Error = %q", result.Error)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("audit log was not written: %v", err)
	}
}

func TestVendTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	mock.ExpectExec("INSERT INTO `api_logs`").WillReturnResult(sqlmock.NewResult(1, 1))

	client := NewVendorClient(db, vendorTestSettings(server.URL, "vendor-token", time.Now().Add(time.Hour)))
	result := client.Vend("54401234567", 10)

	if result.Success {
		t.Fatal("expected the vend to fail")
	}
	if result.Error == "" {
		t.Error("expected a transport error message")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("audit log was not written: %v", err)
	}
}

func TestVendMissingCredentials(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	mock.ExpectExec("INSERT INTO `api_logs`").WillReturnResult(sqlmock.NewResult(1, 1))

	client := NewVendorClient(db, &stubSettings{})
	result := client.Vend("54401234567", 10)

	if result.Success {
		t.Fatal("expected the vend to fail without credentials")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("audit log was not written: %v", err)
	}
}

func TestVendRefreshesExpiredToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/token":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["username"] != "vendor-user" || body["password"] != "vendor-secret" {
				t.Errorf("unexpected auth body: %v", body)
			}
			w.Write([]byte(`{"code": 200, "data": {"token": "fresh-token", "expire": 3600}}`))
		case "/api/charge":
			if got := r.Header.Get("Authorization"); got != "Bearer fresh-token" {
				t.Errorf("charge used %q, want the refreshed token", got)
			}
			w.Write([]byte(`{"code": 200, "msg": "ok", "data": {"form": "TOKEN", "flowNo": "FL-002", "value": 10}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	mock.ExpectExec("UPDATE `api_credentials`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `api_logs`").WillReturnResult(sqlmock.NewResult(1, 1))

	client := NewVendorClient(db, vendorTestSettings(server.URL, "stale-token", time.Now().Add(-time.Minute)))
	result := client.Vend("54401234567", 10)

	if !result.Success {
		t.Fatalf("Vend failed: %s", result.Error)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
