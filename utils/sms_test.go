package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/QhromaLabs/aquavolt-sub001/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestRenderSmsTemplate(t *testing.T) {
	got := RenderSmsTemplate("Meter {meter}: token {token}. Units: {units}.", map[string]string{
		"meter": "54401234567",
		"token": "1234-5678",
		"units": "16.96",
	})
	want := "Meter 54401234567: token 1234-5678. Units: 16.96."
	if got != want {
		t.Errorf("rendered = %q, want %q", got, want)
	}
}

func TestRenderSmsTemplateLeavesUnknownPlaceholders(t *testing.T) {
	got := RenderSmsTemplate("Hello {name}, ref {unknown}", map[string]string{"name": "Jane"})
	if got != "Hello Jane, ref {unknown}" {
		t.Errorf("rendered = %q, unknown placeholders should survive", got)
	}
}

func smsTestTopup() *models.Topup {
	topup := &models.Topup{
		AmountPaid:   500,
		AmountVended: 17.5,
		Token:        "1234-5678-9012",
	}
	topup.ID = 7
	return topup
}

func TestSendTopupConfirmationSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/version1/messaging" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("apiKey"); got != "sms-api-key" {
			t.Errorf("apiKey header = %q", got)
		}
		r.ParseForm()
		if got := r.PostForm.Get("to"); got != "+254712345678" {
			t.Errorf("to = %q, want +254712345678", got)
		}
		if got := r.PostForm.Get("username"); got != "aquavolt" {
			t.Errorf("username = %q", got)
		}
		if got := r.PostForm.Get("from"); got != "AQUAVOLT" {
			t.Errorf("from = %q", got)
		}
		if got := r.PostForm.Get("message"); got == "" {
			t.Error("message is empty")
		}
		w.Write([]byte(`{"SMSMessageData":{"Recipients":[{"status":"Success","cost":"KES 0.8000"}]}}`))
	}))
	defer server.Close()

	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	mock.ExpectExec("INSERT INTO `sms_logs`").WillReturnResult(sqlmock.NewResult(1, 1))

	sender := NewSmsSender(db, &stubSettings{
		creds: map[string]*models.ApiCredential{
			models.ServiceSms: {
				Service:  models.ServiceSms,
				BaseURL:  server.URL,
				Username: "aquavolt",
				ApiKey:   "sms-api-key",
				SenderID: "AQUAVOLT",
			},
		},
	})

	entry := sender.SendTopupConfirmation(smsTestTopup(), "0712345678", "Jane", "54401234567")
	if entry.Status != models.SmsStatusSuccess {
		t.Errorf("Status = %q, want success (%s)", entry.Status, entry.ErrorMessage)
	}
	if entry.TopupID == nil || *entry.TopupID != 7 {
		t.Errorf("TopupID = %v, want 7", entry.TopupID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("sms log was not written: %v", err)
	}
}

func TestSendTopupConfirmationProviderFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"SMSMessageData":{"Recipients":[{"status":"InvalidPhoneNumber"}]}}`))
	}))
	defer server.Close()

	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	mock.ExpectExec("INSERT INTO `sms_logs`").WillReturnResult(sqlmock.NewResult(1, 1))

	sender := NewSmsSender(db, &stubSettings{
		creds: map[string]*models.ApiCredential{
			models.ServiceSms: {Service: models.ServiceSms, BaseURL: server.URL, Username: "aquavolt", ApiKey: "k"},
		},
	})

	entry := sender.SendTopupConfirmation(smsTestTopup(), "0712345678", "Jane", "54401234567")
	if entry.Status != models.SmsStatusFailed {
		t.Errorf("Status = %q, want failed", entry.Status)
	}
	if entry.ErrorMessage == "" {
		t.Error("expected an error message on a failed send")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("sms log was not written: %v", err)
	}
}

func TestSendTopupConfirmationSkippedWithoutCredentials(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	// Even a skipped attempt leaves a log row behind.
	mock.ExpectExec("INSERT INTO `sms_logs`").WillReturnResult(sqlmock.NewResult(1, 1))

	sender := NewSmsSender(db, &stubSettings{})
	entry := sender.SendTopupConfirmation(smsTestTopup(), "0712345678", "Jane", "54401234567")

	if entry.Status != models.SmsStatusSkipped {
		t.Errorf("Status = %q, want skipped", entry.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("sms log was not written: %v", err)
	}
}
