package settings

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open gorm over mock: %v", err)
	}

	return gdb, mock, func() { sqlDB.Close() }
}

func newRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin/settings", h.GetSettings)
	r.PUT("/admin/settings", h.UpdateSettings)
	r.PUT("/admin/credentials/:service", h.UpdateCredential)
	return r
}

func TestGetSettings(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT \\* FROM `admin_settings`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "setting_key", "setting_value"}).
			AddRow(1, "service_fee_percent", "5").
			AddRow(2, "tariff_per_unit", "28"))

	router := newRouter(&Handler{DB: db})

	req := httptest.NewRequest("GET", "/admin/settings", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		Settings map[string]string `json:"settings"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Settings["service_fee_percent"] != "5" || resp.Settings["tariff_per_unit"] != "28" {
		t.Errorf("settings = %v", resp.Settings)
	}
}

func TestUpdateSettingsCreatesMissingKey(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT \\* FROM `admin_settings`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "setting_key", "setting_value"}))
	mock.ExpectExec("INSERT INTO `admin_settings`").WillReturnResult(sqlmock.NewResult(3, 1))

	router := newRouter(&Handler{DB: db})

	body := []byte(`{"tariff_per_unit":"30"}`)
	req := httptest.NewRequest("PUT", "/admin/settings", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateCredentialRejectsUnknownService(t *testing.T) {
	db, _, cleanup := newMockDB(t)
	defer cleanup()

	router := newRouter(&Handler{DB: db})

	body := []byte(`{"base_url":"https://example.com"}`)
	req := httptest.NewRequest("PUT", "/admin/credentials/paypal", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
