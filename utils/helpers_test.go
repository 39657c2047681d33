package utils

import (
	"testing"

	"github.com/QhromaLabs/aquavolt-sub001/models"

	"github.com/DATA-DOG/go-sqlmock"
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

// stubSettings satisfies SettingsProvider without a database.
type stubSettings struct {
	creds    map[string]*models.ApiCredential
	fee      float64
	tariff   float64
	template string
}

func (s *stubSettings) Setting(key string) (string, error) {
	return "", gorm.ErrRecordNotFound
}

func (s *stubSettings) Credentials(service string) (*models.ApiCredential, error) {
	if c, ok := s.creds[service]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubSettings) FeePercent() float64 { return s.fee }
func (s *stubSettings) Tariff() float64     { return s.tariff }

func (s *stubSettings) SmsTemplate() string {
	if s.template != "" {
		return s.template
	}
	return DefaultSmsTemplate
}
