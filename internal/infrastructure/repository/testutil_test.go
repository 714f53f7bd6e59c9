package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"serialhub/internal/domain/serial"
	"serialhub/internal/infrastructure/persistence/models"
	"serialhub/internal/shared/logger"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any)           {}
func (nopLogger) Info(string, ...any)            {}
func (nopLogger) Warn(string, ...any)            {}
func (nopLogger) Error(string, ...any)           {}
func (l nopLogger) With(...any) logger.Interface { return l }
func (nopLogger) Debugw(string, ...interface{})  {}
func (nopLogger) Infow(string, ...interface{})   {}
func (nopLogger) Warnw(string, ...interface{})   {}
func (nopLogger) Errorw(string, ...interface{})  {}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.ClientModel{},
		&models.SerialModel{},
		&models.UsageModel{},
		&models.AuditModel{},
	)
	require.NoError(t, err)

	return db
}

func newStoredSerial(t *testing.T, repo serial.SerialRepository, serialNumber string, expiresAt *time.Time) *serial.Serial {
	t.Helper()
	s, err := serial.NewSerial(1, serialNumber, 3, expiresAt)
	require.NoError(t, err)
	s.SetIntegritySignature("salt:mac")
	require.NoError(t, repo.Create(context.Background(), s))
	return s
}
