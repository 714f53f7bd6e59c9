package usecases

import (
	"context"
	"time"

	"serialhub/internal/domain/client"
	"serialhub/internal/domain/serial"
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

type mockClientRepository struct {
	CreateFunc            func(ctx context.Context, c *client.Client) error
	GetByIDFunc           func(ctx context.Context, id uint) (*client.Client, error)
	GetByClientNumberFunc func(ctx context.Context, clientNumber string) (*client.Client, error)
	UpdateFunc            func(ctx context.Context, c *client.Client) error
	DeleteFunc            func(ctx context.Context, id uint) error
}

func (m *mockClientRepository) Create(ctx context.Context, c *client.Client) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, c)
	}
	return nil
}

func (m *mockClientRepository) GetByID(ctx context.Context, id uint) (*client.Client, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockClientRepository) GetByClientNumber(ctx context.Context, clientNumber string) (*client.Client, error) {
	if m.GetByClientNumberFunc != nil {
		return m.GetByClientNumberFunc(ctx, clientNumber)
	}
	return nil, nil
}

func (m *mockClientRepository) Update(ctx context.Context, c *client.Client) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, c)
	}
	return nil
}

func (m *mockClientRepository) Delete(ctx context.Context, id uint) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

type mockSerialRepository struct {
	SoftDeleteByClientIDFunc func(ctx context.Context, clientID uint) (int64, error)
}

func (m *mockSerialRepository) Create(context.Context, *serial.Serial) error { return nil }
func (m *mockSerialRepository) GetByID(context.Context, uint) (*serial.Serial, error) {
	return nil, nil
}
func (m *mockSerialRepository) GetBySerialNumber(context.Context, string) (*serial.Serial, error) {
	return nil, nil
}
func (m *mockSerialRepository) Update(context.Context, *serial.Serial) error { return nil }
func (m *mockSerialRepository) FindExpiring(context.Context, time.Duration, int) ([]*serial.Serial, error) {
	return nil, nil
}
func (m *mockSerialRepository) FindExpired(context.Context, int) ([]*serial.Serial, error) {
	return nil, nil
}
func (m *mockSerialRepository) SoftDeleteByClientID(ctx context.Context, clientID uint) (int64, error) {
	if m.SoftDeleteByClientIDFunc != nil {
		return m.SoftDeleteByClientIDFunc(ctx, clientID)
	}
	return 0, nil
}
func (m *mockSerialRepository) CountByStatus(context.Context, string) (int64, error) {
	return 0, nil
}

type mockAuditRepository struct {
	records []*serial.AuditRecord
}

func (m *mockAuditRepository) Create(_ context.Context, record *serial.AuditRecord) error {
	m.records = append(m.records, record)
	return nil
}

func (m *mockAuditRepository) ListByEntity(context.Context, string, uint) ([]*serial.AuditRecord, error) {
	return m.records, nil
}

type mockCache struct {
	DelPatternFunc func(ctx context.Context, pattern string) error
	SetLockFunc    func(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

func (m *mockCache) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (m *mockCache) Set(context.Context, string, string, time.Duration) error { return nil }
func (m *mockCache) Del(context.Context, ...string) error { return nil }
func (m *mockCache) DelPattern(ctx context.Context, pattern string) error {
	if m.DelPatternFunc != nil {
		return m.DelPatternFunc(ctx, pattern)
	}
	return nil
}
func (m *mockCache) SetLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if m.SetLockFunc != nil {
		return m.SetLockFunc(ctx, key, ttl)
	}
	return true, nil
}
func (m *mockCache) ReleaseLock(context.Context, string) error { return nil }
