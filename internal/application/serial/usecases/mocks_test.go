package usecases

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"serialhub/internal/domain/client"
	"serialhub/internal/domain/serial"
	"serialhub/internal/infrastructure/cache"
	"serialhub/internal/infrastructure/crypto"
	"serialhub/internal/shared/config"
	"serialhub/internal/shared/logger"
)

func newTestCrypto(t *testing.T) (*crypto.Signer, *crypto.IntegrityService) {
	t.Helper()
	pub, priv, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	signer, err := crypto.NewSigner(&config.CryptoConfig{
		SigningPrivateKey: priv,
		SigningPublicKey:  pub,
		SymmetricSecret:   "test-symmetric-secret",
		BcryptCost:        4,
	})
	require.NoError(t, err)

	integrity, err := crypto.NewIntegrityService("test-integrity-secret")
	require.NoError(t, err)
	return signer, integrity
}

// issueSerial builds a persisted-looking serial with a real signed code and a
// valid integrity seal.
func issueSerial(t *testing.T, signer *crypto.Signer, integrity *crypto.IntegrityService, maxUsage int, expiresAt *time.Time, demo bool) (*serial.Serial, string, string) {
	t.Helper()

	codec := serial.NewCodec()
	code, err := codec.Encode(serial.CodePayload{
		IssuedAt:      time.Now(),
		ClientPrefix:  "ACMECORP",
		MaxUsageCount: maxUsage,
		ExpiresAt:     expiresAt,
		IsDemo:        demo,
	})
	require.NoError(t, err)

	signature, err := signer.Sign(code)
	require.NoError(t, err)

	var s *serial.Serial
	if demo {
		s, err = serial.NewDemoSerial(1, code, 30*24*time.Hour)
	} else {
		s, err = serial.NewSerial(1, code, maxUsage, expiresAt)
	}
	require.NoError(t, err)
	require.NoError(t, s.SetID(1))

	seal, err := integrity.GenerateSignature(s.IntegrityFields())
	require.NoError(t, err)
	s.SetIntegritySignature(seal)

	return s, code, signature
}

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

type mockSerialRepository struct {
	CreateFunc               func(ctx context.Context, s *serial.Serial) error
	GetByIDFunc              func(ctx context.Context, id uint) (*serial.Serial, error)
	GetBySerialNumberFunc    func(ctx context.Context, serialNumber string) (*serial.Serial, error)
	UpdateFunc               func(ctx context.Context, s *serial.Serial) error
	FindExpiringFunc         func(ctx context.Context, window time.Duration, limit int) ([]*serial.Serial, error)
	FindExpiredFunc          func(ctx context.Context, limit int) ([]*serial.Serial, error)
	SoftDeleteByClientIDFunc func(ctx context.Context, clientID uint) (int64, error)
	CountByStatusFunc        func(ctx context.Context, status string) (int64, error)
}

func (m *mockSerialRepository) Create(ctx context.Context, s *serial.Serial) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, s)
	}
	return nil
}

func (m *mockSerialRepository) GetByID(ctx context.Context, id uint) (*serial.Serial, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockSerialRepository) GetBySerialNumber(ctx context.Context, serialNumber string) (*serial.Serial, error) {
	if m.GetBySerialNumberFunc != nil {
		return m.GetBySerialNumberFunc(ctx, serialNumber)
	}
	return nil, nil
}

func (m *mockSerialRepository) Update(ctx context.Context, s *serial.Serial) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, s)
	}
	return nil
}

func (m *mockSerialRepository) FindExpiring(ctx context.Context, window time.Duration, limit int) ([]*serial.Serial, error) {
	if m.FindExpiringFunc != nil {
		return m.FindExpiringFunc(ctx, window, limit)
	}
	return nil, nil
}

func (m *mockSerialRepository) FindExpired(ctx context.Context, limit int) ([]*serial.Serial, error) {
	if m.FindExpiredFunc != nil {
		return m.FindExpiredFunc(ctx, limit)
	}
	return nil, nil
}

func (m *mockSerialRepository) SoftDeleteByClientID(ctx context.Context, clientID uint) (int64, error) {
	if m.SoftDeleteByClientIDFunc != nil {
		return m.SoftDeleteByClientIDFunc(ctx, clientID)
	}
	return 0, nil
}

func (m *mockSerialRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	if m.CountByStatusFunc != nil {
		return m.CountByStatusFunc(ctx, status)
	}
	return 0, nil
}

type mockUsageRepository struct {
	CreateFunc                 func(ctx context.Context, usage *serial.Usage) error
	CountActiveBySerialIDFunc  func(ctx context.Context, serialID uint) (int64, error)
	ListBySerialIDFunc         func(ctx context.Context, serialID uint) ([]*serial.Usage, error)
	RevokeActiveBySerialIDFunc func(ctx context.Context, serialID uint) (int64, error)
	ExpireActiveBySerialIDFunc func(ctx context.Context, serialID uint) (int64, error)
	CountByStatusFunc          func(ctx context.Context, serialID uint) (map[string]int64, error)
}

func (m *mockUsageRepository) Create(ctx context.Context, usage *serial.Usage) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, usage)
	}
	return nil
}

func (m *mockUsageRepository) CountActiveBySerialID(ctx context.Context, serialID uint) (int64, error) {
	if m.CountActiveBySerialIDFunc != nil {
		return m.CountActiveBySerialIDFunc(ctx, serialID)
	}
	return 0, nil
}

func (m *mockUsageRepository) ListBySerialID(ctx context.Context, serialID uint) ([]*serial.Usage, error) {
	if m.ListBySerialIDFunc != nil {
		return m.ListBySerialIDFunc(ctx, serialID)
	}
	return nil, nil
}

func (m *mockUsageRepository) RevokeActiveBySerialID(ctx context.Context, serialID uint) (int64, error) {
	if m.RevokeActiveBySerialIDFunc != nil {
		return m.RevokeActiveBySerialIDFunc(ctx, serialID)
	}
	return 0, nil
}

func (m *mockUsageRepository) ExpireActiveBySerialID(ctx context.Context, serialID uint) (int64, error) {
	if m.ExpireActiveBySerialIDFunc != nil {
		return m.ExpireActiveBySerialIDFunc(ctx, serialID)
	}
	return 0, nil
}

func (m *mockUsageRepository) CountByStatus(ctx context.Context, serialID uint) (map[string]int64, error) {
	if m.CountByStatusFunc != nil {
		return m.CountByStatusFunc(ctx, serialID)
	}
	return map[string]int64{}, nil
}

type mockAuditRepository struct {
	mu      sync.Mutex
	records []*serial.AuditRecord

	CreateFunc       func(ctx context.Context, record *serial.AuditRecord) error
	ListByEntityFunc func(ctx context.Context, entityType string, entityID uint) ([]*serial.AuditRecord, error)
}

func (m *mockAuditRepository) Create(ctx context.Context, record *serial.AuditRecord) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, record)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, record)
	return nil
}

func (m *mockAuditRepository) ListByEntity(ctx context.Context, entityType string, entityID uint) ([]*serial.AuditRecord, error) {
	if m.ListByEntityFunc != nil {
		return m.ListByEntityFunc(ctx, entityType, entityID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*serial.AuditRecord{}, m.records...), nil
}

func (m *mockAuditRepository) recorded() []*serial.AuditRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*serial.AuditRecord{}, m.records...)
}

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

// memLocks is an in-memory cache.Cache with real set-if-not-exists lock
// semantics, safe for concurrent use.
type memLocks struct {
	mu     sync.Mutex
	values map[string]string
	locks  map[string]bool
}

func newMemLocks() *memLocks {
	return &memLocks{
		values: make(map[string]string),
		locks:  make(map[string]bool),
	}
}

func (c *memLocks) Get(ctx context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok, nil
}

func (c *memLocks) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *memLocks) Del(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.values, k)
	}
	return nil
}

func (c *memLocks) DelPattern(ctx context.Context, pattern string) error {
	return nil
}

func (c *memLocks) SetLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locks[key] {
		return false, nil
	}
	c.locks[key] = true
	return true, nil
}

func (c *memLocks) ReleaseLock(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.locks, key)
	return nil
}

// memSerialCache is an in-memory cache.SerialCache.
type memSerialCache struct {
	mu        sync.Mutex
	snapshots map[string]*cache.CachedSerial
}

func newMemSerialCache() *memSerialCache {
	return &memSerialCache{snapshots: make(map[string]*cache.CachedSerial)}
}

func (c *memSerialCache) GetBySerialNumber(ctx context.Context, serialNumber string) (*cache.CachedSerial, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshots[serialNumber], nil
}

func (c *memSerialCache) SetBySerialNumber(ctx context.Context, serialNumber string, snapshot *cache.CachedSerial) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots[serialNumber] = snapshot
	return nil
}

func (c *memSerialCache) SetNullMarker(ctx context.Context, serialNumber string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots[serialNumber] = &cache.CachedSerial{NotFound: true}
	return nil
}

func (c *memSerialCache) Invalidate(ctx context.Context, serialNumber string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.snapshots, serialNumber)
	return nil
}

type mockWarnMarkers struct {
	TryAcquireFunc func(ctx context.Context, serialSID string, ttl time.Duration) (bool, error)
	ClearFunc      func(ctx context.Context, serialSID string) error
}

func (m *mockWarnMarkers) TryAcquire(ctx context.Context, serialSID string, ttl time.Duration) (bool, error) {
	if m.TryAcquireFunc != nil {
		return m.TryAcquireFunc(ctx, serialSID, ttl)
	}
	return true, nil
}

func (m *mockWarnMarkers) Clear(ctx context.Context, serialSID string) error {
	if m.ClearFunc != nil {
		return m.ClearFunc(ctx, serialSID)
	}
	return nil
}

type publishedEvent struct {
	event   string
	payload interface{}
}

type mockPublisher struct {
	mu     sync.Mutex
	events []publishedEvent

	PublishFunc func(ctx context.Context, event string, payload interface{}) error
}

func (m *mockPublisher) Publish(ctx context.Context, event string, payload interface{}) error {
	if m.PublishFunc != nil {
		if err := m.PublishFunc(ctx, event, payload); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, publishedEvent{event: event, payload: payload})
	return nil
}

func (m *mockPublisher) published() []publishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]publishedEvent{}, m.events...)
}
