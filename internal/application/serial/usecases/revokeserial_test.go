package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serialhub/internal/domain/serial"
	vo "serialhub/internal/domain/serial/valueobjects"
	"serialhub/internal/infrastructure/cache"
	apperrors "serialhub/internal/shared/errors"
)

func TestRevokeSerial_Success(t *testing.T) {
	signer, integrity := newTestCrypto(t)
	s, code, _ := issueSerial(t, signer, integrity, 5, nil, false)

	var updated *serial.Serial
	serialRepo := &mockSerialRepository{
		GetBySerialNumberFunc: func(context.Context, string) (*serial.Serial, error) {
			return s, nil
		},
		UpdateFunc: func(_ context.Context, s *serial.Serial) error {
			updated = s
			return nil
		},
	}
	usageRepo := &mockUsageRepository{
		RevokeActiveBySerialIDFunc: func(context.Context, uint) (int64, error) {
			return 3, nil
		},
	}
	auditRepo := &mockAuditRepository{}
	serialCache := newMemSerialCache()
	require.NoError(t, serialCache.SetBySerialNumber(context.Background(), code, &cache.CachedSerial{
		SerialID: s.ID(),
		SID:      s.SID(),
		Status:   s.Status().String(),
	}))

	uc := NewRevokeSerialUseCase(serialRepo, usageRepo, auditRepo, integrity, serialCache, nopLogger{})

	result, err := uc.Execute(context.Background(), RevokeSerialCommand{
		SerialNumber: code,
		PerformedBy:  "admin",
	})
	require.NoError(t, err)

	assert.Equal(t, vo.StatusRevoked, result.Serial.Status())
	assert.Equal(t, int64(3), result.RevokedUsages)
	require.NotNil(t, updated)

	// The seal is recomputed over the revoked state.
	assert.True(t, integrity.VerifySeal(result.Serial.IntegrityFields(), result.Serial.IntegritySignature()))

	// Stale snapshot is gone.
	snapshot, err := serialCache.GetBySerialNumber(context.Background(), code)
	require.NoError(t, err)
	assert.Nil(t, snapshot)

	records := auditRepo.recorded()
	require.Len(t, records, 1)
	assert.Equal(t, serial.AuditActionRevoke, records[0].Action())
	assert.Equal(t, "admin", records[0].PerformedBy())
	assert.NotNil(t, records[0].Before())
	assert.NotNil(t, records[0].After())
}

func TestRevokeSerial_NotFound(t *testing.T) {
	_, integrity := newTestCrypto(t)
	uc := NewRevokeSerialUseCase(&mockSerialRepository{}, &mockUsageRepository{},
		&mockAuditRepository{}, integrity, newMemSerialCache(), nopLogger{})

	_, err := uc.Execute(context.Background(), RevokeSerialCommand{SerialNumber: "MISSING"})
	assert.ErrorIs(t, err, serial.ErrSerialNotFound)
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestRevokeSerial_AlreadyRevoked(t *testing.T) {
	signer, integrity := newTestCrypto(t)
	s, code, _ := issueSerial(t, signer, integrity, 5, nil, false)
	require.NoError(t, s.Revoke())

	serialRepo := &mockSerialRepository{
		GetBySerialNumberFunc: func(context.Context, string) (*serial.Serial, error) {
			return s, nil
		},
	}
	uc := NewRevokeSerialUseCase(serialRepo, &mockUsageRepository{},
		&mockAuditRepository{}, integrity, newMemSerialCache(), nopLogger{})

	_, err := uc.Execute(context.Background(), RevokeSerialCommand{SerialNumber: code})
	assert.ErrorIs(t, err, serial.ErrAlreadyRevoked)
	assert.True(t, apperrors.IsPolicyViolation(err))
}

// storedCopy rebuilds a serial from its persisted fields, the way a repository
// read materializes a fresh aggregate per call.
func storedCopy(t *testing.T, s *serial.Serial) *serial.Serial {
	t.Helper()
	copied, err := serial.Reconstruct(serial.ReconstructParams{
		ID:                 s.ID(),
		SID:                s.SID(),
		SerialNumber:       s.SerialNumber(),
		ClientID:           s.ClientID(),
		MaxUsageCount:      s.MaxUsageCount(),
		ExpiresAt:          s.ExpiresAt(),
		IsDemo:             s.IsDemo(),
		Status:             s.Status(),
		IntegritySignature: s.IntegritySignature(),
		CodecVersion:       s.CodecVersion(),
		CreatedAt:          s.CreatedAt(),
		UpdatedAt:          s.UpdatedAt(),
	})
	require.NoError(t, err)
	return copied
}

func TestRevokeSerial_CascadeFailureIsRetryable(t *testing.T) {
	signer, integrity := newTestCrypto(t)
	s, code, _ := issueSerial(t, signer, integrity, 5, nil, false)

	updates := 0
	serialRepo := &mockSerialRepository{
		GetBySerialNumberFunc: func(context.Context, string) (*serial.Serial, error) {
			// Each read materializes the stored row anew; the store still holds
			// the serial as active until a successful Update.
			return storedCopy(t, s), nil
		},
		UpdateFunc: func(context.Context, *serial.Serial) error {
			updates++
			return nil
		},
	}
	usageRepo := &mockUsageRepository{
		RevokeActiveBySerialIDFunc: func(context.Context, uint) (int64, error) {
			return 0, assert.AnError
		},
	}

	uc := NewRevokeSerialUseCase(serialRepo, usageRepo, &mockAuditRepository{},
		integrity, newMemSerialCache(), nopLogger{})

	_, err := uc.Execute(context.Background(), RevokeSerialCommand{SerialNumber: code, PerformedBy: "admin"})
	require.Error(t, err)
	// The status write never happened, so the stored row is still active.
	assert.Equal(t, 0, updates)

	// With the cascade healthy again, the retry completes the revocation.
	usageRepo.RevokeActiveBySerialIDFunc = func(context.Context, uint) (int64, error) {
		return 2, nil
	}
	result, err := uc.Execute(context.Background(), RevokeSerialCommand{SerialNumber: code, PerformedBy: "admin"})
	require.NoError(t, err)
	assert.Equal(t, vo.StatusRevoked, result.Serial.Status())
	assert.Equal(t, int64(2), result.RevokedUsages)
	assert.Equal(t, 1, updates)
}

func TestRenewSerial_Success(t *testing.T) {
	signer, integrity := newTestCrypto(t)
	s, code, _ := issueSerial(t, signer, integrity, 5, nil, false)
	require.NoError(t, s.Revoke())
	seal, err := integrity.GenerateSignature(s.IntegrityFields())
	require.NoError(t, err)
	s.SetIntegritySignature(seal)

	serialRepo := &mockSerialRepository{
		GetBySerialNumberFunc: func(context.Context, string) (*serial.Serial, error) {
			return s, nil
		},
	}
	auditRepo := &mockAuditRepository{}
	publisher := &mockPublisher{}

	var clearedSID string
	warnMarkers := &mockWarnMarkers{
		ClearFunc: func(_ context.Context, serialSID string) error {
			clearedSID = serialSID
			return nil
		},
	}

	uc := NewRenewSerialUseCase(serialRepo, auditRepo, integrity, newMemSerialCache(),
		warnMarkers, publisher, nopLogger{})

	newExpiry := time.Now().Add(180 * 24 * time.Hour)
	result, err := uc.Execute(context.Background(), RenewSerialCommand{
		SerialNumber: code,
		NewExpiresAt: &newExpiry,
		PerformedBy:  "admin",
	})
	require.NoError(t, err)

	// Renewal reactivates even a revoked serial.
	assert.Equal(t, vo.StatusActive, result.Serial.Status())
	assert.True(t, result.Serial.ExpiresAt().Equal(newExpiry))
	assert.True(t, integrity.VerifySeal(result.Serial.IntegrityFields(), result.Serial.IntegritySignature()))

	// The warn marker is cleared so the next window warns again.
	assert.Equal(t, s.SID(), clearedSID)

	events := publisher.published()
	require.Len(t, events, 1)
	assert.Equal(t, serial.EventSerialRenewed, events[0].event)

	records := auditRepo.recorded()
	require.Len(t, records, 1)
	assert.Equal(t, serial.AuditActionRenew, records[0].Action())
}

func TestRenewSerial_TamperedRowRejected(t *testing.T) {
	signer, integrity := newTestCrypto(t)
	s, code, _ := issueSerial(t, signer, integrity, 5, nil, false)
	s.SetIntegritySignature("deadbeef:deadbeef")

	updates := 0
	serialRepo := &mockSerialRepository{
		GetBySerialNumberFunc: func(context.Context, string) (*serial.Serial, error) {
			return s, nil
		},
		UpdateFunc: func(context.Context, *serial.Serial) error {
			updates++
			return nil
		},
	}
	publisher := &mockPublisher{}
	uc := NewRenewSerialUseCase(serialRepo, &mockAuditRepository{}, integrity,
		newMemSerialCache(), &mockWarnMarkers{}, publisher, nopLogger{})

	newExpiry := time.Now().Add(90 * 24 * time.Hour)
	_, err := uc.Execute(context.Background(), RenewSerialCommand{
		SerialNumber: code,
		NewExpiresAt: &newExpiry,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsIntegrityError(err))
	// Renewal must not reseal over the tampered state.
	assert.Equal(t, 0, updates)
	assert.Empty(t, publisher.published())
}

func TestRenewSerial_RejectsPastExpiry(t *testing.T) {
	signer, integrity := newTestCrypto(t)
	s, code, _ := issueSerial(t, signer, integrity, 5, nil, false)

	serialRepo := &mockSerialRepository{
		GetBySerialNumberFunc: func(context.Context, string) (*serial.Serial, error) {
			return s, nil
		},
	}
	publisher := &mockPublisher{}
	uc := NewRenewSerialUseCase(serialRepo, &mockAuditRepository{}, integrity,
		newMemSerialCache(), &mockWarnMarkers{}, publisher, nopLogger{})

	past := time.Now().Add(-time.Hour)
	_, err := uc.Execute(context.Background(), RenewSerialCommand{
		SerialNumber: code,
		NewExpiresAt: &past,
	})
	require.Error(t, err)
	assert.Empty(t, publisher.published())
}
