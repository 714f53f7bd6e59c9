package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serialhub/internal/domain/serial"
	vo "serialhub/internal/domain/serial/valueobjects"
	"serialhub/internal/infrastructure/persistence/models"
)

func TestSerialRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSerialRepository(db, nopLogger{})
	ctx := context.Background()

	expiresAt := time.Now().Add(30 * 24 * time.Hour)
	created := newStoredSerial(t, repo, "TIME01-NONCE1-ACMECORP-META1-CHECKSUM", &expiresAt)
	assert.NotZero(t, created.ID())

	t.Run("get by ID", func(t *testing.T) {
		found, err := repo.GetByID(ctx, created.ID())
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, created.SID(), found.SID())
		assert.Equal(t, created.SerialNumber(), found.SerialNumber())
		assert.Equal(t, created.MaxUsageCount(), found.MaxUsageCount())
		assert.Equal(t, "salt:mac", found.IntegritySignature())
		assert.Equal(t, vo.StatusActive, found.Status())
		require.NotNil(t, found.ExpiresAt())
		assert.WithinDuration(t, expiresAt, *found.ExpiresAt(), time.Second)
	})

	t.Run("get by serial number", func(t *testing.T) {
		found, err := repo.GetBySerialNumber(ctx, created.SerialNumber())
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, created.ID(), found.ID())
	})

	t.Run("missing rows return nil without error", func(t *testing.T) {
		found, err := repo.GetBySerialNumber(ctx, "NO-SUCH-SERIAL")
		require.NoError(t, err)
		assert.Nil(t, found)

		found, err = repo.GetByID(ctx, 99999)
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("duplicate serial number is rejected", func(t *testing.T) {
		dup, err := serial.NewSerial(1, created.SerialNumber(), 3, nil)
		require.NoError(t, err)
		assert.Error(t, repo.Create(ctx, dup))
	})
}

func TestSerialRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSerialRepository(db, nopLogger{})
	ctx := context.Background()

	s := newStoredSerial(t, repo, "TIME02-NONCE2-ACMECORP-META2-CHECKSUM", nil)

	require.NoError(t, s.Revoke())
	s.SetIntegritySignature("newsalt:newmac")
	require.NoError(t, repo.Update(ctx, s))

	found, err := repo.GetByID(ctx, s.ID())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, vo.StatusRevoked, found.Status())
	assert.Equal(t, "newsalt:newmac", found.IntegritySignature())

	t.Run("updating a missing row fails", func(t *testing.T) {
		ghost, err := serial.Reconstruct(serial.ReconstructParams{
			ID:                 99999,
			SID:                "srl_ghost",
			SerialNumber:       "GHOST-SERIAL",
			ClientID:           1,
			MaxUsageCount:      1,
			Status:             vo.StatusActive,
			IntegritySignature: "salt:mac",
			CreatedAt:          time.Now(),
			UpdatedAt:          time.Now(),
		})
		require.NoError(t, err)
		assert.Error(t, repo.Update(ctx, ghost))
	})
}

func TestSerialRepository_FindExpiring(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSerialRepository(db, nopLogger{})
	ctx := context.Background()

	soon := time.Now().Add(3 * 24 * time.Hour)
	later := time.Now().Add(30 * 24 * time.Hour)

	inWindow := newStoredSerial(t, repo, "EXPIRING-IN-WINDOW", &soon)
	newStoredSerial(t, repo, "EXPIRING-OUT-OF-WINDOW", &later)
	newStoredSerial(t, repo, "PERPETUAL-SERIAL", nil)

	// Demo serials are excluded from the warning sweep even inside the window.
	demo, err := serial.NewDemoSerial(1, "DEMO-IN-WINDOW", 3*24*time.Hour)
	require.NoError(t, err)
	demo.SetIntegritySignature("salt:mac")
	require.NoError(t, repo.Create(ctx, demo))

	// Revoked serials are excluded regardless of expiry.
	revoked := newStoredSerial(t, repo, "REVOKED-IN-WINDOW", &soon)
	require.NoError(t, revoked.Revoke())
	require.NoError(t, repo.Update(ctx, revoked))

	expiring, err := repo.FindExpiring(ctx, 7*24*time.Hour, 100)
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, inWindow.ID(), expiring[0].ID())
}

func TestSerialRepository_FindExpired(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSerialRepository(db, nopLogger{})
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	// NewSerial rejects past expiry dates, so lapse a valid serial in place.
	lapsed := newStoredSerial(t, repo, "LAPSED-SERIAL", &future)
	require.NoError(t, db.Model(&models.SerialModel{}).
		Where("id = ?", lapsed.ID()).
		Update("expires_at", past).Error)

	newStoredSerial(t, repo, "STILL-VALID-SERIAL", &future)
	newStoredSerial(t, repo, "PERPETUAL-SERIAL", nil)

	expired, err := repo.FindExpired(ctx, 100)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, lapsed.ID(), expired[0].ID())

	t.Run("already transitioned serials are not rescanned", func(t *testing.T) {
		require.NoError(t, expired[0].MarkExpired())
		require.NoError(t, repo.Update(ctx, expired[0]))

		again, err := repo.FindExpired(ctx, 100)
		require.NoError(t, err)
		assert.Empty(t, again)
	})
}

func TestSerialRepository_SoftDeleteByClientID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSerialRepository(db, nopLogger{})
	ctx := context.Background()

	first := newStoredSerial(t, repo, "CLIENT-ONE-SERIAL-A", nil)
	second := newStoredSerial(t, repo, "CLIENT-ONE-SERIAL-B", nil)

	other, err := serial.NewSerial(2, "CLIENT-TWO-SERIAL", 3, nil)
	require.NoError(t, err)
	other.SetIntegritySignature("salt:mac")
	require.NoError(t, repo.Create(ctx, other))

	removed, err := repo.SoftDeleteByClientID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	for _, serialNumber := range []string{first.SerialNumber(), second.SerialNumber()} {
		found, err := repo.GetBySerialNumber(ctx, serialNumber)
		require.NoError(t, err)
		assert.Nil(t, found, "soft-deleted serials must be invisible to lookups")
	}

	// The other client's serial survives the cascade.
	found, err := repo.GetBySerialNumber(ctx, other.SerialNumber())
	require.NoError(t, err)
	assert.NotNil(t, found)

	count, err := repo.CountByStatus(ctx, vo.StatusActive.String())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSerialRepository_CountByStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSerialRepository(db, nopLogger{})
	ctx := context.Background()

	newStoredSerial(t, repo, "ACTIVE-SERIAL-A", nil)
	newStoredSerial(t, repo, "ACTIVE-SERIAL-B", nil)

	revoked := newStoredSerial(t, repo, "REVOKED-SERIAL", nil)
	require.NoError(t, revoked.Revoke())
	require.NoError(t, repo.Update(ctx, revoked))

	active, err := repo.CountByStatus(ctx, vo.StatusActive.String())
	require.NoError(t, err)
	assert.Equal(t, int64(2), active)

	revokedCount, err := repo.CountByStatus(ctx, vo.StatusRevoked.String())
	require.NoError(t, err)
	assert.Equal(t, int64(1), revokedCount)

	expiredCount, err := repo.CountByStatus(ctx, vo.StatusExpired.String())
	require.NoError(t, err)
	assert.Zero(t, expiredCount)
}
