package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serialhub/internal/domain/client"
)

func TestClientRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClientRepository(db, nopLogger{})
	ctx := context.Background()

	created, err := client.NewClient("Acme Corp", "acme")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, created))
	assert.NotZero(t, created.ID())

	t.Run("get by ID", func(t *testing.T) {
		found, err := repo.GetByID(ctx, created.ID())
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "Acme Corp", found.Name())
		assert.Equal(t, "ACME", found.ClientNumber())
		assert.True(t, found.IsActive())
	})

	t.Run("get by client number", func(t *testing.T) {
		found, err := repo.GetByClientNumber(ctx, "ACME")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, created.ID(), found.ID())
	})

	t.Run("missing rows return nil without error", func(t *testing.T) {
		found, err := repo.GetByClientNumber(ctx, "GHOST")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("duplicate client number is rejected", func(t *testing.T) {
		dup, err := client.NewClient("Acme Clone", "ACME")
		require.NoError(t, err)
		assert.Error(t, repo.Create(ctx, dup))
	})
}

func TestClientRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClientRepository(db, nopLogger{})
	ctx := context.Background()

	created, err := client.NewClient("Acme Corp", "ACME")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, created))

	created.Deactivate()
	require.NoError(t, repo.Update(ctx, created))

	found, err := repo.GetByID(ctx, created.ID())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.False(t, found.IsActive())

	t.Run("updating a missing row fails", func(t *testing.T) {
		ghost, err := client.NewClient("Ghost", "GHOST")
		require.NoError(t, err)
		require.NoError(t, ghost.SetID(99999))
		assert.Error(t, repo.Update(ctx, ghost))
	})
}

func TestClientRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClientRepository(db, nopLogger{})
	ctx := context.Background()

	created, err := client.NewClient("Acme Corp", "ACME")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, created))

	require.NoError(t, repo.Delete(ctx, created.ID()))

	found, err := repo.GetByID(ctx, created.ID())
	require.NoError(t, err)
	assert.Nil(t, found, "soft-deleted clients must be invisible to lookups")
}
