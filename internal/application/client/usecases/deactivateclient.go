package usecases

import (
	"context"
	"fmt"
	"time"

	"serialhub/internal/domain/client"
	"serialhub/internal/domain/serial"
	"serialhub/internal/infrastructure/cache"
	apperrors "serialhub/internal/shared/errors"
	"serialhub/internal/shared/logger"
)

const deactivateLockPrefix = "client:deactivate:"

// deactivateLockTTL bounds the deactivation cascade; a crashed run frees the
// client after this long.
const deactivateLockTTL = time.Minute

type DeactivateClientCommand struct {
	ClientID     uint   // Internal client ID (used if ClientNumber is empty)
	ClientNumber string // Business client number (takes precedence over ClientID)
	PerformedBy  string
}

type DeactivateClientResult struct {
	Client *client.Client
	// RemovedSerials is the number of serials soft-deleted by the cascade.
	RemovedSerials int64
}

// DeactivateClientUseCase deactivates a client and cascades: every serial of
// the client is soft-deleted, so none of its codes validate afterwards. This
// is the only soft-delete path; the sweeps never delete.
type DeactivateClientUseCase struct {
	clientRepo client.ClientRepository
	serialRepo serial.SerialRepository
	auditRepo  serial.AuditRepository
	cacheStore cache.Cache
	logger     logger.Interface
}

func NewDeactivateClientUseCase(
	clientRepo client.ClientRepository,
	serialRepo serial.SerialRepository,
	auditRepo serial.AuditRepository,
	cacheStore cache.Cache,
	logger logger.Interface,
) *DeactivateClientUseCase {
	return &DeactivateClientUseCase{
		clientRepo: clientRepo,
		serialRepo: serialRepo,
		auditRepo:  auditRepo,
		cacheStore: cacheStore,
		logger:     logger,
	}
}

func (uc *DeactivateClientUseCase) Execute(ctx context.Context, cmd DeactivateClientCommand) (*DeactivateClientResult, error) {
	c, err := uc.resolveClient(ctx, cmd)
	if err != nil {
		return nil, err
	}

	// Serialize deactivation per client: the cascade below is not a single
	// write and must not interleave with a concurrent run for the same client.
	lockKey := deactivateLockPrefix + c.SID()
	acquired, err := uc.cacheStore.SetLock(ctx, lockKey, deactivateLockTTL)
	if err != nil {
		uc.logger.Errorw("failed to acquire deactivation lock", "client_sid", c.SID(), "error", err)
		return nil, apperrors.NewTransientIOError("failed to acquire deactivation lock").WithCause(err)
	}
	if !acquired {
		uc.logger.Warnw("client deactivation already in progress", "client_sid", c.SID())
		return nil, apperrors.NewLockContentionError("client deactivation already in progress")
	}
	defer func() {
		if err := uc.cacheStore.ReleaseLock(ctx, lockKey); err != nil {
			uc.logger.Warnw("failed to release deactivation lock", "client_sid", c.SID(), "error", err)
		}
	}()

	c.Deactivate()
	if err := uc.clientRepo.Update(ctx, c); err != nil {
		uc.logger.Errorw("failed to deactivate client", "client_sid", c.SID(), "error", err)
		return nil, fmt.Errorf("failed to deactivate client: %w", err)
	}

	removed, err := uc.serialRepo.SoftDeleteByClientID(ctx, c.ID())
	if err != nil {
		uc.logger.Errorw("failed to cascade serial soft-delete", "client_sid", c.SID(), "error", err)
		return nil, fmt.Errorf("failed to cascade serial removal: %w", err)
	}

	// The cascade touches an unknown set of serial numbers; drop every
	// cached snapshot rather than tracking them individually.
	if err := uc.cacheStore.DelPattern(ctx, "serialhub:serial:*"); err != nil {
		uc.logger.Warnw("failed to invalidate serial snapshots after cascade", "client_sid", c.SID(), "error", err)
	}

	record, err := serial.NewAuditRecord("client", c.ID(), serial.AuditActionCascade,
		map[string]interface{}{"active": true},
		map[string]interface{}{"active": false, "removed_serials": removed},
		cmd.PerformedBy,
	)
	if err != nil {
		uc.logger.Errorw("failed to build cascade audit record", "client_sid", c.SID(), "error", err)
	} else if err := uc.auditRepo.Create(ctx, record); err != nil {
		uc.logger.Errorw("failed to persist cascade audit record", "client_sid", c.SID(), "error", err)
	}

	uc.logger.Infow("client deactivated",
		"client_sid", c.SID(),
		"removed_serials", removed,
		"performed_by", cmd.PerformedBy,
	)

	return &DeactivateClientResult{Client: c, RemovedSerials: removed}, nil
}

func (uc *DeactivateClientUseCase) resolveClient(ctx context.Context, cmd DeactivateClientCommand) (*client.Client, error) {
	if cmd.ClientNumber != "" {
		c, err := uc.clientRepo.GetByClientNumber(ctx, cmd.ClientNumber)
		if err != nil {
			uc.logger.Errorw("failed to get client by number", "client_number", cmd.ClientNumber, "error", err)
			return nil, fmt.Errorf("failed to get client: %w", err)
		}
		if c == nil {
			return nil, client.ErrClientNotFound
		}
		return c, nil
	}

	c, err := uc.clientRepo.GetByID(ctx, cmd.ClientID)
	if err != nil {
		uc.logger.Errorw("failed to get client", "client_id", cmd.ClientID, "error", err)
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	if c == nil {
		return nil, client.ErrClientNotFound
	}
	return c, nil
}
