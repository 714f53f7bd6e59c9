package usecases

import (
	"context"
	"fmt"

	"serialhub/internal/domain/serial"
	"serialhub/internal/infrastructure/cache"
	"serialhub/internal/infrastructure/crypto"
	apperrors "serialhub/internal/shared/errors"
	"serialhub/internal/shared/logger"
)

type RevokeSerialCommand struct {
	SerialNumber string
	PerformedBy  string
}

type RevokeSerialResult struct {
	Serial *serial.Serial
	// RevokedUsages is the number of active usages cascaded to revoked.
	RevokedUsages int64
}

// RevokeSerialUseCase deactivates a serial and cascades its active usages.
type RevokeSerialUseCase struct {
	serialRepo  serial.SerialRepository
	usageRepo   serial.UsageRepository
	auditRepo   serial.AuditRepository
	integrity   *crypto.IntegrityService
	serialCache cache.SerialCache
	logger      logger.Interface
}

func NewRevokeSerialUseCase(
	serialRepo serial.SerialRepository,
	usageRepo serial.UsageRepository,
	auditRepo serial.AuditRepository,
	integrity *crypto.IntegrityService,
	serialCache cache.SerialCache,
	logger logger.Interface,
) *RevokeSerialUseCase {
	return &RevokeSerialUseCase{
		serialRepo:  serialRepo,
		usageRepo:   usageRepo,
		auditRepo:   auditRepo,
		integrity:   integrity,
		serialCache: serialCache,
		logger:      logger,
	}
}

func (uc *RevokeSerialUseCase) Execute(ctx context.Context, cmd RevokeSerialCommand) (*RevokeSerialResult, error) {
	s, err := uc.serialRepo.GetBySerialNumber(ctx, cmd.SerialNumber)
	if err != nil {
		uc.logger.Errorw("failed to load serial for revocation", "error", err)
		return nil, fmt.Errorf("failed to load serial: %w", err)
	}
	if s == nil {
		return nil, apperrors.NewNotFoundError("serial not found").WithCause(serial.ErrSerialNotFound)
	}

	before := serialImage(s)

	if err := s.Revoke(); err != nil {
		return nil, apperrors.NewPolicyViolation("serial cannot be revoked").WithCause(err)
	}

	seal, err := uc.integrity.GenerateSignature(s.IntegrityFields())
	if err != nil {
		uc.logger.Errorw("failed to reseal serial after revoke", "serial_sid", s.SID(), "error", err)
		return nil, fmt.Errorf("failed to reseal serial: %w", err)
	}
	s.SetIntegritySignature(seal)

	// Cascade before persisting the status: the status write is the commit
	// point, so a failed cascade leaves the serial active and a retry re-runs
	// the whole operation. The cascade only touches active usages, making the
	// rerun a no-op.
	revoked, err := uc.usageRepo.RevokeActiveBySerialID(ctx, s.ID())
	if err != nil {
		uc.logger.Errorw("failed to cascade usage revocation", "serial_sid", s.SID(), "error", err)
		return nil, fmt.Errorf("failed to cascade usage revocation: %w", err)
	}

	if err := uc.serialRepo.Update(ctx, s); err != nil {
		uc.logger.Errorw("failed to persist revocation", "serial_sid", s.SID(), "error", err)
		return nil, fmt.Errorf("failed to persist revocation: %w", err)
	}

	if err := uc.serialCache.Invalidate(ctx, s.SerialNumber()); err != nil {
		uc.logger.Warnw("failed to invalidate serial cache", "serial_sid", s.SID(), "error", err)
	}

	writeAudit(ctx, uc.auditRepo, uc.logger, s.ID(), serial.AuditActionRevoke, before, serialImage(s), cmd.PerformedBy)

	uc.logger.Infow("serial revoked",
		"serial_sid", s.SID(),
		"revoked_usages", revoked,
		"performed_by", cmd.PerformedBy,
	)

	return &RevokeSerialResult{Serial: s, RevokedUsages: revoked}, nil
}
