package usecases

import (
	"context"
	"fmt"
	"time"

	"serialhub/internal/domain/serial"
	"serialhub/internal/infrastructure/cache"
	"serialhub/internal/infrastructure/crypto"
	apperrors "serialhub/internal/shared/errors"
	"serialhub/internal/shared/logger"
)

type RenewSerialCommand struct {
	SerialNumber string
	// NewExpiresAt is the new expiration date; nil makes the serial perpetual.
	NewExpiresAt *time.Time
	PerformedBy  string
}

type RenewSerialResult struct {
	Serial *serial.Serial
}

// RenewSerialUseCase extends a serial's validity and reactivates it. Renewal
// is the only way out of the revoked and expired states. A successful renew
// clears the expiration warning marker so the next window warns again.
type RenewSerialUseCase struct {
	serialRepo  serial.SerialRepository
	auditRepo   serial.AuditRepository
	integrity   *crypto.IntegrityService
	serialCache cache.SerialCache
	warnMarkers WarnMarkers
	publisher   EventPublisher
	logger      logger.Interface
}

func NewRenewSerialUseCase(
	serialRepo serial.SerialRepository,
	auditRepo serial.AuditRepository,
	integrity *crypto.IntegrityService,
	serialCache cache.SerialCache,
	warnMarkers WarnMarkers,
	publisher EventPublisher,
	logger logger.Interface,
) *RenewSerialUseCase {
	return &RenewSerialUseCase{
		serialRepo:  serialRepo,
		auditRepo:   auditRepo,
		integrity:   integrity,
		serialCache: serialCache,
		warnMarkers: warnMarkers,
		publisher:   publisher,
		logger:      logger,
	}
}

func (uc *RenewSerialUseCase) Execute(ctx context.Context, cmd RenewSerialCommand) (*RenewSerialResult, error) {
	s, err := uc.serialRepo.GetBySerialNumber(ctx, cmd.SerialNumber)
	if err != nil {
		uc.logger.Errorw("failed to load serial for renewal", "error", err)
		return nil, fmt.Errorf("failed to load serial: %w", err)
	}
	if s == nil {
		return nil, apperrors.NewNotFoundError("serial not found").WithCause(serial.ErrSerialNotFound)
	}

	// A tampered row must not be legitimized by the reseal below.
	if !uc.integrity.VerifySeal(s.IntegrityFields(), s.IntegritySignature()) {
		uc.logger.Warnw("refusing to renew serial with broken integrity seal", "serial_sid", s.SID())
		return nil, apperrors.NewIntegrityError("integrity seal mismatch")
	}

	before := serialImage(s)

	if err := s.Renew(cmd.NewExpiresAt); err != nil {
		return nil, apperrors.NewPolicyViolation("serial cannot be renewed").WithCause(err)
	}

	seal, err := uc.integrity.GenerateSignature(s.IntegrityFields())
	if err != nil {
		uc.logger.Errorw("failed to reseal serial after renew", "serial_sid", s.SID(), "error", err)
		return nil, fmt.Errorf("failed to reseal serial: %w", err)
	}
	s.SetIntegritySignature(seal)

	if err := uc.serialRepo.Update(ctx, s); err != nil {
		uc.logger.Errorw("failed to persist renewal", "serial_sid", s.SID(), "error", err)
		return nil, fmt.Errorf("failed to persist renewal: %w", err)
	}

	if err := uc.warnMarkers.Clear(ctx, s.SID()); err != nil {
		uc.logger.Warnw("failed to clear warn marker", "serial_sid", s.SID(), "error", err)
	}

	if err := uc.serialCache.Invalidate(ctx, s.SerialNumber()); err != nil {
		uc.logger.Warnw("failed to invalidate serial cache", "serial_sid", s.SID(), "error", err)
	}

	writeAudit(ctx, uc.auditRepo, uc.logger, s.ID(), serial.AuditActionRenew, before, serialImage(s), cmd.PerformedBy)

	if err := uc.publisher.Publish(ctx, serial.EventSerialRenewed, serial.NewSerialRenewedEvent(s)); err != nil {
		uc.logger.Warnw("failed to publish renewed event", "serial_sid", s.SID(), "error", err)
	}

	uc.logger.Infow("serial renewed",
		"serial_sid", s.SID(),
		"new_expires_at", cmd.NewExpiresAt,
		"performed_by", cmd.PerformedBy,
	)

	return &RenewSerialResult{Serial: s}, nil
}
