package usecases

import (
	"context"
	"errors"
	"fmt"

	"serialhub/internal/domain/serial"
	"serialhub/internal/infrastructure/cache"
	"serialhub/internal/infrastructure/crypto"
	"serialhub/internal/shared/logger"
)

type ExpireSerialsResult struct {
	Scanned int
	Expired int
	// CascadedUsages is the total number of usages moved to expired.
	CascadedUsages int64
	Failed         int
}

// ExpireSerialsUseCase is the enforcement sweep: it transitions active serials
// past their expiration date to expired, in bounded batches. The sweep is
// idempotent; a serial already expired by a previous or concurrent run is
// skipped without a second event.
type ExpireSerialsUseCase struct {
	serialRepo  serial.SerialRepository
	usageRepo   serial.UsageRepository
	auditRepo   serial.AuditRepository
	integrity   *crypto.IntegrityService
	serialCache cache.SerialCache
	publisher   EventPublisher
	batchSize   int
	logger      logger.Interface
}

func NewExpireSerialsUseCase(
	serialRepo serial.SerialRepository,
	usageRepo serial.UsageRepository,
	auditRepo serial.AuditRepository,
	integrity *crypto.IntegrityService,
	serialCache cache.SerialCache,
	publisher EventPublisher,
	batchSize int,
	logger logger.Interface,
) *ExpireSerialsUseCase {
	return &ExpireSerialsUseCase{
		serialRepo:  serialRepo,
		usageRepo:   usageRepo,
		auditRepo:   auditRepo,
		integrity:   integrity,
		serialCache: serialCache,
		publisher:   publisher,
		batchSize:   batchSize,
		logger:      logger,
	}
}

func (uc *ExpireSerialsUseCase) Execute(ctx context.Context) (*ExpireSerialsResult, error) {
	result := &ExpireSerialsResult{}

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		batch, err := uc.serialRepo.FindExpired(ctx, uc.batchSize)
		if err != nil {
			uc.logger.Errorw("enforcement sweep failed to list expired serials", "error", err)
			return result, fmt.Errorf("failed to list expired serials: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		result.Scanned += len(batch)
		for _, s := range batch {
			if err := uc.expireOne(ctx, s, result); err != nil {
				result.Failed++
				uc.logger.Errorw("failed to expire serial", "serial_sid", s.SID(), "error", err)
			}
		}

		if len(batch) < uc.batchSize {
			break
		}
	}

	if result.Scanned > 0 {
		uc.logger.Infow("enforcement sweep completed",
			"scanned", result.Scanned,
			"expired", result.Expired,
			"cascaded_usages", result.CascadedUsages,
			"failed", result.Failed,
		)
	}
	return result, nil
}

func (uc *ExpireSerialsUseCase) expireOne(ctx context.Context, s *serial.Serial, result *ExpireSerialsResult) error {
	before := serialImage(s)

	if err := s.MarkExpired(); err != nil {
		// Already expired or revoked in the meantime: a no-op, not a failure.
		if errors.Is(err, serial.ErrAlreadyExpired) || errors.Is(err, serial.ErrInvalidStatusTransition) {
			return nil
		}
		return err
	}

	seal, err := uc.integrity.GenerateSignature(s.IntegrityFields())
	if err != nil {
		return fmt.Errorf("failed to reseal serial: %w", err)
	}
	s.SetIntegritySignature(seal)

	// Cascade before persisting the status: the status write is the commit
	// point. If the cascade fails here the serial stays active and the next
	// sweep picks it up again; the cascade only touches active usages, so a
	// rerun is a no-op.
	cascaded, err := uc.usageRepo.ExpireActiveBySerialID(ctx, s.ID())
	if err != nil {
		return fmt.Errorf("failed to cascade usage expiry: %w", err)
	}
	result.CascadedUsages += cascaded

	if err := uc.serialRepo.Update(ctx, s); err != nil {
		return fmt.Errorf("failed to persist expiry: %w", err)
	}

	if err := uc.serialCache.Invalidate(ctx, s.SerialNumber()); err != nil {
		uc.logger.Warnw("failed to invalidate serial cache", "serial_sid", s.SID(), "error", err)
	}

	writeAudit(ctx, uc.auditRepo, uc.logger, s.ID(), serial.AuditActionExpire, before, serialImage(s), "enforcement_sweep")

	// Exactly one event per expiry transition: only the run that performed
	// the transition gets here.
	if err := uc.publisher.Publish(ctx, serial.EventSerialExpired, serial.NewSerialExpiredEvent(s)); err != nil {
		uc.logger.Warnw("failed to publish expired event", "serial_sid", s.SID(), "error", err)
	}

	result.Expired++
	return nil
}
