package usecases

import (
	"context"
	"fmt"
	"time"

	"serialhub/internal/domain/serial"
	"serialhub/internal/shared/logger"
)

type WarnExpiringResult struct {
	Scanned int
	Warned  int
	// Skipped counts serials already warned within the current window.
	Skipped int
}

// WarnExpiringUseCase is the warning sweep: it finds active non-demo serials
// entering the expiration window and emits one "serial.expiring" event each.
// The at-most-once-per-window guarantee rests on the warn marker store, so it
// holds across runs and across instances.
type WarnExpiringUseCase struct {
	serialRepo  serial.SerialRepository
	warnMarkers WarnMarkers
	publisher   EventPublisher
	window      time.Duration
	batchSize   int
	logger      logger.Interface
}

func NewWarnExpiringUseCase(
	serialRepo serial.SerialRepository,
	warnMarkers WarnMarkers,
	publisher EventPublisher,
	window time.Duration,
	batchSize int,
	logger logger.Interface,
) *WarnExpiringUseCase {
	return &WarnExpiringUseCase{
		serialRepo:  serialRepo,
		warnMarkers: warnMarkers,
		publisher:   publisher,
		window:      window,
		batchSize:   batchSize,
		logger:      logger,
	}
}

func (uc *WarnExpiringUseCase) Execute(ctx context.Context) (*WarnExpiringResult, error) {
	result := &WarnExpiringResult{}

	batch, err := uc.serialRepo.FindExpiring(ctx, uc.window, uc.batchSize)
	if err != nil {
		uc.logger.Errorw("warning sweep failed to list expiring serials", "error", err)
		return result, fmt.Errorf("failed to list expiring serials: %w", err)
	}
	result.Scanned = len(batch)

	for _, s := range batch {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		// The marker TTL equals the window: once it lapses the serial is
		// either expired or renewed, and a renewed serial re-entering the
		// window legitimately warns again.
		acquired, err := uc.warnMarkers.TryAcquire(ctx, s.SID(), uc.window)
		if err != nil {
			uc.logger.Errorw("failed to acquire warn marker", "serial_sid", s.SID(), "error", err)
			continue
		}
		if !acquired {
			result.Skipped++
			continue
		}

		if err := uc.publisher.Publish(ctx, serial.EventSerialExpiring, serial.NewSerialExpiringEvent(s)); err != nil {
			uc.logger.Warnw("failed to publish expiring event", "serial_sid", s.SID(), "error", err)
			// Release the marker so the next run can retry the warning.
			if clearErr := uc.warnMarkers.Clear(ctx, s.SID()); clearErr != nil {
				uc.logger.Errorw("failed to clear warn marker after publish failure",
					"serial_sid", s.SID(),
					"error", clearErr,
				)
			}
			continue
		}
		result.Warned++
	}

	if result.Scanned > 0 {
		uc.logger.Infow("warning sweep completed",
			"scanned", result.Scanned,
			"warned", result.Warned,
			"skipped", result.Skipped,
		)
	}
	return result, nil
}
