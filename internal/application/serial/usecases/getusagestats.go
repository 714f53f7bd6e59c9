package usecases

import (
	"context"
	"fmt"

	"serialhub/internal/domain/serial"
	vo "serialhub/internal/domain/serial/valueobjects"
	apperrors "serialhub/internal/shared/errors"
	"serialhub/internal/shared/logger"
)

type GetUsageStatsCommand struct {
	SerialNumber string
}

type GetUsageStatsResult struct {
	Serial *serial.Serial
	// CountsByStatus maps usage status to count for this serial.
	CountsByStatus map[string]int64
	ActiveUsages   int64
	UsageCap       int
	Remaining      int64
}

// GetUsageStatsUseCase reports usage accounting for a serial.
type GetUsageStatsUseCase struct {
	serialRepo serial.SerialRepository
	usageRepo  serial.UsageRepository
	logger     logger.Interface
}

func NewGetUsageStatsUseCase(
	serialRepo serial.SerialRepository,
	usageRepo serial.UsageRepository,
	logger logger.Interface,
) *GetUsageStatsUseCase {
	return &GetUsageStatsUseCase{
		serialRepo: serialRepo,
		usageRepo:  usageRepo,
		logger:     logger,
	}
}

func (uc *GetUsageStatsUseCase) Execute(ctx context.Context, cmd GetUsageStatsCommand) (*GetUsageStatsResult, error) {
	s, err := uc.serialRepo.GetBySerialNumber(ctx, cmd.SerialNumber)
	if err != nil {
		uc.logger.Errorw("failed to load serial for stats", "error", err)
		return nil, fmt.Errorf("failed to load serial: %w", err)
	}
	if s == nil {
		return nil, apperrors.NewNotFoundError("serial not found").WithCause(serial.ErrSerialNotFound)
	}

	counts, err := uc.usageRepo.CountByStatus(ctx, s.ID())
	if err != nil {
		uc.logger.Errorw("failed to count usages by status", "serial_sid", s.SID(), "error", err)
		return nil, fmt.Errorf("failed to count usages: %w", err)
	}

	active := counts[vo.UsageActive.String()]
	cap := s.EffectiveUsageCap()
	remaining := int64(cap) - active
	if remaining < 0 {
		remaining = 0
	}

	return &GetUsageStatsResult{
		Serial:         s,
		CountsByStatus: counts,
		ActiveUsages:   active,
		UsageCap:       cap,
		Remaining:      remaining,
	}, nil
}
