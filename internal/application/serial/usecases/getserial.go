package usecases

import (
	"context"
	"fmt"

	"serialhub/internal/domain/serial"
	apperrors "serialhub/internal/shared/errors"
	"serialhub/internal/shared/logger"
)

type GetSerialCommand struct {
	SerialNumber string
	// IncludeAuditTrail also loads the append-only mutation history.
	IncludeAuditTrail bool
}

type GetSerialResult struct {
	Serial     *serial.Serial
	Usages     []*serial.Usage
	AuditTrail []*serial.AuditRecord
}

// GetSerialUseCase loads a serial with its usage history for inspection.
type GetSerialUseCase struct {
	serialRepo serial.SerialRepository
	usageRepo  serial.UsageRepository
	auditRepo  serial.AuditRepository
	logger     logger.Interface
}

func NewGetSerialUseCase(
	serialRepo serial.SerialRepository,
	usageRepo serial.UsageRepository,
	auditRepo serial.AuditRepository,
	logger logger.Interface,
) *GetSerialUseCase {
	return &GetSerialUseCase{
		serialRepo: serialRepo,
		usageRepo:  usageRepo,
		auditRepo:  auditRepo,
		logger:     logger,
	}
}

func (uc *GetSerialUseCase) Execute(ctx context.Context, cmd GetSerialCommand) (*GetSerialResult, error) {
	s, err := uc.serialRepo.GetBySerialNumber(ctx, cmd.SerialNumber)
	if err != nil {
		uc.logger.Errorw("failed to load serial", "error", err)
		return nil, fmt.Errorf("failed to load serial: %w", err)
	}
	if s == nil {
		return nil, apperrors.NewNotFoundError("serial not found").WithCause(serial.ErrSerialNotFound)
	}

	usages, err := uc.usageRepo.ListBySerialID(ctx, s.ID())
	if err != nil {
		uc.logger.Errorw("failed to list usages", "serial_sid", s.SID(), "error", err)
		return nil, fmt.Errorf("failed to list usages: %w", err)
	}

	result := &GetSerialResult{Serial: s, Usages: usages}

	if cmd.IncludeAuditTrail {
		trail, err := uc.auditRepo.ListByEntity(ctx, auditEntitySerial, s.ID())
		if err != nil {
			uc.logger.Errorw("failed to load audit trail", "serial_sid", s.SID(), "error", err)
			return nil, fmt.Errorf("failed to load audit trail: %w", err)
		}
		result.AuditTrail = trail
	}

	return result, nil
}
