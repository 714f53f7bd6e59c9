package usecases

import (
	"context"
	"fmt"
	"time"

	"serialhub/internal/domain/client"
	"serialhub/internal/domain/serial"
	"serialhub/internal/infrastructure/cache"
	"serialhub/internal/infrastructure/crypto"
	apperrors "serialhub/internal/shared/errors"
	"serialhub/internal/shared/logger"
)

type CreateSerialCommand struct {
	ClientID      uint   // Internal client ID (used if ClientNumber is empty)
	ClientNumber  string // Business client number (takes precedence over ClientID)
	MaxUsageCount int
	ExpiresAt     *time.Time
	Demo          bool // Demo serials: cap forced to 1, fixed short validity
	PerformedBy   string
}

type CreateSerialResult struct {
	Serial *serial.Serial
	// Code is the printable serial number handed to the client.
	Code string
	// CodeSignature is the detached signature distributed alongside the code.
	CodeSignature string
}

// CreateSerialUseCase issues a new signed serial for an active client.
type CreateSerialUseCase struct {
	serialRepo   serial.SerialRepository
	clientRepo   client.ClientRepository
	auditRepo    serial.AuditRepository
	codec        *serial.Codec
	signer       *crypto.Signer
	integrity    *crypto.IntegrityService
	serialCache  cache.SerialCache
	demoValidity time.Duration
	logger       logger.Interface
}

func NewCreateSerialUseCase(
	serialRepo serial.SerialRepository,
	clientRepo client.ClientRepository,
	auditRepo serial.AuditRepository,
	codec *serial.Codec,
	signer *crypto.Signer,
	integrity *crypto.IntegrityService,
	serialCache cache.SerialCache,
	demoValidity time.Duration,
	logger logger.Interface,
) *CreateSerialUseCase {
	return &CreateSerialUseCase{
		serialRepo:   serialRepo,
		clientRepo:   clientRepo,
		auditRepo:    auditRepo,
		codec:        codec,
		signer:       signer,
		integrity:    integrity,
		serialCache:  serialCache,
		demoValidity: demoValidity,
		logger:       logger,
	}
}

func (uc *CreateSerialUseCase) Execute(ctx context.Context, cmd CreateSerialCommand) (*CreateSerialResult, error) {
	owner, err := uc.resolveClient(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if !owner.IsActive() {
		uc.logger.Warnw("refusing to issue serial for inactive client", "client_id", owner.ID())
		return nil, client.ErrClientInactive
	}

	maxUsage := cmd.MaxUsageCount
	expiresAt := cmd.ExpiresAt
	if cmd.Demo {
		maxUsage = 1
		demoExpiry := time.Now().Add(uc.demoValidity)
		expiresAt = &demoExpiry
	}
	if maxUsage < 1 {
		return nil, serial.ErrInvalidUsageCap
	}

	code, err := uc.codec.Encode(serial.CodePayload{
		IssuedAt:      time.Now(),
		ClientPrefix:  owner.CodePrefix(),
		MaxUsageCount: maxUsage,
		ExpiresAt:     expiresAt,
		IsDemo:        cmd.Demo,
	})
	if err != nil {
		uc.logger.Errorw("failed to encode serial code", "client_id", owner.ID(), "error", err)
		return nil, apperrors.NewInternalError("failed to encode serial code").WithCause(err)
	}

	signature, err := uc.signer.Sign(code)
	if err != nil {
		uc.logger.Errorw("failed to sign serial code", "client_id", owner.ID(), "error", err)
		return nil, apperrors.NewInternalError("failed to sign serial code").WithCause(err)
	}

	var s *serial.Serial
	if cmd.Demo {
		s, err = serial.NewDemoSerial(owner.ID(), code, uc.demoValidity)
	} else {
		s, err = serial.NewSerial(owner.ID(), code, maxUsage, expiresAt)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create serial: %w", err)
	}

	seal, err := uc.integrity.GenerateSignature(s.IntegrityFields())
	if err != nil {
		uc.logger.Errorw("failed to seal serial", "client_id", owner.ID(), "error", err)
		return nil, apperrors.NewInternalError("failed to seal serial").WithCause(err)
	}
	s.SetIntegritySignature(seal)

	if err := uc.serialRepo.Create(ctx, s); err != nil {
		uc.logger.Errorw("failed to persist serial", "client_id", owner.ID(), "error", err)
		return nil, apperrors.NewTransientIOError("failed to persist serial").WithCause(err)
	}

	writeAudit(ctx, uc.auditRepo, uc.logger, s.ID(), serial.AuditActionCreate, nil, serialImage(s), cmd.PerformedBy)

	// Warm the snapshot cache and clear any stale null marker for this code.
	if err := uc.serialCache.SetBySerialNumber(ctx, s.SerialNumber(), &cache.CachedSerial{
		SerialID: s.ID(),
		SID:      s.SID(),
		Status:   s.Status().String(),
		IsDemo:   s.IsDemo(),
	}); err != nil {
		uc.logger.Debugw("failed to warm serial cache", "sid", s.SID(), "error", err)
	}

	uc.logger.Infow("serial issued",
		"serial_sid", s.SID(),
		"client_id", owner.ID(),
		"max_usage", maxUsage,
		"is_demo", cmd.Demo,
	)

	return &CreateSerialResult{
		Serial:        s,
		Code:          code,
		CodeSignature: signature,
	}, nil
}

func (uc *CreateSerialUseCase) resolveClient(ctx context.Context, cmd CreateSerialCommand) (*client.Client, error) {
	if cmd.ClientNumber != "" {
		owner, err := uc.clientRepo.GetByClientNumber(ctx, cmd.ClientNumber)
		if err != nil {
			uc.logger.Errorw("failed to get client by number", "client_number", cmd.ClientNumber, "error", err)
			return nil, fmt.Errorf("failed to get client: %w", err)
		}
		if owner == nil {
			return nil, client.ErrClientNotFound
		}
		return owner, nil
	}

	owner, err := uc.clientRepo.GetByID(ctx, cmd.ClientID)
	if err != nil {
		uc.logger.Errorw("failed to get client", "client_id", cmd.ClientID, "error", err)
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	if owner == nil {
		return nil, client.ErrClientNotFound
	}
	return owner, nil
}
