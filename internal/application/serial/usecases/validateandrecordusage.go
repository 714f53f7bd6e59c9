package usecases

import (
	"context"
	"fmt"
	"time"

	"serialhub/internal/domain/serial"
	vo "serialhub/internal/domain/serial/valueobjects"
	"serialhub/internal/infrastructure/cache"
	"serialhub/internal/infrastructure/crypto"
	apperrors "serialhub/internal/shared/errors"
	"serialhub/internal/shared/logger"
	"serialhub/internal/shared/retry"
	"serialhub/internal/shared/validation"
)

// Denial reasons returned by ValidateAndRecordUsage. The path is fail-closed:
// anything that cannot be positively verified reads as a denial.
const (
	ReasonInvalidCode      = "invalid_code"
	ReasonInvalidSignature = "invalid_signature"
	ReasonNotFound         = "not_found"
	ReasonIntegrity        = "integrity_failure"
	ReasonInactive         = "inactive"
	ReasonRevoked          = "revoked"
	ReasonExpired          = "expired"
	ReasonCapExceeded      = "cap_exceeded"
	ReasonLockContention   = "lock_contention"
	ReasonIOError          = "io_error"
)

const usageLockPrefix = "usage:"

type ValidateUsageCommand struct {
	Code       string                 `json:"code" validate:"required"`
	Signature  string                 `json:"signature" validate:"required"`
	DeviceID   string                 `json:"device_id" validate:"required,max=128"`
	IPAddress  string                 `json:"ip_address" validate:"omitempty,ip"`
	DeviceInfo map[string]interface{} `json:"device_info"`
}

type ValidateUsageResult struct {
	Valid  bool
	Reason string // empty when Valid
	Serial *serial.Serial
	Usage  *serial.Usage
	// Remaining is the number of admissions left after this one.
	Remaining int
}

// ValidateAndRecordUsageUseCase is the admission path: it verifies a code
// end to end (structure, signature, stored row, integrity seal, lifecycle
// state, usage cap) and records one usage. Check-and-record is serialized
// per serial number via a TTL lock, so the cap holds under concurrency.
type ValidateAndRecordUsageUseCase struct {
	serialRepo  serial.SerialRepository
	usageRepo   serial.UsageRepository
	auditRepo   serial.AuditRepository
	codec       *serial.Codec
	signer      *crypto.Signer
	integrity   *crypto.IntegrityService
	locks       cache.Cache
	serialCache cache.SerialCache
	lockTTL     time.Duration
	logger      logger.Interface
}

func NewValidateAndRecordUsageUseCase(
	serialRepo serial.SerialRepository,
	usageRepo serial.UsageRepository,
	auditRepo serial.AuditRepository,
	codec *serial.Codec,
	signer *crypto.Signer,
	integrity *crypto.IntegrityService,
	locks cache.Cache,
	serialCache cache.SerialCache,
	lockTTL time.Duration,
	logger logger.Interface,
) *ValidateAndRecordUsageUseCase {
	return &ValidateAndRecordUsageUseCase{
		serialRepo:  serialRepo,
		usageRepo:   usageRepo,
		auditRepo:   auditRepo,
		codec:       codec,
		signer:      signer,
		integrity:   integrity,
		locks:       locks,
		serialCache: serialCache,
		lockTTL:     lockTTL,
		logger:      logger,
	}
}

func (uc *ValidateAndRecordUsageUseCase) Execute(ctx context.Context, cmd ValidateUsageCommand) (*ValidateUsageResult, error) {
	if err := validation.ValidateStruct(cmd); err != nil {
		return nil, err
	}

	// Cheap offline checks first: corrupt or forged codes never reach the
	// store or the lock.
	if _, err := uc.codec.Decode(cmd.Code); err != nil {
		uc.logger.Debugw("usage denied: malformed code", "error", err)
		return deny(ReasonInvalidCode), nil
	}
	if !uc.signer.Verify(cmd.Code, cmd.Signature) {
		uc.logger.Debugw("usage denied: bad code signature")
		return deny(ReasonInvalidSignature), nil
	}

	// Null-marker short circuit: codes confirmed absent skip the store.
	if snapshot, err := uc.serialCache.GetBySerialNumber(ctx, cmd.Code); err == nil && snapshot != nil && snapshot.NotFound {
		return deny(ReasonNotFound), nil
	}

	// Existence probe before taking the lock. Retried reads must never run
	// while the lock is held.
	found, err := uc.probeExists(ctx, cmd.Code)
	if err != nil {
		return deny(ReasonIOError), err
	}
	if !found {
		if err := uc.serialCache.SetNullMarker(ctx, cmd.Code); err != nil {
			uc.logger.Debugw("failed to set null marker", "error", err)
		}
		return deny(ReasonNotFound), nil
	}

	lockKey := usageLockPrefix + cmd.Code
	acquired, err := uc.locks.SetLock(ctx, lockKey, uc.lockTTL)
	if err != nil {
		uc.logger.Errorw("failed to acquire usage lock", "error", err)
		return deny(ReasonIOError), apperrors.NewTransientIOError("failed to acquire usage lock").WithCause(err)
	}
	if !acquired {
		uc.logger.Warnw("usage denied: lock contention", "device_id", cmd.DeviceID)
		return deny(ReasonLockContention), nil
	}
	defer func() {
		if err := uc.locks.ReleaseLock(ctx, lockKey); err != nil {
			uc.logger.Warnw("failed to release usage lock", "error", err)
		}
	}()

	// Authoritative read under the lock.
	s, err := uc.serialRepo.GetBySerialNumber(ctx, cmd.Code)
	if err != nil {
		uc.logger.Errorw("failed to load serial", "error", err)
		return deny(ReasonIOError), apperrors.NewTransientIOError("failed to load serial").WithCause(err)
	}
	if s == nil {
		return deny(ReasonNotFound), nil
	}

	if !uc.integrity.VerifySeal(s.IntegrityFields(), s.IntegritySignature()) {
		uc.logger.Warnw("usage denied: integrity seal mismatch, possible tampering",
			"serial_sid", s.SID(),
			"serial_id", s.ID(),
		)
		return deny(ReasonIntegrity), nil
	}

	// Lifecycle state gates every serial, demo included: a revoked or swept
	// demo serial stays denied even after its usages were cascaded.
	if reason := lifecycleDenial(s); reason != "" {
		uc.logger.Infow("usage denied", "serial_sid", s.SID(), "reason", reason)
		return deny(reason), nil
	}

	activeCount, err := uc.usageRepo.CountActiveBySerialID(ctx, s.ID())
	if err != nil {
		uc.logger.Errorw("failed to count active usages", "serial_sid", s.SID(), "error", err)
		return deny(ReasonIOError), apperrors.NewTransientIOError("failed to count usages").WithCause(err)
	}

	cap := s.EffectiveUsageCap()
	if activeCount >= int64(cap) {
		uc.logger.Infow("usage denied: cap reached",
			"serial_sid", s.SID(),
			"active_usages", activeCount,
			"cap", cap,
		)
		return deny(ReasonCapExceeded), nil
	}

	usage, err := serial.NewUsage(s.ID(), cmd.DeviceID, cmd.IPAddress, cmd.DeviceInfo, s.ExpiresAt())
	if err != nil {
		return nil, fmt.Errorf("failed to create usage record: %w", err)
	}
	if err := uc.usageRepo.Create(ctx, usage); err != nil {
		uc.logger.Errorw("failed to record usage", "serial_sid", s.SID(), "error", err)
		return deny(ReasonIOError), apperrors.NewTransientIOError("failed to record usage").WithCause(err)
	}

	writeAudit(ctx, uc.auditRepo, uc.logger, s.ID(), serial.AuditActionRecordUsage, nil, map[string]interface{}{
		"usage_uuid": usage.UUID(),
		"device_id":  usage.DeviceID(),
		"ip_address": usage.IPAddress(),
	}, cmd.DeviceID)

	if err := uc.serialCache.SetBySerialNumber(ctx, s.SerialNumber(), &cache.CachedSerial{
		SerialID: s.ID(),
		SID:      s.SID(),
		Status:   s.Status().String(),
		IsDemo:   s.IsDemo(),
	}); err != nil {
		uc.logger.Debugw("failed to refresh serial cache", "sid", s.SID(), "error", err)
	}

	uc.logger.Infow("usage recorded",
		"serial_sid", s.SID(),
		"device_id", cmd.DeviceID,
		"active_usages", activeCount+1,
		"cap", cap,
	)

	return &ValidateUsageResult{
		Valid:     true,
		Serial:    s,
		Usage:     usage,
		Remaining: cap - int(activeCount) - 1,
	}, nil
}

// probeExists checks whether a row exists for the code, retrying transient
// read failures. Runs before the lock so retries never extend a hold.
func (uc *ValidateAndRecordUsageUseCase) probeExists(ctx context.Context, code string) (bool, error) {
	var found bool
	err := retry.Transient(ctx, func(ctx context.Context) error {
		s, err := uc.serialRepo.GetBySerialNumber(ctx, code)
		if err != nil {
			return apperrors.NewTransientIOError("failed to probe serial").WithCause(err)
		}
		found = s != nil
		return nil
	})
	return found, err
}

func lifecycleDenial(s *serial.Serial) string {
	switch s.Status() {
	case vo.StatusRevoked:
		return ReasonRevoked
	case vo.StatusExpired:
		return ReasonExpired
	}
	if s.IsExpiredAt(time.Now()) {
		return ReasonExpired
	}
	if !s.IsActive() {
		return ReasonInactive
	}
	return ""
}

func deny(reason string) *ValidateUsageResult {
	return &ValidateUsageResult{Valid: false, Reason: reason}
}
