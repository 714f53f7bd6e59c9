// Package serial wires the serial lifecycle use cases into a single facade
// consumed by the CLI and the worker.
package serial

import (
	"context"
	"time"

	"serialhub/internal/application/serial/usecases"
	"serialhub/internal/domain/client"
	domainserial "serialhub/internal/domain/serial"
	"serialhub/internal/infrastructure/cache"
	"serialhub/internal/infrastructure/crypto"
	"serialhub/internal/shared/config"
	"serialhub/internal/shared/logger"
)

// Service is the serial lifecycle facade.
type Service struct {
	create   *usecases.CreateSerialUseCase
	validate *usecases.ValidateCodeUseCase
	record   *usecases.ValidateAndRecordUsageUseCase
	revoke   *usecases.RevokeSerialUseCase
	renew    *usecases.RenewSerialUseCase
	get      *usecases.GetSerialUseCase
	stats    *usecases.GetUsageStatsUseCase
	expire   *usecases.ExpireSerialsUseCase
	warn     *usecases.WarnExpiringUseCase
}

// Dependencies carries everything the serial service needs.
type Dependencies struct {
	SerialRepo  domainserial.SerialRepository
	UsageRepo   domainserial.UsageRepository
	AuditRepo   domainserial.AuditRepository
	ClientRepo  client.ClientRepository
	Signer      *crypto.Signer
	Integrity   *crypto.IntegrityService
	Locks       cache.Cache
	SerialCache cache.SerialCache
	WarnMarkers usecases.WarnMarkers
	Publisher   usecases.EventPublisher
	Config      *config.SerialConfig
	Logger      logger.Interface
}

func NewService(deps Dependencies) *Service {
	codec := domainserial.NewCodec()
	log := deps.Logger

	lockTTL := time.Duration(deps.Config.LockTTLSeconds) * time.Second
	warnWindow := time.Duration(deps.Config.WarningWindowDays) * 24 * time.Hour
	demoValidity := time.Duration(deps.Config.DemoValidityDays) * 24 * time.Hour

	return &Service{
		create: usecases.NewCreateSerialUseCase(
			deps.SerialRepo, deps.ClientRepo, deps.AuditRepo,
			codec, deps.Signer, deps.Integrity, deps.SerialCache,
			demoValidity, log,
		),
		validate: usecases.NewValidateCodeUseCase(codec, deps.Signer, log),
		record: usecases.NewValidateAndRecordUsageUseCase(
			deps.SerialRepo, deps.UsageRepo, deps.AuditRepo,
			codec, deps.Signer, deps.Integrity,
			deps.Locks, deps.SerialCache, lockTTL, log,
		),
		revoke: usecases.NewRevokeSerialUseCase(
			deps.SerialRepo, deps.UsageRepo, deps.AuditRepo,
			deps.Integrity, deps.SerialCache, log,
		),
		renew: usecases.NewRenewSerialUseCase(
			deps.SerialRepo, deps.AuditRepo, deps.Integrity,
			deps.SerialCache, deps.WarnMarkers, deps.Publisher, log,
		),
		get:   usecases.NewGetSerialUseCase(deps.SerialRepo, deps.UsageRepo, deps.AuditRepo, log),
		stats: usecases.NewGetUsageStatsUseCase(deps.SerialRepo, deps.UsageRepo, log),
		expire: usecases.NewExpireSerialsUseCase(
			deps.SerialRepo, deps.UsageRepo, deps.AuditRepo,
			deps.Integrity, deps.SerialCache, deps.Publisher,
			deps.Config.SweepBatchSize, log,
		),
		warn: usecases.NewWarnExpiringUseCase(
			deps.SerialRepo, deps.WarnMarkers, deps.Publisher,
			warnWindow, deps.Config.SweepBatchSize, log,
		),
	}
}

func (s *Service) CreateSerial(ctx context.Context, cmd usecases.CreateSerialCommand) (*usecases.CreateSerialResult, error) {
	return s.create.Execute(ctx, cmd)
}

func (s *Service) ValidateCode(ctx context.Context, cmd usecases.ValidateCodeCommand) (*usecases.ValidateCodeResult, error) {
	return s.validate.Execute(ctx, cmd)
}

func (s *Service) ValidateAndRecordUsage(ctx context.Context, cmd usecases.ValidateUsageCommand) (*usecases.ValidateUsageResult, error) {
	return s.record.Execute(ctx, cmd)
}

func (s *Service) RevokeSerial(ctx context.Context, cmd usecases.RevokeSerialCommand) (*usecases.RevokeSerialResult, error) {
	return s.revoke.Execute(ctx, cmd)
}

func (s *Service) RenewSerial(ctx context.Context, cmd usecases.RenewSerialCommand) (*usecases.RenewSerialResult, error) {
	return s.renew.Execute(ctx, cmd)
}

func (s *Service) GetSerial(ctx context.Context, cmd usecases.GetSerialCommand) (*usecases.GetSerialResult, error) {
	return s.get.Execute(ctx, cmd)
}

func (s *Service) GetUsageStats(ctx context.Context, cmd usecases.GetUsageStatsCommand) (*usecases.GetUsageStatsResult, error) {
	return s.stats.Execute(ctx, cmd)
}

// ExpireSerials runs one enforcement sweep pass.
func (s *Service) ExpireSerials(ctx context.Context) (*usecases.ExpireSerialsResult, error) {
	return s.expire.Execute(ctx)
}

// WarnExpiring runs one warning sweep pass.
func (s *Service) WarnExpiring(ctx context.Context) (*usecases.WarnExpiringResult, error) {
	return s.warn.Execute(ctx)
}
