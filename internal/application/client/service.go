// Package client wires the client management use cases into a facade.
package client

import (
	"context"

	"serialhub/internal/application/client/usecases"
	domainclient "serialhub/internal/domain/client"
	"serialhub/internal/domain/serial"
	"serialhub/internal/infrastructure/cache"
	"serialhub/internal/shared/logger"
)

// Service is the client management facade.
type Service struct {
	create     *usecases.CreateClientUseCase
	deactivate *usecases.DeactivateClientUseCase
	get        *usecases.GetClientUseCase
}

func NewService(
	clientRepo domainclient.ClientRepository,
	serialRepo serial.SerialRepository,
	auditRepo serial.AuditRepository,
	cacheStore cache.Cache,
	log logger.Interface,
) *Service {
	return &Service{
		create:     usecases.NewCreateClientUseCase(clientRepo, log),
		deactivate: usecases.NewDeactivateClientUseCase(clientRepo, serialRepo, auditRepo, cacheStore, log),
		get:        usecases.NewGetClientUseCase(clientRepo, log),
	}
}

func (s *Service) CreateClient(ctx context.Context, cmd usecases.CreateClientCommand) (*usecases.CreateClientResult, error) {
	return s.create.Execute(ctx, cmd)
}

func (s *Service) DeactivateClient(ctx context.Context, cmd usecases.DeactivateClientCommand) (*usecases.DeactivateClientResult, error) {
	return s.deactivate.Execute(ctx, cmd)
}

func (s *Service) GetClient(ctx context.Context, cmd usecases.GetClientCommand) (*usecases.GetClientResult, error) {
	return s.get.Execute(ctx, cmd)
}
