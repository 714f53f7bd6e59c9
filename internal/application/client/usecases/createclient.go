package usecases

import (
	"context"
	"fmt"

	"serialhub/internal/domain/client"
	"serialhub/internal/shared/logger"
	"serialhub/internal/shared/validation"
)

type CreateClientCommand struct {
	Name         string `json:"name" validate:"required,max=255"`
	ClientNumber string `json:"client_number" validate:"required,max=64"`
}

type CreateClientResult struct {
	Client *client.Client
}

// CreateClientUseCase registers a new client organization.
type CreateClientUseCase struct {
	clientRepo client.ClientRepository
	logger     logger.Interface
}

func NewCreateClientUseCase(clientRepo client.ClientRepository, logger logger.Interface) *CreateClientUseCase {
	return &CreateClientUseCase{
		clientRepo: clientRepo,
		logger:     logger,
	}
}

func (uc *CreateClientUseCase) Execute(ctx context.Context, cmd CreateClientCommand) (*CreateClientResult, error) {
	if err := validation.ValidateStruct(cmd); err != nil {
		return nil, err
	}

	c, err := client.NewClient(cmd.Name, cmd.ClientNumber)
	if err != nil {
		return nil, err
	}

	existing, err := uc.clientRepo.GetByClientNumber(ctx, c.ClientNumber())
	if err != nil {
		uc.logger.Errorw("failed to check client number uniqueness", "client_number", c.ClientNumber(), "error", err)
		return nil, fmt.Errorf("failed to check client number: %w", err)
	}
	if existing != nil {
		return nil, client.ErrClientNumberExists
	}

	if err := uc.clientRepo.Create(ctx, c); err != nil {
		uc.logger.Errorw("failed to create client", "client_number", c.ClientNumber(), "error", err)
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	uc.logger.Infow("client created",
		"client_sid", c.SID(),
		"client_number", c.ClientNumber(),
	)
	return &CreateClientResult{Client: c}, nil
}
