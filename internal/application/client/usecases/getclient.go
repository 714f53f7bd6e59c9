package usecases

import (
	"context"
	"fmt"

	"serialhub/internal/domain/client"
	"serialhub/internal/shared/logger"
)

type GetClientCommand struct {
	ClientNumber string
}

type GetClientResult struct {
	Client *client.Client
}

type GetClientUseCase struct {
	clientRepo client.ClientRepository
	logger     logger.Interface
}

func NewGetClientUseCase(clientRepo client.ClientRepository, logger logger.Interface) *GetClientUseCase {
	return &GetClientUseCase{
		clientRepo: clientRepo,
		logger:     logger,
	}
}

func (uc *GetClientUseCase) Execute(ctx context.Context, cmd GetClientCommand) (*GetClientResult, error) {
	c, err := uc.clientRepo.GetByClientNumber(ctx, cmd.ClientNumber)
	if err != nil {
		uc.logger.Errorw("failed to get client", "client_number", cmd.ClientNumber, "error", err)
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	if c == nil {
		return nil, client.ErrClientNotFound
	}
	return &GetClientResult{Client: c}, nil
}
