package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"serialhub/internal/domain/client"
	"serialhub/internal/infrastructure/persistence/mappers"
	"serialhub/internal/infrastructure/persistence/models"
	"serialhub/internal/shared/logger"
)

type ClientRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.ClientMapper
	logger logger.Interface
}

func NewClientRepository(db *gorm.DB, logger logger.Interface) client.ClientRepository {
	return &ClientRepositoryImpl{
		db:     db,
		mapper: mappers.NewClientMapper(),
		logger: logger,
	}
}

func (r *ClientRepositoryImpl) Create(ctx context.Context, entity *client.Client) error {
	model := r.mapper.ToModel(entity)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create client in database", "error", err)
		return fmt.Errorf("failed to create client: %w", err)
	}

	if err := entity.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set client ID: %w", err)
	}

	r.logger.Infow("client created", "id", model.ID, "sid", model.SID)
	return nil
}

func (r *ClientRepositoryImpl) GetByID(ctx context.Context, id uint) (*client.Client, error) {
	var model models.ClientModel

	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get client by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

func (r *ClientRepositoryImpl) GetByClientNumber(ctx context.Context, clientNumber string) (*client.Client, error) {
	var model models.ClientModel

	if err := r.db.WithContext(ctx).Where("client_number = ?", clientNumber).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get client by client number", "error", err)
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

func (r *ClientRepositoryImpl) Update(ctx context.Context, entity *client.Client) error {
	model := r.mapper.ToModel(entity)

	result := r.db.WithContext(ctx).Model(&models.ClientModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"name":       model.Name,
			"active":     model.Active,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update client", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update client: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("client %d not found for update", model.ID)
	}

	return nil
}

func (r *ClientRepositoryImpl) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.ClientModel{}, id).Error; err != nil {
		r.logger.Errorw("failed to delete client", "id", id, "error", err)
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return nil
}
