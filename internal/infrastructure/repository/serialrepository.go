package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"serialhub/internal/domain/serial"
	vo "serialhub/internal/domain/serial/valueobjects"
	"serialhub/internal/infrastructure/persistence/mappers"
	"serialhub/internal/infrastructure/persistence/models"
	"serialhub/internal/shared/logger"
)

type SerialRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.SerialMapper
	logger logger.Interface
}

func NewSerialRepository(db *gorm.DB, logger logger.Interface) serial.SerialRepository {
	return &SerialRepositoryImpl{
		db:     db,
		mapper: mappers.NewSerialMapper(),
		logger: logger,
	}
}

func (r *SerialRepositoryImpl) Create(ctx context.Context, entity *serial.Serial) error {
	model, err := r.mapper.ToModel(entity)
	if err != nil {
		return fmt.Errorf("failed to map serial entity: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create serial in database", "error", err)
		return fmt.Errorf("failed to create serial: %w", err)
	}

	if err := entity.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set serial ID: %w", err)
	}

	r.logger.Infow("serial created", "id", model.ID, "sid", model.SID, "client_id", model.ClientID)
	return nil
}

func (r *SerialRepositoryImpl) GetByID(ctx context.Context, id uint) (*serial.Serial, error) {
	var model models.SerialModel

	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get serial by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get serial: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

func (r *SerialRepositoryImpl) GetBySerialNumber(ctx context.Context, serialNumber string) (*serial.Serial, error) {
	var model models.SerialModel

	if err := r.db.WithContext(ctx).Where("serial_number = ?", serialNumber).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get serial by serial number", "error", err)
		return nil, fmt.Errorf("failed to get serial: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

func (r *SerialRepositoryImpl) Update(ctx context.Context, entity *serial.Serial) error {
	model, err := r.mapper.ToModel(entity)
	if err != nil {
		return fmt.Errorf("failed to map serial entity: %w", err)
	}

	result := r.db.WithContext(ctx).Model(&models.SerialModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"max_usage_count":     model.MaxUsageCount,
			"expires_at":          model.ExpiresAt,
			"status":              model.Status,
			"integrity_signature": model.IntegritySignature,
			"updated_at":          model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update serial", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update serial: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("serial %d not found for update", model.ID)
	}

	return nil
}

func (r *SerialRepositoryImpl) FindExpiring(ctx context.Context, window time.Duration, limit int) ([]*serial.Serial, error) {
	var serialModels []*models.SerialModel

	now := time.Now()
	deadline := now.Add(window)

	if err := r.db.WithContext(ctx).
		Where("status = ? AND is_demo = ? AND expires_at IS NOT NULL AND expires_at > ? AND expires_at <= ?",
			string(vo.StatusActive), false, now, deadline).
		Order("expires_at ASC").
		Limit(limit).
		Find(&serialModels).Error; err != nil {
		r.logger.Errorw("failed to find expiring serials", "error", err)
		return nil, fmt.Errorf("failed to find expiring serials: %w", err)
	}

	return r.mapper.ToEntities(serialModels)
}

func (r *SerialRepositoryImpl) FindExpired(ctx context.Context, limit int) ([]*serial.Serial, error) {
	var serialModels []*models.SerialModel

	if err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", string(vo.StatusActive), time.Now()).
		Order("expires_at ASC").
		Limit(limit).
		Find(&serialModels).Error; err != nil {
		r.logger.Errorw("failed to find expired serials", "error", err)
		return nil, fmt.Errorf("failed to find expired serials: %w", err)
	}

	return r.mapper.ToEntities(serialModels)
}

func (r *SerialRepositoryImpl) SoftDeleteByClientID(ctx context.Context, clientID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Delete(&models.SerialModel{})
	if result.Error != nil {
		r.logger.Errorw("failed to soft-delete serials for client", "client_id", clientID, "error", result.Error)
		return 0, fmt.Errorf("failed to soft-delete serials: %w", result.Error)
	}

	r.logger.Infow("serials soft-deleted for client", "client_id", clientID, "count", result.RowsAffected)
	return result.RowsAffected, nil
}

func (r *SerialRepositoryImpl) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SerialModel{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count serials by status: %w", err)
	}
	return count, nil
}
