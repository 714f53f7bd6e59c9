package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"serialhub/internal/domain/serial"
	vo "serialhub/internal/domain/serial/valueobjects"
	"serialhub/internal/infrastructure/persistence/mappers"
	"serialhub/internal/infrastructure/persistence/models"
	"serialhub/internal/shared/logger"
)

type UsageRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.UsageMapper
	logger logger.Interface
}

func NewUsageRepository(db *gorm.DB, logger logger.Interface) serial.UsageRepository {
	return &UsageRepositoryImpl{
		db:     db,
		mapper: mappers.NewUsageMapper(),
		logger: logger,
	}
}

func (r *UsageRepositoryImpl) Create(ctx context.Context, entity *serial.Usage) error {
	model, err := r.mapper.ToModel(entity)
	if err != nil {
		return fmt.Errorf("failed to map usage entity: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to record usage in database", "serial_id", model.SerialID, "error", err)
		return fmt.Errorf("failed to record usage: %w", err)
	}

	if err := entity.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set usage ID: %w", err)
	}

	return nil
}

func (r *UsageRepositoryImpl) CountActiveBySerialID(ctx context.Context, serialID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UsageModel{}).
		Where("serial_id = ? AND status = ?", serialID, string(vo.UsageActive)).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count active usages: %w", err)
	}
	return count, nil
}

func (r *UsageRepositoryImpl) ListBySerialID(ctx context.Context, serialID uint) ([]*serial.Usage, error) {
	var usageModels []*models.UsageModel

	if err := r.db.WithContext(ctx).
		Where("serial_id = ?", serialID).
		Order("created_at ASC").
		Find(&usageModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list usages: %w", err)
	}

	return r.mapper.ToEntities(usageModels)
}

func (r *UsageRepositoryImpl) RevokeActiveBySerialID(ctx context.Context, serialID uint) (int64, error) {
	return r.cascadeStatus(ctx, serialID, vo.UsageRevoked)
}

func (r *UsageRepositoryImpl) ExpireActiveBySerialID(ctx context.Context, serialID uint) (int64, error) {
	return r.cascadeStatus(ctx, serialID, vo.UsageExpired)
}

func (r *UsageRepositoryImpl) cascadeStatus(ctx context.Context, serialID uint, to vo.UsageStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.UsageModel{}).
		Where("serial_id = ? AND status = ?", serialID, string(vo.UsageActive)).
		Update("status", string(to))
	if result.Error != nil {
		r.logger.Errorw("failed to cascade usage status", "serial_id", serialID, "to", to, "error", result.Error)
		return 0, fmt.Errorf("failed to cascade usage status: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *UsageRepositoryImpl) CountByStatus(ctx context.Context, serialID uint) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var rows []statusCount

	if err := r.db.WithContext(ctx).
		Model(&models.UsageModel{}).
		Select("status, COUNT(*) as count").
		Where("serial_id = ?", serialID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count usages by status: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
