package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"serialhub/internal/domain/serial"
	"serialhub/internal/infrastructure/persistence/models"
	"serialhub/internal/shared/logger"
)

type AuditRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewAuditRepository(db *gorm.DB, logger logger.Interface) serial.AuditRepository {
	return &AuditRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *AuditRepositoryImpl) Create(ctx context.Context, record *serial.AuditRecord) error {
	model := &models.AuditModel{
		EntityType:  record.EntityType(),
		EntityID:    record.EntityID(),
		Action:      record.Action(),
		Before:      datatypes.JSON(record.Before()),
		After:       datatypes.JSON(record.After()),
		PerformedBy: record.PerformedBy(),
		PerformedAt: record.PerformedAt(),
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to write audit record",
			"entity_type", model.EntityType,
			"entity_id", model.EntityID,
			"action", model.Action,
			"error", err,
		)
		return fmt.Errorf("failed to write audit record: %w", err)
	}

	record.SetID(model.ID)
	return nil
}

func (r *AuditRepositoryImpl) ListByEntity(ctx context.Context, entityType string, entityID uint) ([]*serial.AuditRecord, error) {
	var auditModels []*models.AuditModel

	if err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("performed_at ASC").
		Find(&auditModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list audit records: %w", err)
	}

	records := make([]*serial.AuditRecord, 0, len(auditModels))
	for _, model := range auditModels {
		records = append(records, serial.ReconstructAuditRecord(
			model.ID,
			model.EntityType,
			model.EntityID,
			model.Action,
			json.RawMessage(model.Before),
			json.RawMessage(model.After),
			model.PerformedBy,
			model.PerformedAt,
		))
	}
	return records, nil
}
