package mappers

import (
	"fmt"

	"serialhub/internal/domain/serial"
	vo "serialhub/internal/domain/serial/valueobjects"
	"serialhub/internal/infrastructure/persistence/models"
)

type SerialMapper interface {
	ToEntity(model *models.SerialModel) (*serial.Serial, error)
	ToModel(entity *serial.Serial) (*models.SerialModel, error)
	ToEntities(models []*models.SerialModel) ([]*serial.Serial, error)
}

type SerialMapperImpl struct{}

func NewSerialMapper() SerialMapper {
	return &SerialMapperImpl{}
}

func (m *SerialMapperImpl) ToEntity(model *models.SerialModel) (*serial.Serial, error) {
	if model == nil {
		return nil, nil
	}

	status := vo.SerialStatus(model.Status)
	if !vo.ValidSerialStatuses[status] {
		return nil, fmt.Errorf("invalid serial status: %s", model.Status)
	}

	return serial.Reconstruct(serial.ReconstructParams{
		ID:                 model.ID,
		SID:                model.SID,
		SerialNumber:       model.SerialNumber,
		ClientID:           model.ClientID,
		MaxUsageCount:      model.MaxUsageCount,
		ExpiresAt:          model.ExpiresAt,
		IsDemo:             model.IsDemo,
		Status:             status,
		IntegritySignature: model.IntegritySignature,
		CodecVersion:       model.CodecVersion,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	})
}

func (m *SerialMapperImpl) ToModel(entity *serial.Serial) (*models.SerialModel, error) {
	if entity == nil {
		return nil, nil
	}

	return &models.SerialModel{
		ID:                 entity.ID(),
		SID:                entity.SID(),
		SerialNumber:       entity.SerialNumber(),
		ClientID:           entity.ClientID(),
		MaxUsageCount:      entity.MaxUsageCount(),
		ExpiresAt:          entity.ExpiresAt(),
		IsDemo:             entity.IsDemo(),
		Status:             entity.Status().String(),
		IntegritySignature: entity.IntegritySignature(),
		CodecVersion:       entity.CodecVersion(),
		CreatedAt:          entity.CreatedAt(),
		UpdatedAt:          entity.UpdatedAt(),
	}, nil
}

func (m *SerialMapperImpl) ToEntities(serialModels []*models.SerialModel) ([]*serial.Serial, error) {
	entities := make([]*serial.Serial, 0, len(serialModels))
	for _, model := range serialModels {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, fmt.Errorf("failed to map serial %d: %w", model.ID, err)
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
