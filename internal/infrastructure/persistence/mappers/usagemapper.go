package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"serialhub/internal/domain/serial"
	vo "serialhub/internal/domain/serial/valueobjects"
	"serialhub/internal/infrastructure/persistence/models"
)

type UsageMapper interface {
	ToEntity(model *models.UsageModel) (*serial.Usage, error)
	ToModel(entity *serial.Usage) (*models.UsageModel, error)
	ToEntities(models []*models.UsageModel) ([]*serial.Usage, error)
}

type UsageMapperImpl struct{}

func NewUsageMapper() UsageMapper {
	return &UsageMapperImpl{}
}

func (m *UsageMapperImpl) ToEntity(model *models.UsageModel) (*serial.Usage, error) {
	if model == nil {
		return nil, nil
	}

	var deviceInfo map[string]interface{}
	if model.DeviceInfo != nil {
		if err := json.Unmarshal(model.DeviceInfo, &deviceInfo); err != nil {
			return nil, fmt.Errorf("failed to unmarshal device info: %w", err)
		}
	}

	return serial.ReconstructUsage(
		model.ID,
		model.UUID,
		model.SerialID,
		model.DeviceID,
		model.IPAddress,
		deviceInfo,
		vo.UsageStatus(model.Status),
		model.CreatedAt,
		model.ExpiresAt,
	)
}

func (m *UsageMapperImpl) ToModel(entity *serial.Usage) (*models.UsageModel, error) {
	if entity == nil {
		return nil, nil
	}

	deviceInfo, err := json.Marshal(entity.DeviceInfo())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal device info: %w", err)
	}

	return &models.UsageModel{
		ID:         entity.ID(),
		UUID:       entity.UUID(),
		SerialID:   entity.SerialID(),
		DeviceID:   entity.DeviceID(),
		IPAddress:  entity.IPAddress(),
		DeviceInfo: datatypes.JSON(deviceInfo),
		Status:     entity.Status().String(),
		CreatedAt:  entity.CreatedAt(),
		ExpiresAt:  entity.ExpiresAt(),
	}, nil
}

func (m *UsageMapperImpl) ToEntities(usageModels []*models.UsageModel) ([]*serial.Usage, error) {
	entities := make([]*serial.Usage, 0, len(usageModels))
	for _, model := range usageModels {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, fmt.Errorf("failed to map usage %d: %w", model.ID, err)
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
