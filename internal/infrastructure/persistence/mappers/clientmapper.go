package mappers

import (
	"serialhub/internal/domain/client"
	"serialhub/internal/infrastructure/persistence/models"
)

type ClientMapper interface {
	ToEntity(model *models.ClientModel) (*client.Client, error)
	ToModel(entity *client.Client) *models.ClientModel
}

type ClientMapperImpl struct{}

func NewClientMapper() ClientMapper {
	return &ClientMapperImpl{}
}

func (m *ClientMapperImpl) ToEntity(model *models.ClientModel) (*client.Client, error) {
	if model == nil {
		return nil, nil
	}
	return client.ReconstructClient(
		model.ID,
		model.SID,
		model.Name,
		model.ClientNumber,
		model.Active,
		model.CreatedAt,
		model.UpdatedAt,
	)
}

func (m *ClientMapperImpl) ToModel(entity *client.Client) *models.ClientModel {
	if entity == nil {
		return nil
	}
	return &models.ClientModel{
		ID:           entity.ID(),
		SID:          entity.SID(),
		Name:         entity.Name(),
		ClientNumber: entity.ClientNumber(),
		Active:       entity.IsActive(),
		CreatedAt:    entity.CreatedAt(),
		UpdatedAt:    entity.UpdatedAt(),
	}
}
