package mappers

import (
	"fmt"

	"github.com/ptuchik/billing/internal/domain/order"
	"github.com/ptuchik/billing/internal/domain/shared/ref"
	"github.com/ptuchik/billing/internal/infrastructure/persistence/models"
)

type OrderMapper interface {
	ToEntity(model *models.OrderModel) (*order.Order, error)
	ToModel(entity *order.Order) (*models.OrderModel, error)
}

type OrderMapperImpl struct{}

func NewOrderMapper() OrderMapper {
	return &OrderMapperImpl{}
}

func (m *OrderMapperImpl) ToEntity(model *models.OrderModel) (*order.Order, error) {
	if model == nil {
		return nil, nil
	}

	action := order.Action(model.Action)
	if !action.IsValid() {
		return nil, fmt.Errorf("invalid order action: %s", model.Action)
	}

	var params map[string]interface{}
	if err := fromJSON("params", model.Params, &params); err != nil {
		return nil, err
	}

	entity, err := order.ReconstructOrder(order.OrderParams{
		ID:            model.ID,
		PublicID:      model.PublicID,
		UserID:        model.UserID,
		Action:        action,
		Host:          ref.New(model.HostKind, model.HostID),
		Reference:     ref.New(model.ReferenceKind, model.ReferenceID),
		Params:        params,
		Status:        order.Status(model.Status),
		TransactionID: model.TransactionID,
		Message:       model.Message,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct order entity: %w", err)
	}
	return entity, nil
}

func (m *OrderMapperImpl) ToModel(entity *order.Order) (*models.OrderModel, error) {
	if entity == nil {
		return nil, nil
	}

	params, err := toJSON("params", entity.Params())
	if err != nil {
		return nil, err
	}

	return &models.OrderModel{
		ID:            entity.ID(),
		PublicID:      entity.PublicID(),
		UserID:        entity.UserID(),
		Action:        string(entity.Action()),
		HostKind:      entity.Host().Kind,
		HostID:        entity.Host().ID,
		ReferenceKind: entity.Reference().Kind,
		ReferenceID:   entity.Reference().ID,
		Params:        params,
		Status:        int(entity.Status()),
		TransactionID: entity.TransactionID(),
		Message:       entity.Message(),
		CreatedAt:     entity.CreatedAt(),
		UpdatedAt:     entity.UpdatedAt(),
	}, nil
}
