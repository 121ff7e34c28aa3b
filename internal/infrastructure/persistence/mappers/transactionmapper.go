package mappers

import (
	"fmt"

	"github.com/ptuchik/billing/internal/domain/coupon"
	"github.com/ptuchik/billing/internal/domain/transaction"
	"github.com/ptuchik/billing/internal/infrastructure/persistence/models"
	"github.com/ptuchik/billing/internal/shared/mapper"
)

type TransactionMapper interface {
	ToEntity(model *models.TransactionModel) (*transaction.Transaction, error)
	ToModel(entity *transaction.Transaction) (*models.TransactionModel, error)
	ToEntities(models []*models.TransactionModel) ([]*transaction.Transaction, error)
}

type TransactionMapperImpl struct{}

func NewTransactionMapper() TransactionMapper {
	return &TransactionMapperImpl{}
}

func (m *TransactionMapperImpl) ToEntity(model *models.TransactionModel) (*transaction.Transaction, error) {
	if model == nil {
		return nil, nil
	}

	var coupons []coupon.Snapshot
	if err := fromJSON("coupons", model.Coupons, &coupons); err != nil {
		return nil, err
	}
	var data map[string]interface{}
	if err := fromJSON("data", model.Data, &data); err != nil {
		return nil, err
	}

	entity, err := transaction.ReconstructTransaction(transaction.TransactionParams{
		ID:             model.ID,
		Reference:      model.Reference,
		UserID:         model.UserID,
		PurchaseID:     model.PurchaseID,
		SubscriptionID: model.SubscriptionID,
		Name:           model.Name,
		Type:           transaction.Type(model.Type),
		Price:          model.Price,
		Discount:       model.Discount,
		Summary:        model.Summary,
		Currency:       model.Currency,
		Coupons:        coupons,
		Gateway:        model.Gateway,
		Status:         transaction.Status(model.Status),
		Message:        model.Message,
		Data:           data,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct transaction entity: %w", err)
	}
	return entity, nil
}

func (m *TransactionMapperImpl) ToModel(entity *transaction.Transaction) (*models.TransactionModel, error) {
	if entity == nil {
		return nil, nil
	}

	coupons, err := toJSON("coupons", entity.Coupons())
	if err != nil {
		return nil, err
	}
	data, err := toJSON("data", entity.Data())
	if err != nil {
		return nil, err
	}

	return &models.TransactionModel{
		ID:             entity.ID(),
		Reference:      entity.Reference(),
		UserID:         entity.UserID(),
		PurchaseID:     entity.PurchaseID(),
		SubscriptionID: entity.SubscriptionID(),
		Name:           entity.Name(),
		Type:           int(entity.Type()),
		Price:          entity.Price(),
		Discount:       entity.Discount(),
		Summary:        entity.Summary(),
		Currency:       entity.Currency(),
		Coupons:        coupons,
		Gateway:        entity.Gateway(),
		Status:         int(entity.Status()),
		Message:        entity.Message(),
		Data:           data,
		CreatedAt:      entity.CreatedAt(),
		UpdatedAt:      entity.UpdatedAt(),
	}, nil
}

func (m *TransactionMapperImpl) ToEntities(list []*models.TransactionModel) ([]*transaction.Transaction, error) {
	return mapper.MapSlicePtrWithID(list, m.ToEntity, func(model *models.TransactionModel) uint {
		return model.ID
	})
}
