package mappers

import (
	"fmt"

	"github.com/ptuchik/billing/internal/domain/coupon"
	vo "github.com/ptuchik/billing/internal/domain/plan/valueobjects"
	"github.com/ptuchik/billing/internal/domain/subscription"
	"github.com/ptuchik/billing/internal/infrastructure/persistence/models"
	"github.com/ptuchik/billing/internal/shared/mapper"
)

type SubscriptionMapper interface {
	ToEntity(model *models.SubscriptionModel) (*subscription.Subscription, error)
	ToModel(entity *subscription.Subscription) (*models.SubscriptionModel, error)
	ToEntities(models []*models.SubscriptionModel) ([]*subscription.Subscription, error)
}

type SubscriptionMapperImpl struct{}

func NewSubscriptionMapper() SubscriptionMapper {
	return &SubscriptionMapperImpl{}
}

func (m *SubscriptionMapperImpl) ToEntity(model *models.SubscriptionModel) (*subscription.Subscription, error) {
	if model == nil {
		return nil, nil
	}

	frequency, err := vo.NewFrequency(model.Frequency)
	if err != nil {
		return nil, err
	}

	var coupons, addons []coupon.Snapshot
	if err := fromJSON("coupons", model.Coupons, &coupons); err != nil {
		return nil, err
	}
	if err := fromJSON("addons", model.Addons, &addons); err != nil {
		return nil, err
	}
	var features map[string]interface{}
	if err := fromJSON("features", model.Features, &features); err != nil {
		return nil, err
	}

	entity, err := subscription.ReconstructSubscription(subscription.SubscriptionParams{
		ID:              model.ID,
		PurchaseID:      model.PurchaseID,
		UserID:          model.UserID,
		Alias:           model.Alias,
		Name:            model.Name,
		Price:           model.Price,
		Currency:        model.Currency,
		Frequency:       frequency,
		Coupons:         coupons,
		Addons:          addons,
		Features:        features,
		TrialEndsAt:     model.TrialEndsAt,
		EndsAt:          model.EndsAt,
		NextBillingDate: model.NextBillingDate,
		Active:          model.Active,
		Version:         model.Version,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct subscription entity: %w", err)
	}
	return entity, nil
}

func (m *SubscriptionMapperImpl) ToModel(entity *subscription.Subscription) (*models.SubscriptionModel, error) {
	if entity == nil {
		return nil, nil
	}

	coupons, err := toJSON("coupons", entity.Coupons())
	if err != nil {
		return nil, err
	}
	addons, err := toJSON("addons", entity.Addons())
	if err != nil {
		return nil, err
	}
	features, err := toJSON("features", entity.Features())
	if err != nil {
		return nil, err
	}

	return &models.SubscriptionModel{
		ID:                entity.ID(),
		PurchaseID:        entity.PurchaseID(),
		ActivePurchaseKey: entity.ActivePurchaseKey(),
		UserID:            entity.UserID(),
		Alias:             entity.Alias(),
		Name:              entity.Name(),
		Price:             entity.Price(),
		Currency:          entity.Currency(),
		Frequency:         entity.Frequency().Months(),
		Coupons:           coupons,
		Addons:            addons,
		Features:          features,
		TrialEndsAt:       entity.TrialEndsAt(),
		EndsAt:            entity.EndsAt(),
		NextBillingDate:   entity.NextBillingDate(),
		Active:            entity.IsActive(),
		Version:           entity.Version(),
		CreatedAt:         entity.CreatedAt(),
		UpdatedAt:         entity.UpdatedAt(),
	}, nil
}

func (m *SubscriptionMapperImpl) ToEntities(list []*models.SubscriptionModel) ([]*subscription.Subscription, error) {
	return mapper.MapSlicePtrWithID(list, m.ToEntity, func(model *models.SubscriptionModel) uint {
		return model.ID
	})
}
