package mappers

import (
	"fmt"

	"github.com/ptuchik/billing/internal/domain/coupon"
	"github.com/ptuchik/billing/internal/domain/shared/money"
	"github.com/ptuchik/billing/internal/infrastructure/persistence/models"
	"github.com/ptuchik/billing/internal/shared/mapper"
)

type CouponMapper interface {
	ToEntity(model *models.CouponModel) (*coupon.Coupon, error)
	ToModel(entity *coupon.Coupon) (*models.CouponModel, error)
	ToEntities(models []*models.CouponModel) ([]*coupon.Coupon, error)
}

type CouponMapperImpl struct{}

func NewCouponMapper() CouponMapper {
	return &CouponMapperImpl{}
}

func (m *CouponMapperImpl) ToEntity(model *models.CouponModel) (*coupon.Coupon, error) {
	if model == nil {
		return nil, nil
	}

	redeemType, err := coupon.NewRedeemType(model.RedeemType)
	if err != nil {
		return nil, err
	}

	var amount money.Amounts
	if err := fromJSON("amount", model.Amount, &amount); err != nil {
		return nil, err
	}

	entity, err := coupon.ReconstructCoupon(coupon.CouponParams{
		ID:                model.ID,
		Code:              model.Code,
		Name:              model.Name,
		Amount:            amount,
		Percent:           model.Percent,
		PercentOff:        model.PercentOff,
		RedeemType:        redeemType,
		Prorate:           model.Prorate,
		ReferralConnected: model.ReferralConnected,
		Limit:             model.UsageLimit,
		Used:              model.Used,
		Version:           model.Version,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct coupon entity: %w", err)
	}
	return entity, nil
}

func (m *CouponMapperImpl) ToModel(entity *coupon.Coupon) (*models.CouponModel, error) {
	if entity == nil {
		return nil, nil
	}

	amount, err := toJSON("amount", entity.Amount())
	if err != nil {
		return nil, err
	}

	return &models.CouponModel{
		ID:                entity.ID(),
		Code:              entity.Code(),
		Name:              entity.Name(),
		Amount:            amount,
		Percent:           entity.Percent(),
		PercentOff:        entity.PercentOff(),
		RedeemType:        int(entity.RedeemType()),
		Prorate:           entity.Prorate(),
		ReferralConnected: entity.ReferralConnected(),
		UsageLimit:        entity.Limit(),
		Used:              entity.Used(),
		Version:           entity.Version(),
		CreatedAt:         entity.CreatedAt(),
		UpdatedAt:         entity.UpdatedAt(),
	}, nil
}

func (m *CouponMapperImpl) ToEntities(list []*models.CouponModel) ([]*coupon.Coupon, error) {
	return mapper.MapSlicePtrWithID(list, m.ToEntity, func(model *models.CouponModel) uint {
		return model.ID
	})
}

// GiftToModel flattens a gift. A gift without plan scope stores an empty alias.
func GiftToModel(g coupon.Gift) *models.GiftedCouponModel {
	model := &models.GiftedCouponModel{
		CouponKey: g.CouponKey,
		HostKind:  g.Host.Kind,
		HostID:    g.Host.ID,
	}
	if g.PlanAlias != nil {
		model.PlanAlias = *g.PlanAlias
	}
	return model
}
