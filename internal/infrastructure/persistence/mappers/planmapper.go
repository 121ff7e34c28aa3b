package mappers

import (
	"fmt"

	"github.com/ptuchik/billing/internal/domain/coupon"
	"github.com/ptuchik/billing/internal/domain/plan"
	vo "github.com/ptuchik/billing/internal/domain/plan/valueobjects"
	"github.com/ptuchik/billing/internal/domain/shared/money"
	"github.com/ptuchik/billing/internal/infrastructure/persistence/models"
)

// PlanMapper converts plans. Coupons and addons live in the plan_coupons
// join table, so the repository loads them and hands them over.
type PlanMapper interface {
	ToEntity(model *models.PlanModel, coupons, addons []*coupon.Coupon) (*plan.Plan, error)
	ToModel(entity *plan.Plan) (*models.PlanModel, error)
	PackageToEntity(model *models.PackageModel) (*plan.Package, error)
	PackageToModel(entity *plan.Package) *models.PackageModel
}

type PlanMapperImpl struct{}

func NewPlanMapper() PlanMapper {
	return &PlanMapperImpl{}
}

func (m *PlanMapperImpl) ToEntity(model *models.PlanModel, coupons, addons []*coupon.Coupon) (*plan.Plan, error) {
	if model == nil {
		return nil, nil
	}

	frequency, err := vo.NewFrequency(model.Frequency)
	if err != nil {
		return nil, err
	}
	visibility, err := vo.NewVisibility(model.Visibility)
	if err != nil {
		return nil, err
	}

	var price money.Amounts
	if err := fromJSON("price", model.Price, &price); err != nil {
		return nil, err
	}
	var features map[string]interface{}
	if err := fromJSON("features", model.Features, &features); err != nil {
		return nil, err
	}
	var additional []string
	if err := fromJSON("additional plans", model.AdditionalPlans, &additional); err != nil {
		return nil, err
	}

	entity, err := plan.ReconstructPlan(plan.PlanParams{
		ID:              model.ID,
		PackageID:       model.PackageID,
		Alias:           model.Alias,
		Name:            model.Name,
		Price:           price,
		Frequency:       frequency,
		TrialDays:       model.TrialDays,
		Visibility:      visibility,
		Features:        features,
		Coupons:         coupons,
		Addons:          addons,
		AdditionalPlans: additional,
		SortOrder:       model.SortOrder,
		Version:         model.Version,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct plan entity: %w", err)
	}
	return entity, nil
}

func (m *PlanMapperImpl) ToModel(entity *plan.Plan) (*models.PlanModel, error) {
	if entity == nil {
		return nil, nil
	}

	price, err := toJSON("price", entity.Price())
	if err != nil {
		return nil, err
	}
	features, err := toJSON("features", entity.Features())
	if err != nil {
		return nil, err
	}
	additional, err := toJSON("additional plans", entity.AdditionalPlans())
	if err != nil {
		return nil, err
	}

	return &models.PlanModel{
		ID:              entity.ID(),
		PackageID:       entity.PackageID(),
		Alias:           entity.Alias(),
		Name:            entity.Name(),
		Price:           price,
		Frequency:       entity.Frequency().Months(),
		TrialDays:       entity.TrialDays(),
		Visibility:      int(entity.Visibility()),
		Features:        features,
		AdditionalPlans: additional,
		SortOrder:       entity.SortOrder(),
		Version:         entity.Version(),
		CreatedAt:       entity.CreatedAt(),
		UpdatedAt:       entity.UpdatedAt(),
	}, nil
}

func (m *PlanMapperImpl) PackageToEntity(model *models.PackageModel) (*plan.Package, error) {
	if model == nil {
		return nil, nil
	}
	return plan.ReconstructPackage(model.ID, model.Kind, model.Alias, model.Name, false, model.CreatedAt, model.UpdatedAt)
}

func (m *PlanMapperImpl) PackageToModel(entity *plan.Package) *models.PackageModel {
	return &models.PackageModel{
		ID:        entity.ID(),
		Kind:      entity.Kind(),
		Alias:     entity.Alias(),
		Name:      entity.Name(),
		CreatedAt: entity.CreatedAt(),
		UpdatedAt: entity.UpdatedAt(),
	}
}
