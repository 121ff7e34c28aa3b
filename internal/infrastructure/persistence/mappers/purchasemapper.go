package mappers

import (
	"fmt"

	"github.com/ptuchik/billing/internal/domain/purchase"
	"github.com/ptuchik/billing/internal/domain/shared/ref"
	"github.com/ptuchik/billing/internal/infrastructure/persistence/models"
	"github.com/ptuchik/billing/internal/shared/mapper"
)

type PurchaseMapper interface {
	ToEntity(model *models.PurchaseModel) (*purchase.Purchase, error)
	ToModel(entity *purchase.Purchase) *models.PurchaseModel
	ToEntities(models []*models.PurchaseModel) ([]*purchase.Purchase, error)
}

type PurchaseMapperImpl struct{}

func NewPurchaseMapper() PurchaseMapper {
	return &PurchaseMapperImpl{}
}

func (m *PurchaseMapperImpl) ToEntity(model *models.PurchaseModel) (*purchase.Purchase, error) {
	if model == nil {
		return nil, nil
	}

	var reference *ref.Ref
	if model.ReferenceKind != nil && model.ReferenceID != nil {
		r := ref.New(*model.ReferenceKind, *model.ReferenceID)
		reference = &r
	}

	entity, err := purchase.ReconstructPurchase(purchase.PurchaseParams{
		ID:           model.ID,
		UserID:       model.UserID,
		Host:         ref.New(model.HostKind, model.HostID),
		PackageID:    model.PackageID,
		PackageKind:  model.PackageKind,
		PackageAlias: model.PackageAlias,
		Reference:    reference,
		Active:       model.Active,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct purchase entity: %w", err)
	}
	return entity, nil
}

func (m *PurchaseMapperImpl) ToModel(entity *purchase.Purchase) *models.PurchaseModel {
	model := &models.PurchaseModel{
		ID:           entity.ID(),
		UserID:       entity.UserID(),
		HostKind:     entity.Host().Kind,
		HostID:       entity.Host().ID,
		PackageID:    entity.PackageID(),
		PackageKind:  entity.PackageKind(),
		PackageAlias: entity.PackageAlias(),
		Active:       entity.IsActive(),
		CreatedAt:    entity.CreatedAt(),
		UpdatedAt:    entity.UpdatedAt(),
	}
	if r := entity.Reference(); r != nil {
		kind, id := r.Kind, r.ID
		model.ReferenceKind = &kind
		model.ReferenceID = &id
	}
	return model
}

func (m *PurchaseMapperImpl) ToEntities(list []*models.PurchaseModel) ([]*purchase.Purchase, error) {
	return mapper.MapSlicePtrWithID(list, m.ToEntity, func(model *models.PurchaseModel) uint {
		return model.ID
	})
}
