package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ptuchik/billing/internal/domain/purchase"
	"github.com/ptuchik/billing/internal/domain/shared/ref"
	"github.com/ptuchik/billing/internal/infrastructure/persistence/mappers"
	"github.com/ptuchik/billing/internal/infrastructure/persistence/models"
	"github.com/ptuchik/billing/internal/shared/db"
	"github.com/ptuchik/billing/internal/shared/errors"
	"github.com/ptuchik/billing/internal/shared/logger"
)

type PurchaseRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.PurchaseMapper
	logger logger.Interface
}

func NewPurchaseRepository(db *gorm.DB, logger logger.Interface) purchase.Repository {
	return &PurchaseRepositoryImpl{
		db:     db,
		mapper: mappers.NewPurchaseMapper(),
		logger: logger,
	}
}

func (r *PurchaseRepositoryImpl) Create(ctx context.Context, p *purchase.Purchase) error {
	model := r.mapper.ToModel(p)

	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("package was already purchased for this host", p.Host().String())
		}
		r.logger.Errorw("failed to create purchase", "host", p.Host().String(), "package_id", p.PackageID(), "error", err)
		return fmt.Errorf("failed to create purchase: %w", err)
	}

	if err := p.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set purchase ID: %w", err)
	}

	r.logger.Infow("purchase created successfully", "id", model.ID, "host", p.Host().String(), "package", p.PackageAlias())
	return nil
}

func (r *PurchaseRepositoryImpl) Update(ctx context.Context, p *purchase.Purchase) error {
	model := r.mapper.ToModel(p)

	tx := db.GetTxFromContext(ctx, r.db)
	result := tx.Model(&models.PurchaseModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"user_id":        model.UserID,
			"package_kind":   model.PackageKind,
			"package_alias":  model.PackageAlias,
			"reference_kind": model.ReferenceKind,
			"reference_id":   model.ReferenceID,
			"active":         model.Active,
			"updated_at":     model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update purchase", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update purchase: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return purchase.ErrPurchaseNotFound
	}

	r.logger.Infow("purchase updated successfully", "id", model.ID, "active", model.Active)
	return nil
}

func (r *PurchaseRepositoryImpl) GetByID(ctx context.Context, id uint) (*purchase.Purchase, error) {
	var model models.PurchaseModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get purchase by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get purchase: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *PurchaseRepositoryImpl) GetByHostAndPackage(ctx context.Context, host ref.Ref, packageID uint) (*purchase.Purchase, error) {
	var model models.PurchaseModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Where("host_kind = ? AND host_id = ? AND package_id = ?", host.Kind, host.ID, packageID).
		First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get purchase: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *PurchaseRepositoryImpl) ListActiveByHostAndKind(ctx context.Context, host ref.Ref, kind string) ([]*purchase.Purchase, error) {
	var list []*models.PurchaseModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Scopes(db.ActiveOnly()).
		Where("host_kind = ? AND host_id = ? AND package_kind = ?", host.Kind, host.ID, kind).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	return r.mapper.ToEntities(list)
}

func (r *PurchaseRepositoryImpl) ListByUser(ctx context.Context, userID uint) ([]*purchase.Purchase, error) {
	var list []*models.PurchaseModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Where("user_id = ?", userID).Order("id ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	return r.mapper.ToEntities(list)
}
