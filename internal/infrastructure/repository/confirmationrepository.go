package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ptuchik/billing/internal/domain/invoice"
	"github.com/ptuchik/billing/internal/infrastructure/persistence/mappers"
	"github.com/ptuchik/billing/internal/infrastructure/persistence/models"
	"github.com/ptuchik/billing/internal/shared/db"
	"github.com/ptuchik/billing/internal/shared/logger"
)

type ConfirmationRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewConfirmationRepository(db *gorm.DB, logger logger.Interface) invoice.ConfirmationRepository {
	return &ConfirmationRepositoryImpl{db: db, logger: logger}
}

func (r *ConfirmationRepositoryImpl) ListByType(ctx context.Context, typ invoice.ConfirmationType, packageID uint) ([]*invoice.Confirmation, error) {
	var list []*models.ConfirmationModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Where("type = ? AND (package_id IS NULL OR package_id = ?)", int(typ), packageID).
		Order("id ASC").
		Find(&list).Error; err != nil {
		r.logger.Errorw("failed to list confirmations", "type", typ.String(), "package_id", packageID, "error", err)
		return nil, fmt.Errorf("failed to list confirmations: %w", err)
	}

	result := make([]*invoice.Confirmation, 0, len(list))
	for _, model := range list {
		result = append(result, mappers.ConfirmationToEntity(model))
	}
	return result, nil
}

func (r *ConfirmationRepositoryImpl) Create(ctx context.Context, c *invoice.Confirmation) error {
	model := mappers.ConfirmationToModel(c)
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to create confirmation: %w", err)
	}
	c.ID = model.ID
	c.Device = invoice.Device(model.Device)
	return nil
}

func (r *ConfirmationRepositoryImpl) CountGlobal(ctx context.Context) (int64, error) {
	var count int64
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Model(&models.ConfirmationModel{}).Where("package_id IS NULL").Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count confirmations: %w", err)
	}
	return count, nil
}
