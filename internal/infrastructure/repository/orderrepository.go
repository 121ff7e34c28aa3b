package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ptuchik/billing/internal/domain/order"
	"github.com/ptuchik/billing/internal/infrastructure/persistence/mappers"
	"github.com/ptuchik/billing/internal/infrastructure/persistence/models"
	"github.com/ptuchik/billing/internal/shared/db"
	"github.com/ptuchik/billing/internal/shared/logger"
)

type OrderRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.OrderMapper
	logger logger.Interface
}

func NewOrderRepository(db *gorm.DB, logger logger.Interface) order.Repository {
	return &OrderRepositoryImpl{
		db:     db,
		mapper: mappers.NewOrderMapper(),
		logger: logger,
	}
}

func (r *OrderRepositoryImpl) Create(ctx context.Context, o *order.Order) error {
	model, err := r.mapper.ToModel(o)
	if err != nil {
		return fmt.Errorf("failed to map order entity: %w", err)
	}

	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Create(model).Error; err != nil {
		r.logger.Errorw("failed to create order", "public_id", model.PublicID, "error", err)
		return fmt.Errorf("failed to create order: %w", err)
	}

	if err := o.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set order ID: %w", err)
	}

	r.logger.Infow("order created", "id", model.ID, "public_id", model.PublicID, "action", model.Action)
	return nil
}

func (r *OrderRepositoryImpl) Update(ctx context.Context, o *order.Order) error {
	model, err := r.mapper.ToModel(o)
	if err != nil {
		return fmt.Errorf("failed to map order entity: %w", err)
	}

	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Model(&models.OrderModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"params":         model.Params,
			"status":         model.Status,
			"transaction_id": model.TransactionID,
			"message":        model.Message,
			"updated_at":     model.UpdatedAt,
		}).Error; err != nil {
		r.logger.Errorw("failed to update order", "id", model.ID, "error", err)
		return fmt.Errorf("failed to update order: %w", err)
	}

	r.logger.Infow("order updated", "id", model.ID, "status", o.Status().String())
	return nil
}

func (r *OrderRepositoryImpl) GetByPublicID(ctx context.Context, publicID string) (*order.Order, error) {
	var model models.OrderModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Where("public_id = ?", publicID).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return r.mapper.ToEntity(&model)
}
