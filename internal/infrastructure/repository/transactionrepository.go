package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ptuchik/billing/internal/domain/transaction"
	"github.com/ptuchik/billing/internal/infrastructure/persistence/mappers"
	"github.com/ptuchik/billing/internal/infrastructure/persistence/models"
	"github.com/ptuchik/billing/internal/shared/constants"
	"github.com/ptuchik/billing/internal/shared/db"
	"github.com/ptuchik/billing/internal/shared/logger"
)

type TransactionRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.TransactionMapper
	logger logger.Interface
}

func NewTransactionRepository(db *gorm.DB, logger logger.Interface) transaction.Repository {
	return &TransactionRepositoryImpl{
		db:     db,
		mapper: mappers.NewTransactionMapper(),
		logger: logger,
	}
}

func (r *TransactionRepositoryImpl) Create(ctx context.Context, t *transaction.Transaction) error {
	model, err := r.mapper.ToModel(t)
	if err != nil {
		return fmt.Errorf("failed to map transaction entity: %w", err)
	}

	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Create(model).Error; err != nil {
		r.logger.Errorw("failed to create transaction", "user_id", model.UserID, "error", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	if err := t.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set transaction ID: %w", err)
	}

	r.logger.Infow("transaction recorded",
		"id", model.ID,
		"user_id", model.UserID,
		"status", t.Status().String(),
		"summary", model.Summary.String(),
		"currency", model.Currency,
	)
	return nil
}

// Update only moves status-related fields; amounts are immutable once recorded.
func (r *TransactionRepositoryImpl) Update(ctx context.Context, t *transaction.Transaction) error {
	model, err := r.mapper.ToModel(t)
	if err != nil {
		return fmt.Errorf("failed to map transaction entity: %w", err)
	}

	tx := db.GetTxFromContext(ctx, r.db)
	result := tx.Model(&models.TransactionModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"reference":       model.Reference,
			"subscription_id": model.SubscriptionID,
			"status":          model.Status,
			"message":         model.Message,
			"data":            model.Data,
			"updated_at":      model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update transaction", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update transaction: %w", result.Error)
	}

	r.logger.Infow("transaction updated", "id", model.ID, "status", t.Status().String())
	return nil
}

func (r *TransactionRepositoryImpl) GetByID(ctx context.Context, id uint) (*transaction.Transaction, error) {
	return r.first(ctx, func(q *gorm.DB) *gorm.DB { return q.Where("id = ?", id) })
}

func (r *TransactionRepositoryImpl) GetByReference(ctx context.Context, reference string) (*transaction.Transaction, error) {
	if reference == "" {
		return nil, nil
	}
	return r.first(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("reference = ?", reference).Order("id DESC")
	})
}

func (r *TransactionRepositoryImpl) GetLastSuccessfulByPurchase(ctx context.Context, purchaseID uint) (*transaction.Transaction, error) {
	return r.first(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("purchase_id = ? AND status = ?", purchaseID, int(transaction.StatusSuccess)).
			Order("id DESC")
	})
}

func (r *TransactionRepositoryImpl) GetLastBySubscription(ctx context.Context, subscriptionID uint) (*transaction.Transaction, error) {
	return r.first(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("subscription_id = ?", subscriptionID).Order("id DESC")
	})
}

func (r *TransactionRepositoryImpl) first(ctx context.Context, scope func(*gorm.DB) *gorm.DB) (*transaction.Transaction, error) {
	var model models.TransactionModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Scopes(scope).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *TransactionRepositoryImpl) List(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, int64, error) {
	tx := db.GetTxFromContext(ctx, r.db)
	query := tx.Model(&models.TransactionModel{})

	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.PurchaseID != 0 {
		query = query.Where("purchase_id = ?", filter.PurchaseID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", int(*filter.Status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		r.logger.Errorw("failed to count transactions", "error", err)
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = constants.DefaultPageSize
	}

	var list []*models.TransactionModel
	if err := query.Scopes(db.Paginate(filter.Page, pageSize)).
		Order("created_at DESC, id DESC").
		Find(&list).Error; err != nil {
		r.logger.Errorw("failed to list transactions", "error", err)
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}

	entities, err := r.mapper.ToEntities(list)
	if err != nil {
		return nil, 0, err
	}
	return entities, total, nil
}
