package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ptuchik/billing/internal/domain/subscription"
	"github.com/ptuchik/billing/internal/infrastructure/persistence/mappers"
	"github.com/ptuchik/billing/internal/infrastructure/persistence/models"
	"github.com/ptuchik/billing/internal/shared/biztime"
	"github.com/ptuchik/billing/internal/shared/db"
	"github.com/ptuchik/billing/internal/shared/errors"
	"github.com/ptuchik/billing/internal/shared/logger"
)

// SubscriptionRepositoryImpl implements the subscription.Repository interface
type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.SubscriptionMapper
	logger logger.Interface
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB, logger logger.Interface) subscription.Repository {
	return &SubscriptionRepositoryImpl{
		db:     db,
		mapper: mappers.NewSubscriptionMapper(),
		logger: logger,
	}
}

func (r *SubscriptionRepositoryImpl) Create(ctx context.Context, s *subscription.Subscription) error {
	model, err := r.mapper.ToModel(s)
	if err != nil {
		r.logger.Errorw("failed to map subscription entity to model", "error", err)
		return fmt.Errorf("failed to map subscription entity: %w", err)
	}

	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("purchase already has an active subscription", fmt.Sprintf("purchase_id=%d", model.PurchaseID))
		}
		r.logger.Errorw("failed to create subscription in database", "purchase_id", model.PurchaseID, "error", err)
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	if err := s.SetID(model.ID); err != nil {
		r.logger.Errorw("failed to set subscription ID", "error", err)
		return fmt.Errorf("failed to set subscription ID: %w", err)
	}

	r.logger.Infow("subscription created successfully", "id", model.ID, "purchase_id", model.PurchaseID, "alias", model.Alias)
	return nil
}

func (r *SubscriptionRepositoryImpl) Update(ctx context.Context, s *subscription.Subscription) error {
	model, err := r.mapper.ToModel(s)
	if err != nil {
		r.logger.Errorw("failed to map subscription entity to model", "id", s.ID(), "error", err)
		return fmt.Errorf("failed to map subscription entity: %w", err)
	}

	tx := db.GetTxFromContext(ctx, r.db)
	result := tx.Model(&models.SubscriptionModel{}).
		Where("id = ? AND version <= ?", model.ID, model.Version).
		Updates(map[string]interface{}{
			"active_purchase_key": model.ActivePurchaseKey,
			"user_id":             model.UserID,
			"alias":               model.Alias,
			"name":                model.Name,
			"price":               model.Price,
			"currency":            model.Currency,
			"frequency":           model.Frequency,
			"coupons":             model.Coupons,
			"addons":              model.Addons,
			"features":            model.Features,
			"trial_ends_at":       model.TrialEndsAt,
			"ends_at":             model.EndsAt,
			"next_billing_date":   model.NextBillingDate,
			"active":              model.Active,
			"version":             model.Version,
			"updated_at":          model.UpdatedAt,
		})

	if result.Error != nil {
		if errors.IsDuplicateError(result.Error) {
			return errors.NewConflictError("purchase already has an active subscription", fmt.Sprintf("purchase_id=%d", model.PurchaseID))
		}
		r.logger.Errorw("failed to update subscription", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewConflictError(subscription.ErrVersionConflict.Error())
	}

	r.logger.Infow("subscription updated successfully", "id", model.ID, "active", model.Active)
	return nil
}

func (r *SubscriptionRepositoryImpl) GetByID(ctx context.Context, id uint) (*subscription.Subscription, error) {
	var model models.SubscriptionModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get subscription by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *SubscriptionRepositoryImpl) GetActiveByPurchase(ctx context.Context, purchaseID uint) (*subscription.Subscription, error) {
	var model models.SubscriptionModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Where("active_purchase_key = ?", purchaseID).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active subscription: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *SubscriptionRepositoryImpl) ListByUser(ctx context.Context, userID uint) ([]*subscription.Subscription, error) {
	var list []*models.SubscriptionModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Where("user_id = ?", userID).Order("id ASC").Find(&list).Error; err != nil {
		r.logger.Errorw("failed to list user subscriptions", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return r.mapper.ToEntities(list)
}

// ListDueForRenewal only returns subscriptions without an end date, i.e.
// those still renewing automatically.
func (r *SubscriptionRepositoryImpl) ListDueForRenewal(ctx context.Context, date time.Time, upTo bool) ([]*subscription.Subscription, error) {
	var list []*models.SubscriptionModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Scopes(db.ActiveOnly(), db.DueOn("next_billing_date", date, upTo)).
		Where("ends_at IS NULL").
		Order("next_billing_date ASC, id ASC").
		Find(&list).Error; err != nil {
		r.logger.Errorw("failed to list subscriptions due for renewal", "date", date, "error", err)
		return nil, fmt.Errorf("failed to list subscriptions due for renewal: %w", err)
	}
	return r.mapper.ToEntities(list)
}

// ListExpiring returns subscriptions whose end date falls on the business
// day of date or earlier.
func (r *SubscriptionRepositoryImpl) ListExpiring(ctx context.Context, date time.Time) ([]*subscription.Subscription, error) {
	var list []*models.SubscriptionModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Scopes(db.ActiveOnly()).
		Where("ends_at IS NOT NULL AND ends_at <= ?", biztime.EndOfDayUTC(date)).
		Order("ends_at ASC, id ASC").
		Find(&list).Error; err != nil {
		r.logger.Errorw("failed to list expiring subscriptions", "date", date, "error", err)
		return nil, fmt.Errorf("failed to list expiring subscriptions: %w", err)
	}
	return r.mapper.ToEntities(list)
}

func (r *SubscriptionRepositoryImpl) ListForReminder(ctx context.Context, from, to time.Time) ([]*subscription.Subscription, error) {
	var list []*models.SubscriptionModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Scopes(db.ActiveOnly()).
		Where("next_billing_date > ? AND next_billing_date <= ?", from.UTC(), to.UTC()).
		Order("next_billing_date ASC, id ASC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscriptions for reminder: %w", err)
	}
	return r.mapper.ToEntities(list)
}
