package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ptuchik/billing/internal/domain/coupon"
	"github.com/ptuchik/billing/internal/infrastructure/persistence/mappers"
	"github.com/ptuchik/billing/internal/infrastructure/persistence/models"
	"github.com/ptuchik/billing/internal/shared/db"
	"github.com/ptuchik/billing/internal/shared/errors"
	"github.com/ptuchik/billing/internal/shared/logger"
)

// CouponRepositoryImpl implements the coupon.CouponRepository interface
type CouponRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.CouponMapper
	logger logger.Interface
}

func NewCouponRepository(db *gorm.DB, logger logger.Interface) coupon.CouponRepository {
	return &CouponRepositoryImpl{
		db:     db,
		mapper: mappers.NewCouponMapper(),
		logger: logger,
	}
}

func (r *CouponRepositoryImpl) Create(ctx context.Context, c *coupon.Coupon) error {
	model, err := r.mapper.ToModel(c)
	if err != nil {
		r.logger.Errorw("failed to map coupon entity to model", "error", err)
		return fmt.Errorf("failed to map coupon entity: %w", err)
	}

	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError(coupon.ErrCouponCodeExists.Error(), model.Code)
		}
		r.logger.Errorw("failed to create coupon", "code", model.Code, "error", err)
		return fmt.Errorf("failed to create coupon: %w", err)
	}

	if err := c.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set coupon ID: %w", err)
	}

	r.logger.Infow("coupon created successfully", "id", model.ID, "code", model.Code)
	return nil
}

// Update leaves the usage counter alone; redemptions go through IncrementUsage.
func (r *CouponRepositoryImpl) Update(ctx context.Context, c *coupon.Coupon) error {
	model, err := r.mapper.ToModel(c)
	if err != nil {
		return fmt.Errorf("failed to map coupon entity: %w", err)
	}

	tx := db.GetTxFromContext(ctx, r.db)
	result := tx.Model(&models.CouponModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"name":               model.Name,
			"amount":             model.Amount,
			"percent":            model.Percent,
			"percent_off":        model.PercentOff,
			"redeem_type":        model.RedeemType,
			"prorate":            model.Prorate,
			"referral_connected": model.ReferralConnected,
			"usage_limit":        model.UsageLimit,
			"version":            model.Version,
			"updated_at":         model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update coupon", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update coupon: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError(coupon.ErrCouponNotFound.Error())
	}
	return nil
}

func (r *CouponRepositoryImpl) GetByID(ctx context.Context, id uint) (*coupon.Coupon, error) {
	var model models.CouponModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *CouponRepositoryImpl) GetByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	var model models.CouponModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Where("code = ?", code).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

// IncrementUsage bumps the counter in SQL so concurrent purchases never lose
// a redemption.
func (r *CouponRepositoryImpl) IncrementUsage(ctx context.Context, id uint) error {
	tx := db.GetTxFromContext(ctx, r.db)
	result := tx.Model(&models.CouponModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"used":       gorm.Expr("used + 1"),
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		r.logger.Errorw("failed to increment coupon usage", "id", id, "error", result.Error)
		return fmt.Errorf("failed to increment coupon usage: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError(coupon.ErrCouponNotFound.Error())
	}
	return nil
}

// GiftRepositoryImpl implements coupon.GiftRepository on the gifted_coupons table.
type GiftRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewGiftRepository(db *gorm.DB, logger logger.Interface) coupon.GiftRepository {
	return &GiftRepositoryImpl{db: db, logger: logger}
}

func (r *GiftRepositoryImpl) MarkAsGifted(ctx context.Context, g coupon.Gift) (bool, error) {
	model := mappers.GiftToModel(g)
	tx := db.GetTxFromContext(ctx, r.db)
	result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(model)
	if result.Error != nil {
		r.logger.Errorw("failed to mark coupon as gifted", "coupon", g.CouponKey, "host", g.Host.String(), "error", result.Error)
		return false, fmt.Errorf("failed to mark coupon as gifted: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *GiftRepositoryImpl) IsGifted(ctx context.Context, g coupon.Gift) (bool, error) {
	model := mappers.GiftToModel(g)
	var count int64
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Model(&models.GiftedCouponModel{}).
		Where("coupon_key = ? AND host_kind = ? AND host_id = ? AND plan_alias = ?",
			model.CouponKey, model.HostKind, model.HostID, model.PlanAlias).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check gifted coupon: %w", err)
	}
	return count > 0, nil
}
