package repository

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ptuchik/billing/internal/domain/coupon"
	"github.com/ptuchik/billing/internal/domain/plan"
	vo "github.com/ptuchik/billing/internal/domain/plan/valueobjects"
	"github.com/ptuchik/billing/internal/infrastructure/persistence/mappers"
	"github.com/ptuchik/billing/internal/infrastructure/persistence/models"
	"github.com/ptuchik/billing/internal/shared/db"
	"github.com/ptuchik/billing/internal/shared/errors"
	"github.com/ptuchik/billing/internal/shared/logger"
)

// PlanRepositoryImpl implements plan.PlanRepository. Every loaded plan
// carries its discount coupons and addons from the plan_coupons table.
type PlanRepositoryImpl struct {
	db           *gorm.DB
	mapper       mappers.PlanMapper
	couponMapper mappers.CouponMapper
	logger       logger.Interface
}

func NewPlanRepository(db *gorm.DB, logger logger.Interface) plan.PlanRepository {
	return &PlanRepositoryImpl{
		db:           db,
		mapper:       mappers.NewPlanMapper(),
		couponMapper: mappers.NewCouponMapper(),
		logger:       logger,
	}
}

func (r *PlanRepositoryImpl) Create(ctx context.Context, p *plan.Plan) error {
	model, err := r.mapper.ToModel(p)
	if err != nil {
		r.logger.Errorw("failed to map plan entity to model", "error", err)
		return fmt.Errorf("failed to map plan entity: %w", err)
	}

	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError(plan.ErrPlanAliasExists.Error(), model.Alias)
		}
		r.logger.Errorw("failed to create plan", "alias", model.Alias, "error", err)
		return fmt.Errorf("failed to create plan: %w", err)
	}

	if err := p.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set plan ID: %w", err)
	}

	r.logger.Infow("plan created successfully", "id", model.ID, "alias", model.Alias)
	return nil
}

func (r *PlanRepositoryImpl) Update(ctx context.Context, p *plan.Plan) error {
	model, err := r.mapper.ToModel(p)
	if err != nil {
		r.logger.Errorw("failed to map plan entity to model", "id", p.ID(), "error", err)
		return fmt.Errorf("failed to map plan entity: %w", err)
	}

	tx := db.GetTxFromContext(ctx, r.db)
	result := tx.Model(&models.PlanModel{}).
		Where("id = ? AND version <= ?", model.ID, model.Version).
		Updates(map[string]interface{}{
			"name":             model.Name,
			"price":            model.Price,
			"frequency":        model.Frequency,
			"trial_days":       model.TrialDays,
			"visibility":       model.Visibility,
			"features":         model.Features,
			"additional_plans": model.AdditionalPlans,
			"sort_order":       model.SortOrder,
			"version":          model.Version,
			"updated_at":       model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update plan", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update plan: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewConflictError("plan has been modified by another transaction or not found")
	}

	r.logger.Infow("plan updated successfully", "id", model.ID)
	return nil
}

func (r *PlanRepositoryImpl) GetByID(ctx context.Context, id uint) (*plan.Plan, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *PlanRepositoryImpl) GetByAlias(ctx context.Context, alias string) (*plan.Plan, error) {
	return r.getOne(ctx, "alias = ?", alias)
}

func (r *PlanRepositoryImpl) getOne(ctx context.Context, query string, arg interface{}) (*plan.Plan, error) {
	var model models.PlanModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Where(query, arg).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get plan", "query", query, "arg", arg, "error", err)
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	plans, err := r.withCoupons(tx, []*models.PlanModel{&model})
	if err != nil {
		return nil, err
	}
	return plans[0], nil
}

func (r *PlanRepositoryImpl) ListVisible(ctx context.Context, packageID uint) ([]*plan.Plan, error) {
	var list []*models.PlanModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Where("package_id = ? AND visibility = ?", packageID, int(vo.VisibilityVisible)).
		Order("sort_order ASC, id ASC").
		Find(&list).Error; err != nil {
		r.logger.Errorw("failed to list visible plans", "package_id", packageID, "error", err)
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return r.withCoupons(tx, list)
}

func (r *PlanRepositoryImpl) AttachCoupon(ctx context.Context, planID, couponID uint, addon bool) error {
	tx := db.GetTxFromContext(ctx, r.db)
	link := &models.PlanCouponModel{PlanID: planID, CouponID: couponID, Addon: addon}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(link).Error; err != nil {
		r.logger.Errorw("failed to attach coupon", "plan_id", planID, "coupon_id", couponID, "error", err)
		return fmt.Errorf("failed to attach coupon: %w", err)
	}
	return nil
}

// withCoupons maps plans and fills their coupons and addons with two queries
// for the whole batch.
func (r *PlanRepositoryImpl) withCoupons(tx *gorm.DB, list []*models.PlanModel) ([]*plan.Plan, error) {
	if len(list) == 0 {
		return []*plan.Plan{}, nil
	}

	planIDs := lo.Map(list, func(m *models.PlanModel, _ int) uint { return m.ID })

	var links []models.PlanCouponModel
	if err := tx.Where("plan_id IN ?", planIDs).Find(&links).Error; err != nil {
		return nil, fmt.Errorf("failed to load plan coupons: %w", err)
	}

	byID := map[uint]*coupon.Coupon{}
	if len(links) > 0 {
		couponIDs := lo.Uniq(lo.Map(links, func(l models.PlanCouponModel, _ int) uint { return l.CouponID }))
		var couponModels []*models.CouponModel
		if err := tx.Where("id IN ?", couponIDs).Order("id ASC").Find(&couponModels).Error; err != nil {
			return nil, fmt.Errorf("failed to load coupons: %w", err)
		}
		coupons, err := r.couponMapper.ToEntities(couponModels)
		if err != nil {
			return nil, err
		}
		byID = lo.KeyBy(coupons, func(c *coupon.Coupon) uint { return c.ID() })
	}

	linksByPlan := lo.GroupBy(links, func(l models.PlanCouponModel) uint { return l.PlanID })

	plans := make([]*plan.Plan, 0, len(list))
	for _, model := range list {
		var discounts, addons []*coupon.Coupon
		for _, l := range linksByPlan[model.ID] {
			c, ok := byID[l.CouponID]
			if !ok {
				continue
			}
			if l.Addon {
				addons = append(addons, c)
			} else {
				discounts = append(discounts, c)
			}
		}
		p, err := r.mapper.ToEntity(model, discounts, addons)
		if err != nil {
			return nil, fmt.Errorf("failed to map plan %d: %w", model.ID, err)
		}
		plans = append(plans, p)
	}
	return plans, nil
}

// PackageRepositoryImpl implements plan.PackageRepository.
type PackageRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.PlanMapper
	logger logger.Interface
}

func NewPackageRepository(db *gorm.DB, logger logger.Interface) plan.PackageRepository {
	return &PackageRepositoryImpl{
		db:     db,
		mapper: mappers.NewPlanMapper(),
		logger: logger,
	}
}

func (r *PackageRepositoryImpl) Create(ctx context.Context, p *plan.Package) error {
	model := r.mapper.PackageToModel(p)
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError(plan.ErrPackageAliasExists.Error(), model.Alias)
		}
		r.logger.Errorw("failed to create package", "alias", model.Alias, "error", err)
		return fmt.Errorf("failed to create package: %w", err)
	}
	if err := p.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set package ID: %w", err)
	}
	r.logger.Infow("package created successfully", "id", model.ID, "alias", model.Alias)
	return nil
}

func (r *PackageRepositoryImpl) GetByID(ctx context.Context, id uint) (*plan.Package, error) {
	var model models.PackageModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get package: %w", err)
	}
	return r.mapper.PackageToEntity(&model)
}

func (r *PackageRepositoryImpl) GetByAlias(ctx context.Context, alias string) (*plan.Package, error) {
	var model models.PackageModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Where("alias = ?", alias).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get package: %w", err)
	}
	return r.mapper.PackageToEntity(&model)
}

func (r *PackageRepositoryImpl) ListByKind(ctx context.Context, kind string) ([]*plan.Package, error) {
	var list []*models.PackageModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Where("kind = ?", kind).Order("id ASC").Find(&list).Error; err != nil {
		r.logger.Errorw("failed to list packages", "kind", kind, "error", err)
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}

	packages := make([]*plan.Package, 0, len(list))
	for _, model := range list {
		p, err := r.mapper.PackageToEntity(model)
		if err != nil {
			return nil, err
		}
		packages = append(packages, p)
	}
	return packages, nil
}
