package plan

import "context"

type PlanRepository interface {
	Create(ctx context.Context, p *Plan) error
	Update(ctx context.Context, p *Plan) error
	GetByID(ctx context.Context, id uint) (*Plan, error)
	// GetByAlias loads the plan with its coupons and addons.
	GetByAlias(ctx context.Context, alias string) (*Plan, error)
	ListVisible(ctx context.Context, packageID uint) ([]*Plan, error)
	// AttachCoupon links a coupon as a discount, or as an addon when addon is set.
	AttachCoupon(ctx context.Context, planID, couponID uint, addon bool) error
}

type PackageRepository interface {
	Create(ctx context.Context, p *Package) error
	GetByID(ctx context.Context, id uint) (*Package, error)
	GetByAlias(ctx context.Context, alias string) (*Package, error)
	// ListByKind returns every package that can replace another on a host.
	ListByKind(ctx context.Context, kind string) ([]*Package, error)
}
