package plan

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/ptuchik/billing/internal/domain/coupon"
	vo "github.com/ptuchik/billing/internal/domain/plan/valueobjects"
	"github.com/ptuchik/billing/internal/domain/shared/money"
)

// Plan is a priced, timed offer within a package.
type Plan struct {
	id              uint
	packageID       uint
	alias           string
	name            string
	price           money.Amounts
	frequency       vo.Frequency
	trialDays       int
	visibility      vo.Visibility
	features        map[string]interface{}
	coupons         []*coupon.Coupon
	addons          []*coupon.Coupon
	additionalPlans []string
	sortOrder       int
	version         int
	createdAt       time.Time
	updatedAt       time.Time
}

func NewPlan(packageID uint, alias, name string, price money.Amounts, frequency vo.Frequency, trialDays int) (*Plan, error) {
	if packageID == 0 {
		return nil, fmt.Errorf("plan package is required")
	}
	if alias == "" {
		return nil, fmt.Errorf("plan alias is required")
	}
	if len(alias) > 100 {
		return nil, fmt.Errorf("plan alias too long (max 100 characters)")
	}
	if err := price.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan price: %w", err)
	}
	if frequency < 0 {
		return nil, fmt.Errorf("billing frequency cannot be negative")
	}
	if trialDays < 0 {
		return nil, fmt.Errorf("trial days cannot be negative")
	}

	now := time.Now().UTC()
	return &Plan{
		packageID:  packageID,
		alias:      alias,
		name:       name,
		price:      price,
		frequency:  frequency,
		trialDays:  trialDays,
		visibility: vo.VisibilityVisible,
		features:   make(map[string]interface{}),
		version:    1,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// PlanParams carries persisted plan state.
type PlanParams struct {
	ID              uint
	PackageID       uint
	Alias           string
	Name            string
	Price           money.Amounts
	Frequency       vo.Frequency
	TrialDays       int
	Visibility      vo.Visibility
	Features        map[string]interface{}
	Coupons         []*coupon.Coupon
	Addons          []*coupon.Coupon
	AdditionalPlans []string
	SortOrder       int
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func ReconstructPlan(p PlanParams) (*Plan, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("plan ID cannot be zero")
	}
	features := p.Features
	if features == nil {
		features = make(map[string]interface{})
	}
	price := p.Price
	if price == nil {
		price = money.Amounts{}
	}
	return &Plan{
		id:              p.ID,
		packageID:       p.PackageID,
		alias:           p.Alias,
		name:            p.Name,
		price:           price,
		frequency:       p.Frequency,
		trialDays:       p.TrialDays,
		visibility:      p.Visibility,
		features:        features,
		coupons:         p.Coupons,
		addons:          p.Addons,
		additionalPlans: p.AdditionalPlans,
		sortOrder:       p.SortOrder,
		version:         p.Version,
		createdAt:       p.CreatedAt,
		updatedAt:       p.UpdatedAt,
	}, nil
}

func (p *Plan) ID() uint { return p.id }

func (p *Plan) SetID(id uint) error {
	if p.id != 0 {
		return fmt.Errorf("plan ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("plan ID cannot be zero")
	}
	p.id = id
	return nil
}

func (p *Plan) PackageID() uint                  { return p.packageID }
func (p *Plan) Alias() string                    { return p.alias }
func (p *Plan) Name() string                     { return p.name }
func (p *Plan) Price() money.Amounts             { return p.price }
func (p *Plan) Frequency() vo.Frequency          { return p.frequency }
func (p *Plan) Visibility() vo.Visibility        { return p.visibility }
func (p *Plan) Features() map[string]interface{} { return p.features }
func (p *Plan) Coupons() []*coupon.Coupon        { return p.coupons }
func (p *Plan) Addons() []*coupon.Coupon         { return p.addons }
func (p *Plan) AdditionalPlans() []string        { return p.additionalPlans }
func (p *Plan) SortOrder() int                   { return p.sortOrder }
func (p *Plan) Version() int                     { return p.version }
func (p *Plan) CreatedAt() time.Time             { return p.createdAt }
func (p *Plan) UpdatedAt() time.Time             { return p.updatedAt }

// IsRecurring reports whether the plan bills periodically.
func (p *Plan) IsRecurring() bool {
	return p.frequency.IsRecurring()
}

// TrialDays is the granted trial. Lifetime plans never have one.
func (p *Plan) TrialDays() int {
	if !p.IsRecurring() {
		return 0
	}
	return p.trialDays
}

// UniqueAddons returns addon coupons without duplicates.
func (p *Plan) UniqueAddons() []*coupon.Coupon {
	return lo.UniqBy(p.addons, func(c *coupon.Coupon) uint { return c.ID() })
}

func (p *Plan) SetVisibility(v vo.Visibility) {
	p.visibility = v
	p.touch()
}

func (p *Plan) SetPrice(price money.Amounts) error {
	if err := price.Validate(); err != nil {
		return fmt.Errorf("invalid plan price: %w", err)
	}
	p.price = price
	p.touch()
	return nil
}

func (p *Plan) SetCoupons(coupons []*coupon.Coupon) {
	p.coupons = coupons
	p.touch()
}

func (p *Plan) SetAddons(addons []*coupon.Coupon) {
	p.addons = addons
	p.touch()
}

func (p *Plan) SetAdditionalPlans(aliases []string) {
	p.additionalPlans = lo.Uniq(lo.Without(aliases, p.alias))
	p.touch()
}

func (p *Plan) SetFeatures(features map[string]interface{}) {
	if features == nil {
		features = make(map[string]interface{})
	}
	p.features = features
	p.touch()
}

func (p *Plan) touch() {
	p.updatedAt = time.Now().UTC()
	p.version++
}
