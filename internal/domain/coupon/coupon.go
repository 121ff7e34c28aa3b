package coupon

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ptuchik/billing/internal/domain/shared/money"
)

// Coupon is a discount rule attachable to plans as a discount or as an addon.
type Coupon struct {
	id                uint
	code              string
	name              string
	amount            money.Amounts
	percent           bool
	percentOff        decimal.Decimal
	redeemType        RedeemType
	prorate           bool
	referralConnected bool
	limit             *int
	used              int
	version           int
	createdAt         time.Time
	updatedAt         time.Time
}

// NewCoupon creates a fixed-amount coupon.
func NewCoupon(code, name string, amount money.Amounts, redeemType RedeemType, prorate bool) (*Coupon, error) {
	c, err := newCoupon(code, name, redeemType, prorate)
	if err != nil {
		return nil, err
	}
	if err := amount.Validate(); err != nil {
		return nil, fmt.Errorf("invalid coupon amount: %w", err)
	}
	c.amount = amount
	return c, nil
}

// NewPercentCoupon creates a coupon taking percentOff percent of the price.
func NewPercentCoupon(code, name string, percentOff decimal.Decimal, redeemType RedeemType, prorate bool) (*Coupon, error) {
	c, err := newCoupon(code, name, redeemType, prorate)
	if err != nil {
		return nil, err
	}
	if percentOff.IsNegative() || percentOff.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("percent off must be within 0..100, got %s", percentOff)
	}
	c.percent = true
	c.percentOff = percentOff
	c.amount = money.Amounts{}
	return c, nil
}

func newCoupon(code, name string, redeemType RedeemType, prorate bool) (*Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("coupon code is required")
	}
	if len(code) > 100 {
		return nil, fmt.Errorf("coupon code too long (max 100 characters)")
	}
	if _, ok := redeemTypeNames[redeemType]; !ok {
		return nil, fmt.Errorf("invalid coupon redeem type: %d", redeemType)
	}
	now := time.Now().UTC()
	return &Coupon{
		code:       code,
		name:       name,
		redeemType: redeemType,
		prorate:    prorate,
		version:    1,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// CouponParams carries persisted coupon state.
type CouponParams struct {
	ID                uint
	Code              string
	Name              string
	Amount            money.Amounts
	Percent           bool
	PercentOff        decimal.Decimal
	RedeemType        RedeemType
	Prorate           bool
	ReferralConnected bool
	Limit             *int
	Used              int
	Version           int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ReconstructCoupon rebuilds a coupon from persistence.
func ReconstructCoupon(p CouponParams) (*Coupon, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("coupon ID cannot be zero")
	}
	if _, ok := redeemTypeNames[p.RedeemType]; !ok {
		return nil, fmt.Errorf("invalid coupon redeem type: %d", p.RedeemType)
	}
	amount := p.Amount
	if amount == nil {
		amount = money.Amounts{}
	}
	return &Coupon{
		id:                p.ID,
		code:              p.Code,
		name:              p.Name,
		amount:            amount,
		percent:           p.Percent,
		percentOff:        p.PercentOff,
		redeemType:        p.RedeemType,
		prorate:           p.Prorate,
		referralConnected: p.ReferralConnected,
		limit:             p.Limit,
		used:              p.Used,
		version:           p.Version,
		createdAt:         p.CreatedAt,
		updatedAt:         p.UpdatedAt,
	}, nil
}

func (c *Coupon) ID() uint {
	return c.id
}

func (c *Coupon) SetID(id uint) error {
	if c.id != 0 {
		return fmt.Errorf("coupon ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("coupon ID cannot be zero")
	}
	c.id = id
	return nil
}

func (c *Coupon) Code() string                { return c.code }
func (c *Coupon) Name() string                { return c.name }
func (c *Coupon) Amount() money.Amounts       { return c.amount }
func (c *Coupon) Percent() bool               { return c.percent }
func (c *Coupon) PercentOff() decimal.Decimal { return c.percentOff }
func (c *Coupon) RedeemType() RedeemType      { return c.redeemType }
func (c *Coupon) Prorate() bool               { return c.prorate }
func (c *Coupon) ReferralConnected() bool     { return c.referralConnected }
func (c *Coupon) Limit() *int                 { return c.limit }
func (c *Coupon) Used() int                   { return c.used }
func (c *Coupon) Version() int                { return c.version }
func (c *Coupon) CreatedAt() time.Time        { return c.createdAt }
func (c *Coupon) UpdatedAt() time.Time        { return c.updatedAt }

// SetLimit caps manual redemptions; nil means unlimited.
func (c *Coupon) SetLimit(limit *int) error {
	if limit != nil && *limit < 0 {
		return fmt.Errorf("coupon limit cannot be negative")
	}
	c.limit = limit
	c.touch()
	return nil
}

func (c *Coupon) SetReferralConnected(v bool) {
	c.referralConnected = v
	c.touch()
}

// LimitReached reports whether a limited coupon has no redemptions left.
func (c *Coupon) LimitReached() bool {
	return c.limit != nil && *c.limit <= c.used
}

// CountsUsage reports whether applying the coupon consumes one redemption.
func (c *Coupon) CountsUsage() bool {
	return c.redeemType == RedeemManual
}

// IncrementUsage records one redemption.
func (c *Coupon) IncrementUsage() {
	c.used++
	c.touch()
}

// Snapshot freezes the coupon for storage on a subscription or transaction.
func (c *Coupon) Snapshot() Snapshot {
	return Snapshot{
		ID:         c.id,
		Code:       c.code,
		Name:       c.name,
		Amount:     c.amount,
		Percent:    c.percent,
		PercentOff: c.percentOff,
		RedeemType: c.redeemType,
		Prorate:    c.prorate,
	}
}

func (c *Coupon) touch() {
	c.updatedAt = time.Now().UTC()
	c.version++
}
