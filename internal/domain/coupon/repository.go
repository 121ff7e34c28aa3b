package coupon

import "context"

type CouponRepository interface {
	Create(ctx context.Context, c *Coupon) error
	Update(ctx context.Context, c *Coupon) error
	GetByID(ctx context.Context, id uint) (*Coupon, error)
	GetByCode(ctx context.Context, code string) (*Coupon, error)
	// IncrementUsage atomically adds one redemption.
	IncrementUsage(ctx context.Context, id uint) error
}

type GiftRepository interface {
	// MarkAsGifted stores g unless it exists and reports whether it was created.
	MarkAsGifted(ctx context.Context, g Gift) (bool, error)
	IsGifted(ctx context.Context, g Gift) (bool, error)
}
