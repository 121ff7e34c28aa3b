package coupon

import "errors"

var (
	ErrCouponNotFound = errors.New("coupon not found")
	// ErrInvalidCoupon is returned when a requested code matches no manual coupon of the plan.
	ErrInvalidCoupon = errors.New("invalid coupon")
	// ErrCouponLimitExpired is returned when a manual coupon reached its usage limit.
	ErrCouponLimitExpired = errors.New("coupon limit has expired")
	ErrCouponCodeExists   = errors.New("coupon code already exists")
)
