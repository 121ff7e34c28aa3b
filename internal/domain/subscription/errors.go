package subscription

import "errors"

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrSubscriptionInactive = errors.New("subscription is not active")
	// ErrDowngradeNotAllowed is returned when a replacement plan is cheaper
	// per month than the running subscription.
	ErrDowngradeNotAllowed = errors.New("downgrade is not allowed")
	// ErrLifetimeSwitchNotAllowed is returned when a recurring subscription
	// is replaced by a lifetime plan.
	ErrLifetimeSwitchNotAllowed = errors.New("switching from recurring to lifetime is not allowed")
	ErrVersionConflict          = errors.New("subscription was modified concurrently")
)
