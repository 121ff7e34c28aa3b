package coupon

import (
	"fmt"
	"strconv"

	"github.com/ptuchik/billing/internal/domain/shared/ref"
)

// GiftKeyBy selects how gifted coupons are keyed.
type GiftKeyBy string

const (
	GiftKeyByCode GiftKeyBy = "code"
	GiftKeyByID   GiftKeyBy = "id"
)

// GiftPolicy controls the uniqueness scope of gifted coupons.
type GiftPolicy struct {
	By GiftKeyBy
	// WithPlan scopes gifts per plan alias, not only per host.
	WithPlan bool
}

// Gift records that an addon coupon was handed to a host. One gift exists
// per (coupon key, host, plan alias); gifting twice is a no-op.
type Gift struct {
	CouponKey string
	Host      ref.Ref
	PlanAlias *string
}

// NewGift builds the gift record of coupon c for host under policy.
func NewGift(c Snapshot, host ref.Ref, planAlias string, policy GiftPolicy) (Gift, error) {
	if c.ID == 0 && c.Code == "" {
		return Gift{}, fmt.Errorf("coupon is required")
	}
	if host.IsZero() {
		return Gift{}, fmt.Errorf("host is required")
	}

	key := c.Code
	if policy.By == GiftKeyByID {
		key = strconv.FormatUint(uint64(c.ID), 10)
	}

	g := Gift{CouponKey: key, Host: host}
	if policy.WithPlan && planAlias != "" {
		alias := planAlias
		g.PlanAlias = &alias
	}
	return g, nil
}
