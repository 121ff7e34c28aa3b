package coupon

import "fmt"

// RedeemType decides how a coupon attached to a plan gets applied.
type RedeemType int

const (
	// RedeemInternal coupons apply when the customer holds the code, usually
	// after it was gifted as a plan addon.
	RedeemInternal RedeemType = 1
	// RedeemManual coupons apply when the customer enters the code.
	RedeemManual RedeemType = 2
	// RedeemAuto coupons always apply.
	RedeemAuto RedeemType = 3
)

var redeemTypeNames = map[RedeemType]string{
	RedeemInternal: "internal",
	RedeemManual:   "manual",
	RedeemAuto:     "autoredeem",
}

func NewRedeemType(v int) (RedeemType, error) {
	rt := RedeemType(v)
	if _, ok := redeemTypeNames[rt]; !ok {
		return 0, fmt.Errorf("invalid coupon redeem type: %d", v)
	}
	return rt, nil
}

func ParseRedeemType(s string) (RedeemType, error) {
	for rt, name := range redeemTypeNames {
		if name == s {
			return rt, nil
		}
	}
	return 0, fmt.Errorf("invalid coupon redeem type: %q", s)
}

func (r RedeemType) String() string {
	return redeemTypeNames[r]
}
