package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/ptuchik/billing/internal/shared/constants"
)

type CouponModel struct {
	ID                uint   `gorm:"primarykey"`
	Code              string `gorm:"uniqueIndex;not null;size:100"`
	Name              string `gorm:"size:255"`
	Amount            datatypes.JSON
	Percent           bool            `gorm:"not null"`
	PercentOff        decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	RedeemType        int             `gorm:"not null"`
	Prorate           bool            `gorm:"not null"`
	ReferralConnected bool            `gorm:"not null"`
	UsageLimit        *int
	Used              int `gorm:"not null"`
	Version           int `gorm:"not null;default:1"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (CouponModel) TableName() string {
	return constants.TableCoupons
}

// GiftedCouponModel records an addon handed to a host. PlanAlias is empty
// when gifts are not scoped per plan, so the unique index also covers that case.
type GiftedCouponModel struct {
	ID        uint   `gorm:"primarykey"`
	CouponKey string `gorm:"not null;size:100;uniqueIndex:idx_gift,priority:1"`
	HostKind  string `gorm:"not null;size:50;uniqueIndex:idx_gift,priority:2"`
	HostID    uint   `gorm:"not null;uniqueIndex:idx_gift,priority:3"`
	PlanAlias string `gorm:"not null;size:100;uniqueIndex:idx_gift,priority:4"`
	CreatedAt time.Time
}

func (GiftedCouponModel) TableName() string {
	return constants.TableGiftedCoupons
}
