package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ptuchik/billing/internal/shared/constants"
)

// PlanModel represents the database persistence model for plans.
// Price holds one amount per currency.
type PlanModel struct {
	ID              uint   `gorm:"primarykey"`
	PackageID       uint   `gorm:"not null;index"`
	Alias           string `gorm:"uniqueIndex;not null;size:100"`
	Name            string `gorm:"size:255"`
	Price           datatypes.JSON
	Frequency       int `gorm:"not null"`
	TrialDays       int `gorm:"not null"`
	Visibility      int `gorm:"not null;index"`
	Features        datatypes.JSON
	AdditionalPlans datatypes.JSON
	SortOrder       int `gorm:"not null"`
	Version         int `gorm:"not null;default:1"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the table name for GORM
func (PlanModel) TableName() string {
	return constants.TablePlans
}

// PlanCouponModel links a coupon to a plan, either as a discount or as an addon.
type PlanCouponModel struct {
	PlanID   uint `gorm:"primaryKey"`
	CouponID uint `gorm:"primaryKey"`
	Addon    bool `gorm:"primaryKey"`
}

func (PlanCouponModel) TableName() string {
	return constants.TablePlanCoupons
}
