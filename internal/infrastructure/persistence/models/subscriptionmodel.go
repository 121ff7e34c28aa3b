package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ptuchik/billing/internal/shared/constants"
)

// SubscriptionModel represents the database persistence model for subscriptions.
// ActivePurchaseKey equals PurchaseID while the row is active and NULL
// otherwise, so the unique index allows one active subscription per purchase.
type SubscriptionModel struct {
	ID                uint            `gorm:"primarykey"`
	PurchaseID        uint            `gorm:"not null;index"`
	ActivePurchaseKey *uint           `gorm:"uniqueIndex"`
	UserID            uint            `gorm:"not null;index"`
	Alias             string          `gorm:"not null;size:100"`
	Name              string          `gorm:"size:255"`
	Price             decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency          string          `gorm:"not null;size:3"`
	Frequency         int             `gorm:"not null"`
	Coupons           datatypes.JSON
	Addons            datatypes.JSON
	Features          datatypes.JSON
	TrialEndsAt       *time.Time
	EndsAt            *time.Time
	NextBillingDate   time.Time `gorm:"not null;index"`
	Active            bool      `gorm:"not null;index"`
	Version           int       `gorm:"not null;default:1"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName specifies the table name for GORM
func (SubscriptionModel) TableName() string {
	return constants.TableSubscriptions
}

// BeforeCreate hook for GORM
func (s *SubscriptionModel) BeforeCreate(tx *gorm.DB) error {
	if s.Version == 0 {
		s.Version = 1
	}
	return nil
}
