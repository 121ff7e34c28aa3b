package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/ptuchik/billing/internal/shared/constants"
)

// CustomerModel represents the database persistence model for billing customers
type CustomerModel struct {
	ID               uint            `gorm:"primarykey"`
	Email            string          `gorm:"uniqueIndex;not null;size:255"`
	FirstName        string          `gorm:"size:100"`
	LastName         string          `gorm:"size:100"`
	Currency         string          `gorm:"size:3"`
	Balance          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Coupons          datatypes.JSON
	ReferralID       *string `gorm:"size:64;index"`
	HasPaymentMethod bool    `gorm:"not null"`
	PaymentGateway   string  `gorm:"size:50"`
	Active           bool    `gorm:"not null"`
	Version          int     `gorm:"not null;default:1"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName specifies the table name for GORM
func (CustomerModel) TableName() string {
	return constants.TableCustomers
}
