package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/ptuchik/billing/internal/shared/constants"
)

type TransactionModel struct {
	ID             uint            `gorm:"primaryKey"`
	Reference      string          `gorm:"size:128;index"`
	UserID         uint            `gorm:"not null;index"`
	PurchaseID     *uint           `gorm:"index"`
	SubscriptionID *uint           `gorm:"index"`
	Name           string          `gorm:"size:255"`
	Type           int             `gorm:"not null"`
	Price          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Discount       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Summary        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency       string          `gorm:"not null;size:3"`
	Coupons        datatypes.JSON
	Gateway        string `gorm:"size:50"`
	Status         int    `gorm:"not null;index"`
	Message        string `gorm:"size:1000"`
	Data           datatypes.JSON
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (TransactionModel) TableName() string {
	return constants.TableTransactions
}
