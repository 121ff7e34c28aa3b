package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/ptuchik/billing/internal/shared/constants"
)

type OrderModel struct {
	ID            uint   `gorm:"primaryKey"`
	PublicID      string `gorm:"uniqueIndex;size:36;not null"`
	UserID        uint   `gorm:"index;not null"`
	Action        string `gorm:"size:30;not null"`
	HostKind      string `gorm:"size:50"`
	HostID        uint
	ReferenceKind string `gorm:"size:50"`
	ReferenceID   uint
	Params        datatypes.JSON
	Status        int `gorm:"not null;index"`
	TransactionID *uint
	Message       string `gorm:"size:1000"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (OrderModel) TableName() string {
	return constants.TableOrders
}
