package models

import (
	"time"

	"github.com/ptuchik/billing/internal/shared/constants"
)

// PurchaseModel is unique per (host, package).
type PurchaseModel struct {
	ID            uint    `gorm:"primarykey"`
	UserID        uint    `gorm:"not null;index"`
	HostKind      string  `gorm:"not null;size:50;uniqueIndex:idx_purchase_host_package,priority:1"`
	HostID        uint    `gorm:"not null;uniqueIndex:idx_purchase_host_package,priority:2"`
	PackageID     uint    `gorm:"not null;uniqueIndex:idx_purchase_host_package,priority:3"`
	PackageKind   string  `gorm:"not null;size:50;index"`
	PackageAlias  string  `gorm:"not null;size:100"`
	ReferenceKind *string `gorm:"size:50"`
	ReferenceID   *uint
	Active        bool `gorm:"not null;index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (PurchaseModel) TableName() string {
	return constants.TablePurchases
}
