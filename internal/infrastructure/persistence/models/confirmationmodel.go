package models

import (
	"time"

	"github.com/ptuchik/billing/internal/shared/constants"
)

// ConfirmationModel stores post-purchase message templates. Rows without a
// package are the global defaults.
type ConfirmationModel struct {
	ID        uint   `gorm:"primaryKey"`
	Type      int    `gorm:"not null;index:idx_confirmation_lookup,priority:1"`
	PackageID *uint  `gorm:"index:idx_confirmation_lookup,priority:2"`
	Device    string `gorm:"size:20;not null"`
	Title     string `gorm:"size:255"`
	Body      string `gorm:"type:text"`
	Button    string `gorm:"size:100"`
	URL       string `gorm:"size:500"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ConfirmationModel) TableName() string {
	return constants.TableConfirmations
}
