package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/ptuchik/billing/internal/shared/constants"
)

type PackageModel struct {
	ID        uint   `gorm:"primarykey"`
	Kind      string `gorm:"not null;size:50;index"`
	Alias     string `gorm:"uniqueIndex;not null;size:100"`
	Name      string `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (PackageModel) TableName() string {
	return constants.TablePackages
}
