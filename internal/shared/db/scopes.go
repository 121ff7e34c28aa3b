package db

import (
	"time"

	"gorm.io/gorm"

	"github.com/ptuchik/billing/internal/shared/biztime"
)

// NotDeleted filters out soft-deleted records for raw Table()/Model() queries
// that bypass gorm's automatic soft delete handling.
func NotDeleted() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("deleted_at IS NULL")
	}
}

// ActiveOnly filters rows whose active flag is set.
func ActiveOnly() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("active = ?", true)
	}
}

// Paginate applies offset/limit for 1-based pages.
func Paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page < 1 {
			page = 1
		}
		if pageSize < 1 {
			return db
		}
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}

// DueOn matches rows whose column falls within the business day of t.
// With upTo set every earlier day matches too.
func DueOn(column string, t time.Time, upTo bool) func(db *gorm.DB) *gorm.DB {
	start := biztime.StartOfDayUTC(t)
	end := biztime.EndOfDayUTC(t)
	return func(db *gorm.DB) *gorm.DB {
		if upTo {
			return db.Where(column+" <= ?", end)
		}
		return db.Where(column+" BETWEEN ? AND ?", start, end)
	}
}
