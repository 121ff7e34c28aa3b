// Package biztime provides business timezone calculations.
// Storage and transport use UTC. The business timezone only decides where a
// calendar day starts and ends, which drives billing dates and sweeps.
package biztime

import (
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultTimezone is the default business timezone.
	DefaultTimezone = "UTC"

	// DateLayout is the layout of billing dates in commands and APIs.
	DateLayout = "2006-01-02"
)

var (
	bizLocation     *time.Location
	bizLocationOnce sync.Once
	initErr         error
)

// Init initializes the business timezone. Should be called once at startup.
func Init(tz string) error {
	bizLocationOnce.Do(func() {
		if tz == "" {
			tz = DefaultTimezone
		}
		bizLocation, initErr = time.LoadLocation(tz)
	})
	return initErr
}

// MustInit initializes the business timezone and panics on error.
func MustInit(tz string) {
	if err := Init(tz); err != nil {
		panic(fmt.Sprintf("failed to initialize business timezone %q: %v", tz, err))
	}
}

// Location returns the business timezone, initializing the default one on first use.
func Location() *time.Location {
	if bizLocation == nil {
		if err := Init(""); err != nil {
			panic(fmt.Sprintf("biztime: failed to auto-initialize with default timezone: %v", err))
		}
	}
	return bizLocation
}

// SetLocation replaces the business timezone and returns a func restoring
// the previous one. For tests only.
func SetLocation(loc *time.Location) func() {
	prev := Location()
	bizLocation = loc
	return func() { bizLocation = prev }
}

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// StartOfDayUTC returns 00:00:00 of t's business day, in UTC.
func StartOfDayUTC(t time.Time) time.Time {
	bizTime := t.In(Location())
	return time.Date(bizTime.Year(), bizTime.Month(), bizTime.Day(), 0, 0, 0, 0, Location()).UTC()
}

// EndOfDayUTC returns 23:59:59.999999999 of t's business day, in UTC.
func EndOfDayUTC(t time.Time) time.Time {
	bizTime := t.In(Location())
	return time.Date(bizTime.Year(), bizTime.Month(), bizTime.Day(), 23, 59, 59, 999999999, Location()).UTC()
}

// AddMonths shifts t by n calendar months in the business timezone. The day
// is clamped to the last day of the target month, so Jan 31 + 1 month is the
// last day of February.
func AddMonths(t time.Time, n int) time.Time {
	if n == 0 {
		return t
	}
	b := t.In(Location())
	firstOfTarget := time.Date(b.Year(), b.Month()+time.Month(n), 1, b.Hour(), b.Minute(), b.Second(), b.Nanosecond(), Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	day := b.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, b.Hour(), b.Minute(), b.Second(), b.Nanosecond(), Location()).UTC()
}

// AddDays shifts t by n calendar days in the business timezone.
func AddDays(t time.Time, n int) time.Time {
	return t.In(Location()).AddDate(0, 0, n).UTC()
}

// DaysBetween returns the number of whole calendar days from a to b in the
// business timezone. The result is negative when b is before a.
func DaysBetween(a, b time.Time) int {
	da := StartOfDayUTC(a).In(Location())
	db := StartOfDayUTC(b).In(Location())
	ya, ma, dda := da.Date()
	yb, mb, ddb := db.Date()
	ua := time.Date(ya, ma, dda, 0, 0, 0, 0, time.UTC)
	ub := time.Date(yb, mb, ddb, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// ParseDateInBizTimezone parses a YYYY-MM-DD string as business timezone
// midnight and returns the UTC equivalent.
func ParseDateInBizTimezone(dateStr string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, dateStr, Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format %q: %w", dateStr, err)
	}
	return t.UTC(), nil
}

// FormatInBizTimezone formats a UTC time as a string in business timezone.
func FormatInBizTimezone(t time.Time, layout string) string {
	return t.In(Location()).Format(layout)
}

// SameDay reports whether a and b fall on the same business day.
func SameDay(a, b time.Time) bool {
	return StartOfDayUTC(a).Equal(StartOfDayUTC(b))
}
