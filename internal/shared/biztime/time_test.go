package biztime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestAddMonths(t *testing.T) {
	require.NoError(t, Init("UTC"))

	tests := []struct {
		name string
		from time.Time
		n    int
		want time.Time
	}{
		{"plain month", date(2024, 3, 15), 1, date(2024, 4, 15)},
		{"clamped to leap february", date(2024, 1, 31), 1, date(2024, 2, 29)},
		{"clamped to february", date(2023, 1, 31), 1, date(2023, 2, 28)},
		{"year", date(2024, 2, 29), 12, date(2025, 2, 28)},
		{"backwards", date(2024, 3, 31), -1, date(2024, 2, 29)},
		{"zero", date(2024, 3, 31), 0, date(2024, 3, 31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(AddMonths(tt.from, tt.n)), "got %s", AddMonths(tt.from, tt.n))
		})
	}
}

func TestDaysBetween(t *testing.T) {
	require.NoError(t, Init("UTC"))

	assert.Equal(t, 0, DaysBetween(date(2024, 1, 1), time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, 31, DaysBetween(date(2024, 1, 1), date(2024, 2, 1)))
	assert.Equal(t, -2, DaysBetween(date(2024, 1, 3), date(2024, 1, 1)))
	assert.Equal(t, 366, DaysBetween(date(2024, 1, 1), date(2025, 1, 1)))
}

func TestDayBoundaries(t *testing.T) {
	require.NoError(t, Init("UTC"))

	ts := time.Date(2024, 5, 10, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), StartOfDayUTC(ts))
	assert.Equal(t, time.Date(2024, 5, 10, 23, 59, 59, 999999999, time.UTC), EndOfDayUTC(ts))
	assert.True(t, SameDay(ts, StartOfDayUTC(ts)))
	assert.False(t, SameDay(ts, AddDays(ts, 1)))
}

func TestParseDateInBizTimezone(t *testing.T) {
	require.NoError(t, Init("UTC"))

	got, err := ParseDateInBizTimezone("2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDateInBizTimezone("06/01/2024")
	assert.Error(t, err)
}
