package t2048

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyFor(t *testing.T) {
	tests := []struct {
		date   string
		size   int
		target int
	}{
		{"2026-01-01", 3, 5000},
		{"2026-01-02", 4, 10000},
		{"2026-01-03", 5, 15000},
		{"2026-01-04", 6, 20000},
		{"2026-01-05", 8, 30000},
		{"2026-02-11", 5, 15000},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			day, err := time.Parse(time.DateOnly, tt.date)
			require.NoError(t, err)

			d := DailyFor(day.Add(15 * time.Hour))
			assert.Equal(t, tt.date, d.Date)
			assert.Equal(t, tt.size, d.GridSize)
			assert.Equal(t, tt.target, d.TargetScore)
		})
	}
}

func TestDailyForUsesUTC(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	local := time.Date(2026, 1, 2, 3, 0, 0, 0, tokyo) // still Jan 1 in UTC

	assert.Equal(t, "2026-01-01", DailyFor(local).Date)
}

func TestDateHash(t *testing.T) {
	assert.Equal(t, 1161695552, dateHash("2026-02-11"))
	assert.Zero(t, dateHash(""))
}

func TestDailyReached(t *testing.T) {
	d := Daily{TargetScore: 5000}
	assert.False(t, d.Reached(4999))
	assert.True(t, d.Reached(5000))
}
