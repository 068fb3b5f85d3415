package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/hisani/core/application"
)

func TestStatusDistribution(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		got := StatusDistribution(nil)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("percentages sum to 100", func(t *testing.T) {
		got := StatusDistribution([]StatusCount{
			{Status: application.StatusPending, Count: 3},
			{Status: application.StatusAccepted, Count: 1},
		})
		assert.InDelta(t, 75, got[0].Percentage, 1e-9)
		assert.InDelta(t, 25, got[1].Percentage, 1e-9)
	})

	t.Run("zero total does not divide", func(t *testing.T) {
		got := StatusDistribution([]StatusCount{{Status: application.StatusPending, Count: 0}})
		assert.Zero(t, got[0].Percentage)
	})
}

func TestWeeklyTrend(t *testing.T) {
	today := time.Date(2026, 8, 29, 15, 4, 5, 0, time.UTC)
	midnight := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	got := WeeklyTrend([]DayCount{
		{Day: midnight, Count: 4},
		{Day: midnight.AddDate(0, 0, -2), Count: 1},
		{Day: midnight.AddDate(0, 0, -30), Count: 9}, // outside the window
	}, today)

	assert.Len(t, got, 7)
	assert.Equal(t, midnight.AddDate(0, 0, -6), got[0].Day)
	assert.Equal(t, midnight, got[6].Day)
	assert.Equal(t, 4, got[6].Count)
	assert.Equal(t, 1, got[4].Count)
	for _, i := range []int{0, 1, 2, 3, 5} {
		assert.Zero(t, got[i].Count, "day %d should be zero-filled", i)
	}
}

func TestCategoryBreakdown(t *testing.T) {
	got := CategoryBreakdown([]CategoryCount{
		{Category: "Education", Count: 10},
		{Category: "Environment", Count: 5},
		{Category: "Health", Count: 0},
	})
	assert.InDelta(t, 100, got[0].BarWidth, 1e-9)
	assert.InDelta(t, 50, got[1].BarWidth, 1e-9)
	assert.Zero(t, got[2].BarWidth)

	assert.Empty(t, CategoryBreakdown(nil))
}

func TestResponseTimeScore(t *testing.T) {
	tests := []struct {
		name string
		days float64
		want float64
	}{
		{name: "zero days floors at 100", days: 0, want: 100},
		{name: "under the floor", days: 0.1, want: 100},
		{name: "same week", days: 5, want: 100},
		{name: "ten days", days: 10, want: 50},
		{name: "twenty days", days: 20, want: 25},
		{name: "very slow", days: 1000, want: 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ResponseTimeScore(tt.days), 1e-9)
		})
	}
}

func TestQualityScore(t *testing.T) {
	assert.InDelta(t, 100, QualityScore(5), 1e-9)
	assert.InDelta(t, 60, QualityScore(3), 1e-9)
	assert.Zero(t, QualityScore(0))
	assert.InDelta(t, 100, QualityScore(7), 1e-9) // clamped
}

func TestAcceptanceRate(t *testing.T) {
	assert.InDelta(t, 25, AcceptanceRate(1, 4), 1e-9)
	assert.Zero(t, AcceptanceRate(0, 0))
	assert.Zero(t, AcceptanceRate(3, 0))
}
