package dashboard

import (
	"time"

	"github.com/trezcool/hisani/core/application"
)

// The projections in this file are pure: they shape raw aggregation results
// into chart-ready rows and do no I/O. All arithmetic is deterministic.

type (
	// StatusCount is a raw (status, count) aggregation row.
	StatusCount struct {
		Status application.Status `json:"status" db:"status"`
		Count  int                `json:"count" db:"count"`
	}

	// StatusSlice is a chart row: a status with its share of the total.
	StatusSlice struct {
		Status     application.Status `json:"status"`
		Count      int                `json:"count"`
		Percentage float64            `json:"percentage"`
	}

	// DayCount is a raw (day, count) aggregation row. Day is truncated to
	// midnight UTC.
	DayCount struct {
		Day   time.Time `json:"day" db:"day"`
		Count int       `json:"count" db:"count"`
	}

	// CategoryCount is a raw (category, count) aggregation row.
	CategoryCount struct {
		Category string `json:"category" db:"category"`
		Count    int    `json:"count" db:"count"`
	}

	// CategoryBar is a chart row: a category with its bar width relative to
	// the largest category.
	CategoryBar struct {
		Category string  `json:"category"`
		Count    int     `json:"count"`
		BarWidth float64 `json:"bar_width"` // 0..100
	}
)

func clamp(lo, hi, v float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// StatusDistribution turns raw status counts into percentage slices.
// An empty input yields an empty (non-nil) slice.
func StatusDistribution(counts []StatusCount) []StatusSlice {
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	out := make([]StatusSlice, 0, len(counts))
	for _, c := range counts {
		s := StatusSlice{Status: c.Status, Count: c.Count}
		if total > 0 {
			s.Percentage = float64(c.Count) / float64(total) * 100
		}
		out = append(out, s)
	}
	return out
}

// WeeklyTrend builds a dense 7-day series ending on `today` (UTC midnight),
// zero-filling days with no applications. Counts outside the window are dropped.
func WeeklyTrend(counts []DayCount, today time.Time) []DayCount {
	today = today.UTC().Truncate(24 * time.Hour)
	byDay := make(map[time.Time]int, len(counts))
	for _, c := range counts {
		byDay[c.Day.UTC().Truncate(24*time.Hour)] = c.Count
	}
	out := make([]DayCount, 7)
	for i := 0; i < 7; i++ {
		day := today.AddDate(0, 0, i-6)
		out[i] = DayCount{Day: day, Count: byDay[day]}
	}
	return out
}

// CategoryBreakdown turns raw category counts into bar rows, the widest bar
// being the largest category at width 100.
func CategoryBreakdown(counts []CategoryCount) []CategoryBar {
	max := 0
	for _, c := range counts {
		if c.Count > max {
			max = c.Count
		}
	}
	out := make([]CategoryBar, 0, len(counts))
	for _, c := range counts {
		b := CategoryBar{Category: c.Category, Count: c.Count}
		if max > 0 {
			b.BarWidth = clamp(0, 100, float64(c.Count)/float64(max)*100)
		}
		out = append(out, b)
	}
	return out
}

// ResponseTimeScore scores an org's average decision turnaround: same-day
// decisions score 100, slower ones decay. The 0.25 day floor keeps the
// division away from zero.
func ResponseTimeScore(responseDays float64) float64 {
	if responseDays < 0.25 {
		responseDays = 0.25
	}
	return clamp(0, 100, (5/responseDays)*100)
}

// QualityScore maps an average rating (1..5) onto 0..100.
// A zero average (no ratings yet) scores 0.
func QualityScore(avgRating float64) float64 {
	return clamp(0, 100, avgRating/5*100)
}

// AcceptanceRate is the accepted share of all decided-or-pending
// applications, as a percentage.
func AcceptanceRate(accepted, total int) float64 {
	if total <= 0 {
		return 0
	}
	return clamp(0, 100, float64(accepted)/float64(total)*100)
}
