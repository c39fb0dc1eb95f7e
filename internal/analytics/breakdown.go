package analytics

import (
	"sort"

	"github.com/sgrant/omnitrace/internal/event"
	"github.com/sgrant/omnitrace/internal/segment"
)

// CategoryBreakdown is the total segmented duration for one category.
type CategoryBreakdown struct {
	Category   event.Category `json:"category"`
	Duration   int64          `json:"duration"` // ms
	Percentage float64        `json:"percentage"`
}

// ComputeCategoryBreakdown sums segment durations per category. Every
// category appears in the result even with zero duration; percentages are 0
// when the grand total is 0. Sorted descending by duration.
func ComputeCategoryBreakdown(events []event.Event) []CategoryBreakdown {
	segments := segment.Derive(events)

	totals := make(map[event.Category]int64)
	var totalDuration int64
	for _, s := range segments {
		d := s.Duration()
		totalDuration += d
		totals[s.Category] += d
	}

	breakdown := make([]CategoryBreakdown, 0, len(event.Categories))
	for _, c := range event.Categories {
		d := totals[c]
		pct := 0.0
		if totalDuration > 0 {
			pct = float64(d) / float64(totalDuration) * 100
		}
		breakdown = append(breakdown, CategoryBreakdown{
			Category:   c,
			Duration:   d,
			Percentage: pct,
		})
	}

	sort.SliceStable(breakdown, func(i, j int) bool {
		return breakdown[i].Duration > breakdown[j].Duration
	})

	return breakdown
}
