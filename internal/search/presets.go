package search

import (
	"time"

	"github.com/sgrant/omnitrace/internal/event"
)

// Preset is a named, one-click anomaly filter.
type Preset struct {
	Name        string
	Description string
	Filters     Filters
}

// Presets returns the built-in anomaly presets, with day boundaries taken
// from now's local calendar day.
func Presets(now time.Time) []Preset {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	return []Preset{
		{
			Name:        "Long Idle Periods",
			Description: "Idle periods longer than 15 minutes",
			Filters: Filters{
				Keyword:        "idle",
				MinDuration:    15 * 60 * 1000,
				HasMinDuration: true,
			},
		},
		{
			Name:        "Manual Events",
			Description: "All manually logged events",
			Filters: Filters{
				Confidence: event.ConfidenceManual,
			},
		},
		{
			Name:        "Today",
			Description: "All events from today",
			Filters: Filters{
				StartTime: dayStart.UnixMilli(),
				EndTime:   dayEnd.UnixMilli() - 1,
				HasRange:  true,
			},
		},
	}
}
