package analytics

import (
	"fmt"
	"time"

	"github.com/sgrant/omnitrace/internal/event"
	"github.com/sgrant/omnitrace/internal/merge"
	"github.com/sgrant/omnitrace/internal/segment"
)

// DailySummary is an ordered list of calm English insight sentences.
type DailySummary struct {
	Insights      []string `json:"insights"`
	HasEnoughData bool     `json:"hasEnoughData"`
}

const (
	minEventsForSummary   = 10
	minSummaryDuration    = 15 * 60 * 1000 // ms
	restFocusFollowWindow = 30 * 60 * 1000 // ms
)

// GenerateDailySummary builds up to four insight sentences: longest focus
// window, distraction pattern, rest→focus correlation, and total recovery
// minutes. Gated by at least 10 events and 15 minutes of segmented duration.
// If no condition produced output a generic fallback sentence is emitted.
func GenerateDailySummary(events []event.Event) DailySummary {
	if len(events) < minEventsForSummary {
		return DailySummary{
			Insights:      []string{"Not enough activity recorded today to generate insights."},
			HasEnoughData: false,
		}
	}

	segments := segment.Derive(events)
	if segment.TotalDuration(segments) < minSummaryDuration {
		return DailySummary{
			Insights:      []string{"Activity duration too short for meaningful insights."},
			HasEnoughData: false,
		}
	}

	var insights []string
	mergedSegments := merge.Segments(events, merge.ModeFocus)

	// Best focus window
	focusSegments := segment.FilterFocus(segments)
	if len(focusSegments) > 0 {
		longest := focusSegments[0]
		for _, s := range focusSegments[1:] {
			if s.Duration() > longest.Duration() {
				longest = s
			}
		}
		insights = append(insights, fmt.Sprintf(
			"You were most focused between %s and %s (%d minutes).",
			clockTime(longest.StartTime), clockTime(longest.EndTime), roundMinutes(longest.Duration()),
		))
	}

	// Distraction pattern
	var micro []merge.MergedSegment
	for _, m := range mergedSegments {
		if m.Label == merge.LabelMicro {
			micro = append(micro, m)
		}
	}
	if len(micro) > 0 {
		evening := 0
		for _, m := range micro {
			if hourOf(m.StartTime) >= 18 {
				evening++
			}
		}
		if evening > len(micro)/2 {
			insights = append(insights, "Distractions increased after 6 PM.")
		} else {
			insights = append(insights, fmt.Sprintf("%d micro-distraction periods detected.", len(micro)))
		}
	}

	// Rest and focus correlation
	var restSegments []segment.Segment
	for _, s := range segments {
		if s.Category == event.CategoryRest {
			restSegments = append(restSegments, s)
		}
	}
	if len(restSegments) > 0 && len(focusSegments) > 0 {
		restFollowedByFocus := 0
		for _, rest := range restSegments {
			for _, f := range focusSegments {
				if f.StartTime > rest.EndTime && f.StartTime-rest.EndTime < restFocusFollowWindow {
					restFollowedByFocus++
					break
				}
			}
		}
		if restFollowedByFocus > len(restSegments)/2 {
			insights = append(insights, "Best focus sessions followed rest periods.")
		}
	}

	// Recovery gaps
	var recoveryTotal int64
	recoveryCount := 0
	for _, m := range mergedSegments {
		if m.Label == merge.LabelRecovery {
			recoveryTotal += m.Duration()
			recoveryCount++
		}
	}
	if recoveryCount > 0 {
		insights = append(insights, fmt.Sprintf("%d minutes spent in recovery periods.", roundMinutes(recoveryTotal)))
	}

	if len(insights) == 0 {
		insights = append(insights, "Activity patterns are still developing. Keep logging to see deeper insights.")
	}

	return DailySummary{
		Insights:      insights,
		HasEnoughData: true,
	}
}

// clockTime formats a millisecond timestamp as a local 12-hour clock time.
func clockTime(ms int64) string {
	return time.UnixMilli(ms).Format("3:04 PM")
}

// roundMinutes converts milliseconds to whole minutes, rounding half up.
func roundMinutes(ms int64) int {
	return int((ms + 30_000) / 60_000)
}
