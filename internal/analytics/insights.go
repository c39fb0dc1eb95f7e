package analytics

import (
	"fmt"
	"time"

	"github.com/sgrant/omnitrace/internal/event"
	"github.com/sgrant/omnitrace/internal/segment"
)

// Insight is one named, defined observation about the event set.
type Insight struct {
	Title      string `json:"title"`
	Value      string `json:"value"`
	Definition string `json:"definition"`
}

// ComputeInsights derives headline observations: most frequent activity,
// longest focus session, context-switch count, and peak productivity hour.
// Each is emitted only when its underlying data is non-empty.
func ComputeInsights(events []event.Event) []Insight {
	var insights []Insight
	segments := segment.Derive(events)

	// Most frequent activity by segment count
	activityCounts := make(map[string]int)
	var activityOrder []string
	for _, s := range segments {
		if _, seen := activityCounts[s.Activity]; !seen {
			activityOrder = append(activityOrder, s.Activity)
		}
		activityCounts[s.Activity]++
	}
	maxActivity := ""
	maxCount := 0
	for _, a := range activityOrder {
		if activityCounts[a] > maxCount {
			maxCount = activityCounts[a]
			maxActivity = a
		}
	}
	if maxActivity != "" {
		insights = append(insights, Insight{
			Title:      "Most Frequent Activity",
			Value:      fmt.Sprintf("%s (%d times)", maxActivity, maxCount),
			Definition: "Activity that occurred most frequently in recorded segments",
		})
	}

	// Longest uninterrupted focus
	focusSegments := segment.FilterFocus(segments)
	if len(focusSegments) > 0 {
		longest := focusSegments[0]
		for _, s := range focusSegments[1:] {
			if s.Duration() > longest.Duration() {
				longest = s
			}
		}
		insights = append(insights, Insight{
			Title:      "Longest Focus Session",
			Value:      fmt.Sprintf("%d minutes", longest.Duration()/60000),
			Definition: "Longest continuous segment categorized as Study or Work without interruption",
		})
	}

	// Context switches via navigation events
	navCount := 0
	for _, e := range events {
		if e.Type == event.TypeNavigation {
			navCount++
		}
	}
	if navCount > 0 {
		insights = append(insights, Insight{
			Title:      "Context Switches",
			Value:      fmt.Sprintf("%d switches", navCount),
			Definition: "Number of times you navigated between different screens",
		})
	}

	// Peak productivity hour: mode of focus segment start hours
	hourCounts := make(map[int]int)
	for _, s := range focusSegments {
		hourCounts[hourOf(s.StartTime)]++
	}
	if len(hourCounts) > 0 {
		peakHour := 0
		peakCount := 0
		for h := 0; h < 24; h++ {
			if hourCounts[h] > peakCount {
				peakCount = hourCounts[h]
				peakHour = h
			}
		}
		insights = append(insights, Insight{
			Title:      "Peak Productivity Hour",
			Value:      fmt.Sprintf("%d:00 - %d:00", peakHour, peakHour+1),
			Definition: "Hour with the most Study/Work activity segments",
		})
	}

	return insights
}

// hourOf returns the local hour of day for a millisecond timestamp.
func hourOf(ms int64) int {
	return time.UnixMilli(ms).Hour()
}
