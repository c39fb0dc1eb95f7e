package analytics

import (
	"fmt"
	"math"
	"sort"

	"github.com/sgrant/omnitrace/internal/event"
	"github.com/sgrant/omnitrace/internal/segment"
)

// DriftRecommendation is a detected cognitive-drift pattern. Nil means no
// pattern was found; drift detection never speculates.
type DriftRecommendation struct {
	Message    string `json:"message"`
	Confidence string `json:"confidence"` // low, medium, high
}

const (
	minEventsForDrift        = 20
	minFocusSegmentsForDrift = 3
	driftClusterGap          = 10 * 60 * 1000 // ms
)

// DetectCognitiveDrift looks for two patterns, in order: a consistent focus
// decay duration (stddev under 30% of mean across focus segments), then
// distraction clustering (largest gap-under-10-minute cluster of at least 3
// distraction-category events). Requires at least 20 events and 3 focus
// segments; returns nil otherwise.
func DetectCognitiveDrift(events []event.Event) *DriftRecommendation {
	if len(events) < minEventsForDrift {
		return nil
	}

	segments := segment.Derive(events)
	focusSegments := segment.FilterFocus(segments)
	if len(focusSegments) < minFocusSegmentsForDrift {
		return nil
	}

	durations := make([]float64, len(focusSegments))
	var sum float64
	for i, s := range focusSegments {
		durations[i] = float64(s.Duration())
		sum += durations[i]
	}
	mean := sum / float64(len(durations))

	var variance float64
	for _, d := range durations {
		variance += (d - mean) * (d - mean)
	}
	variance /= float64(len(durations))
	stdDev := math.Sqrt(variance)

	if stdDev < mean*0.3 {
		avgMinutes := int(math.Round(mean / 60000))
		return &DriftRecommendation{
			Message:    fmt.Sprintf("You usually lose focus after %d minutes. Consider a break around that time.", avgMinutes),
			Confidence: "high",
		}
	}

	// Distraction clustering
	var distractions []event.Event
	for _, e := range events {
		if e.Category == event.CategoryDistraction {
			distractions = append(distractions, e)
		}
	}
	if len(distractions) > 5 {
		sort.SliceStable(distractions, func(i, j int) bool {
			return distractions[i].Timestamp < distractions[j].Timestamp
		})

		maxCluster := 0
		currentCluster := 1
		for i := 1; i < len(distractions); i++ {
			if distractions[i].Timestamp-distractions[i-1].Timestamp < driftClusterGap {
				currentCluster++
			} else {
				if currentCluster > maxCluster {
					maxCluster = currentCluster
				}
				currentCluster = 1
			}
		}
		if currentCluster > maxCluster {
			maxCluster = currentCluster
		}

		if maxCluster >= 3 {
			return &DriftRecommendation{
				Message:    "Distractions tend to cluster together. A short break might help reset your attention.",
				Confidence: "medium",
			}
		}
	}

	return nil
}
