package analytics

import (
	"math"

	"github.com/sgrant/omnitrace/internal/event"
	"github.com/sgrant/omnitrace/internal/segment"
)

// FocusLabel classifies a focus score.
type FocusLabel string

const (
	LabelDeepFocus  FocusLabel = "Deep Focus"
	LabelFlow       FocusLabel = "Flow"
	LabelUnstable   FocusLabel = "Unstable"
	LabelDistracted FocusLabel = "Distracted"
)

// FocusScore is the 0-100 concentration-quality rating.
type FocusScore struct {
	Score         int        `json:"score"`
	Label         FocusLabel `json:"label"`
	HasEnoughData bool       `json:"hasEnoughData"`
	Reasons       []string   `json:"reasons,omitempty"`
}

const (
	minEventsForScore = 5
	minScoreDuration  = 5 * 60 * 1000 // ms

	focusDurationReference = 30 * 60 * 1000 // ms, full credit at 30-minute average
)

// ComputeFocusScore rates concentration quality from events. Gated by at
// least 5 events and 5 minutes of segmented duration; below either gate the
// score is 0, "Distracted", HasEnoughData=false.
//
// The score starts at 50 and applies four independent factors, clamping to
// [0,100] only at the very end:
//  1. average work/study segment duration, up to +30 scaled linearly against
//     a 30-minute reference; no focus segments at all is -15
//  2. navigation-event rate per minute: >2 is -20, >1 is -10
//  3. rest+idle ratio of total duration: inside (0.1, 0.3) is +15, at or
//     above 0.3 is -10
//  4. more than 5 navigation events arriving under 10s after the previous
//     event is -5
func ComputeFocusScore(events []event.Event) FocusScore {
	if len(events) < minEventsForScore {
		return FocusScore{
			Score:         0,
			Label:         LabelDistracted,
			HasEnoughData: false,
			Reasons:       []string{"Not enough events recorded yet"},
		}
	}

	segments := segment.Derive(events)
	totalDuration := segment.TotalDuration(segments)

	if totalDuration < minScoreDuration {
		return FocusScore{
			Score:         0,
			Label:         LabelDistracted,
			HasEnoughData: false,
			Reasons:       []string{"Not enough activity duration recorded yet"},
		}
	}

	score := 50.0
	var reasons []string

	// Factor 1: session duration quality
	focusSegments := segment.FilterFocus(segments)
	if len(focusSegments) > 0 {
		var focusTotal int64
		for _, s := range focusSegments {
			focusTotal += s.Duration()
		}
		avgFocusDuration := float64(focusTotal) / float64(len(focusSegments))
		score += math.Min(30, avgFocusDuration/focusDurationReference*30)
		if avgFocusDuration > 20*60*1000 {
			reasons = append(reasons, "Long focus sessions detected")
		}
	} else {
		score -= 15
		reasons = append(reasons, "No focused work sessions")
	}

	// Factor 2: distraction frequency
	navCount := 0
	for _, e := range events {
		if e.Type == event.TypeNavigation {
			navCount++
		}
	}
	distractionRate := float64(navCount) / (float64(totalDuration) / (60 * 1000))
	switch {
	case distractionRate > 2:
		score -= 20
		reasons = append(reasons, "High context-switching rate")
	case distractionRate > 1:
		score -= 10
		reasons = append(reasons, "Moderate context-switching")
	default:
		reasons = append(reasons, "Low distraction rate")
	}

	// Factor 3: rest gap quality. A segment matching both arms counts once;
	// engine-derived Idle segments always carry the unknown category, so the
	// two arms are disjoint in practice.
	var restTime int64
	for _, s := range segments {
		if s.Category == event.CategoryRest || s.Activity == segment.ActivityIdle {
			restTime += s.Duration()
		}
	}
	restRatio := float64(restTime) / float64(totalDuration)
	if restRatio > 0.1 && restRatio < 0.3 {
		score += 15
		reasons = append(reasons, "Healthy rest balance")
	} else if restRatio >= 0.3 {
		score -= 10
		reasons = append(reasons, "Excessive idle time")
	}

	// Factor 4: rapid app switching, evaluated over the input order
	rapidSwitches := 0
	for i := 1; i < len(events); i++ {
		if events[i].Type != event.TypeNavigation {
			continue
		}
		if events[i].Timestamp-events[i-1].Timestamp < 10_000 {
			rapidSwitches++
		}
	}
	if rapidSwitches > 5 {
		score -= 5
		reasons = append(reasons, "Rapid app switching detected")
	}

	final := int(math.Round(score))
	if final < 0 {
		final = 0
	}
	if final > 100 {
		final = 100
	}

	return FocusScore{
		Score:         final,
		Label:         labelForScore(final),
		HasEnoughData: true,
		Reasons:       reasons,
	}
}

func labelForScore(score int) FocusLabel {
	switch {
	case score >= 80:
		return LabelDeepFocus
	case score >= 60:
		return LabelFlow
	case score >= 40:
		return LabelUnstable
	default:
		return LabelDistracted
	}
}
