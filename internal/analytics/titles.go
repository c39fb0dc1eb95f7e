package analytics

import (
	"fmt"

	"github.com/sgrant/omnitrace/internal/event"
	"github.com/sgrant/omnitrace/internal/merge"
	"github.com/sgrant/omnitrace/internal/segment"
)

// Title is a micro-gamification achievement.
type Title string

const (
	TitleFlowArchitect       Title = "Flow Architect"
	TitleFocusBreaker        Title = "Focus Breaker"
	TitleDistractionSurvivor Title = "Distraction Survivor"
)

// TitleResult lists every earned title with a one-line reason. Titles are
// independent and non-exclusive.
type TitleResult struct {
	EarnedTitles []Title          `json:"earnedTitles"`
	Reasons      map[Title]string `json:"reasons"`
}

const minEventsForTitles = 10

// ComputeTitles evaluates the three achievement rules. Requires at least 10
// events; below that no titles are awarded.
func ComputeTitles(events []event.Event) TitleResult {
	result := TitleResult{Reasons: make(map[Title]string)}
	if len(events) < minEventsForTitles {
		return result
	}

	segments := segment.Derive(events)
	mergedSegments := merge.Segments(events, merge.ModeFocus)
	focusSegments := segment.FilterFocus(segments)

	// Flow Architect: repeated long uninterrupted focus sessions
	longFocus := 0
	for _, s := range focusSegments {
		if s.Duration() > 30*60*1000 {
			longFocus++
		}
	}
	if longFocus >= 2 {
		result.EarnedTitles = append(result.EarnedTitles, TitleFlowArchitect)
		result.Reasons[TitleFlowArchitect] = fmt.Sprintf("Achieved %d deep focus sessions over 30 minutes", longFocus)
	}

	// Focus Breaker: high context switching but still productive
	micro := 0
	exploration := 0
	for _, m := range mergedSegments {
		switch m.Label {
		case merge.LabelMicro:
			micro++
		case merge.LabelExploration:
			exploration++
		}
	}
	var totalFocusTime int64
	for _, s := range focusSegments {
		totalFocusTime += s.Duration()
	}
	if micro > 5 && totalFocusTime > 60*60*1000 {
		result.EarnedTitles = append(result.EarnedTitles, TitleFocusBreaker)
		result.Reasons[TitleFocusBreaker] = "Maintained productivity despite frequent context switches"
	}

	// Distraction Survivor: overcame exploration drift and returned to focus
	if exploration >= 2 && len(focusSegments) > 0 {
		result.EarnedTitles = append(result.EarnedTitles, TitleDistractionSurvivor)
		result.Reasons[TitleDistractionSurvivor] = "Navigated through distractions and returned to focus"
	}

	return result
}
