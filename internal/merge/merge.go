package merge

import (
	"github.com/sgrant/omnitrace/internal/event"
	"github.com/sgrant/omnitrace/internal/segment"
)

// Mode is the cognitive mode that parametrizes merging thresholds.
type Mode string

const (
	ModeFocus    Mode = "focus"
	ModeFlow     Mode = "flow"
	ModeRecovery Mode = "recovery"
	ModeAnalysis Mode = "analysis"
)

// ParseMode maps free text to a mode. The empty string means focus;
// unrecognized values pass through and take the default threshold row.
func ParseMode(s string) Mode {
	if s == "" {
		return ModeFocus
	}
	return Mode(s)
}

// Pattern labels synthesized by the merge pass.
const (
	LabelExploration = "Exploration Session"
	LabelMicro       = "Micro-Distraction"
	LabelRecovery    = "Recovery Gap"
)

// MergedSegment groups one or more adjacent raw segments under a semantic
// label. RawSegmentCount records how many raw segments were consumed;
// SourceEventIDs is their flattened union in original order.
type MergedSegment struct {
	Label          string           `json:"label"`
	StartTime      int64            `json:"startTime"`
	EndTime        int64            `json:"endTime"`
	Category       event.Category   `json:"category"`
	Confidence     event.Confidence `json:"confidence"`
	SourceEventIDs []string         `json:"sourceEventIds"`
	RawSegmentCount int             `json:"rawSegmentCount"`
}

// Duration returns the merged segment length in milliseconds.
func (m MergedSegment) Duration() int64 {
	return m.EndTime - m.StartTime
}

type thresholds struct {
	navigationGap      int64 // ms
	navigationMinCount int
	switchGap          int64
	switchDuration     int64
	switchMinCount     int
	recoveryMinDuration int64
}

func modeThresholds(mode Mode) thresholds {
	switch mode {
	case ModeFocus:
		// Aggressive distraction merging
		return thresholds{
			navigationGap:       30_000,
			navigationMinCount:  4,
			switchGap:           8_000,
			switchDuration:      15_000,
			switchMinCount:      2,
			recoveryMinDuration: 60_000,
		}
	case ModeFlow:
		// De-emphasize micro-distraction merging
		return thresholds{
			navigationGap:       30_000,
			navigationMinCount:  5,
			switchGap:           3_000,
			switchDuration:      8_000,
			switchMinCount:      3,
			recoveryMinDuration: 60_000,
		}
	case ModeRecovery:
		// Emphasize recovery and rest gaps
		return thresholds{
			navigationGap:       30_000,
			navigationMinCount:  5,
			switchGap:           5_000,
			switchDuration:      10_000,
			switchMinCount:      2,
			recoveryMinDuration: 30_000,
		}
	default:
		return thresholds{
			navigationGap:       30_000,
			navigationMinCount:  5,
			switchGap:           5_000,
			switchDuration:      10_000,
			switchMinCount:      2,
			recoveryMinDuration: 60_000,
		}
	}
}

// Segments derives raw segments from events and merges them under the mode.
// Analysis mode is the identity transform: one merged segment per raw
// segment with fields unchanged.
//
// The three detectors run in fixed priority at each position: navigation
// burst, then rapid switching, then recovery gap. The ordering is a
// load-bearing tie-break; overlapping qualifying patterns are common and
// reordering the checks changes output labels.
func Segments(events []event.Event, mode Mode) []MergedSegment {
	raw := segment.Derive(events)
	return mergeRaw(raw, events, mode)
}

// SegmentsAt is Segments with an explicit "now" for the underlying
// segmentation pass.
func SegmentsAt(events []event.Event, mode Mode, now int64) []MergedSegment {
	raw := segment.DeriveAt(events, now)
	return mergeRaw(raw, events, mode)
}

func mergeRaw(raw []segment.Segment, events []event.Event, mode Mode) []MergedSegment {
	if mode == ModeAnalysis {
		merged := make([]MergedSegment, 0, len(raw))
		for _, s := range raw {
			merged = append(merged, passthrough(s))
		}
		return merged
	}

	navigation := navigationIDSet(events)
	th := modeThresholds(mode)

	var merged []MergedSegment
	i := 0
	for i < len(raw) {
		s := raw[i]

		// Navigation burst → "Exploration Session"
		if isNavigationSegment(s, navigation) {
			burst := collectNavigationBurst(raw, i, navigation, th.navigationGap)
			if len(burst) >= th.navigationMinCount {
				merged = append(merged, MergedSegment{
					Label:           LabelExploration,
					StartTime:       burst[0].StartTime,
					EndTime:         burst[len(burst)-1].EndTime,
					Category:        event.CategoryUnknown,
					Confidence:      event.ConfidenceAuto,
					SourceEventIDs:  flattenIDs(burst),
					RawSegmentCount: len(burst),
				})
				i += len(burst)
				continue
			}
		}

		// Rapid switches → "Micro-Distraction"
		if i < len(raw)-1 {
			next := raw[i+1]
			gap := next.StartTime - s.EndTime
			if gap < th.switchGap && s.Duration() < th.switchDuration {
				switches := collectRapidSwitches(raw, i, th)
				if len(switches) >= th.switchMinCount {
					merged = append(merged, MergedSegment{
						Label:           LabelMicro,
						StartTime:       switches[0].StartTime,
						EndTime:         switches[len(switches)-1].EndTime,
						Category:        event.CategoryDistraction,
						Confidence:      event.ConfidenceAuto,
						SourceEventIDs:  flattenIDs(switches),
						RawSegmentCount: len(switches),
					})
					i += len(switches)
					continue
				}
			}
		}

		// Long idle or rest → "Recovery Gap"
		if s.Activity == segment.ActivityIdle || s.Category == event.CategoryRest {
			if s.Duration() > th.recoveryMinDuration {
				merged = append(merged, MergedSegment{
					Label:           LabelRecovery,
					StartTime:       s.StartTime,
					EndTime:         s.EndTime,
					Category:        event.CategoryRest,
					Confidence:      s.Confidence,
					SourceEventIDs:  s.SourceEventIDs,
					RawSegmentCount: 1,
				})
				i++
				continue
			}
		}

		merged = append(merged, passthrough(s))
		i++
	}

	return merged
}

func passthrough(s segment.Segment) MergedSegment {
	return MergedSegment{
		Label:           s.Activity,
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		Category:        s.Category,
		Confidence:      s.Confidence,
		SourceEventIDs:  s.SourceEventIDs,
		RawSegmentCount: 1,
	}
}

func navigationIDSet(events []event.Event) map[string]bool {
	ids := make(map[string]bool)
	for _, e := range events {
		if e.Type == event.TypeNavigation {
			ids[e.ID] = true
		}
	}
	return ids
}

func isNavigationSegment(s segment.Segment, navigation map[string]bool) bool {
	for _, id := range s.SourceEventIDs {
		if navigation[id] {
			return true
		}
	}
	return false
}

// collectNavigationBurst greedily gathers contiguous navigation-sourced
// segments while the gap between consecutive ones stays within maxGap.
func collectNavigationBurst(raw []segment.Segment, start int, navigation map[string]bool, maxGap int64) []segment.Segment {
	var burst []segment.Segment
	i := start
	for i < len(raw) && isNavigationSegment(raw[i], navigation) {
		burst = append(burst, raw[i])
		i++
		if i < len(raw) {
			gap := raw[i].StartTime - raw[i-1].EndTime
			if gap > maxGap {
				break
			}
		}
	}
	return burst
}

// collectRapidSwitches extends the run while each following segment is both
// short and closely spaced.
func collectRapidSwitches(raw []segment.Segment, start int, th thresholds) []segment.Segment {
	switches := []segment.Segment{raw[start]}
	i := start + 1
	for i < len(raw) {
		gap := raw[i].StartTime - raw[i-1].EndTime
		if gap < th.switchGap && raw[i].Duration() < th.switchDuration {
			switches = append(switches, raw[i])
			i++
		} else {
			break
		}
	}
	return switches
}

func flattenIDs(segments []segment.Segment) []string {
	var ids []string
	for _, s := range segments {
		ids = append(ids, s.SourceEventIDs...)
	}
	return ids
}
