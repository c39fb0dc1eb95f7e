package segment

import (
	"time"

	"github.com/sgrant/omnitrace/internal/event"
)

// Segment is a derived, non-overlapping half-open time interval [StartTime,
// EndTime) labeled with one activity, one category, one confidence, and the
// ordered ids of the events that produced it. Segments are never stored; they
// are recomputed from the event log on demand.
type Segment struct {
	StartTime      int64             `json:"startTime"`
	EndTime        int64             `json:"endTime"`
	Activity       string            `json:"activity"`
	Category       event.Category    `json:"category"`
	Confidence     event.Confidence  `json:"confidence"`
	SourceEventIDs []string          `json:"sourceEventIds"`
}

// Duration returns the segment length in milliseconds.
func (s Segment) Duration() int64 {
	return s.EndTime - s.StartTime
}

// Activity labels assigned by the engine.
const (
	ActivityActive = "Active"
	ActivityIdle   = "Idle"
)

// Derive converts an event set into a sequence of non-overlapping segments.
// Input order does not matter: events are stably sorted by timestamp first.
// A manual event without an explicit duration and no successor extends to
// the current wall clock.
func Derive(events []event.Event) []Segment {
	return DeriveAt(events, time.Now().UnixMilli())
}

// DeriveAt is Derive with an explicit "now" for deterministic evaluation.
//
// The engine walks the sorted events once, keeping one open accumulation
// span. Manual titled events and idle transitions close the open span and
// start a new one; every other event either opens an "Active" span or joins
// the current one. The final open span is intentionally never flushed:
// callers must treat the trailing window as ongoing, not ended.
func DeriveAt(events []event.Event, now int64) []Segment {
	var segments []Segment
	sorted := event.SortedByTime(events)

	var (
		currentActivity   string
		currentCategory   = event.CategoryUnknown
		currentConfidence = event.ConfidenceAuto
		segmentStart      int64
		started           bool
		sourceIDs         []string
	)

	for i, e := range sorted {
		switch {
		case e.Type == event.TypeManualEvent && e.Title != "":
			if started && currentActivity != "" {
				segments = append(segments, Segment{
					StartTime:      segmentStart,
					EndTime:        e.Timestamp,
					Activity:       currentActivity,
					Category:       currentCategory,
					Confidence:     currentConfidence,
					SourceEventIDs: sourceIDs,
				})
			}

			endTime := now
			if e.Duration > 0 {
				endTime = e.Timestamp + e.Duration
			} else if i+1 < len(sorted) {
				endTime = sorted[i+1].Timestamp
			}
			category := e.Category
			if category == "" {
				category = event.CategoryUnknown
			}
			segments = append(segments, Segment{
				StartTime:      e.Timestamp,
				EndTime:        endTime,
				Activity:       e.Title,
				Category:       category,
				Confidence:     event.ConfidenceManual,
				SourceEventIDs: []string{e.ID},
			})

			segmentStart = endTime
			started = true
			currentActivity = ""
			sourceIDs = nil

		case e.Type == event.TypeIdleStart:
			if started && currentActivity != "" {
				segments = append(segments, Segment{
					StartTime:      segmentStart,
					EndTime:        e.Timestamp,
					Activity:       currentActivity,
					Category:       currentCategory,
					Confidence:     currentConfidence,
					SourceEventIDs: sourceIDs,
				})
			}
			segmentStart = e.Timestamp
			started = true
			currentActivity = ActivityIdle
			currentCategory = event.CategoryUnknown
			currentConfidence = event.ConfidenceAuto
			sourceIDs = []string{e.ID}

		case e.Type == event.TypeIdleEnd:
			if started {
				segments = append(segments, Segment{
					StartTime:      segmentStart,
					EndTime:        e.Timestamp,
					Activity:       ActivityIdle,
					Category:       event.CategoryUnknown,
					Confidence:     event.ConfidenceAuto,
					SourceEventIDs: sourceIDs,
				})
			}
			segmentStart = e.Timestamp
			started = true
			currentActivity = ActivityActive
			sourceIDs = []string{e.ID}

		default:
			if currentActivity == "" {
				currentActivity = ActivityActive
				segmentStart = e.Timestamp
				started = true
			}
			sourceIDs = append(sourceIDs, e.ID)
		}
	}

	return segments
}

// ActivityAt returns the first derived segment (in emission order) whose
// interval contains the timestamp, inclusive of both ends, or nil.
func ActivityAt(timestamp int64, events []event.Event) *Segment {
	segments := Derive(events)
	for i := range segments {
		if segments[i].StartTime <= timestamp && segments[i].EndTime >= timestamp {
			return &segments[i]
		}
	}
	return nil
}

// TotalDuration sums the lengths of all segments in milliseconds.
func TotalDuration(segments []Segment) int64 {
	var total int64
	for _, s := range segments {
		total += s.Duration()
	}
	return total
}

// FilterFocus returns the segments categorized as study or work.
func FilterFocus(segments []Segment) []Segment {
	var out []Segment
	for _, s := range segments {
		if s.Category.IsFocus() {
			out = append(out, s)
		}
	}
	return out
}
