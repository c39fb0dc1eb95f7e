// Package forensic reconstructs an auditable view over an arbitrary time
// window: raw events, derived segments, merged segments, and every
// unsegmented gap. Gaps are surfaced explicitly, never silently dropped.
package forensic

import (
	"context"
	"sort"

	"github.com/sgrant/omnitrace/internal/event"
	"github.com/sgrant/omnitrace/internal/merge"
	"github.com/sgrant/omnitrace/internal/segment"
	"github.com/sgrant/omnitrace/internal/store"
)

// Gap is a stretch of time not covered by any derived segment.
type Gap struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// Reconstruction is the complete forensic view of a time window.
type Reconstruction struct {
	RawEvents      []event.Event         `json:"rawEvents"`
	Segments       []segment.Segment     `json:"segments"`
	MergedSegments []merge.MergedSegment `json:"mergedSegments"`
	Gaps           []Gap                 `json:"gaps"`
}

// Reconstruct reads the window's events and composes segmentation, merging,
// and gap detection. Segments are returned sorted by start time; the merged
// view uses the given cognitive mode's thresholds.
func Reconstruct(ctx context.Context, st *store.Store, startTime, endTime int64, mode merge.Mode) (*Reconstruction, error) {
	events, err := st.EventsByRange(ctx, startTime, endTime)
	if err != nil {
		return nil, err
	}
	return Build(events, mode), nil
}

// Build computes the forensic view from an in-memory event set.
func Build(events []event.Event, mode merge.Mode) *Reconstruction {
	segments := segment.Derive(events)
	mergedSegments := merge.Segments(events, mode)

	sorted := make([]segment.Segment, len(segments))
	copy(sorted, segments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime < sorted[j].StartTime
	})

	var gaps []Gap
	for i := 0; i+1 < len(sorted); i++ {
		if sorted[i+1].StartTime > sorted[i].EndTime {
			gaps = append(gaps, Gap{Start: sorted[i].EndTime, End: sorted[i+1].StartTime})
		}
	}

	return &Reconstruction{
		RawEvents:      events,
		Segments:       sorted,
		MergedSegments: mergedSegments,
		Gaps:           gaps,
	}
}
