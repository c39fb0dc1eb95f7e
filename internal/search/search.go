// Package search composes filters over the event log: keyword, category,
// confidence, duration, and time range.
package search

import (
	"context"
	"sort"
	"strings"

	"github.com/sgrant/omnitrace/internal/event"
	"github.com/sgrant/omnitrace/internal/store"
)

// Filters selects a subset of the event log. Zero values mean "no filter";
// time bounds and durations use the Has* flags to distinguish zero from
// unset.
type Filters struct {
	Keyword    string
	Category   event.Category
	Confidence event.Confidence

	StartTime int64
	EndTime   int64
	HasRange  bool

	MinDuration    int64
	HasMinDuration bool
	MaxDuration    int64
	HasMaxDuration bool
}

// Run reads the relevant window from the store and applies the remaining
// filters in memory. Results are sorted newest first.
func Run(ctx context.Context, st *store.Store, f Filters) ([]event.Event, error) {
	var (
		events []event.Event
		err    error
	)
	if f.HasRange {
		events, err = st.EventsByRange(ctx, f.StartTime, f.EndTime)
	} else {
		events, err = st.AllEvents(ctx)
	}
	if err != nil {
		return nil, err
	}

	events = Apply(events, f)

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp > events[j].Timestamp
	})
	return events, nil
}

// Apply filters an in-memory event slice without touching the store.
func Apply(events []event.Event, f Filters) []event.Event {
	out := events[:0:0]
	for _, e := range events {
		if f.Category != "" && e.Category != f.Category {
			continue
		}
		if f.Confidence != "" && e.Confidence != f.Confidence {
			continue
		}
		if f.Keyword != "" && !matchKeyword(e, f.Keyword) {
			continue
		}
		if f.HasMinDuration && e.Duration < f.MinDuration {
			continue
		}
		if f.HasMaxDuration && e.Duration > f.MaxDuration {
			continue
		}
		out = append(out, e)
	}
	return out
}

func matchKeyword(e event.Event, keyword string) bool {
	k := strings.ToLower(keyword)
	if strings.Contains(strings.ToLower(e.Title), k) {
		return true
	}
	for _, w := range e.Keywords {
		if strings.Contains(strings.ToLower(w), k) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(e.Note), k)
}

// FindNearest returns the stored event closest in time to the timestamp, or
// nil if the log is empty.
func FindNearest(ctx context.Context, st *store.Store, timestamp int64) (*event.Event, error) {
	events, err := st.AllEvents(ctx)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}

	nearest := events[0]
	for _, e := range events[1:] {
		if absDiff(e.Timestamp, timestamp) < absDiff(nearest.Timestamp, timestamp) {
			nearest = e
		}
	}
	return &nearest, nil
}

func absDiff(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}
