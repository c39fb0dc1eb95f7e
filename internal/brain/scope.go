package brain

import (
	"context"
	"time"

	"github.com/sgrant/omnitrace/internal/event"
	"github.com/sgrant/omnitrace/internal/store"
)

// Scope is the context-memory time window the assistant answers from.
type Scope string

const (
	ScopeToday Scope = "today"
	ScopeWeek  Scope = "week"
	ScopeAll   Scope = "all"
)

// ParseScope maps free text to a scope, defaulting to today.
func ParseScope(s string) Scope {
	switch Scope(s) {
	case ScopeWeek:
		return ScopeWeek
	case ScopeAll:
		return ScopeAll
	default:
		return ScopeToday
	}
}

// TimeRange returns the scope's window in milliseconds. ok is false for the
// all-time scope, which has no bounds.
func (s Scope) TimeRange(now time.Time) (start, end int64, ok bool) {
	switch s {
	case ScopeToday:
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return dayStart.UnixMilli(), dayStart.Add(24 * time.Hour).UnixMilli(), true
	case ScopeWeek:
		weekAgo := now.AddDate(0, 0, -7)
		weekStart := time.Date(weekAgo.Year(), weekAgo.Month(), weekAgo.Day(), 0, 0, 0, 0, now.Location())
		return weekStart.UnixMilli(), now.UnixMilli(), true
	default:
		return 0, 0, false
	}
}

// LoadEvents reads the events covered by the scope from the store.
func (s Scope) LoadEvents(ctx context.Context, st *store.Store, now time.Time) ([]event.Event, error) {
	start, end, bounded := s.TimeRange(now)
	if !bounded {
		return st.AllEvents(ctx)
	}
	return st.EventsByRange(ctx, start, end)
}
