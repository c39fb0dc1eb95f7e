package analytics

import (
	"github.com/sgrant/omnitrace/internal/event"
)

// Metrics holds aggregate timing counters computed from raw events.
type Metrics struct {
	TotalActiveTime     int64 `json:"totalActiveTime"`     // ms
	TotalBackgroundTime int64 `json:"totalBackgroundTime"` // ms
	TotalIdleTime       int64 `json:"totalIdleTime"`       // ms
	ContextSwitches     int   `json:"contextSwitches"`
	FocusDensity        float64 `json:"focusDensity"`
}

// ComputeMetrics accumulates active, background, and idle time plus context
// switches in a single pass over time-sorted events.
//
// Pairing is asymmetric and must stay that way: foreground→background pairs
// accumulate background time; an idle-start paired with the preceding
// idle-end accumulates active time; an idle-end paired with the next event
// of any type accumulates idle time. A context switch counts only when a
// navigation event's target screen differs from the last seen screen.
// Divide-by-zero policy: an all-zero denominator defaults to 1.
func ComputeMetrics(events []event.Event) Metrics {
	sorted := event.SortedByTime(events)

	var m Metrics
	var (
		lastForegroundTime int64
		haveForeground     bool
		lastIdleEndTime    int64
		haveIdleEnd        bool
		lastScreen         string
	)

	for i, e := range sorted {
		switch e.Type {
		case event.TypeForeground:
			lastForegroundTime = e.Timestamp
			haveForeground = true
		case event.TypeBackground:
			if haveForeground {
				m.TotalBackgroundTime += e.Timestamp - lastForegroundTime
				haveForeground = false
			}
		case event.TypeIdleStart:
			if haveIdleEnd {
				m.TotalActiveTime += e.Timestamp - lastIdleEndTime
			}
		case event.TypeIdleEnd:
			if i+1 < len(sorted) {
				m.TotalIdleTime += sorted[i+1].Timestamp - e.Timestamp
			}
			lastIdleEndTime = e.Timestamp
			haveIdleEnd = true
		case event.TypeNavigation:
			if lastScreen != "" && e.Context.ToScreen != lastScreen {
				m.ContextSwitches++
			}
			lastScreen = e.Context.ToScreen
		}
	}

	totalTime := m.TotalActiveTime + m.TotalIdleTime
	if totalTime == 0 {
		totalTime = 1
	}
	m.FocusDensity = float64(m.TotalActiveTime) / float64(totalTime)

	return m
}
