package search

import (
	"testing"
	"time"

	"github.com/sgrant/omnitrace/internal/event"
)

func sample() []event.Event {
	return []event.Event{
		{
			ID: "1", Type: event.TypeManualEvent, Timestamp: 1000,
			Title: "Reading papers", Category: event.CategoryStudy,
			Confidence: event.ConfidenceManual, Duration: 20 * 60_000,
			Keywords: []string{"research"},
		},
		{
			ID: "2", Type: event.TypeIdleStart, Timestamp: 2000,
			Title: "", Confidence: event.ConfidenceAuto,
		},
		{
			ID: "3", Type: event.TypeManualEvent, Timestamp: 3000,
			Title: "Idle stretch", Category: event.CategoryRest,
			Confidence: event.ConfidenceManual, Duration: 30 * 60_000,
			Note: "long break",
		},
	}
}

func TestApply_Keyword(t *testing.T) {
	got := Apply(sample(), Filters{Keyword: "idle"})
	if len(got) != 1 || got[0].ID != "3" {
		t.Errorf("got %v, want only event 3 (title match)", ids(got))
	}

	got = Apply(sample(), Filters{Keyword: "research"})
	if len(got) != 1 || got[0].ID != "1" {
		t.Errorf("got %v, want only event 1 (keyword-list match)", ids(got))
	}

	got = Apply(sample(), Filters{Keyword: "break"})
	if len(got) != 1 || got[0].ID != "3" {
		t.Errorf("got %v, want only event 3 (note match)", ids(got))
	}
}

func TestApply_CategoryAndConfidence(t *testing.T) {
	got := Apply(sample(), Filters{Category: event.CategoryStudy})
	if len(got) != 1 || got[0].ID != "1" {
		t.Errorf("category filter: got %v", ids(got))
	}

	got = Apply(sample(), Filters{Confidence: event.ConfidenceManual})
	if len(got) != 2 {
		t.Errorf("confidence filter: got %v, want 2 manual events", ids(got))
	}
}

func TestApply_DurationBounds(t *testing.T) {
	got := Apply(sample(), Filters{MinDuration: 25 * 60_000, HasMinDuration: true})
	if len(got) != 1 || got[0].ID != "3" {
		t.Errorf("min duration: got %v", ids(got))
	}

	got = Apply(sample(), Filters{MaxDuration: 25 * 60_000, HasMaxDuration: true})
	// Events without a duration pass a max-duration filter.
	if len(got) != 2 {
		t.Errorf("max duration: got %v, want events 1 and 2", ids(got))
	}
}

func TestApply_NoFilters(t *testing.T) {
	if got := Apply(sample(), Filters{}); len(got) != 3 {
		t.Errorf("got %d events, want all 3", len(got))
	}
}

func TestPresets(t *testing.T) {
	now := time.Date(2026, 1, 5, 14, 0, 0, 0, time.Local)
	presets := Presets(now)
	if len(presets) != 3 {
		t.Fatalf("got %d presets, want 3", len(presets))
	}

	byName := make(map[string]Preset)
	for _, p := range presets {
		byName[p.Name] = p
	}

	idle := byName["Long Idle Periods"]
	if idle.Filters.Keyword != "idle" || !idle.Filters.HasMinDuration || idle.Filters.MinDuration != 15*60_000 {
		t.Errorf("Long Idle Periods filters = %+v", idle.Filters)
	}

	if byName["Manual Events"].Filters.Confidence != event.ConfidenceManual {
		t.Errorf("Manual Events filters = %+v", byName["Manual Events"].Filters)
	}

	today := byName["Today"]
	wantStart := time.Date(2026, 1, 5, 0, 0, 0, 0, time.Local).UnixMilli()
	if !today.Filters.HasRange || today.Filters.StartTime != wantStart {
		t.Errorf("Today filters = %+v", today.Filters)
	}
	if today.Filters.EndTime != wantStart+24*3_600_000-1 {
		t.Errorf("Today end = %d, want inclusive end of day", today.Filters.EndTime)
	}
}

func ids(events []event.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}
