package analytics

import (
	"testing"
	"time"

	"github.com/sgrant/omnitrace/internal/event"
)

func TestComputeInsights_Empty(t *testing.T) {
	if got := ComputeInsights(nil); len(got) != 0 {
		t.Errorf("got %d insights from empty input, want 0", len(got))
	}
}

func TestComputeInsights_Full(t *testing.T) {
	t0 := time.Date(2026, 1, 5, 9, 0, 0, 0, time.Local).UnixMilli()

	events := []event.Event{
		manual("m1", "Coding", event.CategoryWork, t0, 30*60_000),
		manual("m2", "Coding", event.CategoryWork, t0+30*60_000, 10*60_000),
		nav("n1", t0+45*60_000, "stats"),
	}

	insights := ComputeInsights(events)
	byTitle := make(map[string]Insight)
	for _, ins := range insights {
		byTitle[ins.Title] = ins
	}

	if got := byTitle["Most Frequent Activity"].Value; got != "Coding (2 times)" {
		t.Errorf("Most Frequent Activity = %q", got)
	}
	if got := byTitle["Longest Focus Session"].Value; got != "30 minutes" {
		t.Errorf("Longest Focus Session = %q", got)
	}
	if got := byTitle["Context Switches"].Value; got != "1 switches" {
		t.Errorf("Context Switches = %q", got)
	}
	if got := byTitle["Peak Productivity Hour"].Value; got != "9:00 - 10:00" {
		t.Errorf("Peak Productivity Hour = %q", got)
	}
}

func TestComputeInsights_TieBreaksOnFirstSeen(t *testing.T) {
	t0 := time.Date(2026, 1, 5, 14, 0, 0, 0, time.Local).UnixMilli()

	// One segment each; the earlier activity wins the tie.
	events := []event.Event{
		manual("m1", "Reading", event.CategoryStudy, t0, 10*60_000),
		manual("m2", "Email", event.CategoryWork, t0+10*60_000, 10*60_000),
	}

	insights := ComputeInsights(events)
	if len(insights) == 0 {
		t.Fatal("no insights")
	}
	if insights[0].Value != "Reading (1 times)" {
		t.Errorf("Most Frequent Activity = %q, want first-seen winner", insights[0].Value)
	}
}
