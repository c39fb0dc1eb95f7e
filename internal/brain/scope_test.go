package brain

import (
	"testing"
	"time"
)

func TestParseScope(t *testing.T) {
	cases := []struct {
		in   string
		want Scope
	}{
		{"today", ScopeToday},
		{"week", ScopeWeek},
		{"all", ScopeAll},
		{"", ScopeToday},
		{"yesterday", ScopeToday},
	}
	for _, tc := range cases {
		if got := ParseScope(tc.in); got != tc.want {
			t.Errorf("ParseScope(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestScopeTimeRange_Today(t *testing.T) {
	now := time.Date(2026, 1, 5, 14, 30, 0, 0, time.Local)
	start, end, ok := ScopeToday.TimeRange(now)
	if !ok {
		t.Fatal("ok = false, want bounded range")
	}

	wantStart := time.Date(2026, 1, 5, 0, 0, 0, 0, time.Local).UnixMilli()
	if start != wantStart {
		t.Errorf("start = %d, want midnight %d", start, wantStart)
	}
	if end != wantStart+24*3_600_000 {
		t.Errorf("end = %d, want next midnight", end)
	}
}

func TestScopeTimeRange_Week(t *testing.T) {
	now := time.Date(2026, 1, 8, 10, 0, 0, 0, time.Local)
	start, end, ok := ScopeWeek.TimeRange(now)
	if !ok {
		t.Fatal("ok = false, want bounded range")
	}

	wantStart := time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local).UnixMilli()
	if start != wantStart {
		t.Errorf("start = %d, want %d (midnight seven days back)", start, wantStart)
	}
	if end != now.UnixMilli() {
		t.Errorf("end = %d, want now", end)
	}
}

func TestScopeTimeRange_All(t *testing.T) {
	if _, _, ok := ScopeAll.TimeRange(time.Now()); ok {
		t.Error("ok = true, want unbounded")
	}
}
