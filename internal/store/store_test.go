package store

import (
	"context"
	"testing"
	"time"

	"github.com/sgrant/omnitrace/internal/event"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendAndReadBack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	e := event.New(event.TypeNavigation, time.UnixMilli(42_000))
	e.Context.ToScreen = "stats"
	e.Title = "to stats"
	e.Keywords = []string{"nav"}

	if err := s.AppendEvent(ctx, e); err != nil {
		t.Fatalf("AppendEvent: %v", err)
	}

	events, err := s.AllEvents(ctx)
	if err != nil {
		t.Fatalf("AllEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}

	got := events[0]
	if got.ID != e.ID || got.Type != e.Type || got.Timestamp != 42_000 {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Context.ToScreen != "stats" {
		t.Errorf("Context.ToScreen = %q, want stats", got.Context.ToScreen)
	}
	if len(got.Keywords) != 1 || got.Keywords[0] != "nav" {
		t.Errorf("Keywords = %v", got.Keywords)
	}
}

func TestAppendEvents_Batch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	batch := []event.Event{
		event.New(event.TypeButtonClick, time.UnixMilli(1_000)),
		event.New(event.TypeIdleStart, time.UnixMilli(2_000)),
		event.New(event.TypeIdleEnd, time.UnixMilli(3_000)),
	}
	if err := s.AppendEvents(ctx, batch); err != nil {
		t.Fatalf("AppendEvents: %v", err)
	}

	n, err := s.EventCount(ctx)
	if err != nil {
		t.Fatalf("EventCount: %v", err)
	}
	if n != 3 {
		t.Errorf("EventCount = %d, want 3", n)
	}
}

func TestAppendEvents_DuplicateIDRollsBack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a := event.New(event.TypeButtonClick, time.UnixMilli(1_000))
	b := event.New(event.TypeButtonClick, time.UnixMilli(2_000))
	b.ID = a.ID

	if err := s.AppendEvents(ctx, []event.Event{a, b}); err == nil {
		t.Fatal("AppendEvents accepted a duplicate id")
	}

	n, err := s.EventCount(ctx)
	if err != nil {
		t.Fatalf("EventCount: %v", err)
	}
	if n != 0 {
		t.Errorf("EventCount = %d after failed batch, want 0 (no partial writes)", n)
	}
}

func TestEventsByRange_Inclusive(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, ts := range []int64{100, 200, 300, 400} {
		if err := s.AppendEvent(ctx, event.New(event.TypeButtonClick, time.UnixMilli(ts))); err != nil {
			t.Fatalf("AppendEvent: %v", err)
		}
	}

	events, err := s.EventsByRange(ctx, 200, 300)
	if err != nil {
		t.Fatalf("EventsByRange: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("got %d events, want 2 (both bounds inclusive)", len(events))
	}
}

func TestMetadata(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	md, err := s.Metadata(ctx)
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if md.SchemaVersion != event.SchemaVersion {
		t.Errorf("SchemaVersion = %q, want %q", md.SchemaVersion, event.SchemaVersion)
	}
	if md.EventCount != 0 {
		t.Errorf("EventCount = %d, want 0", md.EventCount)
	}
}

func TestWipe(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.AppendEvent(ctx, event.New(event.TypeButtonClick, time.UnixMilli(1_000))); err != nil {
		t.Fatalf("AppendEvent: %v", err)
	}
	if err := s.AddSession(ctx, event.Session{ID: "s1", StartTime: 1_000}); err != nil {
		t.Fatalf("AddSession: %v", err)
	}

	if err := s.Wipe(ctx); err != nil {
		t.Fatalf("Wipe: %v", err)
	}

	n, _ := s.EventCount(ctx)
	if n != 0 {
		t.Errorf("EventCount = %d after wipe, want 0", n)
	}
	last, err := s.LastSession(ctx)
	if err != nil {
		t.Fatalf("LastSession: %v", err)
	}
	if last != nil {
		t.Errorf("LastSession = %+v after wipe, want nil", last)
	}

	// Schema version is re-seeded so the wiped store stays usable.
	md, err := s.Metadata(ctx)
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if md.SchemaVersion != event.SchemaVersion {
		t.Errorf("SchemaVersion = %q after wipe", md.SchemaVersion)
	}
}

func TestSessions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if last, err := s.LastSession(ctx); err != nil || last != nil {
		t.Fatalf("LastSession on empty store = %+v, %v", last, err)
	}

	first := event.Session{ID: "s1", StartTime: 1_000, EndTime: 2_000}
	second := event.Session{ID: "s2", StartTime: 5_000}
	if err := s.AddSession(ctx, first); err != nil {
		t.Fatalf("AddSession: %v", err)
	}
	if err := s.AddSession(ctx, second); err != nil {
		t.Fatalf("AddSession: %v", err)
	}

	last, err := s.LastSession(ctx)
	if err != nil {
		t.Fatalf("LastSession: %v", err)
	}
	if last.ID != "s2" {
		t.Errorf("LastSession.ID = %q, want s2 (most recent start)", last.ID)
	}

	second.EndTime = 9_000
	second.Recovered = true
	if err := s.UpdateSession(ctx, second); err != nil {
		t.Fatalf("UpdateSession: %v", err)
	}

	all, err := s.AllSessions(ctx)
	if err != nil {
		t.Fatalf("AllSessions: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d sessions, want 2", len(all))
	}
	if all[0].ID != "s1" || all[1].ID != "s2" {
		t.Errorf("order = %q, %q, want oldest first", all[0].ID, all[1].ID)
	}
	if !all[1].Recovered || all[1].EndTime != 9_000 {
		t.Errorf("updated session = %+v", all[1])
	}
}
