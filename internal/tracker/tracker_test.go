package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/sgrant/omnitrace/internal/event"
)

// fakeStore records everything the trackers emit.
type fakeStore struct {
	events   []event.Event
	sessions map[string]event.Session
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: make(map[string]event.Session)}
}

func (f *fakeStore) AppendEvent(_ context.Context, e event.Event) error {
	f.events = append(f.events, e)
	return nil
}

func (f *fakeStore) AddSession(_ context.Context, s event.Session) error {
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeStore) UpdateSession(_ context.Context, s event.Session) error {
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeStore) LastSession(context.Context) (*event.Session, error) {
	var last *event.Session
	for id := range f.sessions {
		s := f.sessions[id]
		if last == nil || s.StartTime > last.StartTime {
			last = &s
		}
	}
	return last, nil
}

func (f *fakeStore) types() []event.Type {
	out := make([]event.Type, len(f.events))
	for i, e := range f.events {
		out[i] = e.Type
	}
	return out
}

// fakeClock advances only when told to.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestSessionTracker_Lifecycle(t *testing.T) {
	store := newFakeStore()
	clock := &fakeClock{now: time.UnixMilli(1_000)}
	tr := NewSessionTracker(store, clock.Now)
	ctx := context.Background()

	if tr.Current() != nil {
		t.Fatal("Current != nil before Start")
	}

	if err := tr.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	sess := tr.Current()
	if sess == nil {
		t.Fatal("Current = nil after Start")
	}
	if sess.ID != "session-1000" {
		t.Errorf("session id = %q, want session-1000", sess.ID)
	}
	if sess.StartTime != 1_000 {
		t.Errorf("StartTime = %d, want 1000", sess.StartTime)
	}

	clock.Advance(30 * time.Second)
	if err := tr.End(ctx); err != nil {
		t.Fatalf("End: %v", err)
	}
	if tr.Current() != nil {
		t.Error("Current != nil after End")
	}

	stored := store.sessions["session-1000"]
	if stored.EndTime != 31_000 {
		t.Errorf("stored EndTime = %d, want 31000", stored.EndTime)
	}

	want := []event.Type{event.TypeSessionStart, event.TypeSessionEnd}
	got := store.types()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("emitted events = %v, want %v", got, want)
	}
}

func TestSessionTracker_EndWithoutStart(t *testing.T) {
	store := newFakeStore()
	tr := NewSessionTracker(store, nil)

	if err := tr.End(context.Background()); err != nil {
		t.Fatalf("End: %v", err)
	}
	if len(store.events) != 0 {
		t.Errorf("emitted %d events, want 0", len(store.events))
	}
}

func TestSessionTracker_VisibilityEdges(t *testing.T) {
	store := newFakeStore()
	clock := &fakeClock{now: time.UnixMilli(0)}
	tr := NewSessionTracker(store, clock.Now)
	ctx := context.Background()

	// Already visible: no event.
	if err := tr.SetVisible(ctx, true); err != nil {
		t.Fatalf("SetVisible: %v", err)
	}
	if len(store.events) != 0 {
		t.Fatalf("repeated state emitted %d events", len(store.events))
	}

	if err := tr.SetVisible(ctx, false); err != nil {
		t.Fatalf("SetVisible: %v", err)
	}
	if err := tr.SetVisible(ctx, false); err != nil {
		t.Fatalf("SetVisible: %v", err)
	}
	if err := tr.SetVisible(ctx, true); err != nil {
		t.Fatalf("SetVisible: %v", err)
	}

	want := []event.Type{event.TypeBackground, event.TypeForeground}
	got := store.types()
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("emitted events = %v, want %v", got, want)
	}
}

func TestIdleDetector_ThresholdCrossing(t *testing.T) {
	store := newFakeStore()
	clock := &fakeClock{now: time.UnixMilli(0)}
	d := NewIdleDetector(store, time.Minute, clock.Now)
	ctx := context.Background()

	// Under the threshold nothing fires.
	clock.Advance(30 * time.Second)
	if err := d.Tick(ctx); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if d.IsIdle() || len(store.events) != 0 {
		t.Fatal("went idle before the threshold")
	}

	clock.Advance(40 * time.Second)
	if err := d.Tick(ctx); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if !d.IsIdle() {
		t.Fatal("not idle after threshold elapsed")
	}
	if len(store.events) != 1 || store.events[0].Type != event.TypeIdleStart {
		t.Fatalf("events = %v, want one idle_start", store.types())
	}
	// idle_start is stamped at the moment the threshold elapsed, not at
	// the tick that observed it.
	if store.events[0].Timestamp != 60_000 {
		t.Errorf("idle_start timestamp = %d, want 60000", store.events[0].Timestamp)
	}

	// Repeated ticks while idle stay silent.
	clock.Advance(time.Minute)
	if err := d.Tick(ctx); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if len(store.events) != 1 {
		t.Fatalf("idle re-emitted: %v", store.types())
	}

	// Activity ends the idle period.
	if err := d.Touch(ctx); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	if d.IsIdle() {
		t.Error("still idle after Touch")
	}
	if len(store.events) != 2 || store.events[1].Type != event.TypeIdleEnd {
		t.Errorf("events = %v, want idle_start then idle_end", store.types())
	}
}

func TestIdleDetector_TouchWhileActiveIsSilent(t *testing.T) {
	store := newFakeStore()
	clock := &fakeClock{now: time.UnixMilli(0)}
	d := NewIdleDetector(store, time.Minute, clock.Now)

	if err := d.Touch(context.Background()); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	if len(store.events) != 0 {
		t.Errorf("Touch while active emitted %d events", len(store.events))
	}
}

func TestRecover_ClosesUnfinishedSession(t *testing.T) {
	store := newFakeStore()
	store.sessions["s1"] = event.Session{ID: "s1", StartTime: 1_000}
	clock := &fakeClock{now: time.UnixMilli(50_000)}

	recovered, err := Recover(context.Background(), store, clock.Now)
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if recovered == nil {
		t.Fatal("recovered = nil, want session")
	}
	if !recovered.Recovered || recovered.EndTime != 50_000 {
		t.Errorf("recovered = %+v", recovered)
	}

	stored := store.sessions["s1"]
	if !stored.Recovered || stored.EndTime != 50_000 {
		t.Errorf("stored session = %+v", stored)
	}

	if len(store.events) != 1 {
		t.Fatalf("emitted %d events, want 1 recovery event", len(store.events))
	}
	e := store.events[0]
	if e.Type != event.TypeRecovery || e.Title != "Session recovered" {
		t.Errorf("recovery event = %+v", e)
	}
	if e.Context.State["sessionId"] != "s1" {
		t.Errorf("State = %v, want sessionId s1", e.Context.State)
	}
}

func TestRecover_CleanShutdownIsNoOp(t *testing.T) {
	store := newFakeStore()
	store.sessions["s1"] = event.Session{ID: "s1", StartTime: 1_000, EndTime: 2_000}

	recovered, err := Recover(context.Background(), store, nil)
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if recovered != nil {
		t.Errorf("recovered = %+v, want nil", recovered)
	}
	if len(store.events) != 0 {
		t.Errorf("emitted %d events, want 0", len(store.events))
	}
}

func TestRecover_EmptyStore(t *testing.T) {
	recovered, err := Recover(context.Background(), newFakeStore(), nil)
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if recovered != nil {
		t.Errorf("recovered = %+v, want nil", recovered)
	}
}
