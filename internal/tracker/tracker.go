// Package tracker holds the session lifecycle and idle detection state
// machines. Both take an injected clock and event sink so transitions are
// deterministic under test; neither owns a timer.
package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/sgrant/omnitrace/internal/event"
)

// Sink receives the events a tracker emits. The store satisfies it.
type Sink interface {
	AppendEvent(ctx context.Context, e event.Event) error
}

// SessionStore is the session persistence surface the tracker needs.
type SessionStore interface {
	Sink
	AddSession(ctx context.Context, s event.Session) error
	UpdateSession(ctx context.Context, s event.Session) error
}

// SessionTracker manages one device-usage session at a time and emits
// session and visibility boundary events.
type SessionTracker struct {
	store   SessionStore
	clock   func() time.Time
	current *event.Session
	visible bool
}

// NewSessionTracker builds a tracker around the given store and clock. A
// nil clock means time.Now.
func NewSessionTracker(store SessionStore, clock func() time.Time) *SessionTracker {
	if clock == nil {
		clock = time.Now
	}
	return &SessionTracker{store: store, clock: clock, visible: true}
}

// Current returns the open session, or nil.
func (t *SessionTracker) Current() *event.Session {
	return t.current
}

// Start opens a new session and appends a session_start event.
func (t *SessionTracker) Start(ctx context.Context) error {
	now := t.clock()
	sess := event.Session{
		ID:        fmt.Sprintf("session-%d", now.UnixMilli()),
		StartTime: now.UnixMilli(),
	}
	if err := t.store.AddSession(ctx, sess); err != nil {
		return err
	}
	t.current = &sess

	e := event.New(event.TypeSessionStart, now)
	e.Context.State = map[string]any{"sessionId": sess.ID}
	return t.store.AppendEvent(ctx, e)
}

// End closes the open session and appends a session_end event. A no-op when
// no session is open.
func (t *SessionTracker) End(ctx context.Context) error {
	if t.current == nil {
		return nil
	}
	now := t.clock()
	t.current.EndTime = now.UnixMilli()
	if err := t.store.UpdateSession(ctx, *t.current); err != nil {
		return err
	}

	e := event.New(event.TypeSessionEnd, now)
	e.Context.State = map[string]any{"sessionId": t.current.ID}
	t.current = nil
	return t.store.AppendEvent(ctx, e)
}

// SetVisible records a visibility transition, emitting foreground or
// background events on edges only.
func (t *SessionTracker) SetVisible(ctx context.Context, visible bool) error {
	if visible == t.visible {
		return nil
	}
	t.visible = visible

	typ := event.TypeBackground
	if visible {
		typ = event.TypeForeground
	}
	return t.store.AppendEvent(ctx, event.New(typ, t.clock()))
}

// IdleDetector tracks the idle/active boundary. Callers feed it activity
// signals and clock ticks; it emits idle_start when the idle threshold is
// crossed and idle_end on the next activity.
type IdleDetector struct {
	sink         Sink
	clock        func() time.Time
	idleTimeout  time.Duration
	lastActivity time.Time
	idle         bool
}

// DefaultIdleTimeout matches the product's one-minute idle threshold.
const DefaultIdleTimeout = time.Minute

// NewIdleDetector builds a detector. A nil clock means time.Now; a zero
// timeout means DefaultIdleTimeout.
func NewIdleDetector(sink Sink, timeout time.Duration, clock func() time.Time) *IdleDetector {
	if clock == nil {
		clock = time.Now
	}
	if timeout <= 0 {
		timeout = DefaultIdleTimeout
	}
	return &IdleDetector{
		sink:         sink,
		clock:        clock,
		idleTimeout:  timeout,
		lastActivity: clock(),
	}
}

// IsIdle reports the current state.
func (d *IdleDetector) IsIdle() bool {
	return d.idle
}

// Touch records a user-activity signal. Leaving the idle state emits an
// idle_end event.
func (d *IdleDetector) Touch(ctx context.Context) error {
	now := d.clock()
	d.lastActivity = now
	if !d.idle {
		return nil
	}
	d.idle = false
	return d.sink.AppendEvent(ctx, event.New(event.TypeIdleEnd, now))
}

// Tick evaluates the idle threshold against the clock. Crossing into idle
// emits an idle_start event stamped at the moment the threshold elapsed.
func (d *IdleDetector) Tick(ctx context.Context) error {
	if d.idle {
		return nil
	}
	now := d.clock()
	if now.Sub(d.lastActivity) < d.idleTimeout {
		return nil
	}
	d.idle = true
	return d.sink.AppendEvent(ctx, event.New(event.TypeIdleStart, d.lastActivity.Add(d.idleTimeout)))
}
