package tracker

import (
	"context"
	"time"

	"github.com/sgrant/omnitrace/internal/event"
)

// RecoveryStore is the persistence surface startup recovery needs.
type RecoveryStore interface {
	SessionStore
	LastSession(ctx context.Context) (*event.Session, error)
}

// Recover closes an unclosed previous session at startup, marking it
// recovered and appending a recovery event. Returns the recovered session,
// or nil when the last session ended cleanly.
func Recover(ctx context.Context, store RecoveryStore, clock func() time.Time) (*event.Session, error) {
	if clock == nil {
		clock = time.Now
	}

	last, err := store.LastSession(ctx)
	if err != nil {
		return nil, err
	}
	if last == nil || last.EndTime != 0 {
		return nil, nil
	}

	now := clock()
	last.EndTime = now.UnixMilli()
	last.Recovered = true
	if err := store.UpdateSession(ctx, *last); err != nil {
		return nil, err
	}

	e := event.New(event.TypeRecovery, now)
	e.Title = "Session recovered"
	e.Context.State = map[string]any{
		"reason":    "unclosed_session",
		"sessionId": last.ID,
	}
	if err := store.AppendEvent(ctx, e); err != nil {
		return nil, err
	}
	return last, nil
}
