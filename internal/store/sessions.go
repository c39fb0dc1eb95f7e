package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sgrant/omnitrace/internal/event"
)

// AddSession inserts a new session record.
func (s *Store) AddSession(ctx context.Context, sess event.Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions(id, start_time, end_time, recovered) VALUES(?, ?, ?, ?)`,
		sess.ID, sess.StartTime, sess.EndTime, boolToInt(sess.Recovered))
	if err != nil {
		return fmt.Errorf("add session: %w", err)
	}
	return nil
}

// UpdateSession rewrites an existing session record. Sessions are the one
// mutable record kind; events never change.
func (s *Store) UpdateSession(ctx context.Context, sess event.Session) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET start_time = ?, end_time = ?, recovered = ? WHERE id = ?`,
		sess.StartTime, sess.EndTime, boolToInt(sess.Recovered), sess.ID)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// LastSession returns the most recently started session, or nil if none.
func (s *Store) LastSession(ctx context.Context) (*event.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, start_time, end_time, recovered FROM sessions ORDER BY start_time DESC LIMIT 1`)

	var (
		sess      event.Session
		recovered int
	)
	err := row.Scan(&sess.ID, &sess.StartTime, &sess.EndTime, &recovered)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last session: %w", err)
	}
	sess.Recovered = recovered != 0
	return &sess, nil
}

// AllSessions returns every session, oldest first.
func (s *Store) AllSessions(ctx context.Context) ([]event.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, start_time, end_time, recovered FROM sessions ORDER BY start_time ASC`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []event.Session
	for rows.Next() {
		var (
			sess      event.Session
			recovered int
		)
		if err := rows.Scan(&sess.ID, &sess.StartTime, &sess.EndTime, &recovered); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sess.Recovered = recovered != 0
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
