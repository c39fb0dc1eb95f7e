// Package store is the durable append-only event log. Events are immutable
// once appended; the analytical core only ever reads them back. Ordering is
// not guaranteed on read — the segmentation engine sorts independently.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/sgrant/omnitrace/internal/event"
)

// Store wraps the SQLite database holding events, sessions, and metadata.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id         TEXT PRIMARY KEY,
	type       TEXT NOT NULL,
	timestamp  INTEGER NOT NULL,
	context    TEXT NOT NULL DEFAULT '{}',
	duration   INTEGER NOT NULL DEFAULT 0,
	category   TEXT NOT NULL DEFAULT '',
	confidence TEXT NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	keywords   TEXT NOT NULL DEFAULT '[]',
	note       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events(timestamp);

CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	start_time INTEGER NOT NULL,
	end_time   INTEGER NOT NULL DEFAULT 0,
	recovered  INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS metadata (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Open opens or creates the event log database at dir/omnitrace.db.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(dir, "omnitrace.db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchemaVersion(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path (watched by the live refresh loop).
func (s *Store) Path() string {
	return s.path
}

func (s *Store) ensureSchemaVersion() error {
	_, err := s.db.Exec(
		`INSERT INTO metadata(key, value) VALUES('schema_version', ?)
		 ON CONFLICT(key) DO NOTHING`, event.SchemaVersion)
	if err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	return nil
}

// AppendEvent durably appends one immutable event.
func (s *Store) AppendEvent(ctx context.Context, e event.Event) error {
	contextJSON, err := json.Marshal(e.Context)
	if err != nil {
		return fmt.Errorf("marshal context: %w", err)
	}
	keywords := e.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	keywordsJSON, err := json.Marshal(keywords)
	if err != nil {
		return fmt.Errorf("marshal keywords: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO events(id, type, timestamp, context, duration, category, confidence, title, keywords, note)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.Type), e.Timestamp, string(contextJSON), e.Duration,
		string(e.Category), string(e.Confidence), e.Title, string(keywordsJSON), e.Note)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// AppendEvents appends a batch of events in one transaction. The caller sees
// success or an error, never partial application.
func (s *Store) AppendEvents(ctx context.Context, events []event.Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO events(id, type, timestamp, context, duration, category, confidence, title, keywords, note)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare append: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		contextJSON, err := json.Marshal(e.Context)
		if err != nil {
			return fmt.Errorf("marshal context: %w", err)
		}
		keywords := e.Keywords
		if keywords == nil {
			keywords = []string{}
		}
		keywordsJSON, err := json.Marshal(keywords)
		if err != nil {
			return fmt.Errorf("marshal keywords: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			e.ID, string(e.Type), e.Timestamp, string(contextJSON), e.Duration,
			string(e.Category), string(e.Confidence), e.Title, string(keywordsJSON), e.Note); err != nil {
			return fmt.Errorf("append event %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

// AllEvents reads every stored event. Order is arbitrary.
func (s *Store) AllEvents(ctx context.Context) ([]event.Event, error) {
	return s.queryEvents(ctx, `SELECT id, type, timestamp, context, duration, category, confidence, title, keywords, note FROM events`)
}

// EventsByRange reads events with start <= timestamp <= end. Order is
// arbitrary.
func (s *Store) EventsByRange(ctx context.Context, start, end int64) ([]event.Event, error) {
	return s.queryEvents(ctx,
		`SELECT id, type, timestamp, context, duration, category, confidence, title, keywords, note
		 FROM events WHERE timestamp >= ? AND timestamp <= ?`, start, end)
}

func (s *Store) queryEvents(ctx context.Context, query string, args ...any) ([]event.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []event.Event
	for rows.Next() {
		var (
			e            event.Event
			typ          string
			category     string
			confidence   string
			contextJSON  string
			keywordsJSON string
		)
		if err := rows.Scan(&e.ID, &typ, &e.Timestamp, &contextJSON, &e.Duration,
			&category, &confidence, &e.Title, &keywordsJSON, &e.Note); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Type = event.Type(typ)
		e.Category = event.Category(category)
		e.Confidence = event.Confidence(confidence)
		// Malformed payloads degrade to empty, never fail the read
		_ = json.Unmarshal([]byte(contextJSON), &e.Context)
		_ = json.Unmarshal([]byte(keywordsJSON), &e.Keywords)
		if len(e.Keywords) == 0 {
			e.Keywords = nil
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// EventCount returns the number of stored events.
func (s *Store) EventCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

// Metadata returns the stored log metadata.
func (s *Store) Metadata(ctx context.Context) (event.Metadata, error) {
	count, err := s.EventCount(ctx)
	if err != nil {
		return event.Metadata{}, err
	}
	md := event.Metadata{SchemaVersion: event.SchemaVersion, EventCount: count}

	var version string
	err = s.db.QueryRowContext(ctx,
		`SELECT value FROM metadata WHERE key = 'schema_version'`).Scan(&version)
	if err == nil {
		md.SchemaVersion = version
	} else if err != sql.ErrNoRows {
		return event.Metadata{}, fmt.Errorf("read schema version: %w", err)
	}
	return md, nil
}

// Wipe deletes all events, sessions, and metadata in one transaction. An
// append can never interleave with a wipe.
func (s *Store) Wipe(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin wipe: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM events`,
		`DELETE FROM sessions`,
		`DELETE FROM metadata`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("wipe: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit wipe: %w", err)
	}
	return s.ensureSchemaVersion()
}
