// Package export writes full snapshots of the local store for backup or
// inspection. JSON carries everything; CSV is a flat event table for
// spreadsheets. Either can be zstd-compressed.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/sgrant/omnitrace/internal/event"
)

// Format selects the export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat maps free text to a format, defaulting to JSON.
func ParseFormat(s string) Format {
	if Format(strings.ToLower(s)) == FormatCSV {
		return FormatCSV
	}
	return FormatJSON
}

// Source is the store surface an export reads from.
type Source interface {
	AllEvents(ctx context.Context) ([]event.Event, error)
	AllSessions(ctx context.Context) ([]event.Session, error)
	Metadata(ctx context.Context) (event.Metadata, error)
}

// Snapshot is the JSON export envelope.
type Snapshot struct {
	SchemaVersion string          `json:"schemaVersion"`
	ExportTime    int64           `json:"exportTime"`
	Events        []event.Event   `json:"events"`
	Sessions      []event.Session `json:"sessions"`
	Metadata      event.Metadata  `json:"metadata"`
}

// Options controls an export run.
type Options struct {
	Format   Format
	Compress bool
}

// Path returns the output filename for the given options and timestamp.
func Path(opts Options, now time.Time) string {
	name := fmt.Sprintf("omnitrace-export-%s.%s", now.Format("2006-01-02-150405"), opts.Format)
	if opts.Compress {
		name += ".zst"
	}
	return name
}

// Run reads the full store contents and writes them to destPath.
func Run(ctx context.Context, src Source, destPath string, opts Options, now time.Time) error {
	snap, err := collect(ctx, src, now)
	if err != nil {
		return err
	}

	dest, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	defer dest.Close()

	var w io.Writer = dest
	var encoder *zstd.Encoder
	if opts.Compress {
		encoder, err = zstd.NewWriter(dest)
		if err != nil {
			return fmt.Errorf("create zstd encoder: %w", err)
		}
		w = encoder
	}

	if opts.Format == FormatCSV {
		err = writeCSV(w, snap.Events)
	} else {
		err = writeJSON(w, snap)
	}
	if err != nil {
		if encoder != nil {
			encoder.Close()
		}
		return err
	}

	if encoder != nil {
		if err := encoder.Close(); err != nil {
			return fmt.Errorf("finalize compression: %w", err)
		}
	}
	return nil
}

func collect(ctx context.Context, src Source, now time.Time) (Snapshot, error) {
	events, err := src.AllEvents(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read events: %w", err)
	}
	sessions, err := src.AllSessions(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read sessions: %w", err)
	}
	meta, err := src.Metadata(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read metadata: %w", err)
	}
	return Snapshot{
		SchemaVersion: event.SchemaVersion,
		ExportTime:    now.UnixMilli(),
		Events:        events,
		Sessions:      sessions,
		Metadata:      meta,
	}, nil
}

func writeJSON(w io.Writer, snap Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// csvColumns is the fixed CSV header. Every field is double-quoted so titles
// and notes containing commas survive round trips.
var csvColumns = []string{"ID", "Type", "Timestamp", "Title", "Category", "Confidence", "Duration", "Note"}

func writeCSV(w io.Writer, events []event.Event) error {
	if err := writeCSVRow(w, csvColumns); err != nil {
		return err
	}
	for _, e := range events {
		row := []string{
			e.ID,
			string(e.Type),
			time.UnixMilli(e.Timestamp).UTC().Format(time.RFC3339),
			e.Title,
			string(e.Category),
			string(e.Confidence),
			fmt.Sprintf("%d", e.Duration),
			e.Note,
		}
		if err := writeCSVRow(w, row); err != nil {
			return err
		}
	}
	return nil
}

func writeCSVRow(w io.Writer, fields []string) error {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	if _, err := fmt.Fprintln(w, strings.Join(quoted, ",")); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
