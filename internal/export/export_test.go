package export

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/sgrant/omnitrace/internal/event"
)

type fakeSource struct {
	events   []event.Event
	sessions []event.Session
}

func (f *fakeSource) AllEvents(context.Context) ([]event.Event, error)     { return f.events, nil }
func (f *fakeSource) AllSessions(context.Context) ([]event.Session, error) { return f.sessions, nil }
func (f *fakeSource) Metadata(context.Context) (event.Metadata, error) {
	return event.Metadata{SchemaVersion: event.SchemaVersion, EventCount: len(f.events)}, nil
}

func sampleSource() *fakeSource {
	return &fakeSource{
		events: []event.Event{
			{
				ID: "e1", Type: event.TypeManualEvent, Timestamp: 60_000,
				Duration: 600_000, Category: event.CategoryWork,
				Confidence: event.ConfidenceManual, Title: `Writing "notes", drafts`,
			},
			{
				ID: "e2", Type: event.TypeIdleStart, Timestamp: 120_000,
				Confidence: event.ConfidenceAuto,
			},
		},
		sessions: []event.Session{{ID: "s1", StartTime: 1_000, EndTime: 2_000}},
	}
}

func TestParseFormat(t *testing.T) {
	if got := ParseFormat("csv"); got != FormatCSV {
		t.Errorf("ParseFormat(csv) = %q", got)
	}
	if got := ParseFormat("CSV"); got != FormatCSV {
		t.Errorf("ParseFormat(CSV) = %q", got)
	}
	if got := ParseFormat(""); got != FormatJSON {
		t.Errorf("ParseFormat(\"\") = %q, want json default", got)
	}
}

func TestPath(t *testing.T) {
	now := time.Date(2026, 1, 5, 14, 30, 45, 0, time.UTC)

	if got := Path(Options{Format: FormatJSON}, now); got != "omnitrace-export-2026-01-05-143045.json" {
		t.Errorf("Path = %q", got)
	}
	if got := Path(Options{Format: FormatCSV, Compress: true}, now); got != "omnitrace-export-2026-01-05-143045.csv.zst" {
		t.Errorf("Path = %q", got)
	}
}

func TestRun_JSON(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.json")
	now := time.UnixMilli(999_000)

	if err := Run(context.Background(), sampleSource(), dest, Options{Format: FormatJSON}, now); err != nil {
		t.Fatalf("Run: %v", err)
	}

	raw, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if snap.SchemaVersion != event.SchemaVersion {
		t.Errorf("SchemaVersion = %q", snap.SchemaVersion)
	}
	if snap.ExportTime != 999_000 {
		t.Errorf("ExportTime = %d", snap.ExportTime)
	}
	if len(snap.Events) != 2 || len(snap.Sessions) != 1 {
		t.Errorf("events = %d, sessions = %d", len(snap.Events), len(snap.Sessions))
	}
	if snap.Metadata.EventCount != 2 {
		t.Errorf("Metadata.EventCount = %d", snap.Metadata.EventCount)
	}
}

func TestRun_CSV(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.csv")

	if err := Run(context.Background(), sampleSource(), dest, Options{Format: FormatCSV}, time.UnixMilli(0)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	raw, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")

	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header plus 2 rows", len(lines))
	}
	if lines[0] != `"ID","Type","Timestamp","Title","Category","Confidence","Duration","Note"` {
		t.Errorf("header = %s", lines[0])
	}
	// Embedded quotes are doubled, timestamps are RFC 3339 UTC.
	if !strings.Contains(lines[1], `"Writing ""notes"", drafts"`) {
		t.Errorf("row = %s", lines[1])
	}
	if !strings.Contains(lines[1], `"1970-01-01T00:01:00Z"`) {
		t.Errorf("row = %s, want RFC 3339 timestamp", lines[1])
	}
}

func TestRun_Compressed(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.json.zst")

	err := Run(context.Background(), sampleSource(), dest, Options{Format: FormatJSON, Compress: true}, time.UnixMilli(0))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	f, err := os.Open(dest)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer dec.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, dec); err != nil {
		t.Fatalf("decompress: %v", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(buf.Bytes(), &snap); err != nil {
		t.Fatalf("unmarshal decompressed: %v", err)
	}
	if len(snap.Events) != 2 {
		t.Errorf("events = %d, want 2", len(snap.Events))
	}
}
