package event

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is carried in storage metadata and exports.
const SchemaVersion = "1.0.0"

// Type identifies what kind of event this is.
type Type string

const (
	// User-initiated actions
	TypeNavigation     Type = "navigation"
	TypeButtonClick    Type = "button_click"
	TypeModeChange     Type = "mode_change"
	TypeManualEvent    Type = "manual_event"
	TypeEdit           Type = "edit"
	TypeSettingsChange Type = "settings_change"

	// Session/device context
	TypeSessionStart Type = "session_start"
	TypeSessionEnd   Type = "session_end"
	TypeForeground   Type = "foreground"
	TypeBackground   Type = "background"
	TypeIdleStart    Type = "idle_start"
	TypeIdleEnd      Type = "idle_end"

	// System events
	TypeRecovery Type = "recovery"
	TypeWipe     Type = "wipe"
)

// Category classifies what an activity was for.
type Category string

const (
	CategoryStudy       Category = "study"
	CategoryWork        Category = "work"
	CategoryDistraction Category = "distraction"
	CategoryRest        Category = "rest"
	CategoryUnknown     Category = "unknown"
)

// Categories lists every category in stable order.
var Categories = []Category{
	CategoryStudy,
	CategoryWork,
	CategoryDistraction,
	CategoryRest,
	CategoryUnknown,
}

// IsFocus reports whether the category counts as focused work.
func (c Category) IsFocus() bool {
	return c == CategoryStudy || c == CategoryWork
}

// ParseCategory maps free text to a category, defaulting to unknown.
func ParseCategory(s string) Category {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryStudy:
		return CategoryStudy
	case CategoryWork:
		return CategoryWork
	case CategoryDistraction:
		return CategoryDistraction
	case CategoryRest:
		return CategoryRest
	default:
		return CategoryUnknown
	}
}

// Confidence is the provenance tag for an event or segment.
type Confidence string

const (
	ConfidenceAuto      Confidence = "auto"
	ConfidenceManual    Confidence = "manual"
	ConfidenceRecovered Confidence = "recovered"
)

// Context is the free-form auxiliary payload attached to an event.
// The schema varies by event type and is never validated strictly.
type Context struct {
	Screen     string         `json:"screen,omitempty"`
	Mode       string         `json:"mode,omitempty"`
	FromScreen string         `json:"fromScreen,omitempty"`
	ToScreen   string         `json:"toScreen,omitempty"`
	State      map[string]any `json:"state,omitempty"`
}

// Event is an immutable atomic record of something that happened.
// Events are never mutated once appended to the log.
type Event struct {
	ID         string     `json:"id"`
	Type       Type       `json:"type"`
	Timestamp  int64      `json:"timestamp"` // ms since epoch
	Context    Context    `json:"context"`
	Duration   int64      `json:"duration,omitempty"` // ms, manual events only
	Category   Category   `json:"category,omitempty"`
	Confidence Confidence `json:"confidence"`
	Title      string     `json:"title,omitempty"`
	Keywords   []string   `json:"keywords,omitempty"`
	Note       string     `json:"note,omitempty"`
}

// Session is a device-usage lifecycle record.
type Session struct {
	ID        string `json:"id"`
	StartTime int64  `json:"startTime"`
	EndTime   int64  `json:"endTime,omitempty"`
	Recovered bool   `json:"recovered,omitempty"`
}

// Metadata describes the stored log as a whole.
type Metadata struct {
	SchemaVersion  string `json:"schemaVersion"`
	LastCompaction int64  `json:"lastCompaction,omitempty"`
	EventCount     int    `json:"eventCount"`
}

// NewID returns a fresh unique event identifier.
func NewID() string {
	return uuid.NewString()
}

// New builds an auto-confidence event of the given type at the given time.
func New(t Type, at time.Time) Event {
	return Event{
		ID:         NewID(),
		Type:       t,
		Timestamp:  at.UnixMilli(),
		Confidence: ConfidenceAuto,
	}
}

// NewManual builds a user-entered manual event.
func NewManual(title string, category Category, at time.Time, duration time.Duration, note string) Event {
	return Event{
		ID:         NewID(),
		Type:       TypeManualEvent,
		Timestamp:  at.UnixMilli(),
		Duration:   duration.Milliseconds(),
		Category:   category,
		Confidence: ConfidenceManual,
		Title:      title,
		Note:       note,
	}
}

// SortedByTime returns a copy of events sorted ascending by timestamp.
// The sort is stable so equal timestamps keep their original relative order.
func SortedByTime(events []Event) []Event {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})
	return sorted
}
