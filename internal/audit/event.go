// Package audit provides the append-only conversion journal for ysconv.
package audit

import (
	"encoding/json"
	"time"
)

// ISO8601Format is the time format used for journal event timestamps.
const ISO8601Format = time.RFC3339

// RunID identifies one conversion or undo run.
type RunID string

// RunKind distinguishes conversion runs from undo runs.
type RunKind string

const (
	RunKindConvert RunKind = "CONVERT"
	RunKindUndo    RunKind = "UNDO"
)

// EventType classifies journal events.
type EventType string

const (
	// EventRunStart opens a run.
	EventRunStart EventType = "RUN_START"
	// EventRename records an applied rename. Path is the entry's relative
	// path before the rename, Target its new base name.
	EventRename EventType = "RENAME"
	// EventRewrite records a content rewrite. Rewrites are not reversible
	// from the journal; the event exists so a run can be audited.
	EventRewrite EventType = "REWRITE"
	// EventDecodeSkip records a file skipped because it was not valid text.
	EventDecodeSkip EventType = "DECODE_SKIP"
	// EventCollision records a sibling name collision.
	EventCollision EventType = "COLLISION"
	// EventRunEnd closes a run.
	EventRunEnd EventType = "RUN_END"
)

// Event is a single journal record.
type Event struct {
	Timestamp time.Time
	RunID     RunID
	Type      EventType
	Kind      RunKind // set on RUN_START only
	Path      string  // relative path before the operation
	Target    string  // new base name (RENAME) or normalized target (COLLISION)
	Detail    string  // free-form context
}

// eventJSON is the wire representation; optional fields collapse to nothing
// on the common event types to keep the journal compact.
type eventJSON struct {
	Timestamp string    `json:"timestamp"`
	RunID     RunID     `json:"runId"`
	Type      EventType `json:"eventType"`
	Kind      RunKind   `json:"runKind,omitempty"`
	Path      string    `json:"path,omitempty"`
	Target    string    `json:"target,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// MarshalJSON implements json.Marshaler with ISO 8601 timestamps.
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventJSON{
		Timestamp: e.Timestamp.Format(ISO8601Format),
		RunID:     e.RunID,
		Type:      e.Type,
		Kind:      e.Kind,
		Path:      e.Path,
		Target:    e.Target,
		Detail:    e.Detail,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Event) UnmarshalJSON(data []byte) error {
	var ej eventJSON
	if err := json.Unmarshal(data, &ej); err != nil {
		return err
	}
	t, err := time.Parse(ISO8601Format, ej.Timestamp)
	if err != nil {
		return err
	}
	e.Timestamp = t
	e.RunID = ej.RunID
	e.Type = ej.Type
	e.Kind = ej.Kind
	e.Path = ej.Path
	e.Target = ej.Target
	e.Detail = ej.Detail
	return nil
}
