package domain

import (
	"fmt"
	"time"
)

// EventType identifies the lifecycle operation an event records.
type EventType string

// Ledger event types.
const (
	EventCreate            EventType = "CREATE"
	EventRekey             EventType = "REKEY"
	EventDeprecate         EventType = "DEPRECATE"
	EventConsolidate       EventType = "CONSOLIDATE"
	EventFingerprintUpdate EventType = "FINGERPRINT_UPDATE"
)

// EventTypes lists every known event type in declaration order.
func EventTypes() []EventType {
	return []EventType{EventCreate, EventRekey, EventDeprecate, EventConsolidate, EventFingerprintUpdate}
}

// IsValid returns true if the event type is recognised.
func (t EventType) IsValid() bool {
	switch t {
	case EventCreate, EventRekey, EventDeprecate, EventConsolidate, EventFingerprintUpdate:
		return true
	default:
		return false
	}
}

// ParseEventType parses an event type name.
func ParseEventType(s string) (EventType, error) {
	t := EventType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("%w: unknown event type %q", ErrInvalidInput, s)
	}
	return t, nil
}

// Payload keys used in Event.Data.
const (
	DataOldKey      = "old_key"
	DataNewKey      = "new_key"
	DataReason      = "reason"
	DataSources     = "sources"
	DataFingerprint = "fingerprint"
)

// Event is one immutable ledger line.
type Event struct {
	Type      EventType      `json:"event_type"`
	Timestamp time.Time      `json:"timestamp"`
	ID        string         `json:"id"`
	DocKey    string         `json:"doc_key"`
	Data      map[string]any `json:"data"`
}

// NewCreateEvent records a mint.
func NewCreateEvent(card Card, at time.Time) Event {
	return newEvent(EventCreate, card, at, map[string]any{})
}

// NewRekeyEvent records a key change. DocKey is the new key.
func NewRekeyEvent(card Card, oldKey string, at time.Time) Event {
	return newEvent(EventRekey, card, at, map[string]any{
		DataOldKey: oldKey,
		DataNewKey: card.DocKey,
	})
}

// NewDeprecateEvent records a deprecation.
func NewDeprecateEvent(card Card, reason string, at time.Time) Event {
	return newEvent(EventDeprecate, card, at, map[string]any{DataReason: reason})
}

// NewConsolidateEvent records the absorption of sources into target.
func NewConsolidateEvent(target Card, sources []string, at time.Time) Event {
	return newEvent(EventConsolidate, target, at, map[string]any{
		DataSources: append([]string{}, sources...),
	})
}

// NewFingerprintEvent records a content digest update.
func NewFingerprintEvent(card Card, digest string, at time.Time) Event {
	return newEvent(EventFingerprintUpdate, card, at, map[string]any{DataFingerprint: digest})
}

func newEvent(t EventType, card Card, at time.Time, data map[string]any) Event {
	return Event{
		Type:      t,
		Timestamp: at.UTC(),
		ID:        card.ID,
		DocKey:    card.DocKey,
		Data:      data,
	}
}

// String returns a payload value as a string, or "" if absent.
func (e Event) String(key string) string {
	if s, ok := e.Data[key].(string); ok {
		return s
	}
	return ""
}

// Sources returns the CONSOLIDATE source list whether the payload was
// built in memory ([]string) or decoded from storage ([]any).
func (e Event) Sources() []string {
	switch v := e.Data[DataSources].(type) {
	case []string:
		return append([]string{}, v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// EventFilter narrows a history query. Zero values match everything.
type EventFilter struct {
	ID    string
	Type  EventType
	Since time.Time
	Limit int
}

// Matches reports whether e passes the filter (Limit is applied by the caller).
func (f EventFilter) Matches(e Event) bool {
	if f.ID != "" && e.ID != f.ID {
		return false
	}
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	if !f.Since.IsZero() && e.Timestamp.Before(f.Since) {
		return false
	}
	return true
}
