package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventLeadsChanged  EventType = "leads_changed"
	EventStagesChanged EventType = "stages_changed"
)

// Source tells where a change was first observed.
type Source string

const (
	// SourceLocal marks writes made through this process.
	SourceLocal Source = "local"
	// SourceFile marks writes detected on a watched collection directory.
	SourceFile Source = "file"
	// SourceRemote marks changes relayed from another instance.
	SourceRemote Source = "remote"
)

// Event represents a data-updated notification.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Collection string    `json:"collection"`
	Source     Source    `json:"source"`
	Origin     string    `json:"origin,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Payload    any       `json:"payload,omitempty"`
}

// LeadsChangedPayload describes a lead collection replacement.
type LeadsChangedPayload struct {
	Count int `json:"count"`
}

// StagesChangedPayload describes a stage configuration replacement.
type StagesChangedPayload struct {
	Names []string `json:"names"`
}

// NewEvent builds an event with a fresh identifier and timestamp.
func NewEvent(eventType EventType, collection string, source Source, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Collection: collection,
		Source:     source,
		Timestamp:  time.Now().UTC(),
		Payload:    payload,
	}
}
