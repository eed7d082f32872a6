package models

import "time"

type EventType string

const (
	EventContractCreated       EventType = "contract.created"
	EventContractStatusChanged EventType = "contract.status_changed"
	EventContractUpdated       EventType = "contract.updated"
	EventContractExpired       EventType = "contract.expired"
	EventSessionCreated        EventType = "session.created"
	EventSessionStatusChanged  EventType = "session.status_changed"
	EventSessionRescheduled    EventType = "session.rescheduled"
	EventSessionExpired        EventType = "session.expired"
)

// Event is published after a committed state change.
type Event struct {
	Type       EventType `json:"type"`
	RecordID   string    `json:"record_id"`
	Status     string    `json:"status"`
	ActorID    string    `json:"actor_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
