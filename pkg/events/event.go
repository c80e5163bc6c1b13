package events

import "time"

// Event defines the contract for events forwarded to the external bus.
type Event interface {
	// EventType returns the unique code for this event (e.g., "UPLOAD_DISPATCHED").
	EventType() string

	Payload() map[string]interface{}

	Timestamp() time.Time
}

// BaseEvent is the plain value implementation used by publishers and subscribers
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
