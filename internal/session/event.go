package session

import (
	"github.com/google/uuid"

	"insightrelay/pkg/webhook"
)

// Event types for session outcome callbacks
const (
	EventTypeClosed    = "relay.session.closed"
	EventTypeFailed    = "relay.session.failed"
	EventTypeCancelled = "relay.session.cancelled"
)

// eventSource identifies this service in outgoing events.
const eventSource = "insightrelay"

// EventBuilder builds webhook events for one session's lifecycle.
type EventBuilder struct {
	sessionID string
}

// NewEventBuilder creates a new EventBuilder.
func NewEventBuilder(sessionID string) *EventBuilder {
	return &EventBuilder{sessionID: sessionID}
}

// Build creates a new event with the given type and data.
func (b *EventBuilder) Build(eventType string, data map[string]any) *webhook.Event {
	return webhook.New(eventType, eventSource, b.sessionID, uuid.NewString(), data)
}

// BuildClosedEvent creates the success event carrying the descriptor.
func (b *EventBuilder) BuildClosedEvent(descriptorName, descriptorURL, descriptorType string) *webhook.Event {
	return b.Build(EventTypeClosed, map[string]any{
		"sessionId": b.sessionID,
		"name":      descriptorName,
		"url":       descriptorURL,
		"type":      descriptorType,
	})
}

// BuildFailedEvent creates a terminal failure event.
func (b *EventBuilder) BuildFailedEvent(message string) *webhook.Event {
	return b.Build(EventTypeFailed, map[string]any{
		"sessionId": b.sessionID,
		"error":     message,
	})
}

// BuildCancelledEvent creates a cancellation event.
func (b *EventBuilder) BuildCancelledEvent() *webhook.Event {
	return b.Build(EventTypeCancelled, map[string]any{
		"sessionId": b.sessionID,
	})
}
