// Package events publishes domain events to a message broker.
package events

import (
	"context"
	"time"

	"github.com/staybook/staybook-server/internal/id"
)

// Event types.
const (
	PlaceCreated   = "place.created"
	PlaceUpdated   = "place.updated"
	BookingCreated = "booking.created"
)

// Event is the envelope written to the broker.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Actor      id.ID     `json:"actor,omitempty"`
	Subject    id.ID     `json:"subject"`
	Data       any       `json:"data,omitempty"`
}

// Publisher delivers events. Publish failures are reported to the caller,
// which decides whether they matter.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Noop discards every event.
type Noop struct{}

// Publish implements Publisher.
func (Noop) Publish(context.Context, Event) error { return nil }

// New builds an event envelope stamped with the current time.
func New(eventType string, actor, subject id.ID, data any) Event {
	return Event{
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Actor:      actor,
		Subject:    subject,
		Data:       data,
	}
}
