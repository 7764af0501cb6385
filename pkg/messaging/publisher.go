// Package messaging defines the event publishing contract shared by the stores and the broker adapters.
package messaging

import (
	"context"
)

// Event is a message that can be published to a subject.
type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

// Publisher delivers events to a message broker.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher discards every event. Used when event publishing is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(_ context.Context, _ Event) error {
	return nil
}
