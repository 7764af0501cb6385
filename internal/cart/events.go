package cart

import (
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/propagation"
)

const (
	CreatedSubject   = "shop.carts.created"
	UpdatedSubject   = "shop.carts.updated"
	ItemAddedSubject = "shop.carts.item_added"
)

// ChangedEvent is published after a cart is created or updated.
type ChangedEvent struct {
	subject    string
	Carrier    propagation.MapCarrier `json:"carrier,omitempty"`
	Cart       Cart                   `json:"cart"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func (e ChangedEvent) Subject() string {
	return e.subject
}

func (e ChangedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

// ItemAddedEvent is published after AddItem; Cart holds the merged result.
type ItemAddedEvent struct {
	Carrier    propagation.MapCarrier `json:"carrier,omitempty"`
	ProductID  string                 `json:"product_id"`
	Quantity   float64                `json:"quantity"`
	Cart       Cart                   `json:"cart"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func (e ItemAddedEvent) Subject() string {
	return ItemAddedSubject
}

func (e ItemAddedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
