package product

import (
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/propagation"
)

const (
	CreatedSubject = "shop.products.created"
	UpdatedSubject = "shop.products.updated"
	DeletedSubject = "shop.products.deleted"
)

// ChangedEvent is published after a product is created or updated.
type ChangedEvent struct {
	subject    string
	Carrier    propagation.MapCarrier `json:"carrier,omitempty"`
	Product    Product                `json:"product"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func (e ChangedEvent) Subject() string {
	return e.subject
}

func (e ChangedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

// DeletedEvent is published after a product is removed.
type DeletedEvent struct {
	Carrier    propagation.MapCarrier `json:"carrier,omitempty"`
	ProductID  string                 `json:"product_id"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func (e DeletedEvent) Subject() string {
	return DeletedSubject
}

func (e DeletedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
