// Package events publishes order lifecycle events for downstream consumers
// such as analytics or payment reconciliation.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	TypeOrderCreated           = "order.created"
	TypeOrderItemStatusChanged = "order.item_status_changed"
)

type OrderEvent struct {
	Type           string      `json:"type"`
	OrderID        uuid.UUID   `json:"orderId"`
	BuyerID        uuid.UUID   `json:"buyerId"`
	VendorIDs      []uuid.UUID `json:"vendorIds,omitempty"`
	ItemID         uuid.UUID   `json:"itemId,omitempty"`
	ItemStatus     string      `json:"itemStatus,omitempty"`
	PreviousStatus string      `json:"previousStatus,omitempty"`
	OrderStatus    string      `json:"orderStatus"`
	Total          float64     `json:"total"`
	OccurredAt     time.Time   `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, ev OrderEvent) error
	Close() error
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, OrderEvent) error { return nil }
func (NoopPublisher) Close() error                              { return nil }
