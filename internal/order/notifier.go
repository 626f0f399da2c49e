package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/wichananm65/campus-market-backend/internal/broadcast"
	"github.com/wichananm65/campus-market-backend/internal/events"
)

const (
	EventOrderNew        = "order:new"
	EventOrderItemStatus = "order:item-status"
)

// Notifier is told about committed order changes. Implementations must not
// fail the caller: the change is already persisted.
type Notifier interface {
	OrderCreated(ctx context.Context, o Order)
	ItemStatusChanged(ctx context.Context, u ItemUpdate)
}

// FanoutNotifier pushes realtime events to the people involved and emits
// domain events to the broker.
type FanoutNotifier struct {
	realtime broadcast.Publisher
	events   events.Publisher
	timeout  time.Duration
}

func NewFanoutNotifier(realtime broadcast.Publisher, ev events.Publisher) *FanoutNotifier {
	if ev == nil {
		ev = events.NoopPublisher{}
	}
	return &FanoutNotifier{realtime: realtime, events: ev, timeout: 5 * time.Second}
}

// OrderCreated sends each vendor its own projection of the new order.
func (n *FanoutNotifier) OrderCreated(ctx context.Context, o Order) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	for _, vendorID := range o.VendorIDs() {
		if err := n.realtime.Publish(ctx, broadcast.UserAudience(vendorID), EventOrderNew, ProjectForVendor(o, vendorID)); err != nil {
			n.logFailure(err, o, "realtime")
		}
	}

	err := n.events.Publish(ctx, events.OrderEvent{
		Type:        events.TypeOrderCreated,
		OrderID:     o.ID,
		BuyerID:     o.BuyerID,
		VendorIDs:   o.VendorIDs(),
		OrderStatus: string(o.Status),
		Total:       o.Total,
		OccurredAt:  o.CreatedAt,
	})
	if err != nil {
		n.logFailure(err, o, "broker")
	}
}

// ItemStatusChanged tells the buyer the new item and order status.
func (n *FanoutNotifier) ItemStatusChanged(ctx context.Context, u ItemUpdate) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	o := u.Order
	payload := map[string]any{
		"orderId":     o.ID,
		"item":        u.Item,
		"orderStatus": u.OrderStatus,
	}
	if err := n.realtime.Publish(ctx, broadcast.UserAudience(o.BuyerID), EventOrderItemStatus, payload); err != nil {
		n.logFailure(err, o, "realtime")
	}

	err := n.events.Publish(ctx, events.OrderEvent{
		Type:           events.TypeOrderItemStatusChanged,
		OrderID:        o.ID,
		BuyerID:        o.BuyerID,
		VendorIDs:      []uuid.UUID{u.Item.VendorID},
		ItemID:         u.Item.ID,
		ItemStatus:     string(u.Item.Status),
		PreviousStatus: string(u.Previous),
		OrderStatus:    string(u.OrderStatus),
		Total:          o.Total,
		OccurredAt:     o.UpdatedAt,
	})
	if err != nil {
		n.logFailure(err, o, "broker")
	}
}

func (n *FanoutNotifier) logFailure(err error, o Order, sink string) {
	log.WithError(err).WithFields(log.Fields{"order_id": o.ID, "sink": sink}).Warn("order notification failed")
}
