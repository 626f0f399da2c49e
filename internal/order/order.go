package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/wichananm65/campus-market-backend/internal/apperr"
)

type PaymentMethod string

const (
	PaymentCOD  PaymentMethod = "cod"
	PaymentMomo PaymentMethod = "momo"
)

func (p PaymentMethod) Valid() bool {
	return p == PaymentCOD || p == PaymentMomo
}

type FulfillmentType string

const (
	FulfillmentPickup   FulfillmentType = "pickup"
	FulfillmentDelivery FulfillmentType = "delivery"
)

func (f FulfillmentType) Valid() bool {
	return f == FulfillmentPickup || f == FulfillmentDelivery
}

// Status is the aggregate order status. It is always derived from the item
// statuses by AggregateStatus and never accepted from a client.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusDelivered Status = "delivered"
)

type ItemStatus string

const (
	ItemPending   ItemStatus = "pending"
	ItemAccepted  ItemStatus = "accepted"
	ItemRejected  ItemStatus = "rejected"
	ItemPreparing ItemStatus = "preparing"
	ItemReady     ItemStatus = "ready"
	ItemDelivered ItemStatus = "delivered"
)

func (s ItemStatus) Valid() bool {
	switch s {
	case ItemPending, ItemAccepted, ItemRejected, ItemPreparing, ItemReady, ItemDelivered:
		return true
	}
	return false
}

// Terminal reports whether no further fulfilment happens after s.
func (s ItemStatus) Terminal() bool {
	return s == ItemRejected || s == ItemDelivered
}

// Item is one vendor's line in an order. Only Status changes after creation.
type Item struct {
	ID        uuid.UUID  `json:"id"`
	ProductID uuid.UUID  `json:"product"`
	VendorID  uuid.UUID  `json:"vendor"`
	Quantity  int        `json:"quantity"`
	UnitPrice float64    `json:"unitPrice"`
	Status    ItemStatus `json:"status"`
}

func (i Item) Subtotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

// Order is the aggregate root. Version counts committed mutations and is
// bumped by every successful UpdateItem.
type Order struct {
	ID              uuid.UUID       `json:"id"`
	BuyerID         uuid.UUID       `json:"buyer"`
	Items           []Item          `json:"items"`
	Total           float64         `json:"total"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	MomoNumber      string          `json:"momoNumber,omitempty"`
	FulfillmentType FulfillmentType `json:"fulfillmentType"`
	BuyerPhone      string          `json:"phone"`
	BuyerLocation   string          `json:"location"`
	Status          Status          `json:"status"`
	Version         int             `json:"version"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Clone returns a copy that shares no item storage with o.
func (o Order) Clone() Order {
	items := make([]Item, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o
}

func (o *Order) item(id uuid.UUID) (*Item, bool) {
	for i := range o.Items {
		if o.Items[i].ID == id {
			return &o.Items[i], true
		}
	}
	return nil, false
}

// HasVendor reports whether any line belongs to vendorID.
func (o Order) HasVendor(vendorID uuid.UUID) bool {
	for _, it := range o.Items {
		if it.VendorID == vendorID {
			return true
		}
	}
	return false
}

// VendorIDs lists the distinct vendors in item order.
func (o Order) VendorIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(o.Items))
	ids := make([]uuid.UUID, 0, len(o.Items))
	for _, it := range o.Items {
		if !seen[it.VendorID] {
			seen[it.VendorID] = true
			ids = append(ids, it.VendorID)
		}
	}
	return ids
}

var (
	ErrNotFound     = apperr.NotFound("order not found")
	ErrItemNotFound = apperr.NotFound("order item not found")
	ErrNotYourItem  = apperr.Forbidden("item belongs to another vendor")
	ErrEmptyOrder   = apperr.Validation("order must contain at least one item")
)
