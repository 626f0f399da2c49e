package order

import (
	"time"

	"github.com/google/uuid"
)

// VendorView is an order as one vendor sees it: only that vendor's items,
// with Total recomputed over them. Status is still the order-wide aggregate.
type VendorView struct {
	ID              uuid.UUID       `json:"id"`
	BuyerID         uuid.UUID       `json:"buyer"`
	Items           []Item          `json:"items"`
	Total           float64         `json:"total"`
	Status          Status          `json:"status"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	MomoNumber      string          `json:"momoNumber,omitempty"`
	FulfillmentType FulfillmentType `json:"fulfillmentType"`
	BuyerPhone      string          `json:"phone"`
	BuyerLocation   string          `json:"location"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// ProjectForBuyer returns the whole order; the buyer sees every vendor's lines.
func ProjectForBuyer(o Order) Order {
	return o.Clone()
}

func ProjectForVendor(o Order, vendorID uuid.UUID) VendorView {
	items := make([]Item, 0, len(o.Items))
	var total float64
	for _, it := range o.Items {
		if it.VendorID != vendorID {
			continue
		}
		items = append(items, it)
		total += it.Subtotal()
	}

	return VendorView{
		ID:              o.ID,
		BuyerID:         o.BuyerID,
		Items:           items,
		Total:           total,
		Status:          o.Status,
		PaymentMethod:   o.PaymentMethod,
		MomoNumber:      o.MomoNumber,
		FulfillmentType: o.FulfillmentType,
		BuyerPhone:      o.BuyerPhone,
		BuyerLocation:   o.BuyerLocation,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}
