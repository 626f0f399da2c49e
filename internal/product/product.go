package product

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive  Status = "active"
	StatusSold    Status = "sold"
	StatusPending Status = "pending"
	StatusHidden  Status = "hidden"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusSold, StatusPending, StatusHidden:
		return true
	}
	return false
}

// Available reports whether listings in this status can be carted or ordered.
func (s Status) Available() bool {
	return s != StatusHidden && s != StatusSold
}

// Product is a vendor listing. Price is the current catalog price; orders
// snapshot it at creation.
type Product struct {
	ID          uuid.UUID `json:"id"`
	VendorID    uuid.UUID `json:"vendor"`
	School      string    `json:"school"`
	Title       string    `json:"title"`
	Price       float64   `json:"price"`
	OldPrice    *float64  `json:"oldPrice,omitempty"`
	Category    string    `json:"category"`
	Image       string    `json:"image"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Input is the payload for a new listing.
type Input struct {
	School      string   `json:"school"`
	Title       string   `json:"title"`
	Price       float64  `json:"price"`
	OldPrice    *float64 `json:"oldPrice,omitempty"`
	Category    string   `json:"category"`
	Image       string   `json:"image"`
	Description string   `json:"description"`
}

// Patch holds the fields a vendor may change; nil fields are kept.
type Patch struct {
	School      *string  `json:"school,omitempty"`
	Title       *string  `json:"title,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	OldPrice    *float64 `json:"oldPrice,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Image       *string  `json:"image,omitempty"`
	Description *string  `json:"description,omitempty"`
	Status      *Status  `json:"status,omitempty"`
}

// Filter narrows List. Zero values match everything except hidden listings.
type Filter struct {
	Category      string
	VendorID      uuid.UUID
	IncludeHidden bool
}

// AllowedCategories is the closed set of lower-case listing categories.
var AllowedCategories = []string{
	"electronics",
	"fashion",
	"home",
	"grocery",
	"baby",
	"beauty",
	"sports",
	"gaming",
	"books",
	"toys",
	"automotive",
	"jewelry",
	"health",
	"pets",
	"office",
	"tools",
	"garden",
	"music",
	"movies",
	"appliances",
	"footwear",
	"accessories",
	"outdoor",
	"food",
	"other",
}

func IsAllowedCategory(category string) bool {
	for _, c := range AllowedCategories {
		if c == category {
			return true
		}
	}
	return false
}
