package cart

import (
	"github.com/google/uuid"

	"github.com/wichananm65/campus-market-backend/internal/product"
)

// Line is one stored cart row.
type Line struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// CartItem is a cart line joined with the current listing.
type CartItem struct {
	Line
	Product *product.Product `json:"product,omitempty"`
}
