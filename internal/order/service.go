package order

import (
	"context"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/wichananm65/campus-market-backend/internal/apperr"
	"github.com/wichananm65/campus-market-backend/internal/cart"
	"github.com/wichananm65/campus-market-backend/internal/product"
	"github.com/wichananm65/campus-market-backend/internal/user"
)

// Buyers looks up the placing user.
type Buyers interface {
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
}

// Catalog looks up the products named by line items.
type Catalog interface {
	GetByID(ctx context.Context, id uuid.UUID) (product.Product, error)
}

// Cart is the buyer's cart, consumed by Checkout.
type Cart interface {
	Get(ctx context.Context, userID uuid.UUID) ([]cart.CartItem, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

// Service is the order lifecycle engine.
type Service struct {
	repo        Repository
	buyers      Buyers
	catalog     Catalog
	cart        Cart
	transitions TransitionPolicy
}

type Option func(*Service)

// WithStrictTransitions only lets items move forward along the fulfilment path.
func WithStrictTransitions() Option {
	return func(s *Service) { s.transitions = StrictTransitions }
}

// WithCart enables Checkout.
func WithCart(c Cart) Option {
	return func(s *Service) { s.cart = c }
}

func NewService(repo Repository, buyers Buyers, catalog Catalog, opts ...Option) *Service {
	s := &Service{repo: repo, buyers: buyers, catalog: catalog, transitions: PermissiveTransitions}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type ItemInput struct {
	ProductID uuid.UUID `json:"product"`
	VendorID  uuid.UUID `json:"vendor"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
}

type CreateInput struct {
	Items           []ItemInput     `json:"items"`
	Total           float64         `json:"total"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	MomoNumber      string          `json:"momoNumber"`
	FulfillmentType FulfillmentType `json:"fulfillmentType"`
}

func (in CreateInput) validate() error {
	if len(in.Items) == 0 {
		return ErrEmptyOrder
	}
	for i, it := range in.Items {
		if it.ProductID == uuid.Nil {
			return apperr.Validation("item %d: product is required", i)
		}
		if it.Quantity <= 0 {
			return apperr.Validation("item %d: quantity must be positive", i)
		}
		if it.Price < 0 {
			return apperr.Validation("item %d: price must not be negative", i)
		}
	}
	if in.Total < 0 {
		return apperr.Validation("total must not be negative")
	}
	if !in.PaymentMethod.Valid() {
		return apperr.Validation("paymentMethod must be cod or momo")
	}
	switch {
	case in.PaymentMethod == PaymentMomo && in.MomoNumber == "":
		return apperr.Validation("momoNumber is required for momo payments")
	case in.PaymentMethod == PaymentCOD && in.MomoNumber != "":
		return apperr.Validation("momoNumber is only accepted for momo payments")
	}
	if !in.FulfillmentType.Valid() {
		return apperr.Validation("fulfillmentType must be pickup or delivery")
	}
	return nil
}

// Create validates the whole submission before anything is written, so a
// rejected order persists nothing. Every item starts pending. A zero price
// snapshots the current catalog price.
func (s *Service) Create(ctx context.Context, buyerID uuid.UUID, in CreateInput) (Order, error) {
	in.MomoNumber = strings.TrimSpace(in.MomoNumber)
	if err := in.validate(); err != nil {
		return Order{}, err
	}

	buyer, err := s.buyers.GetByID(ctx, buyerID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return Order{}, apperr.NotFound("buyer not found")
		}
		return Order{}, err
	}

	items := make([]Item, 0, len(in.Items))
	for i, it := range in.Items {
		p, err := s.catalog.GetByID(ctx, it.ProductID)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindNotFound {
				return Order{}, apperr.Validation("item %d: product %s does not exist", i, it.ProductID)
			}
			return Order{}, err
		}
		if !p.Status.Available() {
			return Order{}, apperr.Validation("item %d: product %s is not available", i, p.ID)
		}
		if it.VendorID == uuid.Nil {
			it.VendorID = p.VendorID
		}
		if it.VendorID != p.VendorID {
			return Order{}, apperr.Validation("item %d: vendor does not match product %s", i, p.ID)
		}
		if it.Price == 0 {
			it.Price = p.Price
		}
		if it.Price <= 0 {
			return Order{}, apperr.Validation("item %d: price must be positive", i)
		}
		items = append(items, Item{
			ID:        uuid.New(),
			ProductID: p.ID,
			VendorID:  p.VendorID,
			Quantity:  it.Quantity,
			UnitPrice: it.Price,
			Status:    ItemPending,
		})
	}

	ord := Order{
		ID:              uuid.New(),
		BuyerID:         buyer.ID,
		Items:           items,
		Total:           in.Total,
		PaymentMethod:   in.PaymentMethod,
		MomoNumber:      in.MomoNumber,
		FulfillmentType: in.FulfillmentType,
		BuyerPhone:      buyer.Phone,
		BuyerLocation:   buyer.Location,
		Status:          AggregateStatus(items),
		Version:         1,
	}
	created, err := s.repo.Create(ctx, ord)
	if err != nil {
		return Order{}, err
	}

	log.WithFields(log.Fields{
		"order_id": created.ID,
		"buyer_id": created.BuyerID,
		"items":    len(created.Items),
		"vendors":  len(created.VendorIDs()),
	}).Info("order created")
	return ProjectForBuyer(created), nil
}

type CheckoutInput struct {
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	MomoNumber      string          `json:"momoNumber"`
	FulfillmentType FulfillmentType `json:"fulfillmentType"`
}

// Checkout turns the buyer's cart into an order priced from the catalog and
// empties the cart. Lines whose product is gone fail the checkout.
func (s *Service) Checkout(ctx context.Context, buyerID uuid.UUID, in CheckoutInput) (Order, error) {
	if s.cart == nil {
		return Order{}, apperr.Validation("checkout is not available")
	}
	lines, err := s.cart.Get(ctx, buyerID)
	if err != nil {
		return Order{}, err
	}
	if len(lines) == 0 {
		return Order{}, apperr.Validation("cart is empty")
	}

	create := CreateInput{
		Items:           make([]ItemInput, 0, len(lines)),
		PaymentMethod:   in.PaymentMethod,
		MomoNumber:      in.MomoNumber,
		FulfillmentType: in.FulfillmentType,
	}
	for _, l := range lines {
		if l.Product == nil {
			return Order{}, apperr.Validation("product %s is no longer available", l.ProductID)
		}
		create.Items = append(create.Items, ItemInput{
			ProductID: l.ProductID,
			VendorID:  l.Product.VendorID,
			Quantity:  l.Quantity,
			Price:     l.Product.Price,
		})
		create.Total += l.Product.Price * float64(l.Quantity)
	}

	created, err := s.Create(ctx, buyerID, create)
	if err != nil {
		return Order{}, err
	}
	if err := s.cart.Clear(ctx, buyerID); err != nil {
		log.WithError(err).WithField("buyer_id", buyerID).Warn("order placed but cart was not cleared")
	}
	return created, nil
}

// ListForBuyer returns the buyer's orders, newest first.
func (s *Service) ListForBuyer(ctx context.Context, buyerID uuid.UUID) ([]Order, error) {
	orders, err := s.repo.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i] = ProjectForBuyer(orders[i])
	}
	return orders, nil
}

// ListForVendor returns every order holding one of the vendor's items,
// projected down to that vendor's slice.
func (s *Service) ListForVendor(ctx context.Context, vendorID uuid.UUID) ([]VendorView, error) {
	orders, err := s.repo.ListByVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	views := make([]VendorView, 0, len(orders))
	for _, o := range orders {
		views = append(views, ProjectForVendor(o, vendorID))
	}
	return views, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (Order, error) {
	return s.repo.GetByID(ctx, id)
}

// GetForBuyer hides other buyers' orders behind not found.
func (s *Service) GetForBuyer(ctx context.Context, id, buyerID uuid.UUID) (Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if o.BuyerID != buyerID {
		return Order{}, ErrNotFound
	}
	return ProjectForBuyer(o), nil
}

// GetForVendor is forbidden when the order holds none of the vendor's items.
func (s *Service) GetForVendor(ctx context.Context, id, vendorID uuid.UUID) (VendorView, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return VendorView{}, err
	}
	if !o.HasVendor(vendorID) {
		return VendorView{}, apperr.Forbidden("order has no items from this vendor")
	}
	return ProjectForVendor(o, vendorID), nil
}

// ItemUpdate is the result of UpdateItemStatus.
type ItemUpdate struct {
	Item        Item       `json:"item"`
	Previous    ItemStatus `json:"previousStatus"`
	OrderStatus Status     `json:"orderStatus"`
	Order       Order      `json:"-"`
}

// UpdateItemStatus sets one item's status on behalf of its vendor. The
// ownership check and the transition check run inside the repository's
// atomic update, so a rejected call leaves the order untouched.
func (s *Service) UpdateItemStatus(ctx context.Context, orderID, itemID, vendorID uuid.UUID, status ItemStatus) (ItemUpdate, error) {
	if !status.Valid() {
		return ItemUpdate{}, apperr.Validation("invalid item status %q", status)
	}

	var previous ItemStatus
	updated, err := s.repo.UpdateItem(ctx, orderID, itemID, func(_ *Order, item *Item) error {
		if item.VendorID != vendorID {
			return ErrNotYourItem
		}
		if err := s.transitions(item.Status, status); err != nil {
			return err
		}
		previous = item.Status
		item.Status = status
		return nil
	})
	if err != nil {
		return ItemUpdate{}, err
	}

	item, _ := updated.item(itemID)
	log.WithFields(log.Fields{
		"order_id":     orderID,
		"item_id":      itemID,
		"vendor_id":    vendorID,
		"from":         previous,
		"to":           item.Status,
		"order_status": updated.Status,
	}).Info("order item status changed")

	return ItemUpdate{Item: *item, Previous: previous, OrderStatus: updated.Status, Order: updated}, nil
}

// CountByStatus feeds the admin dashboard.
func (s *Service) CountByStatus(ctx context.Context) (map[Status]int, error) {
	return s.repo.CountByStatus(ctx)
}
