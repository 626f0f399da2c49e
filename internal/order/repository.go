package order

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ItemMutation edits one item of a private copy of the order. Returning an
// error aborts the update and nothing is persisted.
type ItemMutation func(ord *Order, item *Item) error

// Repository persists orders. UpdateItem is the only write after creation:
// it loads the order under a per-order lock, applies the mutation, recomputes
// the aggregate status, bumps Version and persists, as one unit.
type Repository interface {
	Create(ctx context.Context, ord Order) (Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (Order, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]Order, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]Order, error)
	UpdateItem(ctx context.Context, orderID, itemID uuid.UUID, mutate ItemMutation) (Order, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)
}

type storedOrder struct {
	ord Order
	seq int
}

// InMemoryRepository serialises all writes behind one mutex.
type InMemoryRepository struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]storedOrder
	seq    int
	now    func() time.Time
}

func NewInMemoryRepository(seed []Order) *InMemoryRepository {
	repo := &InMemoryRepository{
		orders: make(map[uuid.UUID]storedOrder, len(seed)),
		now:    time.Now,
	}
	for _, o := range seed {
		repo.seq++
		repo.orders[o.ID] = storedOrder{ord: o.Clone(), seq: repo.seq}
	}
	return repo
}

func (r *InMemoryRepository) Create(_ context.Context, ord Order) (Order, error) {
	if len(ord.Items) == 0 {
		return Order{}, ErrEmptyOrder
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	ord = ord.Clone()
	ord.CreatedAt, ord.UpdatedAt = now, now
	if ord.Version == 0 {
		ord.Version = 1
	}
	r.seq++
	r.orders[ord.ID] = storedOrder{ord: ord, seq: r.seq}
	return ord.Clone(), nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id uuid.UUID) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return stored.ord.Clone(), nil
}

func (r *InMemoryRepository) ListByBuyer(_ context.Context, buyerID uuid.UUID) ([]Order, error) {
	return r.list(func(o Order) bool { return o.BuyerID == buyerID }), nil
}

func (r *InMemoryRepository) ListByVendor(_ context.Context, vendorID uuid.UUID) ([]Order, error) {
	return r.list(func(o Order) bool { return o.HasVendor(vendorID) }), nil
}

func (r *InMemoryRepository) list(match func(Order) bool) []Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]storedOrder, 0)
	for _, stored := range r.orders {
		if match(stored.ord) {
			matched = append(matched, stored)
		}
	}
	// newest first; insertion sequence breaks timestamp ties
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.ord.CreatedAt.Equal(b.ord.CreatedAt) {
			return a.ord.CreatedAt.After(b.ord.CreatedAt)
		}
		return a.seq > b.seq
	})

	orders := make([]Order, 0, len(matched))
	for _, stored := range matched {
		orders = append(orders, stored.ord.Clone())
	}
	return orders
}

func (r *InMemoryRepository) UpdateItem(_ context.Context, orderID, itemID uuid.UUID, mutate ItemMutation) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[orderID]
	if !ok {
		return Order{}, ErrNotFound
	}
	working := stored.ord.Clone()
	item, ok := working.item(itemID)
	if !ok {
		return Order{}, ErrItemNotFound
	}
	if err := mutate(&working, item); err != nil {
		return Order{}, err
	}

	working.Status = AggregateStatus(working.Items)
	working.Version++
	working.UpdatedAt = r.now().UTC()
	stored.ord = working
	r.orders[orderID] = stored
	return working.Clone(), nil
}

func (r *InMemoryRepository) CountByStatus(_ context.Context) (map[Status]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := map[Status]int{}
	for _, stored := range r.orders {
		counts[stored.ord.Status]++
	}
	return counts, nil
}
