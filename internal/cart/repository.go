package cart

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Repository stores per-user cart lines. Add applies a signed delta and
// drops the line once its quantity reaches zero.
type Repository interface {
	Add(ctx context.Context, userID, productID uuid.UUID, delta int) error
	Get(ctx context.Context, userID uuid.UUID) ([]Line, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu    sync.Mutex
	carts map[uuid.UUID]map[uuid.UUID]int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{carts: map[uuid.UUID]map[uuid.UUID]int{}}
}

func (r *InMemoryRepository) Add(_ context.Context, userID, productID uuid.UUID, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	lines, ok := r.carts[userID]
	if !ok {
		lines = map[uuid.UUID]int{}
		r.carts[userID] = lines
	}
	qty := lines[productID] + delta
	if qty <= 0 {
		delete(lines, productID)
		return nil
	}
	lines[productID] = qty
	return nil
}

func (r *InMemoryRepository) Get(_ context.Context, userID uuid.UUID) ([]Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Line, 0, len(r.carts[userID]))
	for pid, qty := range r.carts[userID] {
		out = append(out, Line{ProductID: pid, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ProductID.String() < out[j].ProductID.String()
	})
	return out, nil
}

func (r *InMemoryRepository) Clear(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, userID)
	return nil
}
