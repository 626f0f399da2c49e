package promo

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p Promo) (Promo, error)
	// Latest returns the promo with the most recent start date.
	Latest(ctx context.Context) (Promo, error)
	List(ctx context.Context) ([]Promo, error)
	Deactivate(ctx context.Context, id uuid.UUID) (Promo, error)
}

type InMemoryRepository struct {
	mu     sync.RWMutex
	promos map[uuid.UUID]Promo
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{promos: map[uuid.UUID]Promo{}}
}

func (r *InMemoryRepository) Create(_ context.Context, p Promo) (Promo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.VendorIDs = append([]uuid.UUID(nil), p.VendorIDs...)
	r.promos[p.ID] = p
	return p, nil
}

func (r *InMemoryRepository) Latest(ctx context.Context) (Promo, error) {
	all, _ := r.List(ctx)
	if len(all) == 0 {
		return Promo{}, ErrNotFound
	}
	return all[0], nil
}

// List is ordered by start date, newest first.
func (r *InMemoryRepository) List(_ context.Context) ([]Promo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Promo, 0, len(r.promos))
	for _, p := range r.promos {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

func (r *InMemoryRepository) Deactivate(_ context.Context, id uuid.UUID) (Promo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.promos[id]
	if !ok {
		return Promo{}, ErrNotFound
	}
	p.Active = false
	r.promos[id] = p
	return p, nil
}
