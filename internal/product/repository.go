package product

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wichananm65/campus-market-backend/internal/apperr"
)

var ErrNotFound = apperr.NotFound("product not found")

type Repository interface {
	List(ctx context.Context, f Filter) ([]Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (Product, error)
	Create(ctx context.Context, p Product) (Product, error)
	Update(ctx context.Context, p Product) (Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
}

type InMemoryRepository struct {
	mu       sync.RWMutex
	products map[uuid.UUID]Product
	now      func() time.Time
}

func NewInMemoryRepository(seed []Product) *InMemoryRepository {
	repo := &InMemoryRepository{
		products: make(map[uuid.UUID]Product, len(seed)),
		now:      time.Now,
	}
	for _, p := range seed {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		if p.Status == "" {
			p.Status = StatusActive
		}
		repo.products[p.ID] = p
	}
	return repo
}

func (r *InMemoryRepository) List(_ context.Context, f Filter) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]Product, 0)
	for _, p := range r.products {
		if !f.IncludeHidden && p.Status == StatusHidden {
			continue
		}
		if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
			continue
		}
		if f.VendorID != uuid.Nil && p.VendorID != f.VendorID {
			continue
		}
		products = append(products, p)
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id uuid.UUID) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (r *InMemoryRepository) Create(_ context.Context, p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := r.now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	r.products[p.ID] = p
	return p, nil
}

func (r *InMemoryRepository) Update(_ context.Context, p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[p.ID]
	if !ok {
		return Product{}, ErrNotFound
	}
	p.VendorID = existing.VendorID
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = r.now().UTC()
	r.products[p.ID] = p
	return p, nil
}

func (r *InMemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *InMemoryRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.products), nil
}
