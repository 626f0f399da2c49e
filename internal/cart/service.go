package cart

import (
	"context"

	"github.com/google/uuid"

	"github.com/wichananm65/campus-market-backend/internal/apperr"
	"github.com/wichananm65/campus-market-backend/internal/product"
)

// Catalog resolves the listings referenced by cart lines.
type Catalog interface {
	GetByID(ctx context.Context, id uuid.UUID) (product.Product, error)
}

type Service struct {
	repo    Repository
	catalog Catalog
}

func NewService(repo Repository, catalog Catalog) *Service {
	return &Service{repo: repo, catalog: catalog}
}

// Add changes the quantity of productID by delta and returns the cart.
// A zero delta just returns the current cart.
func (s *Service) Add(ctx context.Context, userID, productID uuid.UUID, delta int) ([]CartItem, error) {
	if productID == uuid.Nil {
		return nil, apperr.Validation("productId is required")
	}
	if delta > 0 {
		p, err := s.catalog.GetByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		if !p.Status.Available() {
			return nil, apperr.Validation("product %s is not available", productID)
		}
	}
	if delta != 0 {
		if err := s.repo.Add(ctx, userID, productID, delta); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, userID)
}

// Get returns the cart joined with current listings. Lines whose listing has
// since been removed are returned without product details.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) ([]CartItem, error) {
	lines, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	items := make([]CartItem, 0, len(lines))
	for _, l := range lines {
		item := CartItem{Line: l}
		p, err := s.catalog.GetByID(ctx, l.ProductID)
		switch {
		case err == nil:
			item.Product = &p
		case apperr.KindOf(err) != apperr.KindNotFound:
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *Service) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.repo.Clear(ctx, userID)
}
