package category

import (
	"context"

	"github.com/wichananm65/campus-market-backend/internal/product"
)

// Service provides business logic for categories.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// List returns every allowed category in catalog order, including empty ones.
func (s *Service) List(ctx context.Context) ([]CategoryItem, error) {
	counts, err := s.repo.CountVisible(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]CategoryItem, 0, len(product.AllowedCategories))
	for _, name := range product.AllowedCategories {
		items = append(items, CategoryItem{Name: name, ProductCount: counts[name]})
	}
	return items, nil
}
