package product

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/wichananm65/campus-market-backend/internal/apperr"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns every listing that is not hidden, newest first.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx, Filter{})
}

func (s *Service) ListByCategory(ctx context.Context, category string) ([]Product, error) {
	return s.repo.List(ctx, Filter{Category: strings.TrimSpace(category)})
}

// ListByVendor includes hidden listings; it backs the vendor's own dashboard.
func (s *Service) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]Product, error) {
	return s.repo.List(ctx, Filter{VendorID: vendorID, IncludeHidden: true})
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *Service) Create(ctx context.Context, vendorID uuid.UUID, in Input) (Product, error) {
	p := Product{
		VendorID:    vendorID,
		School:      strings.ToLower(strings.TrimSpace(in.School)),
		Title:       strings.TrimSpace(in.Title),
		Price:       in.Price,
		OldPrice:    in.OldPrice,
		Category:    strings.ToLower(strings.TrimSpace(in.Category)),
		Image:       strings.TrimSpace(in.Image),
		Description: strings.TrimSpace(in.Description),
		Status:      StatusActive,
	}
	if err := validate(p); err != nil {
		return Product{}, err
	}
	return s.repo.Create(ctx, p)
}

// Update applies patch to a listing owned by vendorID.
func (s *Service) Update(ctx context.Context, vendorID, id uuid.UUID, patch Patch) (Product, error) {
	p, err := s.owned(ctx, vendorID, id)
	if err != nil {
		return Product{}, err
	}
	if patch.School != nil {
		p.School = strings.ToLower(strings.TrimSpace(*patch.School))
	}
	if patch.Title != nil {
		p.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.OldPrice != nil {
		p.OldPrice = patch.OldPrice
	}
	if patch.Category != nil {
		p.Category = strings.ToLower(strings.TrimSpace(*patch.Category))
	}
	if patch.Image != nil {
		p.Image = strings.TrimSpace(*patch.Image)
	}
	if patch.Description != nil {
		p.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if err := validate(p); err != nil {
		return Product{}, err
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, vendorID, id uuid.UUID) error {
	if _, err := s.owned(ctx, vendorID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// SetStatus is the moderation path; it ignores ownership.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status Status) (Product, error) {
	if !status.Valid() {
		return Product{}, apperr.Validation("invalid product status %q", status)
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Product{}, err
	}
	p.Status = status
	return s.repo.Update(ctx, p)
}

func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) owned(ctx context.Context, vendorID, id uuid.UUID) (Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if p.VendorID != vendorID {
		return Product{}, apperr.Forbidden("not authorized to modify this product")
	}
	return p, nil
}

func validate(p Product) error {
	switch {
	case p.Title == "":
		return apperr.Validation("title is required")
	case p.School == "":
		return apperr.Validation("school is required")
	case p.Image == "":
		return apperr.Validation("image is required")
	case p.Price <= 0:
		return apperr.Validation("price must be positive")
	case p.OldPrice != nil && *p.OldPrice < 0:
		return apperr.Validation("oldPrice must not be negative")
	case !IsAllowedCategory(p.Category):
		return apperr.Validation("unknown category %q", p.Category)
	case !p.Status.Valid():
		return apperr.Validation("invalid product status %q", p.Status)
	}
	return nil
}
