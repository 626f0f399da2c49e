package promo

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/wichananm65/campus-market-backend/internal/apperr"
	"github.com/wichananm65/campus-market-backend/internal/auth"
	"github.com/wichananm65/campus-market-backend/internal/user"
)

// Accounts resolves the vendors named in a promo.
type Accounts interface {
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
}

type Service struct {
	repo     Repository
	accounts Accounts
	now      func() time.Time
}

func NewService(repo Repository, accounts Accounts) *Service {
	return &Service{repo: repo, accounts: accounts, now: time.Now}
}

// Current returns the featured vendors of the latest promo, or an empty list
// once it has ended or been deactivated.
func (s *Service) Current(ctx context.Context) ([]uuid.UUID, error) {
	p, err := s.repo.Latest(ctx)
	if apperr.KindOf(err) == apperr.KindNotFound {
		return []uuid.UUID{}, nil
	}
	if err != nil {
		return nil, err
	}
	if !p.Running(s.now()) {
		return []uuid.UUID{}, nil
	}
	return p.VendorIDs, nil
}

func (s *Service) Create(ctx context.Context, in Input) (Promo, error) {
	if len(in.VendorIDs) == 0 {
		return Promo{}, apperr.Validation("vendorIds must not be empty")
	}
	if in.DurationWeeks == 0 {
		in.DurationWeeks = DefaultDurationWeeks
	}
	if in.DurationWeeks < 1 || in.DurationWeeks > 4 {
		return Promo{}, apperr.Validation("durationWeeks must be between 1 and 4")
	}

	seen := make(map[uuid.UUID]bool, len(in.VendorIDs))
	vendors := make([]uuid.UUID, 0, len(in.VendorIDs))
	for _, id := range in.VendorIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		u, err := s.accounts.GetByID(ctx, id)
		if apperr.KindOf(err) == apperr.KindNotFound || (err == nil && u.Role != auth.RoleVendor) {
			return Promo{}, apperr.Validation("%s is not a vendor", id)
		}
		if err != nil {
			return Promo{}, err
		}
		vendors = append(vendors, id)
	}

	start := s.now().UTC()
	if in.StartDate != nil {
		start = in.StartDate.UTC()
	}
	created, err := s.repo.Create(ctx, Promo{
		ID:            uuid.New(),
		VendorIDs:     vendors,
		StartDate:     start,
		DurationWeeks: in.DurationWeeks,
		EndDate:       endDate(start, in.DurationWeeks),
		Active:        true,
	})
	if err != nil {
		return Promo{}, err
	}
	log.WithFields(log.Fields{"promo_id": created.ID, "vendors": len(vendors), "ends": created.EndDate}).Info("promo created")
	return created, nil
}

func (s *Service) List(ctx context.Context) ([]Promo, error) {
	return s.repo.List(ctx)
}

func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) (Promo, error) {
	return s.repo.Deactivate(ctx, id)
}
