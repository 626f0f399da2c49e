package promo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/campus-market-backend/internal/apperr"
	"github.com/wichananm65/campus-market-backend/internal/auth"
	"github.com/wichananm65/campus-market-backend/internal/user"
)

type promoFixture struct {
	svc      *Service
	now      *time.Time
	vendor   uuid.UUID
	vendor2  uuid.UUID
	customer uuid.UUID
}

func newPromoFixture() promoFixture {
	f := promoFixture{vendor: uuid.New(), vendor2: uuid.New(), customer: uuid.New()}
	accounts := user.NewInMemoryRepository([]user.User{
		{ID: f.vendor, Email: "kofi@campus.edu", Role: auth.RoleVendor},
		{ID: f.vendor2, Email: "efua@campus.edu", Role: auth.RoleVendor},
		{ID: f.customer, Email: "yaw@campus.edu", Role: auth.RoleCustomer},
	})
	now := time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)
	f.now = &now
	f.svc = NewService(NewInMemoryRepository(), accounts)
	f.svc.now = func() time.Time { return now }
	return f
}

func TestCreateDefaultsAndEndDate(t *testing.T) {
	f := newPromoFixture()
	p, err := f.svc.Create(context.Background(), Input{VendorIDs: []uuid.UUID{f.vendor, f.vendor, f.vendor2}})
	require.NoError(t, err)

	assert.Equal(t, DefaultDurationWeeks, p.DurationWeeks)
	assert.Equal(t, *f.now, p.StartDate)
	assert.Equal(t, f.now.AddDate(0, 0, 14), p.EndDate)
	assert.True(t, p.Active)
	assert.Equal(t, []uuid.UUID{f.vendor, f.vendor2}, p.VendorIDs)
}

func TestCreateValidation(t *testing.T) {
	f := newPromoFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, Input{})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.Create(ctx, Input{VendorIDs: []uuid.UUID{f.vendor}, DurationWeeks: 5})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.Create(ctx, Input{VendorIDs: []uuid.UUID{f.customer}})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.Create(ctx, Input{VendorIDs: []uuid.UUID{uuid.New()}})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCurrent(t *testing.T) {
	f := newPromoFixture()
	ctx := context.Background()

	vendors, err := f.svc.Current(ctx)
	require.NoError(t, err)
	assert.Empty(t, vendors)

	older := f.now.AddDate(0, 0, -3)
	_, err = f.svc.Create(ctx, Input{VendorIDs: []uuid.UUID{f.vendor2}, StartDate: &older, DurationWeeks: 4})
	require.NoError(t, err)
	latest, err := f.svc.Create(ctx, Input{VendorIDs: []uuid.UUID{f.vendor}, DurationWeeks: 1})
	require.NoError(t, err)

	vendors, err = f.svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.vendor}, vendors)

	// the latest promo has ended, older ones are not consulted
	*f.now = f.now.AddDate(0, 0, 8)
	vendors, err = f.svc.Current(ctx)
	require.NoError(t, err)
	assert.Empty(t, vendors)

	*f.now = f.now.AddDate(0, 0, -8)
	_, err = f.svc.Deactivate(ctx, latest.ID)
	require.NoError(t, err)
	vendors, err = f.svc.Current(ctx)
	require.NoError(t, err)
	assert.Empty(t, vendors)

	_, err = f.svc.Deactivate(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
