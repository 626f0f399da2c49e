// Package admin serves the moderation console: platform counts, vendor
// verification, account removal and product moderation.
package admin

import (
	"context"

	"github.com/google/uuid"

	"github.com/wichananm65/campus-market-backend/internal/apperr"
	"github.com/wichananm65/campus-market-backend/internal/auth"
	"github.com/wichananm65/campus-market-backend/internal/order"
	"github.com/wichananm65/campus-market-backend/internal/product"
	"github.com/wichananm65/campus-market-backend/internal/user"
)

type Users interface {
	List(ctx context.Context) ([]user.User, error)
	ListByRole(ctx context.Context, role auth.Role) ([]user.User, error)
	CountByRole(ctx context.Context) (map[auth.Role]int, error)
	SetVerified(ctx context.Context, id uuid.UUID, verified bool) (user.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Products interface {
	Count(ctx context.Context) (int, error)
	SetStatus(ctx context.Context, id uuid.UUID, status product.Status) (product.Product, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

type Orders interface {
	CountByStatus(ctx context.Context) (map[order.Status]int, error)
}

type Service struct {
	users    Users
	products Products
	orders   Orders
}

func NewService(users Users, products Products, orders Orders) *Service {
	return &Service{users: users, products: products, orders: orders}
}

type Dashboard struct {
	Users    map[auth.Role]int    `json:"users"`
	Products int                  `json:"products"`
	Orders   map[order.Status]int `json:"orders"`
}

func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	users, err := s.users.CountByRole(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	products, err := s.products.Count(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	orders, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{Users: users, Products: products, Orders: orders}, nil
}

func (s *Service) Vendors(ctx context.Context) ([]user.User, error) {
	return s.users.ListByRole(ctx, auth.RoleVendor)
}

func (s *Service) Users(ctx context.Context) ([]user.User, error) {
	return s.users.List(ctx)
}

func (s *Service) VerifyVendor(ctx context.Context, id uuid.UUID, verified bool) (user.User, error) {
	return s.users.SetVerified(ctx, id, verified)
}

// DeleteUser removes an account. Admins cannot remove themselves.
func (s *Service) DeleteUser(ctx context.Context, actor, id uuid.UUID) error {
	if actor == id {
		return apperr.Validation("admins cannot delete their own account")
	}
	return s.users.Delete(ctx, id)
}

func (s *Service) SetProductStatus(ctx context.Context, id uuid.UUID, status product.Status) (product.Product, error) {
	return s.products.SetStatus(ctx, id, status)
}

func (s *Service) RemoveProduct(ctx context.Context, id uuid.UUID) error {
	return s.products.Remove(ctx, id)
}
