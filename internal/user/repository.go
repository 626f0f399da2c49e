package user

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wichananm65/campus-market-backend/internal/apperr"
	"github.com/wichananm65/campus-market-backend/internal/auth"
)

var (
	ErrNotFound           = apperr.NotFound("user not found")
	ErrInvalidCredentials = apperr.Unauthorized("invalid email or password")
	ErrEmailExists        = apperr.Conflict("email already exists")
	ErrHasOrders          = apperr.Conflict("user still has orders")
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	ListByRole(ctx context.Context, role auth.Role) ([]User, error)
	List(ctx context.Context) ([]User, error)
	CountByRole(ctx context.Context) (map[auth.Role]int, error)
	Create(ctx context.Context, u User) (User, error)
	Update(ctx context.Context, u User) (User, error)
	SetRefreshToken(ctx context.Context, id uuid.UUID, token string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type InMemoryRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]User
	now   func() time.Time
}

func NewInMemoryRepository(seed []User) *InMemoryRepository {
	repo := &InMemoryRepository{
		users: make(map[uuid.UUID]User, len(seed)),
		now:   time.Now,
	}
	for _, u := range seed {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		u.Email = strings.ToLower(u.Email)
		repo.users[u.ID] = u
	}
	return repo
}

func (r *InMemoryRepository) GetByID(_ context.Context, id uuid.UUID) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *InMemoryRepository) GetByEmail(_ context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = strings.ToLower(email)
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *InMemoryRepository) ListByRole(_ context.Context, role auth.Role) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]User, 0)
	for _, u := range r.users {
		if u.Role == role {
			users = append(users, u)
		}
	}
	sortNewestFirst(users)
	return users, nil
}

func (r *InMemoryRepository) List(_ context.Context) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sortNewestFirst(users)
	return users, nil
}

func (r *InMemoryRepository) CountByRole(_ context.Context) (map[auth.Role]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := map[auth.Role]int{}
	for _, u := range r.users {
		counts[u.Role]++
	}
	return counts, nil
}

func (r *InMemoryRepository) Create(_ context.Context, u User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u.Email = strings.ToLower(u.Email)
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return User{}, ErrEmailExists
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := r.now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	r.users[u.ID] = u
	return u, nil
}

func (r *InMemoryRepository) Update(_ context.Context, u User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[u.ID]
	if !ok {
		return User{}, ErrNotFound
	}
	existing.Username = u.Username
	existing.Phone = u.Phone
	existing.Location = u.Location
	existing.Role = u.Role
	existing.Verified = u.Verified
	if u.Password != "" {
		existing.Password = u.Password
	}
	existing.UpdatedAt = r.now().UTC()
	r.users[u.ID] = existing
	return existing, nil
}

func (r *InMemoryRepository) SetRefreshToken(_ context.Context, id uuid.UUID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.RefreshToken = token
	r.users[id] = u
	return nil
}

func (r *InMemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func sortNewestFirst(users []User) {
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
}
