package notification

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, n Notification) (Notification, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns unexpired notifications for the given targets, newest first.
	List(ctx context.Context, targets []Target, now time.Time) ([]Notification, error)
	// MarkRead is idempotent.
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}

type InMemoryRepository struct {
	mu            sync.RWMutex
	notifications map[uuid.UUID]Notification
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{notifications: map[uuid.UUID]Notification{}}
}

func (r *InMemoryRepository) Create(_ context.Context, n Notification) (Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.ReadBy = []uuid.UUID{}
	r.notifications[n.ID] = n
	return n, nil
}

func (r *InMemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.notifications[id]; !ok {
		return ErrNotFound
	}
	delete(r.notifications, id)
	return nil
}

func (r *InMemoryRepository) List(_ context.Context, targets []Target, now time.Time) ([]Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[Target]bool, len(targets))
	for _, t := range targets {
		wanted[t] = true
	}
	out := make([]Notification, 0)
	for _, n := range r.notifications {
		if wanted[n.Target] && n.ExpiresAt.After(now) {
			n.ReadBy = append([]uuid.UUID(nil), n.ReadBy...)
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *InMemoryRepository) MarkRead(_ context.Context, id, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notifications[id]
	if !ok {
		return ErrNotFound
	}
	if !n.ReadByUser(userID) {
		n.ReadBy = append(n.ReadBy, userID)
		r.notifications[id] = n
	}
	return nil
}

func (r *InMemoryRepository) PurgeExpired(_ context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	purged := 0
	for id, n := range r.notifications {
		if !n.ExpiresAt.After(now) {
			delete(r.notifications, id)
			purged++
		}
	}
	return purged, nil
}
