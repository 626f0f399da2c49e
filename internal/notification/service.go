package notification

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/wichananm65/campus-market-backend/internal/apperr"
	"github.com/wichananm65/campus-market-backend/internal/auth"
	"github.com/wichananm65/campus-market-backend/internal/broadcast"
)

const (
	EventNew    = "new-notification"
	EventDelete = "delete-notification"
)

type Service struct {
	repo      Repository
	publisher broadcast.Publisher
	ttl       time.Duration
	now       func() time.Time
}

func NewService(repo Repository, publisher broadcast.Publisher, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Service{repo: repo, publisher: publisher, ttl: ttl, now: time.Now}
}

// Create stores the message and pushes it to the rooms it targets. An empty
// target means both audiences.
func (s *Service) Create(ctx context.Context, message string, target Target) (Notification, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Notification{}, apperr.Validation("message is required")
	}
	if target == "" {
		target = TargetBoth
	}
	if !target.Valid() {
		return Notification{}, apperr.Validation("target must be vendor, customer or both")
	}

	now := s.now().UTC()
	n, err := s.repo.Create(ctx, Notification{
		ID:        uuid.New(),
		Message:   message,
		Target:    target,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	})
	if err != nil {
		return Notification{}, err
	}

	var rooms []string
	switch target {
	case TargetVendor:
		rooms = []string{broadcast.AudienceVendors}
	case TargetCustomer:
		rooms = []string{broadcast.AudienceCustomers}
	default:
		rooms = []string{broadcast.AudienceVendors, broadcast.AudienceCustomers}
	}
	s.publish(ctx, EventNew, n, rooms...)
	return n, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, EventDelete, deletedNotification{ID: id},
		broadcast.AudienceVendors, broadcast.AudienceCustomers, broadcast.AudienceAdmins)
	return nil
}

type deletedNotification struct {
	ID uuid.UUID `json:"id"`
}

// ListForRole returns what the role may read, newest first.
func (s *Service) ListForRole(ctx context.Context, role auth.Role) ([]Notification, error) {
	return s.repo.List(ctx, targetsFor(role), s.now().UTC())
}

func (s *Service) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *Service) PurgeExpired(ctx context.Context) (int, error) {
	return s.repo.PurgeExpired(ctx, s.now().UTC())
}

// RunPurger deletes expired notifications every interval until ctx ends. A
// non-positive interval means hourly.
func (s *Service) RunPurger(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := s.PurgeExpired(ctx)
			if err != nil {
				log.WithError(err).Warn("notification purge failed")
				continue
			}
			if n > 0 {
				log.WithField("purged", n).Info("expired notifications removed")
			}
		}
	}
}

// publish is best effort; the notification is already stored.
func (s *Service) publish(ctx context.Context, event string, payload any, rooms ...string) {
	if s.publisher == nil {
		return
	}
	for _, room := range rooms {
		if err := s.publisher.Publish(ctx, room, event, payload); err != nil {
			log.WithError(err).WithFields(log.Fields{"room": room, "event": event}).Warn("notification broadcast failed")
		}
	}
}
