// Package broadcast fans realtime events out to connected clients grouped in
// audiences: the role rooms and one personal room per user.
package broadcast

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/wichananm65/campus-market-backend/internal/auth"
)

const (
	AudienceVendors   = "vendors"
	AudienceCustomers = "customers"
	AudienceAdmins    = "admins"
)

// UserAudience is the personal room of one user.
func UserAudience(id uuid.UUID) string {
	return "user:" + id.String()
}

// RoleAudience maps a role to its room.
func RoleAudience(role auth.Role) string {
	switch role {
	case auth.RoleVendor:
		return AudienceVendors
	case auth.RoleAdmin:
		return AudienceAdmins
	default:
		return AudienceCustomers
	}
}

// Event is what subscribers receive.
type Event struct {
	Audience string          `json:"audience"`
	Name     string          `json:"event"`
	Payload  json.RawMessage `json:"payload"`
	At       time.Time       `json:"at"`
}

// Publisher sends an event to every subscriber of audience. Delivery is
// best effort.
type Publisher interface {
	Publish(ctx context.Context, audience, event string, payload any) error
}

func newEvent(audience, name string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Audience: audience, Name: name, Payload: raw, At: time.Now().UTC()}, nil
}
