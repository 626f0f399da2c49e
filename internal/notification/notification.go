package notification

import (
	"time"

	"github.com/google/uuid"

	"github.com/wichananm65/campus-market-backend/internal/apperr"
	"github.com/wichananm65/campus-market-backend/internal/auth"
)

type Target string

const (
	TargetVendor   Target = "vendor"
	TargetCustomer Target = "customer"
	TargetBoth     Target = "both"
)

func (t Target) Valid() bool {
	return t == TargetVendor || t == TargetCustomer || t == TargetBoth
}

// Notification is an admin broadcast message. It disappears once ExpiresAt
// has passed.
type Notification struct {
	ID        uuid.UUID   `json:"id"`
	Message   string      `json:"message"`
	Target    Target      `json:"target"`
	CreatedAt time.Time   `json:"createdAt"`
	ExpiresAt time.Time   `json:"expiresAt"`
	ReadBy    []uuid.UUID `json:"readBy"`
}

func (n Notification) ReadByUser(id uuid.UUID) bool {
	for _, r := range n.ReadBy {
		if r == id {
			return true
		}
	}
	return false
}

// targetsFor lists the targets a role may read. Admins read everything.
func targetsFor(role auth.Role) []Target {
	switch role {
	case auth.RoleAdmin:
		return []Target{TargetVendor, TargetCustomer, TargetBoth}
	case auth.RoleVendor:
		return []Target{TargetVendor, TargetBoth}
	default:
		return []Target{TargetCustomer, TargetBoth}
	}
}

var ErrNotFound = apperr.NotFound("Notification not found")
