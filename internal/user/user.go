package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/wichananm65/campus-market-backend/internal/auth"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Password     string    `json:"password,omitempty"`
	Role         auth.Role `json:"role"`
	Verified     bool      `json:"verified"`
	Phone        string    `json:"phone"`
	Location     string    `json:"location"`
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Profile holds the editable fields of a user. Nil fields are left unchanged.
type Profile struct {
	Username *string `json:"username,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Location *string `json:"location,omitempty"`
}

func sanitizeUser(u User) User {
	u.Password = ""
	u.RefreshToken = ""
	return u
}
