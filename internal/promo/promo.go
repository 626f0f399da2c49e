package promo

import (
	"time"

	"github.com/google/uuid"

	"github.com/wichananm65/campus-market-backend/internal/apperr"
)

// Promo features a set of vendors for a whole number of weeks.
type Promo struct {
	ID            uuid.UUID   `json:"id"`
	VendorIDs     []uuid.UUID `json:"vendorIds"`
	StartDate     time.Time   `json:"startDate"`
	DurationWeeks int         `json:"durationWeeks"`
	EndDate       time.Time   `json:"endDate"`
	Active        bool        `json:"active"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// Running reports whether the promo is active and now falls before EndDate.
func (p Promo) Running(now time.Time) bool {
	return p.Active && !now.After(p.EndDate)
}

type Input struct {
	VendorIDs     []uuid.UUID `json:"vendorIds"`
	StartDate     *time.Time  `json:"startDate"`
	DurationWeeks int         `json:"durationWeeks"`
}

const DefaultDurationWeeks = 2

func endDate(start time.Time, weeks int) time.Time {
	return start.AddDate(0, 0, 7*weeks)
}

var ErrNotFound = apperr.NotFound("promo not found")
