package order

import (
	"github.com/wichananm65/campus-market-backend/internal/apperr"
)

// AggregateStatus derives the order status from its items, in priority order:
// every item delivered gives delivered; any item accepted, preparing or ready
// gives confirmed; anything else is pending. Rejected items satisfy neither
// rule. An empty item list is pending.
func AggregateStatus(items []Item) Status {
	if len(items) == 0 {
		return StatusPending
	}

	allDelivered := true
	inProgress := false
	for _, it := range items {
		if it.Status != ItemDelivered {
			allDelivered = false
		}
		switch it.Status {
		case ItemAccepted, ItemPreparing, ItemReady:
			inProgress = true
		}
	}

	switch {
	case allDelivered:
		return StatusDelivered
	case inProgress:
		return StatusConfirmed
	default:
		return StatusPending
	}
}

// TransitionPolicy decides whether an item may move from one status to another.
type TransitionPolicy func(from, to ItemStatus) error

// PermissiveTransitions accepts any move between valid statuses.
func PermissiveTransitions(_, _ ItemStatus) error { return nil }

var forward = map[ItemStatus][]ItemStatus{
	ItemPending:   {ItemAccepted, ItemRejected},
	ItemAccepted:  {ItemPreparing},
	ItemPreparing: {ItemReady},
	ItemReady:     {ItemDelivered},
}

// StrictTransitions only allows the forward fulfilment path:
// pending to accepted or rejected, then accepted, preparing, ready, delivered.
// Re-writing the current status is a no-op and allowed.
func StrictTransitions(from, to ItemStatus) error {
	if from == to {
		return nil
	}
	for _, next := range forward[from] {
		if next == to {
			return nil
		}
	}
	return apperr.Validation("cannot move item from %s to %s", from, to)
}
