package billing

import (
	"errors"
	"time"
)

// ErrNotFound is returned when an owner has no subscription row.
var ErrNotFound = errors.New("subscription not found")

// StatusActive is the one status the core consumes: every other status means
// the paid features are gated off.
const StatusActive = "active"

// Subscription mirrors the payment processor's state for one owner. The
// processor owns the lifecycle; this row is a webhook-driven shadow.
type Subscription struct {
	OwnerID          string    `json:"ownerId"`
	CustomerID       string    `json:"-"`
	SubscriptionID   string    `json:"-"`
	Status           string    `json:"status"`
	CurrentPeriodEnd time.Time `json:"currentPeriodEnd"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Active reports whether the owner may use the paid features.
func (s *Subscription) Active() bool {
	return s != nil && s.Status == StatusActive
}
