package billing

import (
	"context"
	"time"
)

// Repository persists the webhook-driven subscription shadow plus the owner's
// payment-processor customer id.
type Repository interface {
	// GetByOwner returns ErrNotFound when the owner has no subscription.
	GetByOwner(ctx context.Context, owner string) (Subscription, error)
	// Upsert creates or replaces the owner's subscription row.
	Upsert(ctx context.Context, sub *Subscription) error
	// UpdateBySubscriptionID applies a processor-side status change. No-op when
	// the subscription id is unknown.
	UpdateBySubscriptionID(ctx context.Context, subscriptionID, status string, periodEnd time.Time) error
	// GetCustomerID returns "" when the owner has no customer yet.
	GetCustomerID(ctx context.Context, owner string) (string, error)
	SaveCustomerID(ctx context.Context, owner, customerID string) error
}
