package billing

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo keeps subscription state in process memory, paired with the
// in-memory library store for local development and tests.
type MemoryRepo struct {
	mu        sync.RWMutex
	subs      map[string]Subscription // keyed by owner id
	customers map[string]string       // owner id -> customer id
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		subs:      make(map[string]Subscription),
		customers: make(map[string]string),
	}
}

func (r *MemoryRepo) GetByOwner(ctx context.Context, owner string) (Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, ok := r.subs[owner]
	if !ok {
		return Subscription{}, ErrNotFound
	}
	return sub, nil
}

func (r *MemoryRepo) Upsert(ctx context.Context, sub *Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *sub
	stored.UpdatedAt = time.Now()
	r.subs[sub.OwnerID] = stored
	return nil
}

func (r *MemoryRepo) UpdateBySubscriptionID(ctx context.Context, subscriptionID, status string, periodEnd time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for owner, sub := range r.subs {
		if sub.SubscriptionID == subscriptionID {
			sub.Status = status
			sub.CurrentPeriodEnd = periodEnd
			sub.UpdatedAt = time.Now()
			r.subs[owner] = sub
		}
	}
	return nil
}

func (r *MemoryRepo) GetCustomerID(ctx context.Context, owner string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.customers[owner], nil
}

func (r *MemoryRepo) SaveCustomerID(ctx context.Context, owner, customerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customers[owner] = customerID
	return nil
}
