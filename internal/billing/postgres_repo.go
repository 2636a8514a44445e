package billing

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) GetByOwner(ctx context.Context, owner string) (Subscription, error) {
	const sql = `
		SELECT owner_id, customer_id, subscription_id, status, current_period_end, updated_at
		FROM subscriptions
		WHERE owner_id = $1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var s Subscription
	err := r.db.QueryRow(timeoutCtx, sql, owner).Scan(
		&s.OwnerID, &s.CustomerID, &s.SubscriptionID, &s.Status, &s.CurrentPeriodEnd, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Subscription{}, ErrNotFound
		}
		return Subscription{}, err
	}
	return s, nil
}

func (r *PostgresRepo) Upsert(ctx context.Context, sub *Subscription) error {
	const sql = `
		INSERT INTO subscriptions (owner_id, customer_id, subscription_id, status, current_period_end, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (owner_id) DO UPDATE SET
			customer_id = EXCLUDED.customer_id,
			subscription_id = EXCLUDED.subscription_id,
			status = EXCLUDED.status,
			current_period_end = EXCLUDED.current_period_end,
			updated_at = NOW()`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(timeoutCtx, sql,
		sub.OwnerID, sub.CustomerID, sub.SubscriptionID, sub.Status, sub.CurrentPeriodEnd,
	)
	return err
}

func (r *PostgresRepo) UpdateBySubscriptionID(ctx context.Context, subscriptionID, status string, periodEnd time.Time) error {
	const sql = `
		UPDATE subscriptions SET
			status = $1,
			current_period_end = $2,
			updated_at = NOW()
		WHERE subscription_id = $3`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(timeoutCtx, sql, status, periodEnd, subscriptionID)
	return err
}

func (r *PostgresRepo) GetCustomerID(ctx context.Context, owner string) (string, error) {
	const sql = `SELECT customer_id FROM billing_customers WHERE owner_id = $1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var id string
	err := r.db.QueryRow(timeoutCtx, sql, owner).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return id, nil
}

func (r *PostgresRepo) SaveCustomerID(ctx context.Context, owner, customerID string) error {
	const sql = `
		INSERT INTO billing_customers (owner_id, customer_id)
		VALUES ($1, $2)
		ON CONFLICT (owner_id) DO UPDATE SET customer_id = EXCLUDED.customer_id`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(timeoutCtx, sql, owner, customerID)
	return err
}
