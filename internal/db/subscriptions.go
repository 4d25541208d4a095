package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// UpsertSubscription creates or updates a subscription keyed by its provider ID.
// A nil UserID never clears a user already linked to the subscription.
func (db *DB) UpsertSubscription(ctx context.Context, s *Subscription) error {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO subscriptions (customer_id, subscription_id, user_id, status, price_id, current_period_end)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (subscription_id) DO UPDATE SET
		   customer_id = EXCLUDED.customer_id,
		   user_id = COALESCE(EXCLUDED.user_id, subscriptions.user_id),
		   status = EXCLUDED.status,
		   price_id = EXCLUDED.price_id,
		   current_period_end = EXCLUDED.current_period_end,
		   updated_at = NOW()
		 RETURNING id, user_id, created_at, updated_at`,
		s.CustomerID, s.SubscriptionID, s.UserID, s.Status, s.PriceID, s.CurrentPeriodEnd,
	).Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}
	return nil
}

// InsertSubscription records a subscription from a completed checkout.
// If a subscription event already created the row, only the user link is filled in.
func (db *DB) InsertSubscription(ctx context.Context, s *Subscription) error {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO subscriptions (customer_id, subscription_id, user_id, status, price_id, current_period_end)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (subscription_id) DO UPDATE SET
		   user_id = COALESCE(subscriptions.user_id, EXCLUDED.user_id),
		   updated_at = NOW()
		 RETURNING id, user_id, status, created_at, updated_at`,
		s.CustomerID, s.SubscriptionID, s.UserID, s.Status, s.PriceID, s.CurrentPeriodEnd,
	).Scan(&s.ID, &s.UserID, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert subscription: %w", err)
	}
	return nil
}

// CancelSubscriptionsByCustomer marks every subscription of a customer as canceled
func (db *DB) CancelSubscriptionsByCustomer(ctx context.Context, customerID string) (int64, error) {
	tag, err := db.pool.Exec(ctx,
		`UPDATE subscriptions SET status = $1, updated_at = NOW() WHERE customer_id = $2`,
		StatusCanceled, customerID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel subscriptions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// HasActiveSubscription reports whether a user has a paid subscription in its current period
func (db *DB) HasActiveSubscription(ctx context.Context, userID uuid.UUID) (bool, error) {
	var active bool
	err := db.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM subscriptions
		   WHERE user_id = $1
		     AND status IN ($2, $3)
		     AND (current_period_end IS NULL OR current_period_end > NOW())
		 )`,
		userID, StatusActive, StatusTrialing,
	).Scan(&active)
	if err != nil {
		return false, fmt.Errorf("failed to check subscription: %w", err)
	}
	return active, nil
}
