// Package quota enforces the free-tier rewrite limit.
package quota

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/humane/internal/db"
)

// ErrLimitReached is returned when a free user has used every rewrite in the period
var ErrLimitReached = errors.New("free rewrite limit reached")

// Unlimited is reported as Remaining for subscribers.
const Unlimited = -1

// Store is the subset of db.DB the checker reads and writes
type Store interface {
	GetUsage(ctx context.Context, userID uuid.UUID) (*db.Usage, error)
	IncrementUsage(ctx context.Context, userID uuid.UUID) (int, error)
	ReserveUsage(ctx context.Context, userID uuid.UUID, limit int) (int, bool, error)
	ReleaseUsage(ctx context.Context, userID uuid.UUID) error
	HasActiveSubscription(ctx context.Context, userID uuid.UUID) (bool, error)
}

// Status is a user's position against the limit.
type Status struct {
	RewriteCount int  `json:"rewrite_count"`
	Limit        int  `json:"limit"`
	Remaining    int  `json:"remaining"`
	Subscribed   bool `json:"subscribed"`
}

// Checker applies a per-period rewrite limit. Active subscribers are not limited.
type Checker struct {
	store Store
	limit int
}

// NewChecker creates a checker with the given free-tier limit
func NewChecker(store Store, limit int) *Checker {
	return &Checker{store: store, limit: limit}
}

// Limit returns the free-tier limit
func (c *Checker) Limit() int {
	return c.limit
}

// Status reports a user's current usage
func (c *Checker) Status(ctx context.Context, userID uuid.UUID) (Status, error) {
	usage, err := c.store.GetUsage(ctx, userID)
	if err != nil {
		return Status{}, fmt.Errorf("failed to check usage: %w", err)
	}
	subscribed, err := c.store.HasActiveSubscription(ctx, userID)
	if err != nil {
		return Status{}, fmt.Errorf("failed to check subscription: %w", err)
	}

	status := Status{Limit: c.limit, Subscribed: subscribed}
	if usage != nil {
		status.RewriteCount = usage.RewriteCount
	}
	if subscribed {
		status.Remaining = Unlimited
	} else {
		status.Remaining = max(c.limit-status.RewriteCount, 0)
	}
	return status, nil
}

// Reserve claims one rewrite for the user before any work is done and
// returns the new count. Free users are refused with ErrLimitReached once the
// limit is used up; the store applies the limit atomically, so concurrent
// requests cannot overshoot it. Subscribers are counted but never refused.
func (c *Checker) Reserve(ctx context.Context, userID uuid.UUID) (int, error) {
	subscribed, err := c.store.HasActiveSubscription(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to check subscription: %w", err)
	}
	if subscribed {
		count, err := c.store.IncrementUsage(ctx, userID)
		if err != nil {
			return 0, fmt.Errorf("failed to record usage: %w", err)
		}
		return count, nil
	}

	count, ok, err := c.store.ReserveUsage(ctx, userID, c.limit)
	if err != nil {
		return 0, fmt.Errorf("failed to record usage: %w", err)
	}
	if !ok {
		return 0, ErrLimitReached
	}
	return count, nil
}

// Release hands back a reservation whose rewrite failed
func (c *Checker) Release(ctx context.Context, userID uuid.UUID) error {
	if err := c.store.ReleaseUsage(ctx, userID); err != nil {
		return fmt.Errorf("failed to release usage: %w", err)
	}
	return nil
}
