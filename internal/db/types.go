package db

import (
	"time"

	"github.com/google/uuid"
)

// Rewrite is one saved rewrite in a user's history
type Rewrite struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	OriginalPost  string    `json:"original_post"`
	RewrittenPost string    `json:"rewritten_post"`
	Tone          string    `json:"tone"`
	CringeScore   int       `json:"cringe_score"`
	CreatedAt     time.Time `json:"created_at"`
}

// RewritePage is one page of a user's history
type RewritePage struct {
	Rewrites []Rewrite `json:"rewrites"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
	HasMore  bool      `json:"has_more"`
}

// Usage is a user's rewrite counter for the current period
type Usage struct {
	UserID       uuid.UUID `json:"user_id"`
	RewriteCount int       `json:"rewrite_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Subscription mirrors a billing provider subscription
type Subscription struct {
	ID               uuid.UUID  `json:"id"`
	CustomerID       string     `json:"customer_id"`
	SubscriptionID   string     `json:"subscription_id"`
	UserID           *uuid.UUID `json:"user_id,omitempty"`
	Status           string     `json:"status"`
	PriceID          string     `json:"price_id"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Subscription status values
const (
	StatusActive   = "active"
	StatusTrialing = "trialing"
	StatusCanceled = "canceled"
)

// IsActive reports whether the subscription grants paid access at now.
func (s *Subscription) IsActive(now time.Time) bool {
	if s.Status != StatusActive && s.Status != StatusTrialing {
		return false
	}
	return s.CurrentPeriodEnd == nil || s.CurrentPeriodEnd.After(now)
}

// Pagination bounds for history listing
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
	MaxPage          = 100_000
)

// NormalizePage clamps page and limit to valid values and returns the row offset.
// Page is capped at MaxPage so the offset cannot overflow.
func NormalizePage(page, limit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit, (page - 1) * limit
}
