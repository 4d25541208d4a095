package billing

import (
	"context"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/subscription"
)

// SubscriptionFetcher retrieves a subscription from the billing provider
type SubscriptionFetcher interface {
	Get(ctx context.Context, id string) (*stripe.Subscription, error)
}

// StripeFetcher fetches subscriptions through the Stripe API
type StripeFetcher struct {
	client subscription.Client
}

// NewStripeFetcher creates a fetcher authenticated with secretKey
func NewStripeFetcher(secretKey string) *StripeFetcher {
	return &StripeFetcher{
		client: subscription.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
	}
}

// Get retrieves a subscription by ID
func (f *StripeFetcher) Get(ctx context.Context, id string) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	return f.client.Get(id, params)
}
