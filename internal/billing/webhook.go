// Package billing verifies Stripe webhooks and mirrors subscription state
// into the local store.
package billing

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/humane/internal/db"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Handled event types
const (
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
	EventCheckoutCompleted   = "checkout.session.completed"
)

// userIDMetadataKey links a subscription to an app user when set at checkout
const userIDMetadataKey = "user_id"

// Store is the subset of db.DB the webhook writes to
type Store interface {
	UpsertSubscription(ctx context.Context, s *db.Subscription) error
	InsertSubscription(ctx context.Context, s *db.Subscription) error
	CancelSubscriptionsByCustomer(ctx context.Context, customerID string) (int64, error)
}

// Outcome describes what a webhook delivery did
type Outcome struct {
	EventID   string
	EventType string
	Handled   bool
}

// WebhookHandler verifies and applies Stripe events
type WebhookHandler struct {
	secret    string
	store     Store
	fetcher   SubscriptionFetcher
	tolerance time.Duration
}

// NewWebhookHandler creates a handler. fetcher may be nil, in which case
// checkout.session.completed events that only carry a subscription ID fail.
func NewWebhookHandler(secret string, store Store, fetcher SubscriptionFetcher) *WebhookHandler {
	return &WebhookHandler{
		secret:    secret,
		store:     store,
		fetcher:   fetcher,
		tolerance: webhook.DefaultTolerance,
	}
}

// Handle verifies payload against the Stripe-Signature header and applies the event.
func (h *WebhookHandler) Handle(ctx context.Context, payload []byte, signature string) (Outcome, error) {
	if signature == "" {
		return Outcome{}, ErrMissingSignature
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, h.secret, webhook.ConstructEventOptions{
		Tolerance:                h.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return Outcome{}, &SignatureError{Cause: err}
	}

	outcome := Outcome{EventID: event.ID, EventType: string(event.Type), Handled: true}
	if event.Data == nil {
		return outcome, &EventError{EventType: outcome.EventType, Message: "event has no data"}
	}

	switch outcome.EventType {
	case EventSubscriptionCreated, EventSubscriptionUpdated:
		err = h.syncSubscription(ctx, outcome.EventType, event.Data.Raw)
	case EventSubscriptionDeleted:
		err = h.cancelSubscription(ctx, outcome.EventType, event.Data.Raw)
	case EventCheckoutCompleted:
		err = h.completeCheckout(ctx, outcome.EventType, event.Data.Raw)
	default:
		outcome.Handled = false
	}
	if err != nil {
		return outcome, err
	}

	log.Printf("[billing] event %s (%s) handled=%t", outcome.EventID, outcome.EventType, outcome.Handled)
	return outcome, nil
}

func (h *WebhookHandler) syncSubscription(ctx context.Context, eventType string, raw json.RawMessage) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(raw, &sub); err != nil {
		return &EventError{EventType: eventType, Message: "invalid subscription payload", Cause: err}
	}

	record := subscriptionRecord(&sub, nil)
	if record.CustomerID == "" {
		return &EventError{EventType: eventType, Message: "subscription has no customer"}
	}
	if err := h.store.UpsertSubscription(ctx, record); err != nil {
		return &EventError{EventType: eventType, Message: "failed to store subscription", Cause: err}
	}
	return nil
}

func (h *WebhookHandler) cancelSubscription(ctx context.Context, eventType string, raw json.RawMessage) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(raw, &sub); err != nil {
		return &EventError{EventType: eventType, Message: "invalid subscription payload", Cause: err}
	}
	if sub.Customer == nil || sub.Customer.ID == "" {
		return &EventError{EventType: eventType, Message: "subscription has no customer"}
	}

	n, err := h.store.CancelSubscriptionsByCustomer(ctx, sub.Customer.ID)
	if err != nil {
		return &EventError{EventType: eventType, Message: "failed to cancel subscription", Cause: err}
	}
	if n == 0 {
		log.Printf("[billing] cancel for unknown customer %s", sub.Customer.ID)
	}
	return nil
}

func (h *WebhookHandler) completeCheckout(ctx context.Context, eventType string, raw json.RawMessage) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return &EventError{EventType: eventType, Message: "invalid checkout session payload", Cause: err}
	}
	if session.Subscription == nil || session.Subscription.ID == "" {
		// One-off payments carry no subscription
		return nil
	}

	sub := session.Subscription
	if sub.Status == "" {
		if h.fetcher == nil {
			return &EventError{EventType: eventType, Message: "no subscription fetcher configured"}
		}
		fetched, err := h.fetcher.Get(ctx, sub.ID)
		if err != nil {
			return &EventError{EventType: eventType, Message: "failed to retrieve subscription " + sub.ID, Cause: err}
		}
		sub = fetched
	}

	var userID *uuid.UUID
	if id, err := uuid.Parse(session.ClientReferenceID); err == nil {
		userID = &id
	}
	record := subscriptionRecord(sub, userID)
	if record.CustomerID == "" && session.Customer != nil {
		record.CustomerID = session.Customer.ID
	}

	if err := h.store.InsertSubscription(ctx, record); err != nil {
		return &EventError{EventType: eventType, Message: "failed to store subscription", Cause: err}
	}
	return nil
}

// subscriptionRecord maps a Stripe subscription onto a store row. userID
// overrides any user_id found in the subscription metadata.
func subscriptionRecord(sub *stripe.Subscription, userID *uuid.UUID) *db.Subscription {
	record := &db.Subscription{
		SubscriptionID: sub.ID,
		Status:         string(sub.Status),
		UserID:         userID,
	}
	if sub.Customer != nil {
		record.CustomerID = sub.Customer.ID
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		record.PriceID = sub.Items.Data[0].Price.ID
	}
	if sub.CurrentPeriodEnd > 0 {
		end := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
		record.CurrentPeriodEnd = &end
	}
	if record.UserID == nil {
		if id, err := uuid.Parse(sub.Metadata[userIDMetadataKey]); err == nil {
			record.UserID = &id
		}
	}
	return record
}
