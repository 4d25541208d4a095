package server

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/jonathan/humane/internal/billing"
	"github.com/jonathan/humane/internal/server/middleware"
)

// Stripe payloads are well under this size
const maxWebhookBytes = 64 << 10

// handleStripeWebhook verifies and applies a Stripe event
func (s *Server) handleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	if s.webhooks == nil {
		s.writeError(w, r, &ErrUnavailable{Service: serviceBilling})
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		s.metrics.ObserveWebhook("", "invalid")
		s.writeError(w, r, &ErrValidation{Field: "body", Message: "Invalid request body"})
		return
	}

	outcome, err := s.webhooks.Handle(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		var signatureErr *billing.SignatureError
		if errors.Is(err, billing.ErrMissingSignature) || errors.As(err, &signatureErr) {
			log.Printf("[billing] rejected webhook: %v", err)
			s.metrics.ObserveWebhook(outcome.EventType, "invalid")
		} else {
			s.metrics.ObserveWebhook(outcome.EventType, "error")
		}
		s.writeError(w, r, err)
		return
	}

	result := "ignored"
	if outcome.Handled {
		result = "handled"
	}
	s.metrics.ObserveWebhook(outcome.EventType, result)

	s.jsonResponse(w, http.StatusOK, map[string]bool{"received": true})
}

// handleUsage reports the user's rewrite usage against the free limit
func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	if s.quota == nil {
		s.writeError(w, r, &ErrUnavailable{Service: serviceQuota})
		return
	}
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.writeError(w, r, &ErrUnauthorized{})
		return
	}

	status, err := s.quota.Status(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, status)
}
