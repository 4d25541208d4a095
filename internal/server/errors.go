// Package server provides the HTTP REST API for scoring and rewriting posts.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/humane/internal/billing"
	"github.com/jonathan/humane/internal/rewriting"
)

// User-facing messages
const (
	msgMissingPost      = "Missing post content"
	msgMissingRewriteID = "Missing rewrite ID"
	msgQuotaExceeded    = "Free rewrite limit reached. Please upgrade to continue."
	msgModelUnavailable = "AI model is currently unavailable. Please try again later."
	msgMissingSignature = "Missing stripe-signature header"
	msgInternal         = "Internal server error"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotFound indicates a resource the user does not own or that does not exist
type ErrNotFound struct {
	Resource string
	ID       uuid.UUID
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrQuotaExceeded indicates the free rewrite limit is used up
type ErrQuotaExceeded struct {
	Limit int
}

func (e *ErrQuotaExceeded) Error() string {
	return fmt.Sprintf("free rewrite limit of %d reached", e.Limit)
}

// ErrUnauthorized indicates a route that needs a signed-in user
type ErrUnauthorized struct{}

func (e *ErrUnauthorized) Error() string {
	return "unauthorized"
}

// ErrUnavailable indicates a collaborator that is not configured
type ErrUnavailable struct {
	Service string
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("%s is not configured", e.Service)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr   *ErrValidation
		notFoundErr     *ErrNotFound
		quotaErr        *ErrQuotaExceeded
		unauthorizedErr *ErrUnauthorized
		unavailableErr  *ErrUnavailable
		apiErr          *rewriting.APICallError
		parseErr        *rewriting.ParseError
		rewriteInputErr *rewriting.ValidationError
		signatureErr    *billing.SignatureError
	)

	switch {
	case errors.As(err, &validationErr), errors.As(err, &rewriteInputErr),
		errors.As(err, &signatureErr), errors.Is(err, billing.ErrMissingSignature):
		return http.StatusBadRequest
	case errors.As(err, &unauthorizedErr):
		return http.StatusUnauthorized
	case errors.As(err, &quotaErr):
		return http.StatusForbidden
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &parseErr):
		return http.StatusBadGateway
	case errors.As(err, &apiErr), errors.As(err, &unavailableErr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage returns the message shown to API clients for err.
// Internal details are never exposed for 5xx errors.
func publicMessage(err error) string {
	var (
		validationErr   *ErrValidation
		notFoundErr     *ErrNotFound
		unavailableErr  *ErrUnavailable
		rewriteInputErr *rewriting.ValidationError
		parseErr        *rewriting.ParseError
		apiErr          *rewriting.APICallError
		signatureErr    *billing.SignatureError
	)

	switch {
	case errors.As(err, &validationErr):
		return validationErr.Message
	case errors.As(err, &rewriteInputErr):
		return rewriteInputErr.Message
	case errors.Is(err, billing.ErrMissingSignature):
		return msgMissingSignature
	case errors.As(err, &signatureErr):
		return "Invalid webhook signature"
	case errors.As(err, &notFoundErr):
		return notFoundErr.Resource + " not found"
	case errors.As(err, new(*ErrQuotaExceeded)):
		return msgQuotaExceeded
	case errors.As(err, new(*ErrUnauthorized)):
		return "Unauthorized"
	case errors.As(err, &unavailableErr):
		if unavailableErr.Service == serviceLLM {
			return msgModelUnavailable
		}
		return fmt.Sprintf("%s is not available", unavailableErr.Service)
	case errors.As(err, &apiErr):
		return msgModelUnavailable
	case errors.As(err, &parseErr):
		return "AI model returned an unusable response. Please try again."
	default:
		return msgInternal
	}
}
