package billing

import (
	"errors"
	"fmt"
)

// ErrMissingSignature is returned when a webhook arrives without a signature header
var ErrMissingSignature = errors.New("missing stripe-signature header")

// SignatureError represents a webhook payload that failed verification
type SignatureError struct {
	Cause error
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("webhook signature verification failed: %v", e.Cause)
}

func (e *SignatureError) Unwrap() error {
	return e.Cause
}

// EventError represents a verified event that could not be applied
type EventError struct {
	EventType string
	Message   string
	Cause     error
}

func (e *EventError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to handle %s: %s: %v", e.EventType, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to handle %s: %s", e.EventType, e.Message)
}

func (e *EventError) Unwrap() error {
	return e.Cause
}
