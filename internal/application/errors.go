package application

import (
	"context"
	"errors"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrForbidden          = errors.New("forbidden")

	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
	ErrEmptyComment      = errors.New("comment must not be empty")
	ErrProviderMismatch  = errors.New("service does not belong to provider")
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrAggregateStale signals the review row exists but one of the
	// denormalized rating writes failed. The review is not rolled back; a
	// queued re-aggregation heals the numbers.
	ErrAggregateStale = errors.New("rating aggregates stale")
)

// Publisher abstracts queue publishing so services can be tested without a
// broker. *helpers.RabbitPublisher satisfies it.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// ReaggregateJob asks the worker to recompute a service's and its provider's
// rating aggregates from the review table.
type ReaggregateJob struct {
	ServiceID  string `json:"service_id"`
	ProviderID string `json:"provider_id"`
}
