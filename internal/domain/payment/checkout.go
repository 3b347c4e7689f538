package payment

import (
	"context"

	"github.com/google/uuid"
)

// CheckoutResult is what the customer needs to continue to the gateway's hosted page
type CheckoutResult struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	RedirectURL   string    `json:"redirect_url"`
}

// CheckoutReplay is the cache entry behind one idempotency key. Result stays nil
// while the first request holding the key is still running.
type CheckoutReplay struct {
	Fingerprint string          `json:"fingerprint"`
	Result      *CheckoutResult `json:"result,omitempty"`
}

// CheckoutCache remembers checkout results by idempotency key so a retried request
// does not open a second transaction. Keys are already scoped to the caller.
type CheckoutCache interface {
	// Reserve claims key for a new checkout with the given request fingerprint.
	// It returns nil when the claim succeeded and the existing entry when the key is taken.
	Reserve(ctx context.Context, key, fingerprint string) (*CheckoutReplay, error)

	// Complete stores the finished result under a key claimed by Reserve
	Complete(ctx context.Context, key string, replay *CheckoutReplay) error

	// Release frees a claimed key after a failed checkout so the client can retry
	Release(ctx context.Context, key string) error
}

// ErrIdempotencyKeyReused indicates a key was replayed with different checkout parameters
type ErrIdempotencyKeyReused struct {
	Key string
}

func (e ErrIdempotencyKeyReused) Error() string {
	return "idempotency key " + e.Key + " was already used for a different checkout"
}

// Is implements the errors.Is interface for ErrIdempotencyKeyReused
func (e ErrIdempotencyKeyReused) Is(target error) bool {
	_, ok := target.(ErrIdempotencyKeyReused)
	return ok
}

// ErrCheckoutInProgress indicates an earlier request with the same key has not finished
type ErrCheckoutInProgress struct {
	Key string
}

func (e ErrCheckoutInProgress) Error() string {
	return "a checkout with idempotency key " + e.Key + " is still in progress"
}

// Is implements the errors.Is interface for ErrCheckoutInProgress
func (e ErrCheckoutInProgress) Is(target error) bool {
	_, ok := target.(ErrCheckoutInProgress)
	return ok
}
