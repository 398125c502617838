// internal/checkout/errors.go
package checkout

import "errors"

var (
	// ErrEmptyCart rejects checkout before any side effect; the client can
	// retry after adding items.
	ErrEmptyCart = errors.New("cart is empty, nothing to checkout")

	// ErrPersistence reports that the durability layer failed during the
	// commit step. All reservations have been released; the whole checkout
	// is safe to retry.
	ErrPersistence = errors.New("order persistence failed")

	// ErrRateLimited reports that the user exceeded the checkout rate.
	ErrRateLimited = errors.New("checkout rate limit exceeded")

	// ErrClaimCodeExhausted reports repeated claim-code collisions. Safe to
	// retry.
	ErrClaimCodeExhausted = errors.New("could not generate a unique claim code")
)
