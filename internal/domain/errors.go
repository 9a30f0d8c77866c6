package domain

import "errors"

var (
	// ErrUnauthorized means no authenticated user backs the request.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound covers missing products, orders and cart line items,
	// including rows owned by a different user.
	ErrNotFound = errors.New("not found")

	// ErrEmptyCart aborts a checkout before anything is written.
	ErrEmptyCart = errors.New("empty cart")

	// ErrConflict marks a retryable persistence conflict, such as two
	// concurrent checkout submissions racing over the same cart.
	ErrConflict = errors.New("persistence conflict")
)
