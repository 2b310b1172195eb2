package domain

import "errors"

// Error kinds surfaced by repositories and services. Callers branch with
// errors.Is; storage adapters are responsible for mapping driver-specific
// failures (missing rows, foreign key violations) onto these before they
// leave the adapter.
var (
	// ErrInvalidInput marks malformed input rejected before any work starts.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks a referenced entity that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientStock is returned by the conditional stock decrement
	// when the row predicate matched nothing.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrConflict marks a storage-level integrity conflict, such as deleting
	// a client that still has orders.
	ErrConflict = errors.New("integrity conflict")
)
