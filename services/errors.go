package services

import "errors"

// Engine error kinds. Callers classify failures with errors.Is and wrap
// detail with fmt.Errorf("%w: ...", kind).
var (
	// ErrValidation means the input was rejected before any state change.
	ErrValidation = errors.New("validation failed")

	// ErrRecipientMissing means the contact field required by the chosen
	// channel is absent. The send does not proceed.
	ErrRecipientMissing = errors.New("recipient missing")

	// ErrInvalidTransition means a status change out of a terminal state,
	// a redundant same-state change, or an undefined edge was attempted.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrDispatchTransport means the underlying transport failed or timed
	// out. No log entry or status change was recorded; the dispatch may be
	// retried safely.
	ErrDispatchTransport = errors.New("dispatch transport failed")

	ErrNotFound = errors.New("not found")
)
