/*
errors.go - Centralized error types for the ledger engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers (API handlers, forms) wrap these with transport-level context.

ERROR CATEGORIES:
  1. Invalid events - Rejected at normalization time, before any folding
  2. Store errors - Append/duplicate failures

PROPAGATION POLICY:
  An invalid event is a hard local failure: the engine never silently
  excludes a bad event from a sum, because that would produce a balance
  that is wrong without any indication. Negative balances are NOT errors -
  they are computed, surfaced, and flagged in the output (paperwork lag
  legitimately records disbursements before their supply).

USAGE:
  if errors.Is(err, ledger.ErrUnknownLocation) { ... }

  var inv *ledger.InvalidEventError
  if errors.As(err, &inv) { reject(inv.EventID) }
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrSelfTransfer is returned when a transfer's source and destination
	// are the same location.
	ErrSelfTransfer = errors.New("self-transfer: source and destination are the same location")

	// ErrUnknownLocation is returned when an event references a location
	// absent from the catalog.
	ErrUnknownLocation = errors.New("unknown location reference")

	// ErrUnknownResourceType is returned when an event references a resource
	// type absent from the catalog.
	ErrUnknownResourceType = errors.New("unknown resource type reference")

	// ErrNegativeQuantity is returned when an event carries a negative
	// magnitude. Direction comes from the kind, never from the sign.
	ErrNegativeQuantity = errors.New("negative quantity: magnitude must be non-negative")

	// ErrMissingCounterpart is returned when a transfer has no destination.
	ErrMissingCounterpart = errors.New("transfer missing counterpart location")

	// ErrUnknownKind is returned for an event kind the engine does not fold.
	ErrUnknownKind = errors.New("unknown event kind")

	// ErrDuplicateEventID is returned by stores when appending an event
	// whose ID already exists. Expected behavior for retries.
	ErrDuplicateEventID = errors.New("duplicate event id")

	// ErrEventNotFound is returned by stores for lookups of absent events.
	ErrEventNotFound = errors.New("event not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidEventError identifies which event failed normalization and why.
type InvalidEventError struct {
	EventID EventID
	Kind    EventKind
	Reason  error
}

func (e *InvalidEventError) Error() string {
	return fmt.Sprintf("invalid event %s (%s): %v", e.EventID, e.Kind, e.Reason)
}

func (e *InvalidEventError) Unwrap() error { return e.Reason }

func invalidEvent(ev Event, reason error) error {
	return &InvalidEventError{EventID: ev.ID, Kind: ev.Kind, Reason: reason}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsInvalidEvent reports whether err is a normalization rejection.
func IsInvalidEvent(err error) bool {
	var inv *InvalidEventError
	return errors.As(err, &inv)
}

// IsClientError returns true if the error is due to invalid input rather
// than an engine or store fault.
func IsClientError(err error) bool {
	return IsInvalidEvent(err) || errors.Is(err, ErrDuplicateEventID)
}
