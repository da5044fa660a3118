/*
errors.go - Centralized error types for the engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The API layer maps these to HTTP status codes; the core only ever
  returns them.

USAGE:
  if errors.Is(err, tfc.ErrChildNotFound) {
      // 404
  }
*/
package tfc

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDate is returned for zero or unparsable dates. Dates are
	// validated at the boundary; a zero date reaching the core is a caller bug.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidAmount is returned for negative or unparsable monetary input.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrAmountMismatch is returned when a payment's total does not equal
	// parent paid plus government top-up.
	ErrAmountMismatch = errors.New("amount does not equal parent paid plus government top-up")

	// ErrChildRequired is returned when a payment has no owning child.
	ErrChildRequired = errors.New("payment requires a child id")

	// ErrChildNotFound is returned when a referenced child doesn't exist.
	ErrChildNotFound = errors.New("child not found")

	// ErrPaymentNotFound is returned when a referenced payment doesn't exist.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrDuplicateID is returned when saving a record whose id already exists.
	ErrDuplicateID = errors.New("duplicate id")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// CapExceededError reports an attempt to persist a payment that would push
// the quarter's confirmed top-up past the cap. The calculator's throttling
// makes this unreachable through the normal confirm flow; it exists to
// reject hand-built payments that bypass it.
type CapExceededError struct {
	ChildID   ChildID
	Quarter   Quarter
	Confirmed Money
	Attempted Money
	Cap       Money
}

func (e *CapExceededError) Error() string {
	return fmt.Sprintf("quarterly cap exceeded for child %s in %s: confirmed %s + attempted %s > cap %s",
		e.ChildID, e.Quarter, e.Confirmed, e.Attempted, e.Cap)
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	var capErr *CapExceededError
	return errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrAmountMismatch) ||
		errors.Is(err, ErrChildRequired) ||
		errors.As(err, &capErr)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrChildNotFound) ||
		errors.Is(err, ErrPaymentNotFound)
}
