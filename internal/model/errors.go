// Package model defines the persisted entities of the reservation
// core together with the sentinel errors shared by the repository,
// service and handler layers.  Handlers translate these values into
// HTTP status codes; services return them unwrapped or wrapped with
// %w so errors.Is keeps working across layers.
package model

import (
	"errors"
	"fmt"
)

// ErrCapacityExceeded is returned by the capacity ledger when a
// session has no remaining seats.  Handlers translate it into 409.
var ErrCapacityExceeded = errors.New("no remaining seats")

// ErrDuplicateReservation is returned when the customer already holds
// a non-cancelled reservation for the session.
var ErrDuplicateReservation = errors.New("customer already booked this session")

// ErrNotFound is returned when a session, customer, reservation or
// invoice does not exist.  Handlers translate it into 404.
var ErrNotFound = errors.New("not found")

// ErrPrecondition is returned when an operation is attempted against
// an entity in the wrong state, such as issuing an invoice for an
// unpaid reservation or confirming payment on a cancelled one.
var ErrPrecondition = errors.New("precondition failed")

// ErrReservationNotPaid is the invoice issuer's specific precondition
// failure.  It wraps ErrPrecondition so errors.Is matches both.
var ErrReservationNotPaid = fmt.Errorf("%w: reservation is not paid", ErrPrecondition)

// ErrInvoiceOutstanding is returned when a cancellation is attempted
// while a non-void invoice still exists for the reservation.  The
// invoice must be voided explicitly first.
var ErrInvoiceOutstanding = fmt.Errorf("%w: reservation has an outstanding invoice", ErrPrecondition)

// ErrGeneration is returned when document composition fails
// irrecoverably, after the degraded rendering path has also failed.
var ErrGeneration = errors.New("document generation failed")

// ValidationError reports a missing or malformed required field.  It
// is detected before any mutation, so a failed validation never
// leaves partial state behind.
type ValidationError struct {
	Field  string // the offending field, e.g. "billing_postal_code"
	Reason string // short human-readable reason
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
