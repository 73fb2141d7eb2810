/*
errors.go - Domain error taxonomy

PURPOSE:
  The engine itself never fails (malformed values degrade to zero,
  missing config degrades to defaults). Errors exist only at the domain
  boundary: locked periods rejecting edits and lookups that miss.
*/
package billing

import "errors"

var (
	// ErrPeriodLocked is returned when an edit targets a billing period the
	// sheet-lifecycle collaborator has marked read-only.
	ErrPeriodLocked = errors.New("billing period is read-only")

	// ErrExpenseNotFound is returned when a referenced expense doesn't exist.
	ErrExpenseNotFound = errors.New("expense not found")

	// ErrApartmentNotFound is returned when a referenced apartment doesn't exist.
	ErrApartmentNotFound = errors.New("apartment not found")

	// ErrExpenseTypeNotFound is returned when a stored expense-type config
	// is requested by id and missing. Name-based resolution never errors.
	ErrExpenseTypeNotFound = errors.New("expense type not found")
)

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrExpenseNotFound) ||
		errors.Is(err, ErrApartmentNotFound) ||
		errors.Is(err, ErrExpenseTypeNotFound)
}

// IsClientError reports whether the error is the caller's fault.
func IsClientError(err error) bool {
	return errors.Is(err, ErrPeriodLocked) || IsNotFound(err)
}
