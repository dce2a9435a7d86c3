package core

import (
	"errors"
	"fmt"
)

// Business-rule rejections surfaced by checkout and payment operations.
// The web adapter maps each to a distinct HTTP status and error code.
var (
	// ErrLimitExceeded means the financed principal is above the customer's
	// available credit and no authorized override was supplied.
	ErrLimitExceeded = errors.New("financed amount exceeds customer credit limit")

	// ErrCustomerBlocked means a blocked customer was offered crediário.
	ErrCustomerBlocked = errors.New("customer is blocked for crediário sales")

	// ErrOverrideDenied means the manager override password did not match.
	ErrOverrideDenied = errors.New("manager override denied")

	// ErrInstallmentAlreadyPaid means a paid installment was paid again.
	// Paid installments are immutable.
	ErrInstallmentAlreadyPaid = errors.New("installment is already paid")

	// ErrNotFound is returned by lookups for absent records.
	ErrNotFound = errors.New("not found")
)

// ValidationError signals rejected operator input (empty cart, bad plan,
// redeeming more points than the balance holds). Nothing is written when
// one is returned.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
