package rules

import (
	"errors"
	"fmt"
)

// ValidationError reports a missing or malformed input. It is raised before
// any persistence side effect.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Invalid builds a ValidationError.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// DuplicateKeyError reports a unique key that is already taken.
type DuplicateKeyError struct {
	Key   string
	Value string
}

func (e *DuplicateKeyError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("duplicate %s", e.Key)
	}
	return fmt.Sprintf("duplicate %s %q", e.Key, e.Value)
}

// DuplicateIMEI is raised when an IMEI was already used by any unit, sold or not.
func DuplicateIMEI(imei string) error {
	return &DuplicateKeyError{Key: "imei", Value: imei}
}

// IllegalTransitionError reports a state change the entity's lifecycle forbids.
type IllegalTransitionError struct {
	Entity string
	From   string
	To     string
	Reason string
}

func (e *IllegalTransitionError) Error() string {
	msg := fmt.Sprintf("%s cannot move from %s to %s", e.Entity, e.From, e.To)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// UnitNotAvailable is raised when selling or reserving a unit that is not on the shelf.
func UnitNotAvailable(unitID int, status string) error {
	return &IllegalTransitionError{
		Entity: fmt.Sprintf("inventory unit %d", unitID),
		From:   status,
		To:     "sold",
		Reason: "unit is not available",
	}
}

// InsufficientPaymentError reports a payment below what the operation requires.
type InsufficientPaymentError struct {
	Required int64
	Paid     int64
}

func (e *InsufficientPaymentError) Error() string {
	return fmt.Sprintf("payment %d is below required %d (short by %d)", e.Paid, e.Required, e.Required-e.Paid)
}

// NotFoundError reports a lookup with no match.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.Key)
}

// PersistenceError wraps a failure of the underlying store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
