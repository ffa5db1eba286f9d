package domain

import (
	"errors"
	"fmt"
)

// ErrConflict is returned when a persisted document changed underneath a writer.
var ErrConflict = errors.New("ledger document version conflict")

// ErrInvalidInput marks a request rejected before it reached the store.
var ErrInvalidInput = errors.New("invalid input")

// ErrNotFound is returned when an id lookup misses on a mutation path.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ErrInvalidQuantity reports a negative quantity or monetary value.
type ErrInvalidQuantity struct {
	Entity EntityType
	Field  string
	Value  float64
}

func (e ErrInvalidQuantity) Error() string {
	return fmt.Sprintf("%s %s must not be negative (got %g)", e.Entity, e.Field, e.Value)
}

// ErrCascadeFailure wraps a failure part-way through a cascade delete. The
// enclosing transaction is discarded, so no partial delete is committed.
type ErrCascadeFailure struct {
	WorkID string
	Entity EntityType
	Err    error
}

func (e ErrCascadeFailure) Error() string {
	return fmt.Sprintf("cascade delete of work %s failed on %s: %v", e.WorkID, e.Entity, e.Err)
}

func (e ErrCascadeFailure) Unwrap() error { return e.Err }

// IsNotFound reports whether err carries an ErrNotFound.
func IsNotFound(err error) bool {
	var nf ErrNotFound
	return errors.As(err, &nf)
}

// IsInvalidQuantity reports whether err carries an ErrInvalidQuantity.
func IsInvalidQuantity(err error) bool {
	var iq ErrInvalidQuantity
	return errors.As(err, &iq)
}
