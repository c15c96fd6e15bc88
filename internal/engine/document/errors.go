package document

import (
	"errors"
	"fmt"
)

// Errors returned by document operations.
var (
	// ErrOutOfRange indicates a paragraph index or offset past the document bounds.
	ErrOutOfRange = errors.New("out of range")

	// ErrInvalidRange indicates a range that crosses a paragraph separator.
	ErrInvalidRange = errors.New("invalid range")

	// ErrInvalidText indicates text containing a paragraph separator where
	// a single paragraph was expected.
	ErrInvalidText = errors.New("text contains a paragraph separator")
)

// RangeError describes an operation that received an out of range value.
type RangeError struct {
	// Op is the operation that failed.
	Op string
	// Value is the offending index or offset.
	Value int
	// Limit is the exclusive upper bound that was violated.
	Limit int
}

// Error implements the error interface.
func (e *RangeError) Error() string {
	return fmt.Sprintf("document: %s: %d out of range [0,%d)", e.Op, e.Value, e.Limit)
}

// Unwrap returns ErrOutOfRange.
func (e *RangeError) Unwrap() error {
	return ErrOutOfRange
}
