// Package errors provides structured error types for boxp.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Placement failures carry one of:
//   - OUT_OF_BOUNDS: the box would leave the container on some axis
//   - OVERLAP: the box would intersect an existing box on all three axes
//   - INVALID_DIMENSION: a size or container extent is not strictly positive
//   - ITEMS_EXCEED_BOUNDS: a container resize would orphan existing boxes
//
// All of them are recoverable validation failures. None is ever retried.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeOverlap, "box overlaps %s", id)
//	if errors.Is(err, errors.ErrCodeOverlap) {
//	    // Handle collision
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidFormat, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidDimension Code = "INVALID_DIMENSION"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"

	// Placement errors
	ErrCodeOutOfBounds       Code = "OUT_OF_BOUNDS"
	ErrCodeOverlap           Code = "OVERLAP"
	ErrCodeItemsExceedBounds Code = "ITEMS_EXCEED_BOUNDS"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// coder is implemented by error types that carry their own code without
// being an *Error.
type coder interface {
	Code() Code
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error or a coded error type
// with a matching code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if no error in the chain carries a code.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// ItemsExceedBoundsError is returned when a container resize would leave
// existing boxes outside the new extents. The resize is not applied.
type ItemsExceedBoundsError struct {
	IDs []string // Offending box IDs in insertion order
}

// Error implements the error interface.
func (e *ItemsExceedBoundsError) Error() string {
	return fmt.Sprintf("%s: %d item(s) exceed the new bounds: %s",
		ErrCodeItemsExceedBounds, len(e.IDs), strings.Join(e.IDs, ", "))
}

// Code returns the error code for this error type.
func (e *ItemsExceedBoundsError) Code() Code {
	return ErrCodeItemsExceedBounds
}

// OffendingIDs returns the box IDs carried by an ItemsExceedBoundsError
// anywhere in err's chain, or nil.
func OffendingIDs(err error) []string {
	var e *ItemsExceedBoundsError
	if errors.As(err, &e) {
		return e.IDs
	}
	return nil
}
