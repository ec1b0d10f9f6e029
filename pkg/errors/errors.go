// Package errors provides structured error types for the Gridboard engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the engine, CLI, and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input or geometry validation failures
//   - UNKNOWN_*: Referenced entity not found
//   - STORE_*: Persistence collaborator failures
//
// Note that a rejected placement (out of bounds or overlapping) is NOT an
// error in the engine: CanPlace reports it as a boolean, and interactive
// sessions degrade to a blocked state or a revert. The codes below cover
// genuine misuse (bad constructor input, unknown block IDs, malformed
// policy files), not normal geometric rejection.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidColumns, "columns must be >= 1, got %d", n)
//	if errors.Is(err, errors.ErrCodeInvalidColumns) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeStore, origErr, "load layout %s", gridID)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input and geometry validation errors
	ErrCodeInvalidRect        Code = "INVALID_RECT"
	ErrCodeInvalidColumns     Code = "INVALID_COLUMNS"
	ErrCodeInvalidConstraints Code = "INVALID_CONSTRAINTS"
	ErrCodeInvalidBlockID     Code = "INVALID_BLOCK_ID"
	ErrCodeInvalidGridID      Code = "INVALID_GRID_ID"
	ErrCodeInvalidPolicy      Code = "INVALID_POLICY"
	ErrCodeInvalidLayout      Code = "INVALID_LAYOUT"

	// Entity lookup errors
	ErrCodeUnknownBlock    Code = "UNKNOWN_BLOCK"
	ErrCodeUnknownStrategy Code = "UNKNOWN_STRATEGY"
	ErrCodeUnknownGrid     Code = "UNKNOWN_GRID"
	ErrCodeDuplicateBlock  Code = "DUPLICATE_BLOCK"

	// Session errors
	ErrCodeSessionActive Code = "SESSION_ACTIVE"
	ErrCodeNoSession     Code = "NO_SESSION"

	// Expand/collapse errors
	ErrCodeAlreadyExpanded Code = "ALREADY_EXPANDED"
	ErrCodeNotExpanded     Code = "NOT_EXPANDED"

	// Collaborator errors
	ErrCodeStore Code = "STORE_ERROR"

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

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
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
