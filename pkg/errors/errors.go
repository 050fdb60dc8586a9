// Package errors provides structured error types for the ivrflow editor.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the editor core, CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - Operator-facing messages without the code prefix
//   - Error wrapping with context preservation
//
// # Error Taxonomy
//
// The editor core distinguishes three kinds of failure:
//   - STRUCTURAL_REJECTION: an edit that would break a graph invariant (removing
//     the start node, committing a blank node label). The edit is a no-op.
//   - VALIDATION_FAILED: save-time validation (empty flow name). Reported to the
//     operator, the save is aborted and the graph is untouched.
//   - Referential repair (dangling connections after a node delete) is not an
//     error at all; the graph cascades the delete silently.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeStructuralRejection, "cannot remove start node %q", id)
//	if errors.Is(err, errors.ErrCodeStructuralRejection) {
//	    // state is unchanged
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "failed to save flow %s", id)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Graph edit errors
	ErrCodeStructuralRejection Code = "STRUCTURAL_REJECTION"
	ErrCodeValidation          Code = "VALIDATION_FAILED"

	// Input errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidNodeType Code = "INVALID_NODE_TYPE"
	ErrCodeTooLarge        Code = "PAYLOAD_TOO_LARGE"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFlowNotFound Code = "FLOW_NOT_FOUND"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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

// IsStructuralRejection reports whether err rejected a graph edit.
func IsStructuralRejection(err error) bool { return Is(err, ErrCodeStructuralRejection) }

// IsValidation reports whether err is a save-time validation failure.
func IsValidation(err error) bool { return Is(err, ErrCodeValidation) }

// IsNotFound reports whether err refers to a missing node, connection or flow.
func IsNotFound(err error) bool {
	return Is(err, ErrCodeNotFound) || Is(err, ErrCodeFlowNotFound)
}
