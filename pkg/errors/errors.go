// Package errors provides structured error types for callout.
//
// Every error raised by the libraries in this module carries a
// machine-readable code so that the CLI, the HTTP API and embedding hosts
// can react without string matching:
//
//   - INVALID_*: configuration or input validation failures. These are
//     raised at configuration time (fail fast) and never during a
//     recomputation cycle.
//   - UNMEASURABLE: a host could not report a rectangle for a node. The
//     callout treats this as a skipped cycle, not as a failure.
//   - NOT_FOUND: a stored scene or node does not exist.
//   - INTERNAL_ERROR / UNSUPPORTED: everything else.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidSide, "unknown side %q", s)
//	if errors.Is(err, errors.ErrCodeInvalidSide) {
//	    // reject the configuration
//	}
//
//	err = errors.Wrap(errors.ErrCodeUnmeasurable, cause, "measure %s", handle)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidSide   Code = "INVALID_SIDE"
	ErrCodeInvalidAlign  Code = "INVALID_ALIGN"
	ErrCodeInvalidScene  Code = "INVALID_SCENE"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidID     Code = "INVALID_ID"

	// Host errors
	ErrCodeUnmeasurable Code = "UNMEASURABLE"
	ErrCodeClosed       Code = "CLOSED"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

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
// Only the outermost *Error in the chain is consulted.
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

// IsInvalid reports whether err carries one of the INVALID_* codes.
func IsInvalid(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidSide, ErrCodeInvalidAlign,
		ErrCodeInvalidScene, ErrCodeInvalidFormat, ErrCodeInvalidPath, ErrCodeInvalidID:
		return true
	}
	return false
}
