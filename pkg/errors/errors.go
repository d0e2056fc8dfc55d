// Package errors provides structured error types for busarchive.
//
// Every failure that crosses the save/load boundary of an archive is an
// [*Error] carrying one of the codes below, so callers can branch on the
// kind of failure without parsing messages:
//
//   - IO_UNAVAILABLE: the destination or source could not be opened or written
//   - NOT_FOUND: the source path (or store key) does not exist
//   - MALFORMED_ARCHIVE: grammar violation, unknown slot, truncated stream
//   - FUTURE_VERSION: the stream declares a schema version newer than supported
//   - UNKNOWN_VARIANT: no factory registered for a variant discriminator
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMalformedArchive, "unexpected token %q", tok)
//	if errors.Is(err, errors.ErrCodeMalformedArchive) {
//	    // Handle corrupt input
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeIOUnavailable, origErr, "open %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Archive errors
	ErrCodeIOUnavailable    Code = "IO_UNAVAILABLE"
	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeMalformedArchive Code = "MALFORMED_ARCHIVE"
	ErrCodeFutureVersion    Code = "FUTURE_VERSION"
	ErrCodeUnknownVariant   Code = "UNKNOWN_VARIANT"

	// Input validation errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInvalidKey   Code = "INVALID_KEY"

	// Network errors (remote stores)
	ErrCodeNetwork Code = "NETWORK_ERROR"

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
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// Ensure returns err unchanged if it already carries a code, and wraps it
// with code otherwise. It is used at package boundaries so that every
// failure leaving the boundary has a code.
func Ensure(err error, code Code, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if GetCode(err) != "" {
		return err
	}
	return Wrap(code, err, format, args...)
}
