// Package errors provides structured error types for docsmith.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP server and the core
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages that can be rendered inline in docs
//
// # Error Codes
//
// Error codes are grouped by the taxonomy the engine reports:
//   - Resolution: REFERENCE_NOT_FOUND, SELF_REFERENCE, UNSUPPORTED_TARGET
//   - Cycles: CIRCULAR_REFERENCE, INFINITE_LOOP
//   - Structure: PARSE_ERROR
//   - Contract: CAPABILITY, INTERNAL_ERROR
//   - Input: INVALID_*, FILE_NOT_FOUND
//
// # Usage
//
//	err := errors.New(errors.ErrCodeParse, "unbalanced brackets in %q", line)
//	if errors.Is(err, errors.ErrCodeParse) {
//	    // render inline instead of aborting
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeFileNotFound, origErr, "read %s", path)
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
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidLanguage Code = "INVALID_LANGUAGE"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	// Resource errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Resolution errors
	ErrCodeReferenceNotFound Code = "REFERENCE_NOT_FOUND"
	ErrCodeSelfReference     Code = "SELF_REFERENCE"
	ErrCodeUnsupportedTarget Code = "UNSUPPORTED_TARGET"

	// Cycle errors
	ErrCodeCircularReference Code = "CIRCULAR_REFERENCE"
	ErrCodeInfiniteLoop      Code = "INFINITE_LOOP"

	// Structural errors
	ErrCodeParse Code = "PARSE_ERROR"

	// Contract violations
	ErrCodeCapability Code = "CAPABILITY"
	ErrCodeInternal   Code = "INTERNAL_ERROR"
	ErrCodeBusy       Code = "BUSY"
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
			return e.Message + ": " + UserMessage(e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// IsFatal reports whether err must abort a run even in interactive mode.
// Capability and internal errors are programming contract violations.
func IsFatal(err error) bool {
	switch GetCode(err) {
	case ErrCodeCapability, ErrCodeInternal:
		return true
	}
	return false
}
