// Package clierr defines structured error types for tasknest.
// Errors carry a machine-readable code, a human-readable message,
// and optional details for scripted consumers.
package clierr

import (
	"errors"
	"fmt"
	"strconv"
)

// Error codes. These are part of the JSON output and stay stable.
const (
	TaskNotFound       = "TASK_NOT_FOUND"
	AmbiguousID        = "AMBIGUOUS_ID"
	InvalidInput       = "INVALID_INPUT"
	InvalidPriority    = "INVALID_PRIORITY"
	InvalidColor       = "INVALID_COLOR"
	InvalidDate        = "INVALID_DATE"
	InvalidTaskID      = "INVALID_TASK_ID"
	HierarchyViolation = "HIERARCHY_VIOLATION"
	SelfReference      = "SELF_REFERENCE"
	NoChanges          = "NO_CHANGES"
	ConfirmationReq    = "CONFIRMATION_REQUIRED"
	ConfigNotFound     = "CONFIG_NOT_FOUND"
	ConfigExists       = "CONFIG_EXISTS"
	InvalidConfig      = "INVALID_CONFIG"
	InvalidGroupBy     = "INVALID_GROUP_BY"
	InvalidSort        = "INVALID_SORT"
	InternalError      = "INTERNAL_ERROR"
)

// Error represents a structured CLI error with a machine-readable code.
type Error struct {
	Code    string
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Message }

// New creates an Error with the given code and message.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithDetails returns the error with the given details map attached.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// ExitCode returns 2 for InternalError, 1 for all others.
func (e *Error) ExitCode() int {
	if e.Code == InternalError {
		return 2 //nolint:mnd // exit code 2 for internal errors
	}
	return 1
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// SilentError signals an exit code without additional output.
// Used by script runs where results are already written to stdout.
type SilentError struct {
	Code int
}

// Error implements the error interface.
func (e *SilentError) Error() string { return "exit " + strconv.Itoa(e.Code) }
