package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Synthesis errors. Each one is fatal to a single file spec only.

	// ErrConfig covers unknown formats, unresolved path placeholders and
	// duplicate targets. Always raised before any file I/O.
	ErrConfig ErrorCode = "CONFIG"
	// ErrValidation covers unknown fields and type mismatches.
	ErrValidation ErrorCode = "VALIDATION"
	// ErrParse is raised when an existing target cannot be decoded in its format.
	ErrParse ErrorCode = "PARSE"
	// ErrIO covers permission, disk and rename failures.
	ErrIO ErrorCode = "IO"
)

// Detail keys used across packages so callers can pick context out of an error.
const (
	DetailTarget   = "target"
	DetailPath     = "path"
	DetailField    = "field"
	DetailExpected = "expected"
	DetailActual   = "actual"
	DetailFormat   = "format"
	DetailLine     = "line"
)

// SynthError represents a structured error with code and details
type SynthError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface. Details are rendered in key order so
// messages are stable.
func (e *SynthError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, e.Details[k]))
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(parts, ", "))
	}
	if e.Wrapped != nil {
		fmt.Fprintf(&b, ": %v", e.Wrapped)
	}
	return b.String()
}

// Unwrap implements the errors.Unwrap interface
func (e *SynthError) Unwrap() error {
	return e.Wrapped
}

// Is matches any SynthError carrying the same code.
func (e *SynthError) Is(target error) bool {
	var targetErr *SynthError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new SynthError with the given code and message
func New(code ErrorCode, message string) *SynthError {
	return &SynthError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new SynthError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *SynthError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with a SynthError. A nil error stays nil.
func Wrap(err error, code ErrorCode, message string) *SynthError {
	if err == nil {
		return nil
	}
	e := New(code, message)
	e.Wrapped = err
	return e
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *SynthError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WithDetail adds a detail to the error
func (e *SynthError) WithDetail(key string, value interface{}) *SynthError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *SynthError) WithDetails(details map[string]interface{}) *SynthError {
	for k, v := range details {
		e.WithDetail(k, v)
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var synthErr *SynthError
	if errors.As(err, &synthErr) {
		return synthErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a SynthError
func GetErrorCode(err error) ErrorCode {
	var synthErr *SynthError
	if errors.As(err, &synthErr) {
		return synthErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a SynthError
func GetErrorDetails(err error) map[string]interface{} {
	var synthErr *SynthError
	if errors.As(err, &synthErr) {
		return synthErr.Details
	}
	return nil
}

// Annotate attaches a detail to err when it is a SynthError and returns err.
// Other errors are wrapped under fallback first.
func Annotate(err error, fallback ErrorCode, key string, value interface{}) error {
	if err == nil {
		return nil
	}
	var synthErr *SynthError
	if !errors.As(err, &synthErr) {
		synthErr = Wrap(err, fallback, "operation failed")
	}
	synthErr.WithDetail(key, value)
	return synthErr
}
