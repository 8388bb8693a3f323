package flowgate

import (
	"errors"
	"fmt"
	"time"
)

// ErrEmptyInput is returned when a required input slice is empty.
var ErrEmptyInput = errors.New("empty input")

// ErrorCategory classifies errors by how they should be handled.
type ErrorCategory string

const (
	// ErrorTransient indicates the error is temporary and the operation can be retried.
	// Examples: rate limits, temporary network issues, server overload.
	ErrorTransient ErrorCategory = "transient"

	// ErrorPermanent indicates the error is not recoverable through retry.
	// Examples: invalid API key, insufficient permissions, model not found.
	ErrorPermanent ErrorCategory = "permanent"

	// ErrorUserInput indicates the user provided invalid input that must be corrected.
	// Examples: malformed request, invalid parameters, unknown deployment.
	ErrorUserInput ErrorCategory = "user_input"

	// ErrorRejected indicates the provider declined the request on policy or
	// safety grounds. Resending the same request will be declined again.
	ErrorRejected ErrorCategory = "rejected"
)

// CategorizedError is an error that provides information about how it should be handled.
type CategorizedError interface {
	error
	Category() ErrorCategory
	Retryable() bool          // convenience: returns true if Category == ErrorTransient
	StatusCode() int          // HTTP status code if applicable, 0 otherwise
	RetryAfter() time.Duration // suggested retry delay from server, 0 if not available
}

// Error is a categorized error with metadata for error handling decisions.
type Error struct {
	Msg        string
	Cat        ErrorCategory
	Code       int           // HTTP status code, 0 if not applicable
	RetryDelay time.Duration // from Retry-After header, 0 if not available
	Cause      error         // underlying error
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Cause)
	}
	return e.Msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Category returns the error category.
func (e *Error) Category() ErrorCategory {
	return e.Cat
}

// Retryable returns true if the error is transient and can be retried.
func (e *Error) Retryable() bool {
	return e.Cat == ErrorTransient
}

// StatusCode returns the HTTP status code, or 0 if not applicable.
func (e *Error) StatusCode() int {
	return e.Code
}

// RetryAfter returns the suggested retry delay, or 0 if not available.
func (e *Error) RetryAfter() time.Duration {
	return e.RetryDelay
}

func newError(cat ErrorCategory, msg string, statusCode int, cause error) *Error {
	return &Error{Msg: msg, Cat: cat, Code: statusCode, Cause: cause}
}

// NewTransientError creates a transient error that can be retried.
func NewTransientError(msg string, statusCode int, cause error) *Error {
	return newError(ErrorTransient, msg, statusCode, cause)
}

// NewTransientErrorWithRetry creates a transient error carrying the delay
// the server asked for.
func NewTransientErrorWithRetry(msg string, statusCode int, retryAfter time.Duration, cause error) *Error {
	e := newError(ErrorTransient, msg, statusCode, cause)
	e.RetryDelay = retryAfter
	return e
}

// NewPermanentError creates a permanent error that should not be retried.
func NewPermanentError(msg string, statusCode int, cause error) *Error {
	return newError(ErrorPermanent, msg, statusCode, cause)
}

// NewUserInputError creates an error indicating invalid user input.
func NewUserInputError(msg string, statusCode int, cause error) *Error {
	return newError(ErrorUserInput, msg, statusCode, cause)
}

// NewRejectedError creates an error for a request the provider refused to serve.
func NewRejectedError(msg string, statusCode int, cause error) *Error {
	return newError(ErrorRejected, msg, statusCode, cause)
}

// categorized finds the first CategorizedError in err's chain.
func categorized(err error) (CategorizedError, bool) {
	var ce CategorizedError
	ok := errors.As(err, &ce)
	return ce, ok
}

func hasCategory(err error, cat ErrorCategory) bool {
	ce, ok := categorized(err)
	return ok && ce.Category() == cat
}

// IsTransient reports whether err, or any error it wraps, is transient.
func IsTransient(err error) bool { return hasCategory(err, ErrorTransient) }

// IsPermanent reports whether err, or any error it wraps, is permanent.
func IsPermanent(err error) bool { return hasCategory(err, ErrorPermanent) }

// IsUserInput reports whether err, or any error it wraps, blames the input.
func IsUserInput(err error) bool { return hasCategory(err, ErrorUserInput) }

// IsRejected reports whether the provider declined the request on policy
// or safety grounds.
func IsRejected(err error) bool { return hasCategory(err, ErrorRejected) }

// StatusCodeOf returns the HTTP status code from a categorized error, or 0.
func StatusCodeOf(err error) int {
	if ce, ok := categorized(err); ok {
		return ce.StatusCode()
	}
	return 0
}

// RetryAfterOf returns the retry delay from a categorized error, or 0.
func RetryAfterOf(err error) time.Duration {
	if ce, ok := categorized(err); ok {
		return ce.RetryAfter()
	}
	return 0
}

// SchemaValidationError reports a structured payload that does not conform to
// its declared schema. It is not retryable without changing the prompt.
type SchemaValidationError struct {
	Schema  string // schema name
	Payload string // raw payload as received
	Err     error  // underlying validation or decode error
}

// Error returns a formatted error message including the schema name.
func (e *SchemaValidationError) Error() string {
	if e.Schema == "" {
		return fmt.Sprintf("schema validation failed: %v", e.Err)
	}
	return fmt.Sprintf("schema %q validation failed: %v", e.Schema, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *SchemaValidationError) Unwrap() error {
	return e.Err
}
