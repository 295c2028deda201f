package api

import (
	"errors"
	"fmt"
)

// ValidationError reports caller-supplied data that violates a precondition.
// It is returned before any request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// NetworkError wraps a transport failure (connection, TLS, timeout,
// cancellation).
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: request failed: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError reports a response body that is not the JSON the operation
// expects.
type ParseError struct {
	Operation Operation
	Body      string
	Err       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: unexpected response format: %v", e.Operation, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// GatewayError is a failure reported by the provider: a non-success status,
// an empty payload, or an error sentinel in the body. Message is the
// provider's own diagnostic, verbatim.
type GatewayError struct {
	Operation  Operation
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: gateway error (status %d)", e.Operation, e.StatusCode)
	}
	return e.Message
}

// IsValidationError checks if the error is a validation error.
func IsValidationError(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// IsNetworkError checks if the error is a transport failure.
func IsNetworkError(err error) bool {
	var e *NetworkError
	return errors.As(err, &e)
}

// IsParseError checks if the error is a response parse failure.
func IsParseError(err error) bool {
	var e *ParseError
	return errors.As(err, &e)
}

// IsGatewayError checks if the error was reported by the provider.
func IsGatewayError(err error) bool {
	var e *GatewayError
	return errors.As(err, &e)
}

func missingField(field string) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf("missing field %s", field)}
}
