package api

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode is a machine-readable error class for JSON error output.
type ErrorCode string

const (
	// ErrValidation indicates caller input was rejected before sending.
	ErrValidation ErrorCode = "validation_failed"
	// ErrUnauthorized indicates the provider rejected the credentials (HTTP 401).
	ErrUnauthorized ErrorCode = "unauthorized"
	// ErrGateway indicates the provider reported a failure.
	ErrGateway ErrorCode = "gateway_error"
	// ErrServerError indicates the provider failed with a 5xx status.
	ErrServerError ErrorCode = "server_error"
	// ErrNetwork indicates a transport failure.
	ErrNetwork ErrorCode = "network_error"
	// ErrParse indicates the response was not the expected JSON.
	ErrParse ErrorCode = "parse_error"
	// ErrUnknown indicates an unclassified error.
	ErrUnknown ErrorCode = "unknown"
)

// IsRetryable reports whether the same call might succeed later. The client
// itself never retries.
func (c ErrorCode) IsRetryable() bool {
	switch c {
	case ErrNetwork, ErrServerError:
		return true
	default:
		return false
	}
}

// Suggestion returns a short hint for resolving this error.
func (c ErrorCode) Suggestion() string {
	switch c {
	case ErrValidation:
		return "Check the input values"
	case ErrUnauthorized:
		return "Run 'atctl auth login' and check the username, API key and environment"
	case ErrGateway:
		return "See the provider message for details"
	case ErrServerError:
		return "The provider encountered an error; try again later"
	case ErrNetwork:
		return "Check network connectivity and retry"
	case ErrParse:
		return "The provider returned an unexpected response; retry with --debug"
	default:
		return ""
	}
}

// StructuredError provides machine-readable error information.
type StructuredError struct {
	Code          ErrorCode      `json:"code"`
	Message       string         `json:"message"`
	Retryable     bool           `json:"retryable"`
	Suggestion    string         `json:"suggestion,omitempty"`
	Context       map[string]any `json:"context,omitempty"`
	AllowedValues []string       `json:"allowed_values,omitempty"`
}

func (e *StructuredError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// NewStructuredError creates a StructuredError from an ErrorCode and message.
func NewStructuredError(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:       code,
		Message:    message,
		Retryable:  code.IsRetryable(),
		Suggestion: code.Suggestion(),
	}
}

// NewEnumError reports a flag value outside an allowed set.
func NewEnumError(field, got string, allowed []string) *StructuredError {
	return &StructuredError{
		Code:          ErrValidation,
		Message:       fmt.Sprintf("invalid %s %q: must be one of %s", field, got, strings.Join(allowed, ", ")),
		Suggestion:    fmt.Sprintf("Use one of: %s", strings.Join(allowed, ", ")),
		AllowedValues: allowed,
		Context:       map[string]any{"field": field, "got": got},
	}
}

// StructuredErrorFromError classifies any error.
func StructuredErrorFromError(err error) *StructuredError {
	if err == nil {
		return nil
	}

	var se *StructuredError
	if errors.As(err, &se) {
		return se
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		out := NewStructuredError(ErrValidation, validationErr.Error())
		if validationErr.Field != "" {
			out.Context = map[string]any{"field": validationErr.Field}
		}
		return out
	}

	var gatewayErr *GatewayError
	if errors.As(err, &gatewayErr) {
		code := ErrGateway
		switch {
		case gatewayErr.StatusCode == 401:
			code = ErrUnauthorized
		case gatewayErr.StatusCode >= 500:
			code = ErrServerError
		}
		out := NewStructuredError(code, gatewayErr.Error())
		out.Context = map[string]any{
			"operation":   string(gatewayErr.Operation),
			"status_code": gatewayErr.StatusCode,
		}
		return out
	}

	var networkErr *NetworkError
	if errors.As(err, &networkErr) {
		out := NewStructuredError(ErrNetwork, networkErr.Error())
		out.Context = map[string]any{"method": networkErr.Method, "url": networkErr.URL}
		return out
	}

	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		out := NewStructuredError(ErrParse, parseErr.Error())
		out.Context = map[string]any{"operation": string(parseErr.Operation)}
		return out
	}

	return NewStructuredError(ErrUnknown, err.Error())
}
