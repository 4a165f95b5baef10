package llm

import (
	"context"
	"errors"
	"fmt"
)

// Common errors returned by the client and providers.
var (
	// ErrEmptyAPIKey indicates that an API key was required but not provided.
	ErrEmptyAPIKey = errors.New("API key cannot be empty")

	// ErrEmptyResponse indicates that the provider returned no content.
	ErrEmptyResponse = errors.New("empty response from provider")

	// ErrUnknownProvider indicates that no factory is registered for the
	// requested provider name.
	ErrUnknownProvider = errors.New("unknown provider")
)

// ErrorType classifies provider errors for standardized handling.
type ErrorType int

// Provider error categories.
const (
	// ErrorTypeUnknown indicates an error of an undetermined category.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeAuthentication indicates an invalid or rejected credential.
	ErrorTypeAuthentication
	// ErrorTypeRateLimit indicates the provider throttled the request.
	ErrorTypeRateLimit
	// ErrorTypeBadRequest indicates malformed parameters.
	ErrorTypeBadRequest
	// ErrorTypeNotFound indicates a missing resource, typically the model.
	ErrorTypeNotFound
	// ErrorTypeServerError indicates a failure on the provider's side.
	ErrorTypeServerError
	// ErrorTypeContentPolicy indicates the request was blocked by a
	// content policy.
	ErrorTypeContentPolicy
	// ErrorTypeCanceled indicates the request context was canceled or
	// its deadline passed.
	ErrorTypeCanceled
)

// ProviderError normalizes provider-specific failures into one shape.
// These are transport-level failures: the conformance engine never retries
// them, so callers that want resilience handle them at this layer.
type ProviderError struct {
	// Provider names the backend that produced the error.
	Provider string

	// Type classifies the failure.
	Type ErrorType

	// StatusCode holds the HTTP status from the provider, when known.
	StatusCode int

	// Message is the provider's user-facing message.
	Message string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s error", e.Provider)
	if e.StatusCode > 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is and errors.As.
func (e *ProviderError) Unwrap() error { return e.Err }

// Retryable reports whether the failure is transient at the transport
// level. Rate limits and server errors are; authentication and bad
// requests are not.
func (e *ProviderError) Retryable() bool {
	switch e.Type {
	case ErrorTypeRateLimit, ErrorTypeServerError:
		return true
	default:
		return false
	}
}

// classifyHTTP builds a ProviderError from an HTTP status code.
func classifyHTTP(provider string, statusCode int, message string, err error) *ProviderError {
	var errType ErrorType
	switch {
	case statusCode == 401 || statusCode == 403:
		errType = ErrorTypeAuthentication
	case statusCode == 429:
		errType = ErrorTypeRateLimit
	case statusCode == 404:
		errType = ErrorTypeNotFound
	case statusCode >= 500:
		errType = ErrorTypeServerError
	case statusCode >= 400:
		errType = ErrorTypeBadRequest
	default:
		errType = ErrorTypeUnknown
	}

	return &ProviderError{
		Provider:   provider,
		Type:       errType,
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}

// classifyContext wraps a context cancellation or deadline error.
func classifyContext(provider string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Type: ErrorTypeCanceled, Err: err}
}

// isContextError reports whether err stems from context cancellation.
func isContextError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
