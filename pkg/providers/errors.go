package providers

import (
	"fmt"
	"time"
)

// BackendError represents a general backend failure (non-2xx status,
// malformed payload, network error). It is converted to a soft error at
// the adapter boundary and never escapes Generate.
type BackendError struct {
	// Provider is the identity of the backend that failed
	Provider ID

	// StatusCode is the HTTP status code (0 if not applicable)
	StatusCode int

	// Message is the error message
	Message string

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %q error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider %q error: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *BackendError) Unwrap() error {
	return e.Cause
}

// AuthError represents a credential rejection (HTTP 401 or 403).
type AuthError struct {
	// Provider is the identity that rejected authentication
	Provider ID

	// Message is the error message from the backend
	Message string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("provider %q authentication failed: %s", e.Provider, e.Message)
}

// TimeoutError represents a request that exceeded the configured timeout.
type TimeoutError struct {
	// Provider is the identity where the timeout occurred
	Provider ID

	// Timeout is the configured timeout duration
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("provider %q request timeout after %s", e.Provider, e.Timeout)
}

// ParseError represents a malformed backend response.
type ParseError struct {
	// Provider is the identity that returned the malformed response
	Provider ID

	// RawResponse is the raw response body that failed to parse
	RawResponse string

	// Cause is the underlying parse error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("provider %q response parse error: %v", e.Provider, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ConfigError represents an invalid provider configuration. Unlike the
// soft errors above it surfaces at adapter construction time, where the
// registry logs it and skips the offending config.
type ConfigError struct {
	// Provider is the identity with invalid configuration
	Provider ID

	// Field is the configuration field that is invalid
	Field string

	// Message describes the configuration error
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("provider %q configuration error for field %q: %s",
		e.Provider, e.Field, e.Message)
}
