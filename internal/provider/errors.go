package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrNoResponse marks an empty provider body where one was required.
	ErrNoResponse = errors.New("no response from provider")
	// ErrMalformedPayload marks a body missing every known key variant.
	// It signals a provider contract change rather than a business failure.
	ErrMalformedPayload = errors.New("malformed provider payload")
)

// UnsupportedMethodError is returned by the transport for verbs other than
// GET, POST and PUT.
type UnsupportedMethodError struct {
	Method string
}

func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("Unsupported method: %s.", e.Method)
}

// NoResponseError reports that the transport produced no response object.
type NoResponseError struct {
	Message string
	Err     error
}

func (e *NoResponseError) Error() string { return e.Message }

func (e *NoResponseError) Unwrap() error { return e.Err }

// AuthenticationError carries the provider's errorMessage verbatim.
type AuthenticationError struct {
	StatusCode int
	Message    string
}

func (e *AuthenticationError) Error() string { return e.Message }

// ProviderError is used for request validation and lookup failures.
type ProviderError struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	ProviderErr string `json:"provider_error,omitempty"`
}

func (e *ProviderError) Error() string {
	if e.ProviderErr != "" {
		return e.Message + ": " + e.ProviderErr
	}
	return e.Message
}

// Error codes
const (
	ErrMissingField        = "missing_field"
	ErrInvalidField        = "invalid_field"
	ErrFamilyNotRegistered = "family_not_registered"
	ErrAuthFailed          = "auth_failed"
)
