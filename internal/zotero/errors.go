package zotero

import (
	"errors"
	"fmt"
)

// Common errors returned by the Zotero client.
var (
	// ErrNotFound indicates the item or collection does not exist.
	ErrNotFound = errors.New("not found in Zotero")

	// ErrAuthError indicates a missing or rejected API key.
	ErrAuthError = errors.New("Zotero authentication error")

	// ErrNetworkError indicates the request could not be completed after all attempts.
	ErrNetworkError = errors.New("network error communicating with Zotero")

	// ErrInvalidResponse indicates a response body of an unexpected shape.
	ErrInvalidResponse = errors.New("invalid response from Zotero")
)

// APIError represents a non-retryable HTTP error from the Zotero API.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Zotero API error (status %d): %s (%s)", e.StatusCode, e.Message, e.URL)
}

// IsNotFound returns true if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}

// IsAuthError returns true if the error indicates an authentication problem.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrAuthError) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
	}
	return false
}

// retryableError marks a failure that is worth another attempt
// (transport errors, timeouts, 429 and 5xx responses).
type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }
