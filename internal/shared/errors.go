// Package shared defines sentinel errors used across messagely components.
// Callers should use errors.Is to match these values.
package shared

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorBadRequest   = errors.New("bad request")

	// Auth errors (invalid or malformed token).
	ErrorInvalidToken = errors.New("invalid token")

	ErrorInvalidAuthHeaderFormat = errors.New("invalid auth header format")
)
