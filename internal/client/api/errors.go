package api

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable wraps transport-level failures: the backend could not
	// be reached at all.
	ErrUnavailable = errors.New("server unavailable")

	// ErrUnauthorized is returned for authorization-failure responses.
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError is a non-2xx response carrying the backend's message, e.g. the
// "already in your favorites" rejection on a duplicate add.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("api: status %d", e.Status)
}
