package api

import (
	"errors"
	"fmt"
)

// ErrAuthRequired is returned before any network call when an operation
// needs an authenticated session and none is set.
var ErrAuthRequired = errors.New("authentication required")

// ErrNotFound is returned when the server reports 404 for a resource.
var ErrNotFound = errors.New("not found")

// APIError is a non-2xx response from the platform API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: server returned %d", e.Status)
	}
	return fmt.Sprintf("api: %s (%d)", e.Message, e.Status)
}
