package events

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is the sentinel every NotFoundError unwraps to, so callers can
// test with errors.Is without caring which lookup failed.
var ErrNotFound = errors.New("not found")

// NotFoundError reports that a lookup matched zero rows. Status carries the
// HTTP-intent status for callers that translate errors into responses; it is
// advisory only, this package performs no HTTP handling.
type NotFoundError struct {
	Resource string
	Status   int
}

func (e *NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NotFound builds a NotFoundError for the named resource with a 404 intent.
func NotFound(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource, Status: http.StatusNotFound}
}

// LookupError reports an unusable lookup argument, such as an unknown lookup
// key. It is a caller bug, not a storage failure.
type LookupError struct {
	Key     string
	Message string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("invalid lookup %q: %s", e.Key, e.Message)
}
