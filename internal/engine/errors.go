package engine

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated means no token is held; the operation was
// short-circuited before any network call.
var ErrUnauthenticated = errors.New("not signed in")

// ValidationError is a client-side rule violation attributable to a
// single field, caught before the request leaves the engine.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError is a 404 from the server, distinguishable from other
// failures so callers can render a not-found state instead of a retry.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ServerError is any other non-2xx response or transport failure,
// carrying the raw server message when available.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error (status %d)", e.Status)
	}
	return fmt.Sprintf("server error (status %d): %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err is a ValidationError, returning it.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
