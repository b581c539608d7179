package client

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig = errors.New("invalid client configuration")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotFound      = errors.New("segment not found")
	ErrConflict      = errors.New("segment already on path")
	ErrRejected      = errors.New("request rejected")
	ErrServer        = errors.New("server error")
)

// APIError carries the status and message of a failed call. It unwraps to
// one of the sentinel errors above.
type APIError struct {
	Status  int
	Message string
	kind    error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d): %s", e.kind, e.Status, e.Message)
}

func (e *APIError) Unwrap() error { return e.kind }
