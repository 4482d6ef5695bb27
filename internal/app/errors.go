package app

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an operation references a session id the
	// registry does not know about.
	ErrNotFound = errors.New("session not found")

	// ErrUnauthorized is returned when the backend rejects the bearer
	// credential. Callers must not retry; re-authentication is their problem.
	ErrUnauthorized = errors.New("unauthorized")
)

// NetworkError wraps a transport or remote failure from the backend. The
// session that triggered the call keeps its local state.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func netErr(op string, err error) error {
	return &NetworkError{Op: op, Err: err}
}

// userFacing converts a backend failure into the inline message shown in the
// assistant column.
func userFacing(err error) string {
	if errors.Is(err, ErrUnauthorized) {
		return "Your session has expired. Please sign in again."
	}
	return "Server error, please try again!"
}
