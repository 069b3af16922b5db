package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password too short")
	ErrInvalidPrompt      = errors.New("invalid prompt")
	ErrInvalidRole        = errors.New("unknown role tag")
	ErrCreditsExhausted   = errors.New("credits exhausted")
	ErrPremiumRequired    = errors.New("premium feature requires pro access")
	ErrBanned             = errors.New("account banned")
)

// StorageError marks a role/credit store failure. It is distinct from a
// Denied outcome: callers must not fire the gated side effect until a
// definitive Allowed result is obtained.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NewStorageError wraps err with the failed operation name.
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

// IsStorageError reports whether err is (or wraps) a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// RelayError marks a failed outbound generation submission. It is
// retryable by the user and never reverses an already-applied decrement.
type RelayError struct {
	Status int
	Err    error
}

func (e *RelayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("relay: %v", e.Err)
	}
	return fmt.Sprintf("relay: unexpected status %d", e.Status)
}

func (e *RelayError) Unwrap() error { return e.Err }

// IsRelayError reports whether err is (or wraps) a RelayError.
func IsRelayError(err error) bool {
	var re *RelayError
	return errors.As(err, &re)
}
