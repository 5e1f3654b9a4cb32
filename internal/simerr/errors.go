// Package simerr defines the error taxonomy shared by the store, repos and
// handlers. The router maps each category to exactly one response status.
package simerr

import (
	"errors"
	"fmt"
)

// ErrConflict is returned by the store for duplicate-key inserts. Repos
// swallow it on create so re-seeding stays idempotent.
var ErrConflict = errors.New("key already exists")

type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

func Validation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

type AuthError struct{ Msg string }

func (e *AuthError) Error() string { return e.Msg }

type NotFoundError struct{ Resource, ID string }

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func NotFound(resource, id string) error { return &NotFoundError{Resource: resource, ID: id} }

// ConflictError blocks an operation on referential-integrity grounds and
// carries a human-readable reason.
type ConflictError struct{ Msg string }

func (e *ConflictError) Error() string { return e.Msg }

func Conflict(format string, args ...any) error {
	return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}

// StoreError wraps an underlying store failure. The router logs it and
// surfaces a generic message.
type StoreError struct{ Err error }

func (e *StoreError) Error() string { return "store: " + e.Err.Error() }
func (e *StoreError) Unwrap() error { return e.Err }

func Store(err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Err: err}
}
