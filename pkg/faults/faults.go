package faults

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Kind is the machine-readable failure classification
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindInvalidInput Kind = "invalid_input"
	KindUnauthorized Kind = "unauthorized"
	KindStorage      Kind = "storage_failure"
	KindTimeout      Kind = "timeout"
)

// Error carries a failure kind plus a human-readable message
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped cause
func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound reports a missing entity
func NotFound(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidInput reports a constraint violation on caller-supplied data
func InvalidInput(format string, args ...interface{}) error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized reports a failed credential or session check. The
// message is safe to show to the caller; never include which part of
// the credential was wrong.
func Unauthorized(format string, args ...interface{}) error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// Storage wraps an underlying durable-store error. Context cancellation and
// deadline expiry are reclassified as Timeout so callers see one kind for
// "the storage call did not finish in time".
func Storage(err error, format string, args ...interface{}) error {
	kind := KindStorage
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		kind = KindTimeout
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// Timeout reports an exceeded deadline
func Timeout(err error, format string, args ...interface{}) error {
	return &Error{Kind: KindTimeout, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the classification from an error chain. Unclassified
// errors default to KindStorage: anything a service did not explicitly
// label is treated as an infrastructure failure, never a silent success.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindStorage
}

// IsNotFound reports whether err is classified as NotFound
func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == KindNotFound
}

// IsInvalidInput reports whether err is classified as InvalidInput
func IsInvalidInput(err error) bool {
	return err != nil && KindOf(err) == KindInvalidInput
}

// IsUnauthorized reports whether err is classified as Unauthorized
func IsUnauthorized(err error) bool {
	return err != nil && KindOf(err) == KindUnauthorized
}

// IsTimeout reports whether err is classified as Timeout
func IsTimeout(err error) bool {
	return err != nil && KindOf(err) == KindTimeout
}

// IsNoRows reports whether err stems from an empty SQL result
func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
