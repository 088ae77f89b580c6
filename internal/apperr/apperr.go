// Package apperr defines the service error taxonomy. Services return these
// typed errors; the GraphQL layer surfaces kind + message to clients without
// caring which storage or transport produced them.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Kind string

const (
	KindValidation     Kind = "VALIDATION"
	KindCooldown       Kind = "COOLDOWN"
	KindQuotaExhausted Kind = "QUOTA_EXHAUSTED"
	KindNotFound       Kind = "NOT_FOUND"
	KindTimeout        Kind = "TIMEOUT"
	KindInternal       Kind = "INTERNAL"
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Extensions satisfies gqlerrors.ExtendedError so the error kind reaches
// clients as a machine-readable extension code.
func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": string(e.Kind)}
}

// Validation reports a client-fixable input problem.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// Cooldown reports that the directional interaction is still on cooldown.
// The expiry time is the only retry guidance given.
func Cooldown(until time.Time) *Error {
	return &Error{
		Kind: KindCooldown,
		Msg:  fmt.Sprintf("cannot interact yet, retry after %s", until.UTC().Format(time.RFC3339)),
	}
}

// QuotaExhausted reports that the daily undo quota is used up.
func QuotaExhausted(msg string) *Error {
	return &Error{Kind: KindQuotaExhausted, Msg: msg}
}

// NotFound reports a missing record where the operation cannot proceed
// without it. Lookups that tolerate absence return nil instead.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

// Internal wraps an unexpected infrastructure failure.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Msg: "internal error", Err: err}
}

// Map folds storage and context errors into the taxonomy. Errors already
// carrying a kind pass through untouched.
func Map(err error) error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound("record not found")
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Msg: "request timed out", Err: err}
	case errors.Is(err, context.Canceled):
		return &Error{Kind: KindTimeout, Msg: "request was canceled", Err: err}
	default:
		return Internal(err)
	}
}

// KindOf extracts the kind from an error chain, KindInternal if untyped.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
