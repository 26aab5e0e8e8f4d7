// Package apperr defines the typed failures returned by the catalog, order and
// statistics services. Every failure carries a Kind; validation failures also
// carry a Reason and the offending field.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation        Kind = "validation_error"
	KindNotFound          Kind = "not_found"
	KindInvalidIdentifier Kind = "invalid_identifier"
	KindStoreUnavailable  Kind = "store_unavailable"
	KindInternal          Kind = "internal_error"
)

// Reason refines a validation failure.
type Reason string

const (
	MissingField Reason = "MissingField"
	OutOfRange   Reason = "OutOfRange"
	InvalidEnum  Reason = "InvalidEnum"
)

type Error struct {
	Kind    Kind
	Reason  Reason
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind, and on Reason when the target sets one, so the
// sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Reason == "" || t.Reason == e.Reason
}

var (
	ErrValidation        = &Error{Kind: KindValidation, Message: "validation error"}
	ErrNotFound          = &Error{Kind: KindNotFound, Message: "not found"}
	ErrInvalidIdentifier = &Error{Kind: KindInvalidIdentifier, Message: "invalid identifier"}
	ErrStoreUnavailable  = &Error{Kind: KindStoreUnavailable, Message: "store unavailable"}
	ErrInternal          = &Error{Kind: KindInternal, Message: "internal error"}

	ErrMissingField = &Error{Kind: KindValidation, Reason: MissingField}
	ErrOutOfRange   = &Error{Kind: KindValidation, Reason: OutOfRange}
	ErrInvalidEnum  = &Error{Kind: KindValidation, Reason: InvalidEnum}
)

func Missing(field string) *Error {
	return &Error{
		Kind:    KindValidation,
		Reason:  MissingField,
		Field:   field,
		Message: fmt.Sprintf("%s is required", field),
	}
}

func Range(field, msg string) *Error {
	return &Error{Kind: KindValidation, Reason: OutOfRange, Field: field, Message: msg}
}

func Enum(field, value string, allowed []string) *Error {
	return &Error{
		Kind:    KindValidation,
		Reason:  InvalidEnum,
		Field:   field,
		Message: fmt.Sprintf("%q is not a valid %s (allowed: %v)", value, field, allowed),
	}
}

func NotFound(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

func InvalidID(field, id string) *Error {
	return &Error{
		Kind:    KindInvalidIdentifier,
		Field:   field,
		Message: fmt.Sprintf("%q is not a valid identifier", id),
	}
}

func Unavailable(err error) *Error {
	return &Error{Kind: KindStoreUnavailable, Message: "store unavailable", Err: err}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

// KindOf reports the kind of err; untyped errors are internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
