package domain

import (
	"errors"
	"fmt"
)

// Kind classifies failures so transports can map them without string matching.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindQuotaExceeded
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindQuotaExceeded:
		return "quota_exceeded"
	default:
		return "internal"
	}
}

// Sentinels usable with errors.Is. Any *Error matches the sentinel of its kind.
var (
	ErrValidation    = &Error{Kind: KindValidation, Message: "invalid input"}
	ErrUnauthorized  = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrForbidden     = &Error{Kind: KindForbidden, Message: "Forbidden"}
	ErrNotFound      = &Error{Kind: KindNotFound, Message: "Note not found"}
	ErrQuotaExceeded = &Error{Kind: KindQuotaExceeded, Message: "storage limit exceeded"}
)

// Error is the error type returned by the note service.
type Error struct {
	Kind    Kind
	Message string
	Err     error

	// Set only for KindQuotaExceeded.
	UsedMB  float64
	LimitMB int64
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrNotFound) true for every not-found *Error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Validation builds a validation error with a client-facing message.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an infrastructure failure.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// QuotaExceeded reports a rejected create together with current usage.
func QuotaExceeded(usedMB float64, limitMB int64) *Error {
	return &Error{
		Kind:    KindQuotaExceeded,
		Message: fmt.Sprintf("Storage limit exceeded! You have %.2fMB used of %dMB limit.", usedMB, limitMB),
		UsedMB:  usedMB,
		LimitMB: limitMB,
	}
}

// KindOf returns the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
