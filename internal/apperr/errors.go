// Package apperr holds the error kinds shared by the booking core and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindUnauthenticated    Kind = "UNAUTHENTICATED"
	KindForbidden          Kind = "FORBIDDEN"
	KindUnknownRole        Kind = "UNKNOWN_ROLE"
	KindNotFound           Kind = "NOT_FOUND"
	KindInvalidField       Kind = "INVALID_FIELD"
	KindInvalidTimeRange   Kind = "INVALID_TIME_RANGE"
	KindIllegalTransition  Kind = "ILLEGAL_TRANSITION"
	KindExpiredContract    Kind = "EXPIRED_CONTRACT"
	KindExpiredSession     Kind = "EXPIRED_SESSION"
	KindContractNotActive  Kind = "CONTRACT_NOT_ACTIVE"
	KindNoCreditsAvailable Kind = "NO_CREDITS_AVAILABLE"
	KindTimeConflict       Kind = "TIME_CONFLICT"
	KindInternal           Kind = "INTERNAL"
)

// Error is a sentinel carrying a stable kind. Compare with errors.Is.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrUnauthenticated    = &Error{Kind: KindUnauthenticated, Message: "unauthenticated"}
	ErrForbidden          = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrUnknownRole        = &Error{Kind: KindUnknownRole, Message: "unknown role"}
	ErrNotFound           = &Error{Kind: KindNotFound, Message: "not found"}
	ErrInvalidField       = &Error{Kind: KindInvalidField, Message: "invalid field"}
	ErrInvalidTimeRange   = &Error{Kind: KindInvalidTimeRange, Message: "start time must be before end time"}
	ErrIllegalTransition  = &Error{Kind: KindIllegalTransition, Message: "illegal status transition"}
	ErrExpiredContract    = &Error{Kind: KindExpiredContract, Message: "contract has expired"}
	ErrExpiredSession     = &Error{Kind: KindExpiredSession, Message: "session has expired"}
	ErrContractNotActive  = &Error{Kind: KindContractNotActive, Message: "contract is not active"}
	ErrNoCreditsAvailable = &Error{Kind: KindNoCreditsAvailable, Message: "no credits available on this contract"}
	ErrTimeConflict       = &Error{Kind: KindTimeConflict, Message: "time conflict"}
)

type detailed struct {
	sentinel *Error
	message  string
}

func (e *detailed) Error() string {
	return e.message
}

func (e *detailed) Unwrap() error {
	return e.sentinel
}

// Invalid reports a malformed or missing request field.
func Invalid(format string, args ...any) error {
	return &detailed{sentinel: ErrInvalidField, message: fmt.Sprintf(format, args...)}
}

// NotFound names the missing record, e.g. NotFound("contract").
func NotFound(what string) error {
	return &detailed{sentinel: ErrNotFound, message: what + " not found"}
}

// Forbidden carries a caller-facing reason.
func Forbidden(reason string) error {
	return &detailed{sentinel: ErrForbidden, message: reason}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var target *Error
	if errors.As(err, &target) {
		return target.Kind
	}
	return KindInternal
}

// IsRule reports whether err is a business-rule rejection rather than an
// infrastructure failure.
func IsRule(err error) bool {
	kind := KindOf(err)
	return kind != "" && kind != KindInternal
}
