package errorx

import (
	"errors"
	"fmt"
)

// Kind classifies an error into one of the categories the presentation
// layer is expected to translate into user-facing messages.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindAuth       Kind = "authentication"
	KindStorage    Kind = "storage"
)

// Error is a typed error with a stable machine-readable code.
// Two Errors are considered equal by errors.Is when their codes match,
// so callers can compare against the package sentinels regardless of
// the human-readable message attached at the failure site.
type Error struct {
	Code    string
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches by code so wrapped and re-messaged copies still compare
// equal to the sentinels below.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithMessage returns a copy carrying a more specific message.
func (e *Error) WithMessage(msg string) *Error {
	c := *e
	c.Message = msg
	return &c
}

// New creates a typed error.
func New(code string, kind Kind, msg string) *Error {
	return &Error{Code: code, Kind: kind, Message: msg}
}

// Sentinels for the failure modes the core surfaces to its caller.
var (
	ErrOrderNotFound = New("ORDER_NOT_FOUND", KindNotFound, "order not found")
	ErrOrderLocked   = New("ORDER_LOCKED", KindConflict, "order is locked")
	ErrUserNotFound  = New("USER_NOT_FOUND", KindNotFound, "user not found")
	ErrAuthFailed    = New("AUTH_FAILED", KindAuth, "authentication failed")
)

// Validationf builds a VALIDATION_ERROR with a formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: "VALIDATION_ERROR", Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Storage wraps an underlying driver or constraint failure. Storage
// errors are always fatal to the current operation and never swallowed.
func Storage(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Code: "STORAGE_ERROR", Kind: KindStorage, Message: "storage operation failed", Err: err}
}
