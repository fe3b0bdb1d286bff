package domain

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindAuthRequired
	KindInvalidCredentials
	KindNotFound
	KindForbidden
	KindValidation
	KindInvalidOrExpired
)

var kindCodes = map[Kind]string{
	KindInternal:           "INTERNAL",
	KindAuthRequired:       "AUTH_REQUIRED",
	KindInvalidCredentials: "INVALID_CREDENTIALS",
	KindNotFound:           "NOT_FOUND",
	KindForbidden:          "FORBIDDEN",
	KindValidation:         "VALIDATION",
	KindInvalidOrExpired:   "INVALID_OR_EXPIRED",
}

func (k Kind) String() string { return kindCodes[k] }

// Error is a failure the caller is expected to show to the user as is.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrForbidden) works
// whatever the message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Msg == ""
}

// Kind sentinels for errors.Is.
var (
	ErrAuthRequired       = &Error{Kind: KindAuthRequired}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrForbidden          = &Error{Kind: KindForbidden}
	ErrValidation         = &Error{Kind: KindValidation}
	ErrInvalidOrExpired   = &Error{Kind: KindInvalidOrExpired}
)

func AuthRequired() error { return &Error{Kind: KindAuthRequired, Msg: "You must be logged in to do that!"} }

func InvalidCredentials() error { return &Error{Kind: KindInvalidCredentials, Msg: "Invalid password!"} }

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Forbidden(msg string) error { return &Error{Kind: KindForbidden, Msg: msg} }

func Validation(msg string) error { return &Error{Kind: KindValidation, Msg: msg} }

func InvalidOrExpired() error {
	return &Error{Kind: KindInvalidOrExpired, Msg: "This token is either invalid or expired!"}
}

func Internal(msg string, err error) error { return &Error{Kind: KindInternal, Msg: msg, Err: err} }

// KindOf returns the kind of the first *Error in err's chain, KindInternal
// for anything else.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
