package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an operation failure so callers and the HTTP layer can
// branch without string matching.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation marks out-of-range or malformed caller input. Never
	// retried.
	KindValidation
	// KindPrecondition marks an operation attempted before its required
	// state exists (not enough assessments, no learning path yet).
	KindPrecondition
	// KindNotFound marks an absent record that callers treat as a normal
	// state, e.g. a brand-new user.
	KindNotFound
	// KindStore marks an underlying persistence failure. The cause is kept
	// for logs, never shown to users.
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPrecondition:
		return "precondition"
	case KindNotFound:
		return "not_found"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind     Kind
	Code     string
	Message  string
	Guidance string
	Err      error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// UserMessage is the text safe to surface to callers: the message plus any
// remediation guidance.
func (e *Error) UserMessage() string {
	if e == nil {
		return ""
	}
	if e.Guidance != "" && e.Message != "" {
		return e.Message + " " + e.Guidance
	}
	if e.Guidance != "" {
		return e.Guidance
	}
	return e.Error()
}

func Validation(code, format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

func Precondition(code, message, guidance string) *Error {
	return &Error{Kind: KindPrecondition, Code: code, Message: message, Guidance: guidance}
}

func NotFound(code, message, guidance string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message, Guidance: guidance}
}

func Store(code string, err error) *Error {
	return &Error{Kind: KindStore, Code: code, Message: "a storage error occurred, please try again", Err: err}
}

// KindOf extracts the Kind from any error chain.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnknown
}

// As is a convenience wrapper around errors.As for *Error.
func As(err error) (*Error, bool) {
	var ae *Error
	ok := errors.As(err, &ae)
	return ae, ok
}
