package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies a caller-visible failure.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindInvalidTransition Kind = "invalid_transition"
	KindConflict          Kind = "conflict"
	KindForbidden         Kind = "forbidden"
	KindValidation        Kind = "validation"
)

// Error is a domain failure that carries enough structure for a client to react.
// Sentinel values are compared with errors.Is; WithDetails returns a copy that
// still matches its sentinel.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]interface{}

	sentinel *Error
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s %v", e.Message, e.Details)
}

// Is matches the sentinel an error was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e == t {
		return true
	}
	return e.sentinel != nil && e.sentinel == t
}

// WithDetails returns a copy of e with extra context attached.
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	root := e
	if e.sentinel != nil {
		root = e.sentinel
	}
	merged := make(map[string]interface{}, len(e.Details)+len(details))
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &Error{
		Kind:     e.Kind,
		Code:     e.Code,
		Message:  e.Message,
		Details:  merged,
		sentinel: root,
	}
}

// Wrapped is implemented by errors that know their own kind without being *Error.
type Wrapped interface {
	AppError() *Error
}

// As extracts the *Error carried by err, if any.
func As(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	var wrapped Wrapped
	if errors.As(err, &wrapped) {
		return wrapped.AppError(), true
	}
	return nil, false
}

// KindOf returns the kind of err, or "" for infrastructure errors.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return ""
}

func NotFound(code, message string) *Error   { return New(KindNotFound, code, message) }
func Conflict(code, message string) *Error   { return New(KindConflict, code, message) }
func Forbidden(code, message string) *Error  { return New(KindForbidden, code, message) }
func Validation(code, message string) *Error { return New(KindValidation, code, message) }
