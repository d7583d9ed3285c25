package report

import (
	"context"
	"errors"

	errorslib "github.com/goliatone/go-errors"
)

// Kind classifies report pipeline failures
type Kind string

const (
	KindInvalidInput           Kind = "invalid_input"
	KindExternalService        Kind = "external_service"
	KindEnvironmentUnavailable Kind = "environment_unavailable"
	KindInternal               Kind = "internal"
)

// Error wraps errors with a kind and a short message safe to show to users
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new report error
func NewError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindFromError maps an error to its kind. Context cancellation and
// deadlines count as a failed external call
func KindFromError(err error) Kind {
	if err == nil {
		return ""
	}

	var reportErr *Error
	if errors.As(err, &reportErr) {
		return reportErr.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindExternalService
	}

	return KindInternal
}

// Message returns the user-facing message of err without wrapped detail
func Message(err error) string {
	var reportErr *Error
	if errors.As(err, &reportErr) && reportErr.Msg != "" {
		return reportErr.Msg
	}
	return "internal error"
}

// AsGoError maps an error into a go-errors error
func AsGoError(err error) *errorslib.Error {
	if err == nil {
		return nil
	}

	var ge *errorslib.Error
	if errors.As(err, &ge) {
		return ge
	}

	kind := KindFromError(err)
	msg := Message(err)

	switch kind {
	case KindInvalidInput:
		return errorslib.New(msg, errorslib.CategoryValidation).WithTextCode(string(kind))
	case KindExternalService:
		return errorslib.New(msg, errorslib.CategoryExternal).WithTextCode(string(kind))
	case KindEnvironmentUnavailable:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode(string(kind))
	default:
		return errorslib.New(msg, errorslib.CategoryInternal).WithTextCode(string(KindInternal))
	}
}
