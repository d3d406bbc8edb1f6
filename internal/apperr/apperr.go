// Package apperr defines the error kinds the gateway surfaces to its callers.
//
// Every error returned by the orchestrator is either an *Error carrying one of the
// kinds below or an unexpected failure that the HTTP boundary reports as internal.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the response envelope and status code mapping.
type Kind string

const (
	KindValidation Kind = "validation_error"
	KindConflict   Kind = "conflict"
	KindNotFound   Kind = "not_found"
	KindDependency Kind = "dependency_unavailable"
	KindPublish    Kind = "publish_failure"
	KindInternal   Kind = "internal"
)

// Error is a classified error.
type Error struct {
	Kind    Kind
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

// Validation reports malformed input. No side effect has happened.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports a duplicate in-flight request or a state/channel mismatch.
func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports an unknown notification.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Dependency wraps an open circuit or exhausted retries against a collaborator.
func Dependency(name string, err error) *Error {
	return &Error{Kind: KindDependency, Message: fmt.Sprintf("%s unavailable", name), Err: err}
}

// Publish wraps a broker rejection or an unreachable broker.
func Publish(err error) *Error {
	return &Error{Kind: KindPublish, Message: "failed to publish notification", Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-facing message for err. Internal errors are not exposed.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
