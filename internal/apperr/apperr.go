// internal/apperr/apperr.go
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the HTTP boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalid
	KindNotFound
	KindHandlerNotFound
	KindRouteRegistration
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindNotFound:
		return "not_found"
	case KindHandlerNotFound:
		return "handler_not_found"
	case KindRouteRegistration:
		return "route_registration"
	case KindTransient:
		return "transient"
	default:
		return "internal"
	}
}

// StatusClientClosedRequest is reported when the caller cancelled the request.
const StatusClientClosedRequest = 499

// GenericMessage replaces the message of every 500-class response.
const GenericMessage = "internal server error"

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		if e.Message == "" {
			return e.Err.Error()
		}
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports kind equality so that errors.Is(err, apperr.NotFound("")) style checks work
// against sentinels declared with the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels usable with errors.Is.
var (
	ErrInvalid         = &Error{Kind: KindInvalid}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrHandlerNotFound = &Error{Kind: KindHandlerNotFound}
	ErrRegistration    = &Error{Kind: KindRouteRegistration}
	ErrTransient       = &Error{Kind: KindTransient}
)

func Invalid(format string, args ...any) *Error {
	return &Error{Kind: KindInvalid, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func HandlerNotFound(requestType string) *Error {
	return &Error{Kind: KindHandlerNotFound, Message: "no handler registered for " + requestType}
}

func Registration(format string, args ...any) *Error {
	return &Error{Kind: KindRouteRegistration, Message: fmt.Sprintf(format, args...)}
}

// Transient wraps an infrastructure failure, typically a repository call.
func Transient(err error, format string, args ...any) *Error {
	return &Error{Kind: KindTransient, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first *Error in the chain, KindInternal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error to the status code written at the HTTP boundary.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, context.Canceled) {
		return StatusClientClosedRequest
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	switch KindOf(err) {
	case KindInvalid:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message safe to show to a caller.
func PublicMessage(err error) string {
	status := HTTPStatus(err)
	if status >= 500 {
		return GenericMessage
	}
	if status == StatusClientClosedRequest {
		return "request cancelled"
	}
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
