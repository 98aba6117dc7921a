// Package errors defines the typed error carried from services to the HTTP
// layer. Each Code maps onto a status, a public message and whether details
// may be shown to the caller.
package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeStateConflict Code = "STATE_CONFLICT"
	CodeIdempotency   Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit     Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeDependency    Code = "DEPENDENCY_ERROR"
)

// Metadata describes how a code surfaces over HTTP.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

func meta(status int, message string, details, retry bool) Metadata {
	return Metadata{HTTPStatus: status, PublicMessage: message, DetailsAllowed: details, Retryable: retry}
}

var catalog = map[Code]Metadata{
	CodeValidation:    meta(http.StatusBadRequest, "invalid request", true, false),
	CodeUnauthorized:  meta(http.StatusUnauthorized, "caller identity required", false, false),
	CodeForbidden:     meta(http.StatusForbidden, "operation not permitted", true, false),
	CodeNotFound:      meta(http.StatusNotFound, "resource not found", false, false),
	CodeConflict:      meta(http.StatusConflict, "resource already exists", false, false),
	CodeStateConflict: meta(http.StatusUnprocessableEntity, "invalid state for operation", true, false),
	CodeIdempotency:   meta(http.StatusConflict, "idempotency key reused", true, false),
	CodeRateLimit:     meta(http.StatusTooManyRequests, "too many requests", false, true),
	CodeInternal:      meta(http.StatusInternalServerError, "internal server error", false, true),
	CodeDependency:    meta(http.StatusServiceUnavailable, "storage unavailable", true, true),
}

// MetadataFor falls back to the internal error entry for unknown codes.
func MetadataFor(code Code) Metadata {
	if m, ok := catalog[code]; ok {
		return m
	}
	return catalog[CodeInternal]
}

// Error is a coded failure with an optional cause and caller-facing details.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

// Wrap attaches code and message to err. A nil err behaves like New.
func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.cause == nil:
		return string(e.code) + ": " + e.message
	default:
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is matches another *Error with the same code. A target with an empty
// message matches any message for that code.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok || e == nil || other == nil {
		return false
	}
	return e.code == other.code && (other.message == "" || e.message == other.message)
}

// As returns the outermost *Error in err's chain.
func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// CodeOf returns the outermost typed code in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	return As(err).Code()
}

func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}

// Retryable reports whether the caller may safely retry the request that
// produced err.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	return MetadataFor(CodeOf(err)).Retryable
}
