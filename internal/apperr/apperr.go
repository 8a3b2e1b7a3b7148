// internal/apperr/apperr.go
//
// Coded application errors.
//
// Context
// -------
// Every service returns either nil, an *Error, or a plain error.  The HTTP
// layer maps *Error.Kind onto a status code and treats anything else as an
// opaque internal failure.  Code is the machine-readable reason a client can
// branch on; Field names the first offending input when one exists.
//
// Kinds and their status codes:
//
//	KindValidation       400
//	KindUnauthenticated  401
//	KindNotFound         404
//	KindConflict         409
//	KindInternal         500
//
// Notes
// -----
//   - Is() compares by Code so callers can write errors.Is(err, ErrPartySizeExceeded).
//   - Internal errors keep their Cause for server-side logs only.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindNotFound
	KindConflict
)

// Code is a machine-readable error reason.
type Code string

const (
	CodeInternal              Code = "INTERNAL"
	CodeValidation            Code = "VALIDATION"
	CodeUnauthenticated       Code = "UNAUTHENTICATED"
	CodeInvalidCredentials    Code = "INVALID_CREDENTIALS"
	CodeNotFound              Code = "NOT_FOUND"
	CodeConflict              Code = "CONFLICT"
	CodePartySizeExceeded     Code = "PARTY_SIZE_EXCEEDED"
	CodeInvalidAttendeeName   Code = "INVALID_ATTENDEE_NAME"
	CodeMissingPrimary        Code = "MISSING_PRIMARY_ATTENDEE"
	CodeMissingMealPreference Code = "MISSING_MEAL_PREFERENCE"
	CodeInvalidMealPreference Code = "INVALID_MEAL_PREFERENCE"
)

// Error is the coded error type shared by every service.
type Error struct {
	Kind    Kind
	Code    Code
	Field   string // first offending input, may be empty
	Message string // client-safe text
	Cause   error  // server-side detail, never rendered
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches by Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinels for errors.Is checks.
var (
	ErrUnauthenticated    = &Error{Kind: KindUnauthenticated, Code: CodeUnauthenticated, Message: "Unauthorized"}
	ErrInvalidCredentials = &Error{Kind: KindUnauthenticated, Code: CodeInvalidCredentials, Message: "Invalid credentials"}
	ErrNotFound           = &Error{Kind: KindNotFound, Code: CodeNotFound, Message: "Not found"}
	ErrConflict           = &Error{Kind: KindConflict, Code: CodeConflict, Message: "Conflict"}

	ErrPartySizeExceeded     = &Error{Kind: KindValidation, Code: CodePartySizeExceeded}
	ErrInvalidAttendeeName   = &Error{Kind: KindValidation, Code: CodeInvalidAttendeeName}
	ErrMissingPrimary        = &Error{Kind: KindValidation, Code: CodeMissingPrimary}
	ErrMissingMealPreference = &Error{Kind: KindValidation, Code: CodeMissingMealPreference}
	ErrInvalidMealPreference = &Error{Kind: KindValidation, Code: CodeInvalidMealPreference}
)

// Validation builds a 400 error naming field.
func Validation(field, msg string) *Error {
	return &Error{Kind: KindValidation, Code: CodeValidation, Field: field, Message: msg}
}

// Rule builds a 400 error for a named business rule.
func Rule(code Code, field, msg string) *Error {
	return &Error{Kind: KindValidation, Code: code, Field: field, Message: msg}
}

// NotFound builds a 404 error with a resource-specific message.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Code: CodeNotFound, Message: msg}
}

// Conflict builds a 409 error.
func Conflict(field, msg string) *Error {
	return &Error{Kind: KindConflict, Code: CodeConflict, Field: field, Message: msg}
}

// Internal wraps an unexpected failure.  The message shown to clients is
// always generic.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: "Internal server error", Cause: cause}
}

// From returns err as *Error, wrapping unknown errors as internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}

// Status maps a Kind onto an HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
