// Package domainerrors carries coded, user-facing errors across service and
// transport layers. Stores return sentinel errors; services translate them
// into one of the codes below.
package domainerrors

import (
	"errors"
	"net/http"
	"strings"
)

type Code string

const (
	CodeBadRequest   Code = "bad_request"
	CodeValidation   Code = "validation_error"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeInternal     Code = "internal_error"
	CodeTimeout      Code = "timeout"
	CodeRateLimited  Code = "rate_limited"

	// Visit registration codes.
	CodeInvalidVisit         Code = "invalid_visit"
	CodeUnknownIdentifier    Code = "unknown_identifier"
	CodeIncompleteAttributes Code = "incomplete_attributes"
	CodeConflictingInput     Code = "conflicting_input"
	CodeDuplicateMember      Code = "duplicate_member"
	CodeSelfReference        Code = "self_reference"

	// CodeConfiguration marks developer mistakes such as routing to a site
	// that has no rule set. Never shown verbatim to end users.
	CodeConfiguration Code = "configuration_error"
)

// FieldError attributes a user-facing message to one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors accumulates field errors from a single validation pass.
type FieldErrors []FieldError

func (f *FieldErrors) Add(field, message string) {
	*f = append(*f, FieldError{Field: field, Message: message})
}

func (f FieldErrors) Empty() bool { return len(f) == 0 }

// Has reports whether any error targets field.
func (f FieldErrors) Has(field string) bool {
	for _, e := range f {
		if e.Field == field {
			return true
		}
	}
	return false
}

// Prefixed returns a copy with every field name prefixed, e.g. "members[2].".
func (f FieldErrors) Prefixed(prefix string) FieldErrors {
	out := make(FieldErrors, len(f))
	for i, e := range f {
		out[i] = FieldError{Field: prefix + e.Field, Message: e.Message}
	}
	return out
}

func (f FieldErrors) Error() string {
	parts := make([]string, len(f))
	for i, e := range f {
		parts[i] = e.Field + ": " + e.Message
	}
	return strings.Join(parts, "; ")
}

// Error is a coded domain error.
type Error struct {
	Code    Code
	Message string
	Fields  FieldErrors
	Err     error
	// RetryAfter is in seconds; set on CodeRateLimited errors.
	RetryAfter int
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, Err: err}
}

// WithFields builds an error carrying per-field details.
func WithFields(code Code, message string, fields FieldErrors) error {
	return &Error{Code: code, Message: message, Fields: fields}
}

// RateLimited tells the client to retry after retryAfter seconds.
func RateLimited(message string, retryAfter int) error {
	return &Error{Code: CodeRateLimited, Message: message, RetryAfter: retryAfter}
}

// As extracts the outermost domain error from err.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether the outermost domain error in err has code.
func HasCode(err error, code Code) bool {
	de, ok := As(err)
	return ok && de.Code == code
}

// Is is an alias of HasCode kept for handler readability.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// FieldsOf returns the field errors attached to err, if any.
func FieldsOf(err error) FieldErrors {
	if de, ok := As(err); ok {
		return de.Fields
	}
	return nil
}

// ToHTTPStatus maps a code to its transport status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeValidation, CodeInvalidVisit, CodeIncompleteAttributes,
		CodeConflictingInput, CodeDuplicateMember, CodeSelfReference, CodeUnknownIdentifier:
		return http.StatusUnprocessableEntity
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
