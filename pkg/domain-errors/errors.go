// Package domainerrors defines the error taxonomy shared by services and transports.
//
// Services return *Error values carrying a Code; the HTTP layer maps codes to
// status codes in a single place (see pkg/platform/httputil). Stores never
// return these directly; they return pkg/platform/sentinel errors which the
// service layer translates.
package domainerrors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Code is a stable, client-visible error classification.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeValidation         Code = "validation_error"
	CodeInvalidInput       Code = "invalid_input"
	CodeInvalidRequest     Code = "invalid_request"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeRateLimited        Code = "rate_limited"
	CodeDependencyFailure  Code = "dependency_failure"
	CodeTimeout            Code = "timeout"
	CodeInvariantViolation Code = "invariant_violation"
	CodeInternal           Code = "internal_error"
)

// FieldError names a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a coded domain error. Fields is populated for validation failures
// that accumulate more than one problem; RetryAfter only for CodeRateLimited.
type Error struct {
	Code       Code
	Message    string
	Fields     []FieldError
	RetryAfter time.Duration
	cause      error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New creates a coded error.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, cause: err}
}

// NewRateLimited reports a denied action and when it may be retried.
func NewRateLimited(msg string, retryAfter time.Duration) error {
	return &Error{Code: CodeRateLimited, Message: msg, RetryAfter: retryAfter}
}

// As returns the outermost *Error in the chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether any *Error in the chain carries code.
func HasCode(err error, code Code) bool {
	for err != nil {
		var de *Error
		if !errors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.cause
	}
	return false
}

// Is is an alias of HasCode kept for handler readability.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the code of the outermost *Error, or CodeInternal.
func CodeOf(err error) Code {
	if de, ok := As(err); ok {
		return de.Code
	}
	return CodeInternal
}

// RetryAfter extracts the retry hint of a rate-limited error.
func RetryAfter(err error) (time.Duration, bool) {
	de, ok := As(err)
	if !ok || de.Code != CodeRateLimited {
		return 0, false
	}
	return de.RetryAfter, true
}

// FieldErrors returns the accumulated field errors of a validation error.
func FieldErrors(err error) []FieldError {
	if de, ok := As(err); ok {
		return de.Fields
	}
	return nil
}

// Fields accumulates per-field problems so a request reports all of them at once.
type Fields struct {
	errs []FieldError
}

// Add records a problem with field.
func (f *Fields) Add(field, msg string) {
	f.errs = append(f.errs, FieldError{Field: field, Message: msg})
}

// Addf records a formatted problem with field.
func (f *Fields) Addf(field, format string, args ...any) {
	f.Add(field, fmt.Sprintf(format, args...))
}

// Empty reports whether nothing was recorded.
func (f *Fields) Empty() bool {
	return len(f.errs) == 0
}

// Err returns nil when nothing was recorded, otherwise a CodeValidation error
// whose message lists every field.
func (f *Fields) Err() error {
	if len(f.errs) == 0 {
		return nil
	}
	parts := make([]string, 0, len(f.errs))
	for _, fe := range f.errs {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return &Error{
		Code:    CodeValidation,
		Message: strings.Join(parts, "; "),
		Fields:  append([]FieldError(nil), f.errs...),
	}
}
