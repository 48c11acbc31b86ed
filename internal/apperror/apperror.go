// Package apperror is the error taxonomy shared by services, middleware and handlers.
// Every failure that crosses the HTTP boundary is either an *Error or one of the
// underlying shapes below (ValidationErrors, CastError) that the error middleware knows
// how to normalize.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindAuthentication
	KindAuthorization
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

// Status is the default HTTP status for a kind. Conflicts answer 400 like the rest of the
// API's client errors (duplicate e-mail, duplicate application).
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error

	pcs []uintptr
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *Error) StatusCode() int {
	if e == nil {
		return http.StatusInternalServerError
	}
	if e.Status > 0 {
		return e.Status
	}
	return e.Kind.Status()
}

// Stack renders the call site captured at construction.
func (e *Error) Stack() string {
	if e == nil || len(e.pcs) == 0 {
		return ""
	}
	return formatStack(e.pcs)
}

func New(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err, pcs: callers()}
}

// WithStatus overrides the kind's default status.
func WithStatus(kind Kind, status int, message string, err error) *Error {
	e := New(kind, message, err)
	e.Status = status
	return e
}

func Validation(message string) *Error          { return New(KindValidation, message, nil) }
func NotFound(message string) *Error            { return New(KindNotFound, message, nil) }
func Conflict(message string) *Error            { return New(KindConflict, message, nil) }
func Authentication(message string) *Error      { return New(KindAuthentication, message, nil) }
func Authorization(message string) *Error       { return New(KindAuthorization, message, nil) }
func Upstream(message string, err error) *Error { return New(KindUpstream, message, err) }
func Internal(message string, err error) *Error { return New(KindInternal, message, err) }

// ValidationErrors is a schema validation failure: one message per offending field.
type ValidationErrors struct {
	Messages []string
}

func (v *ValidationErrors) Error() string {
	if v == nil || len(v.Messages) == 0 {
		return "validation failed"
	}
	return "validation failed: " + strings.Join(v.Messages, ", ")
}

func (v *ValidationErrors) Add(msg string) {
	v.Messages = append(v.Messages, msg)
}

// OrNil returns nil when nothing was collected so callers can `return errs.OrNil()`.
func (v *ValidationErrors) OrNil() error {
	if v == nil || len(v.Messages) == 0 {
		return nil
	}
	return v
}

// CastError is a malformed identifier or reference.
type CastError struct {
	Field string
	Value string
	Err   error
}

func (c *CastError) Error() string {
	return fmt.Sprintf("cast to %s failed for value %q", c.Field, c.Value)
}

func (c *CastError) Unwrap() error {
	return c.Err
}

func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	var ve *ValidationErrors
	if errors.As(err, &ve) {
		return KindValidation
	}
	var ce *CastError
	if errors.As(err, &ce) {
		return KindNotFound
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}

func callers() []uintptr {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(3, pcs)
	return pcs[:n]
}

func formatStack(pcs []uintptr) string {
	frames := runtime.CallersFrames(pcs)
	var b strings.Builder
	for {
		f, more := frames.Next()
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", f.Function, f.File, f.Line)
		if !more {
			break
		}
	}
	return b.String()
}
