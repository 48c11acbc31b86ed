package middleware

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/gofiber/fiber/v3"

	"jobboard/internal/apperror"
	"jobboard/internal/database"
	"jobboard/internal/logging"
	"jobboard/internal/pkg/jwt"
	"jobboard/internal/pkg/response"
)

// ErrorMiddleware turns every error returned down the chain into the response envelope.
// Development responses carry the raw error and a stack; production responses only a
// status and a message, with known failure shapes rewritten into friendly ones.
type ErrorMiddleware struct {
	production bool
	logger     logging.Logger
	tooLarge   func(c fiber.Ctx) error
}

func NewErrorMiddleware(production bool, logger logging.Logger) *ErrorMiddleware {
	if logger == nil {
		logger = logging.Nop()
	}
	return &ErrorMiddleware{production: production, logger: logger.With("component", "http")}
}

func (m *ErrorMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				m.logger.Error(c.Context(), "panic recovered", "panic", r, "stack", stack)
				err = m.write(c, apperror.Internal(response.MessageInternalServerError, fmt.Errorf("panic: %v", r)), stack)
			}
		}()

		err = c.Next()
		if err == nil {
			return nil
		}
		return m.write(c, err, "")
	}
}

// OnBodyTooLarge lets fn replace the 413 raised for a body over the server limit. A nil
// result keeps the 413.
func (m *ErrorMiddleware) OnBodyTooLarge(fn func(c fiber.Ctx) error) *ErrorMiddleware {
	m.tooLarge = fn
	return m
}

// Handler covers errors raised before the middleware chain runs, such as an oversized body.
func (m *ErrorMiddleware) Handler() fiber.ErrorHandler {
	return func(c fiber.Ctx, err error) error {
		var fe *fiber.Error
		if m.tooLarge != nil && errors.As(err, &fe) && fe.Code == fiber.StatusRequestEntityTooLarge {
			if replaced := m.tooLarge(c); replaced != nil {
				err = replaced
			}
		}
		return m.write(c, err, "")
	}
}

func (m *ErrorMiddleware) write(c fiber.Ctx, err error, stack string) error {
	if m.production {
		status, msg := Normalize(err)
		if status >= fiber.StatusInternalServerError {
			m.log(c.Context(), status, err)
		}
		return response.Error(c, status, msg)
	}

	status, msg := rawStatus(err)
	if stack == "" {
		var ae *apperror.Error
		if errors.As(err, &ae) {
			stack = ae.Stack()
		}
	}
	if status >= fiber.StatusInternalServerError {
		m.log(c.Context(), status, err)
	}
	return response.Debug(c, status, response.DebugEnvelope{
		Error:      err.Error(),
		ErrMessage: msg,
		Stack:      stack,
	})
}

func (m *ErrorMiddleware) log(ctx context.Context, status int, err error) {
	m.logger.Error(ctx, "request failed", "status", status, "error", err)
}

// Normalize maps err to the production status and message.
func Normalize(err error) (int, string) {
	var ce *apperror.CastError
	if errors.As(err, &ce) {
		return fiber.StatusNotFound, "Resource not found: invalid " + ce.Field
	}

	var ve *apperror.ValidationErrors
	if errors.As(err, &ve) {
		return fiber.StatusBadRequest, strings.Join(ve.Messages, ", ")
	}

	if field, ok := database.UniqueViolation(err); ok {
		return fiber.StatusBadRequest, "Duplicate " + field + " entered"
	}

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fiber.StatusInternalServerError, "token expired, try again"
	case errors.Is(err, jwt.ErrTokenInvalid):
		return fiber.StatusInternalServerError, "token invalid, try again"
	}

	var ae *apperror.Error
	if errors.As(err, &ae) {
		status := ae.StatusCode()
		if ae.Kind == apperror.KindInternal {
			return status, response.MessageInternalServerError
		}
		return status, ae.Message
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		if fe.Code >= fiber.StatusInternalServerError {
			return fe.Code, response.MessageInternalServerError
		}
		return fe.Code, fe.Message
	}

	return fiber.StatusInternalServerError, response.MessageInternalServerError
}

// rawStatus is the development view: the error's own status and message, no rewriting.
func rawStatus(err error) (int, string) {
	var ae *apperror.Error
	if errors.As(err, &ae) {
		return ae.StatusCode(), ae.Message
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fe.Message
	}
	var ve *apperror.ValidationErrors
	if errors.As(err, &ve) {
		return fiber.StatusBadRequest, strings.Join(ve.Messages, ", ")
	}
	var ce *apperror.CastError
	if errors.As(err, &ce) {
		return fiber.StatusNotFound, ce.Error()
	}
	if _, ok := database.UniqueViolation(err); ok {
		return fiber.StatusBadRequest, err.Error()
	}
	return fiber.StatusInternalServerError, err.Error()
}
