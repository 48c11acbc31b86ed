package handler

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"jobboard/internal/delivery/http/middleware"
	"jobboard/internal/pkg/response"
	authuc "jobboard/internal/usecase/auth"
)

// SessionWriter delivers a session as both the body `token` and an HTTP-only cookie.
type SessionWriter struct {
	cookieTTL time.Duration
	secure    bool
	now       func() time.Time
}

func NewSessionWriter(cookieTTL time.Duration, secure bool) *SessionWriter {
	return &SessionWriter{cookieTTL: cookieTTL, secure: secure, now: time.Now}
}

func (w *SessionWriter) Send(c fiber.Ctx, s authuc.Session) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    s.Token,
		Path:     "/",
		Expires:  w.now().Add(w.cookieTTL),
		HTTPOnly: true,
		Secure:   w.secure,
	})
	return response.Token(c, s.Token)
}

// Clear overwrites the cookie with a placeholder that has already expired.
func (w *SessionWriter) Clear(c fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "none",
		Path:     "/",
		Expires:  w.now(),
		HTTPOnly: true,
		Secure:   w.secure,
	})
}
