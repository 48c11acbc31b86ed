package middleware

import (
	"errors"
	"slices"
	"strings"

	"github.com/gofiber/fiber/v3"

	"jobboard/internal/apperror"
	"jobboard/internal/domain/user"
	"jobboard/internal/pkg/jwt"
)

const (
	ctxUserKey = "current_user"

	// TokenCookie is set on login alongside the token in the body.
	TokenCookie = "token"
)

type AuthMiddleware struct {
	jwt   jwt.Service
	users user.Repository
}

func NewAuthMiddleware(jwtSvc jwt.Service, users user.Repository) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwtSvc, users: users}
}

// Authenticate resolves the caller from a Bearer token (or the token cookie) and loads the
// account it names. Token failures pass through untouched for the error middleware.
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := bearerTokenFromHeader(c.Get(fiber.HeaderAuthorization))
		if !ok {
			token, ok = tokenFromCookie(c.Cookies(TokenCookie))
		}
		if !ok {
			return apperror.Authentication("Login first to access this resource")
		}

		claims, err := m.jwt.Verify(token)
		if err != nil {
			return err
		}

		u, err := m.users.GetByID(c.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return apperror.Authentication("The user belonging to this token no longer exists")
			}
			return err
		}

		c.Locals(ctxUserKey, u)
		return c.Next()
	}
}

// AuthorizeRoles must run after Authenticate.
func AuthorizeRoles(roles ...string) fiber.Handler {
	return func(c fiber.Ctx) error {
		u, ok := CurrentUser(c)
		if !ok {
			return apperror.Authentication("Login first to access this resource")
		}
		if !slices.Contains(roles, u.Role) {
			return apperror.Authorization("Role (" + u.Role + ") is not allowed to access this resource")
		}
		return c.Next()
	}
}

func CurrentUser(c fiber.Ctx) (user.User, bool) {
	u, ok := c.Locals(ctxUserKey).(user.User)
	return u, ok
}

func bearerTokenFromHeader(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}

// tokenFromCookie ignores the placeholder written by logout.
func tokenFromCookie(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if v == "" || v == "none" {
		return "", false
	}
	return v, true
}
