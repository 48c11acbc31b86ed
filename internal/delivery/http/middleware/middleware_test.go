package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/apperror"
	"jobboard/internal/domain/user"
	"jobboard/internal/logging"
	"jobboard/internal/pkg/jwt"
)

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	return body
}

func errorApp(production bool, err error) *fiber.App {
	app := fiber.New()
	app.Use(NewErrorMiddleware(production, logging.Nop()).Middleware())
	app.Get("/", func(c fiber.Ctx) error { return err })
	return app
}

func TestErrorMiddleware_Production(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"cast", &apperror.CastError{Field: "_id", Value: "abc"}, 404, "Resource not found: invalid _id"},
		{"validation", &apperror.ValidationErrors{Messages: []string{"Please enter Job title", "Please enter Job description"}}, 400, "Please enter Job title, Please enter Job description"},
		{"duplicate", &pgconn.PgError{Code: "23505", TableName: "users", ConstraintName: "users_email_key"}, 400, "Duplicate email entered"},
		{"expired token", jwt.ErrTokenExpired, 500, "token expired, try again"},
		{"invalid token", jwt.ErrTokenInvalid, 500, "token invalid, try again"},
		{"not found", apperror.NotFound("Job not found"), 404, "Job not found"},
		{"upstream keeps message", apperror.WithStatus(apperror.KindUpstream, 500, "Email could not be sent", errors.New("smtp down")), 500, "Email could not be sent"},
		{"internal hidden", apperror.Internal("db exploded", errors.New("boom")), 500, "Internal Server Error"},
		{"fiber error", fiber.NewError(fiber.StatusRequestEntityTooLarge, "Request Entity Too Large"), 413, "Request Entity Too Large"},
		{"unknown", errors.New("secret detail"), 500, "Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := errorApp(true, tt.err).Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			body := decode(t, resp)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantMsg, body["message"])
			assert.NotContains(t, body, "stack")
		})
	}
}

func TestErrorMiddleware_DevelopmentCarriesDetail(t *testing.T) {
	resp, err := errorApp(false, apperror.NotFound("Job not found")).Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Job not found", body["error"])
	assert.Equal(t, "Job not found", body["errMessage"])
	assert.NotEmpty(t, body["stack"])
}

func TestErrorMiddleware_RecoversPanic(t *testing.T) {
	app := fiber.New()
	app.Use(NewErrorMiddleware(true, logging.Nop()).Middleware())
	app.Get("/", func(c fiber.Ctx) error { panic("kaboom") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
	assert.Equal(t, "Internal Server Error", decode(t, resp)["message"])
}

type stubUsers struct {
	user.Repository
	byID map[uuid.UUID]user.User
}

func (s stubUsers) GetByID(_ context.Context, id uuid.UUID) (user.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func authApp(t *testing.T, roles ...string) (*fiber.App, *jwt.HMACService, user.User) {
	t.Helper()
	signer := jwt.NewHMACService("test-secret", time.Hour)
	employer := user.User{ID: uuid.New(), Name: "Acme", Email: "hr@acme.test", Role: user.RoleEmployer}
	users := stubUsers{byID: map[uuid.UUID]user.User{employer.ID: employer}}

	app := fiber.New()
	app.Use(NewErrorMiddleware(true, logging.Nop()).Middleware())
	auth := NewAuthMiddleware(signer, users)
	me := func(c fiber.Ctx) error {
		u, ok := CurrentUser(c)
		if !ok {
			return c.SendStatus(fiber.StatusTeapot)
		}
		return c.SendString(u.Email)
	}
	if len(roles) > 0 {
		app.Get("/me", auth.Authenticate(), AuthorizeRoles(roles...), me)
	} else {
		app.Get("/me", auth.Authenticate(), me)
	}
	return app, signer, employer
}

func TestAuthenticate(t *testing.T) {
	app, signer, employer := authApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
	assert.Equal(t, "Login first to access this resource", decode(t, resp)["message"])

	token, _, err := signer.Issue(employer.ID, employer.Role)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "hr@acme.test", string(raw))

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestAuthenticate_TokenFailures(t *testing.T) {
	app, signer, _ := authApp(t)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
	assert.Equal(t, "token invalid, try again", decode(t, resp)["message"])

	ghost, _, err := signer.Issue(uuid.New(), user.RoleUser)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+ghost)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
	assert.Equal(t, "The user belonging to this token no longer exists", decode(t, resp)["message"])

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: "none"})
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestAuthorizeRoles(t *testing.T) {
	app, signer, employer := authApp(t, user.RoleAdmin)
	token, _, err := signer.Issue(employer.ID, employer.Role)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)
	assert.Equal(t, "Role (employer) is not allowed to access this resource", decode(t, resp)["message"])
}

func TestBearerTokenFromHeader(t *testing.T) {
	tok, ok := bearerTokenFromHeader("bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	for _, h := range []string{"", "Bearer", "Bearer   ", "Basic abc"} {
		_, ok := bearerTokenFromHeader(h)
		assert.False(t, ok, h)
	}
}

type fakeCounter struct {
	hits map[string]int64
	err  error
}

func (f *fakeCounter) Hit(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if f.err != nil {
		return 0, 0, f.err
	}
	f.hits[key]++
	return f.hits[key], window, nil
}

func TestRateLimit(t *testing.T) {
	counter := &fakeCounter{hits: map[string]int64{}}
	app := fiber.New()
	app.Use(NewRateLimitMiddleware(counter, 2, time.Minute, logging.Nop()).Middleware())
	app.Get("/", func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, 204, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 429, resp.StatusCode)
	assert.Equal(t, "60", resp.Header.Get("Retry-After"))
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))
}

func TestRateLimit_FailsOpen(t *testing.T) {
	app := fiber.New()
	app.Use(NewRateLimitMiddleware(&fakeCounter{err: errors.New("redis down")}, 1, time.Minute, nil).Middleware())
	app.Get("/", func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, 204, resp.StatusCode)
	}
}

func TestAccessLog_SetsRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(NewAccessLogMiddleware(nil).Middleware())
	app.Get("/", func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	_, err = uuid.Parse(resp.Header.Get(HeaderRequestID))
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "given")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "given", resp.Header.Get(HeaderRequestID))
}

func TestRequestTimeout_SetsDeadline(t *testing.T) {
	app := fiber.New()
	app.Use(RequestTimeout(time.Second))
	app.Get("/", func(c fiber.Ctx) error {
		deadline, ok := c.Context().Deadline()
		if !ok || time.Until(deadline) > time.Second {
			return c.SendStatus(fiber.StatusTeapot)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)
}
