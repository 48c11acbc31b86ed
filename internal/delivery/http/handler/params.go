package handler

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"jobboard/internal/apperror"
	"jobboard/internal/delivery/http/middleware"
	"jobboard/internal/domain/user"
)

// queryValues keeps repeated keys, which c.Queries() would collapse.
func queryValues(c fiber.Ctx) url.Values {
	v, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		return url.Values{}
	}
	return v
}

func pathID(c fiber.Ctx, name string) (uuid.UUID, error) {
	raw := c.Params(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &apperror.CastError{Field: name, Value: raw, Err: err}
	}
	return id, nil
}

func pathFloat(c fiber.Ctx, name string) (float64, error) {
	raw := strings.TrimSpace(c.Params(name))
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, apperror.Validation("Please enter a valid " + name)
	}
	return v, nil
}

func currentUser(c fiber.Ctx) (user.User, error) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return user.User{}, apperror.Authentication("Login first to access this resource")
	}
	return u, nil
}

func bindBody(c fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.Bind().Body(out); err != nil {
		return apperror.New(apperror.KindValidation, "Invalid request payload", err)
	}
	return nil
}
