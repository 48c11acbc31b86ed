package v1

import (
	"github.com/gofiber/fiber/v3"

	"jobboard/internal/delivery/http/handler"
	"jobboard/internal/delivery/http/middleware"
)

type Handlers struct {
	Auth  *middleware.AuthMiddleware
	Login *handler.AuthHandler
	Users *handler.UserHandler
	Jobs  *handler.JobsHandler
}

func Register(r fiber.Router, h Handlers) {
	if r == nil {
		return
	}

	if h.Login != nil {
		h.Login.RegisterRoutes(r)
	}
	RegisterJobs(r, h.Jobs, h.Auth)
	RegisterUsers(r, h.Users, h.Auth)
}
