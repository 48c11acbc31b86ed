package v1

import (
	"github.com/gofiber/fiber/v3"

	"jobboard/internal/delivery/http/handler"
	"jobboard/internal/delivery/http/middleware"
)

func RegisterJobs(r fiber.Router, jobsHandler *handler.JobsHandler, auth *middleware.AuthMiddleware) {
	if r == nil {
		return
	}
	if jobsHandler == nil || auth == nil {
		return
	}

	jobsHandler.RegisterRoutes(r, auth)
}
