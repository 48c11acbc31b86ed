package v1

import (
	"github.com/gofiber/fiber/v3"

	"jobboard/internal/delivery/http/handler"
	"jobboard/internal/delivery/http/middleware"
)

func RegisterUsers(r fiber.Router, userHandler *handler.UserHandler, auth *middleware.AuthMiddleware) {
	if r == nil {
		return
	}
	if userHandler == nil || auth == nil {
		return
	}

	userHandler.RegisterRoutes(r, auth)
}
