package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"jobboard/internal/pkg/response"
)

// Pinger is anything the health check should reach: the database pool, the cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	checks map[string]Pinger
}

func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) RegisterRoutes(app fiber.Router) {
	app.Get("/health", h.Health)
}

// Health reports 503 when the database is down. Other dependencies only degrade.
func (h *HealthHandler) Health(c fiber.Ctx) error {
	status := fiber.StatusOK
	out := make(map[string]string, len(h.checks))
	for name, p := range h.checks {
		if p == nil {
			continue
		}
		if err := p.Ping(c.Context()); err != nil {
			out[name] = "down"
			if name == "database" {
				status = fiber.StatusServiceUnavailable
			}
			continue
		}
		out[name] = "up"
	}
	if status != fiber.StatusOK {
		return c.Status(status).JSON(response.Envelope{Success: false, Message: "Service Unavailable", Data: out})
	}
	return response.Success(c, status, "OK", out)
}
