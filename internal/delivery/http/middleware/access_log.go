package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"jobboard/internal/logging"
)

const HeaderRequestID = "X-Request-ID"

type AccessLogMiddleware struct {
	logger logging.Logger
}

func NewAccessLogMiddleware(logger logging.Logger) *AccessLogMiddleware {
	if logger == nil {
		logger = logging.Nop()
	}
	return &AccessLogMiddleware{logger: logger.With("component", "access")}
}

func (m *AccessLogMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		rid := c.Get(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(HeaderRequestID, rid)

		err := c.Next()

		m.logger.Info(c.Context(), "http access",
			"rid", rid,
			"ip", c.IP(),
			"method", c.Method(),
			"path", c.OriginalURL(),
			"status", c.Response().StatusCode(),
			"latency", time.Since(start),
			"resp_bytes", len(c.Response().Body()),
			"ua", c.Get(fiber.HeaderUserAgent),
		)

		return err
	}
}
