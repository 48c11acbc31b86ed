package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"

	"jobboard/internal/logging"
	"jobboard/internal/pkg/response"
)

// Counter is a fixed-window hit counter, satisfied by the Redis cache.
type Counter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type RateLimitMiddleware struct {
	counter Counter
	max     int
	window  time.Duration
	logger  logging.Logger
}

func NewRateLimitMiddleware(counter Counter, max int, window time.Duration, logger logging.Logger) *RateLimitMiddleware {
	if logger == nil {
		logger = logging.Nop()
	}
	return &RateLimitMiddleware{counter: counter, max: max, window: window, logger: logger}
}

// Middleware limits each client IP to max requests per window. When the counter is
// unreachable requests are let through.
func (m *RateLimitMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		if m.counter == nil || m.max <= 0 {
			return c.Next()
		}

		n, left, err := m.counter.Hit(c.Context(), "ratelimit:"+c.IP(), m.window)
		if err != nil {
			m.logger.Debug(c.Context(), "rate limit skipped", "error", err)
			return c.Next()
		}

		remaining := int64(m.max) - n
		if remaining < 0 {
			remaining = 0
		}
		c.Set("X-RateLimit-Limit", strconv.Itoa(m.max))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if n > int64(m.max) {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(left.Round(time.Second)/time.Second)))
			return response.Error(c, fiber.StatusTooManyRequests, "Too many requests, please try again later")
		}
		return c.Next()
	}
}
