package geocoder

import (
	"context"
	"strings"
	"time"

	"jobboard/internal/domain/job"
	"jobboard/internal/logging"
)

type Cache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Cached remembers resolved addresses. Cache failures fall through to the provider.
type Cached struct {
	next   Geocoder
	cache  Cache
	ttl    time.Duration
	logger logging.Logger
}

func NewCached(next Geocoder, cache Cache, ttl time.Duration, logger logging.Logger) *Cached {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Cached{next: next, cache: cache, ttl: ttl, logger: logger.With("component", "geocoder")}
}

func CacheKey(address string) string {
	return "geocode:" + strings.ToLower(strings.Join(strings.Fields(address), " "))
}

func (c *Cached) Geocode(ctx context.Context, address string) (job.Location, error) {
	key := CacheKey(address)

	var loc job.Location
	if found, err := c.cache.GetJSON(ctx, key, &loc); err == nil && found {
		return loc, nil
	}

	loc, err := c.next.Geocode(ctx, address)
	if err != nil {
		return job.Location{}, err
	}
	if err := c.cache.SetJSON(ctx, key, loc, c.ttl); err != nil {
		c.logger.Warn(ctx, "geocode cache write failed", "error", err)
	}
	return loc, nil
}
