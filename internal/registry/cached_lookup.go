package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/easyaudit-api/internal/models"
)

const cacheKeyPrefix = "easyaudit:entity:"

type cachedLookup struct {
	next   EntityLookup
	cache  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedLookup caches display names resolved by next in Redis. A nil
// client disables caching.
func NewCachedLookup(next EntityLookup, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) EntityLookup {
	if cache == nil {
		return next
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &cachedLookup{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("component", "entity_lookup_cache").Logger(),
	}
}

func (l *cachedLookup) Lookup(ctx context.Context, ref models.Reference) (Entity, bool, error) {
	key := cacheKey(ref)

	name, err := l.cache.Get(ctx, key).Result()
	switch {
	case err == nil:
		return NamedEntity{Name: name}, true, nil
	case !errors.Is(err, redis.Nil):
		l.logger.Warn().Err(err).Str("key", key).Msg("entity cache read failed")
	}

	entity, found, err := l.next.Lookup(ctx, ref)
	if err != nil || !found || entity == nil {
		return entity, found, err
	}

	if err := l.cache.Set(ctx, key, entity.DisplayName(), l.ttl).Err(); err != nil {
		l.logger.Warn().Err(err).Str("key", key).Msg("entity cache write failed")
	}
	return entity, true, nil
}

func cacheKey(ref models.Reference) string {
	return fmt.Sprintf("%s%s:%s", cacheKeyPrefix, ref.Type, ref.ID)
}
