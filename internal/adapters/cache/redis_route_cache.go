package cache

import (
	"context"
	"dispatch-route-service/internal/domain"
	"dispatch-route-service/internal/platform/obs"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const routeKeyPrefix = "dispatch:routes:"

// RedisRouteCache keeps route candidates in Redis with an expiry.
type RedisRouteCache struct {
	Client redis.UniversalClient
	TTL    time.Duration
}

func NewRedisRouteCache(client redis.UniversalClient, ttl time.Duration) *RedisRouteCache {
	return &RedisRouteCache{Client: client, TTL: ttl}
}

func routeKey(start, end domain.Coordinates) string {
	return routeKeyPrefix + start.Key() + "|" + end.Key()
}

func (r *RedisRouteCache) Get(
	ctx context.Context,
	start, end domain.Coordinates,
) (_ []domain.RouteCandidate, _ bool, err error) {
	defer obs.Time(ctx, "route.redis.Get")(&err)

	raw, err := r.Client.Get(ctx, routeKey(start, end)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis route cache get: %w", err)
	}

	var routes []domain.RouteCandidate
	if err := json.Unmarshal(raw, &routes); err != nil {
		return nil, false, fmt.Errorf("redis route cache decode: %w", err)
	}
	return routes, true, nil
}

func (r *RedisRouteCache) Put(
	ctx context.Context,
	start, end domain.Coordinates,
	routes []domain.RouteCandidate,
) (err error) {
	defer obs.Time(ctx, "route.redis.Put")(&err)

	raw, err := json.Marshal(routes)
	if err != nil {
		return fmt.Errorf("redis route cache encode: %w", err)
	}
	if err := r.Client.Set(ctx, routeKey(start, end), raw, r.TTL).Err(); err != nil {
		return fmt.Errorf("redis route cache set: %w", err)
	}
	return nil
}
