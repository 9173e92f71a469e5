package maps

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"codrive/internal/observability"
	"codrive/internal/types"
)

// CachedRouter memoises Directions results in Redis keyed by the exact waypoint sequence.
// Cache failures never fail the lookup.
type CachedRouter struct {
	next   Router
	client *redis.Client
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

func NewCachedRouter(next Router, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedRouter {
	return &CachedRouter{next: next, client: client, ttl: ttl, prefix: "codrive:route:", logger: logger}
}

func (c *CachedRouter) Directions(ctx context.Context, waypoints []types.Point) (Route, error) {
	key := c.key(waypoints)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var route Route
		if jerr := json.Unmarshal(raw, &route); jerr == nil {
			observability.RouteCacheLookups.WithLabelValues("hit").Inc()
			return route, nil
		}
		observability.RouteCacheLookups.WithLabelValues("corrupt").Inc()
	case errors.Is(err, redis.Nil):
		observability.RouteCacheLookups.WithLabelValues("miss").Inc()
	default:
		observability.RouteCacheLookups.WithLabelValues("error").Inc()
		c.logger.Warn("route cache read failed", "error", err)
	}

	route, err := c.next.Directions(ctx, waypoints)
	if err != nil {
		return Route{}, err
	}
	if payload, jerr := json.Marshal(route); jerr == nil {
		if serr := c.client.Set(ctx, key, payload, c.ttl).Err(); serr != nil {
			c.logger.Warn("route cache write failed", "error", serr)
		}
	}
	return route, nil
}

func (c *CachedRouter) key(waypoints []types.Point) string {
	h := sha1.New()
	for _, w := range waypoints {
		fmt.Fprintf(h, "%.6f,%.6f;", w.Lng, w.Lat)
	}
	return c.prefix + hex.EncodeToString(h.Sum(nil))
}
