// Package cache provides an optional Redis cache for review aggregates.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RatingCache caches photographer rating aggregates with a TTL. A nil
// cache (Redis not configured) is valid and behaves as a pass-through.
type RatingCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New creates a rating cache on top of an existing Redis client.
func New(rdb *redis.Client, ttl time.Duration) *RatingCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RatingCache{rdb: rdb, ttl: ttl}
}

func ratingKey(photographerID string) string {
	return "fotobook:rating:" + photographerID
}

// Get returns the cached average and count for a photographer. ok is
// false on a miss or any Redis error; the caller falls back to the
// database.
func (c *RatingCache) Get(ctx context.Context, photographerID string) (avg float64, count int, ok bool) {
	if c == nil || c.rdb == nil {
		return 0, 0, false
	}
	val, err := c.rdb.Get(ctx, ratingKey(photographerID)).Result()
	if err != nil {
		return 0, 0, false
	}
	if _, err := fmt.Sscanf(val, "%f:%d", &avg, &count); err != nil {
		return 0, 0, false
	}
	return avg, count, true
}

// Set stores the aggregate. Errors are ignored: the cache is advisory.
func (c *RatingCache) Set(ctx context.Context, photographerID string, avg float64, count int) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Set(ctx, ratingKey(photographerID), fmt.Sprintf("%.4f:%d", avg, count), c.ttl)
}

// Invalidate drops the cached aggregate after a new review.
func (c *RatingCache) Invalidate(ctx context.Context, photographerID string) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Del(ctx, ratingKey(photographerID))
}
