// Package cache keeps computed title ratings in redis so title listings
// don't recompute AVG(score) on every read. Misses and redis outages fall
// through to the database; the cache is never authoritative.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type RatingCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRatingCache(rdb *redis.Client, ttl time.Duration) *RatingCache {
	return &RatingCache{rdb: rdb, ttl: ttl}
}

func ratingKey(titleID int64) string {
	return fmt.Sprintf("title:%d:rating", titleID)
}

// sentinel for "no reviews yet" so a titleless rating is still a cache hit
const noRating = "none"

// Get returns (rating, hit). A nil rating with hit=true means the title
// is known to have no reviews.
func (c *RatingCache) Get(ctx context.Context, titleID int64) (*float64, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	val, err := c.rdb.Get(ctx, ratingKey(titleID)).Result()
	if err != nil {
		return nil, false
	}
	if val == noRating {
		return nil, true
	}
	rating, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return nil, false
	}
	return &rating, true
}

func (c *RatingCache) Set(ctx context.Context, titleID int64, rating *float64) {
	if c == nil || c.rdb == nil {
		return
	}
	val := noRating
	if rating != nil {
		val = strconv.FormatFloat(*rating, 'f', -1, 64)
	}
	c.rdb.Set(ctx, ratingKey(titleID), val, c.ttl)
}

// Invalidate drops the cached rating after a review write.
func (c *RatingCache) Invalidate(ctx context.Context, titleID int64) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Del(ctx, ratingKey(titleID))
}
