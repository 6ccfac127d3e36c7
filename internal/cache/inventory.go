package cache

import (
	"context"
	"log/slog"
	"time"

	"inkwell/internal/middleware"
)

const (
	FeedKeyPrefix      = "feed:"
	BlacklistKeyPrefix = "blacklist:"

	// FeedGenerationKey is bumped on every feed invalidation. It sits
	// outside FeedKeyPrefix so prefix deletes leave it alone.
	FeedGenerationKey = "feed_generation"
)

const (
	FeedTTL = 30 * time.Second
)

// FeedKey is the cache key of the feed sorted by order.
func FeedKey(order string) string {
	return FeedKeyPrefix + order
}

// BlacklistKey marks a revoked token ID.
func BlacklistKey(jti string) string {
	return BlacklistKeyPrefix + jti
}

// InvalidateFeeds drops every cached feed ordering. Bumping the generation
// first stops feed reads already in flight from writing back stale entries.
func (c *Cache) InvalidateFeeds(ctx context.Context) {
	if !c.Enabled() {
		return
	}
	if err := c.rdb.Incr(ctx, FeedGenerationKey).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "feed generation bump failed", slog.String("error", err.Error()))
	}
	c.InvalidatePrefix(ctx, FeedKeyPrefix)
}
