package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"inkwell/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// Cache is a JSON cache over Redis. A Cache with a nil client is valid and
// behaves as permanently empty.
type Cache struct {
	rdb *redis.Client
}

// New wraps rdb, which may be nil.
func New(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

// Enabled reports whether a Redis client is attached.
func (c *Cache) Enabled() bool {
	return c != nil && c.rdb != nil
}

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, ttl).Err()
}

// Aside serves dest from Redis when present; otherwise fetch fills dest and
// the result is stored for ttl. Cache failures fall through to fetch. It
// reports whether the value came from the cache.
func (c *Cache) Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) (bool, error) {
	return c.aside(ctx, key, "", dest, ttl, fetch)
}

// AsideGuarded is Aside, except the fetched value is written back only if
// guardKey still holds the value it had before fetch ran. Writers bump
// guardKey when they invalidate, so a read that raced a write is not cached.
func (c *Cache) AsideGuarded(ctx context.Context, key, guardKey string, dest any, ttl time.Duration, fetch func() error) (bool, error) {
	return c.aside(ctx, key, guardKey, dest, ttl, fetch)
}

func (c *Cache) aside(ctx context.Context, key, guardKey string, dest any, ttl time.Duration, fetch func() error) (bool, error) {
	found, err := c.GetJSON(ctx, key, dest)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	if found {
		return true, nil
	}

	var guard string
	guarded := guardKey != "" && c.Enabled()
	if guarded {
		guard, err = c.rdb.Get(ctx, guardKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			// Without a baseline the write-back cannot be checked; skip it.
			middleware.Logger.WarnContext(ctx, "cache guard read failed", slog.String("key", guardKey), slog.String("error", err.Error()))
			return false, fetch()
		}
	}

	if err := fetch(); err != nil {
		return false, err
	}

	if guarded {
		err = c.setIfUnchanged(ctx, key, guardKey, guard, dest, ttl)
	} else {
		err = c.SetJSON(ctx, key, dest, ttl)
	}
	if errors.Is(err, errGuardMoved) {
		middleware.Logger.DebugContext(ctx, "cache write skipped after concurrent invalidation", slog.String("key", key))
	} else if err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return false, nil
}

var errGuardMoved = errors.New("cache guard changed")

// setIfUnchanged stores v under key only while guardKey still equals want.
// WATCH makes the check and the SET atomic against a concurrent INCR.
func (c *Cache) setIfUnchanged(ctx context.Context, key, guardKey, want string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, guardKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != want {
			return errGuardMoved
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			return p.Set(ctx, key, b, ttl).Err()
		})
		return err
	}, guardKey)
	if errors.Is(err, redis.TxFailedErr) {
		return errGuardMoved
	}
	return err
}

// Invalidate deletes the given keys.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidation failed", slog.String("error", err.Error()))
	}
}

// InvalidatePrefix deletes every key starting with prefix.
func (c *Cache) InvalidatePrefix(ctx context.Context, prefix string) {
	if !c.Enabled() {
		return
	}
	iter := c.rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache scan failed", slog.String("prefix", prefix), slog.String("error", err.Error()))
		return
	}
	c.Invalidate(ctx, keys...)
}
