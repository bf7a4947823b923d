// Package cache holds the redis-backed suggestion cache. It is an explicit
// object with an injected TTL and explicit invalidation calls, not ambient
// state: handlers decide when to read through and when to invalidate.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "suggestions:"

type SuggestionCache struct {
	rdb *goredis.Client
	ttl time.Duration
	log *zap.Logger
}

// New connects to redis and pings it once so a bad address fails at boot,
// not on the first request.
func New(addr, password string, db int, ttl time.Duration, log *zap.Logger) (*SuggestionCache, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Info("suggestion cache connected", zap.String("addr", addr), zap.Duration("ttl", ttl))
	return &SuggestionCache{rdb: rdb, ttl: ttl, log: log}, nil
}

// Key derives the cache key for one suggestion request. Every input that
// changes the engine's output, except the session/window data itself, is
// part of the key; data changes are handled by Invalidate.
func Key(sessionTypeID string, durationMins, lookAheadDays int) string {
	return fmt.Sprintf("%s%s:%d:%d", keyPrefix, sessionTypeID, durationMins, lookAheadDays)
}

// Get unmarshals a cached value into dest. The second return is false on a
// miss.
func (c *SuggestionCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *SuggestionCache) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, raw, c.ttl).Err()
}

// Invalidate drops every cached suggestion list. Called on any session or
// availability write, since both feed the engine for all session types.
func (c *SuggestionCache) Invalidate(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

func (c *SuggestionCache) Close() error {
	return c.rdb.Close()
}
