package cache

import (
	"context"
	"encoding/json"
	"time"

	"commerce/pkg/config"

	"github.com/redis/go-redis/v9"
)

var (
	rdb *redis.Client
	ttl time.Duration
)

// InitCache connects to Redis. Caching is optional: with no address configured
// the client stays nil and every lookup is a miss.
func InitCache(cfg *config.Config) error {
	if cfg.Redis.Addr == "" {
		return nil
	}

	rdb = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ttl = cfg.Redis.TTL

	return rdb.Ping(context.Background()).Err()
}

// Enabled reports whether a Redis client is configured
func Enabled() bool {
	return rdb != nil
}

// Get retrieves a cached value and unmarshals it into dest. Returns false on
// a miss or when caching is disabled.
func Get(ctx context.Context, key string, dest any) (bool, error) {
	if rdb == nil {
		return false, nil
	}
	val, err := rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, json.Unmarshal([]byte(val), dest)
}

// Set stores a value under key with the configured TTL
func Set(ctx context.Context, key string, value any) error {
	if rdb == nil {
		return nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, b, ttl).Err()
}

// Delete removes a key. Used by admin writes to invalidate storefront listings.
func Delete(ctx context.Context, keys ...string) error {
	if rdb == nil {
		return nil
	}
	return rdb.Del(ctx, keys...).Err()
}
