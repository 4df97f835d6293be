package config

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
)

var (
	Redis *CacheService
)

type CacheService struct {
	Ctx        context.Context
	Connection *redis.Client
}

// NewCacheService connects to Redis. It is optional: without REDIS_HOST the
// daemon falls back to in-process job locks.
func NewCacheService() error {
	if len(os.Getenv("REDIS_HOST")) == 0 {
		return nil
	}

	c := redis.NewClient(&redis.Options{
		Addr:     os.Getenv("REDIS_HOST") + ":" + os.Getenv("REDIS_PORT"),
		Username: os.Getenv("REDIS_USERNAME"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})
	ctx := context.Background()

	if err := c.Ping(ctx).Err(); err != nil {
		return err
	}

	Redis = &CacheService{
		Ctx:        ctx,
		Connection: c,
	}

	return nil
}

// SetKey stores value as JSON.
func (c *CacheService) SetKey(key string, value interface{}, expiration time.Duration) error {
	cacheEntry, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.Connection.Set(c.Ctx, key, cacheEntry, expiration).Err()
}

// AcquireLock sets key only if it does not exist yet. The token must be passed
// back to ReleaseLock so a lock that expired and was taken by another process
// is never removed.
func (c *CacheService) AcquireLock(key, token string, ttl time.Duration) (bool, error) {
	return c.Connection.SetNX(c.Ctx, key, token, ttl).Result()
}

var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (c *CacheService) ReleaseLock(key, token string) error {
	return releaseLockScript.Run(c.Ctx, c.Connection, []string{key}, token).Err()
}
