package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amora-app/amora-server/internal/config"
)

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes the Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

// NewRedisCacheForAddr builds a cache against a bare address. Used by tests
// running against miniredis.
func NewRedisCacheForAddr(addr string) *RedisCache {
	return &RedisCache{Client: redis.NewClient(&redis.Options{Addr: addr})}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

// KeyForUndoUsed generates the daily undo-use counter key for a user.
// The local date is baked into the key, so "is today" never needs a stored
// last-use timestamp: yesterday's counter is simply a different key that
// expires on its own.
func (c *RedisCache) KeyForUndoUsed(userID string, day time.Time) string {
	return fmt.Sprintf("undo:used:%s:%s", userID, day.Format("2006-01-02"))
}

// UndoUsed returns how many undo uses the user has consumed today.
// A missing key counts as zero.
func (c *RedisCache) UndoUsed(ctx context.Context, userID string, now time.Time) (int64, error) {
	val, err := c.Client.Get(ctx, c.KeyForUndoUsed(userID, now)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

// IncrUndoUsed consumes one undo use and returns the new total for today.
// The counter expires at the next local midnight.
func (c *RedisCache) IncrUndoUsed(ctx context.Context, userID string, now time.Time) (int64, error) {
	key := c.KeyForUndoUsed(userID, now)
	n, err := c.Client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	_ = c.Client.ExpireAt(ctx, key, nextMidnight(now)).Err()
	return n, nil
}

func nextMidnight(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
}
