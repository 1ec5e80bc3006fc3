package storage

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"foodiego/internal/domain"
)

// RedisMenuCache caches a restaurant's full menu as a JSON blob. A miss or a
// redis error just falls through to postgres.
type RedisMenuCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisMenuCache(client *redis.Client, ttl time.Duration) *RedisMenuCache {
	return &RedisMenuCache{Client: client, TTL: ttl}
}

func menuKey(restaurantID int64) string {
	return "menu:" + strconv.FormatInt(restaurantID, 10)
}

func (c *RedisMenuCache) Get(ctx context.Context, restaurantID int64) ([]domain.MenuItem, bool) {
	payload, err := c.Client.Get(ctx, menuKey(restaurantID)).Bytes()
	if err != nil {
		return nil, false
	}
	var items []domain.MenuItem
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, false
	}
	return items, true
}

func (c *RedisMenuCache) Set(ctx context.Context, restaurantID int64, items []domain.MenuItem) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, menuKey(restaurantID), payload, c.TTL).Err()
}

func (c *RedisMenuCache) Invalidate(ctx context.Context, restaurantID int64) error {
	return c.Client.Del(ctx, menuKey(restaurantID)).Err()
}
