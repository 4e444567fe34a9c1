package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/paukdv/web-14/internal/models"
)

const (
	// userCachePrefix namespaces identity entries in Redis.
	userCachePrefix = "usercache:"
	// UserCacheTTL bounds a cached identity's lifetime independently of
	// token expiry; the cache is read-through, never authoritative.
	UserCacheTTL = 15 * time.Minute
)

// UserCache is the read-through identity cache consulted by the
// authorization gate on every authenticated request.
type UserCache interface {
	Get(ctx context.Context, email string) (*models.User, error)
	Set(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, email string) error
}

// RedisUserCache stores users as JSON under a bounded TTL.
type RedisUserCache struct {
	client *redis.Client
}

func NewRedisUserCache(client *redis.Client) *RedisUserCache {
	return &RedisUserCache{client: client}
}

// Get returns (nil, nil) on a miss and an error only on cache failure;
// callers treat both the same way and fall back to the store.
func (c *RedisUserCache) Get(ctx context.Context, email string) (*models.User, error) {
	val, err := c.client.Get(ctx, userCachePrefix+email).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var user models.User
	if err := json.Unmarshal([]byte(val), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *RedisUserCache) Set(ctx context.Context, user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, userCachePrefix+user.Email, data, UserCacheTTL).Err()
}

// Delete drops a cached identity so confirmation and avatar changes are
// visible on the next request.
func (c *RedisUserCache) Delete(ctx context.Context, email string) error {
	return c.client.Del(ctx, userCachePrefix+email).Err()
}
