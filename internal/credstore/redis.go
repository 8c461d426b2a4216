package credstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisOpTimeout = 3 * time.Second

// RedisStore keeps the token in Redis, for kiosk-style deployments where
// several processes share one storefront session.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore builds a Redis-backed token store. key namespaces the token
// so multiple storefronts can share one Redis.
func NewRedisStore(addr, password, key string) *RedisStore {
	if key == "" {
		key = "shopfront:token"
	}
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		key: key,
	}
}

func (s *RedisStore) Load() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	val, err := s.client.Get(ctx, s.key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (s *RedisStore) Save(token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	return s.client.Set(ctx, s.key, token, 0).Err()
}

func (s *RedisStore) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := s.client.Del(ctx, s.key).Err(); err != nil && err != redis.Nil {
		return err
	}
	return nil
}
