package cooldown

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares cooldown windows across processes through Redis.
type RedisStore struct {
	client redis.Cmdable
	prefix string
}

// NewRedisStore creates a store on top of an existing client.
func NewRedisStore(client redis.Cmdable, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "sentinel:cooldown"
	}
	return &RedisStore{client: client, prefix: prefix}
}

// NewRedisClient dials addr and pings it.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 3 * time.Second,
		MaxRetries:  1,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func (s *RedisStore) Acquire(ctx context.Context, key string, window time.Duration) (time.Duration, bool, error) {
	k := s.wrapKey(key)

	ok, err := s.client.SetNX(ctx, k, time.Now().Unix(), window).Result()
	if err != nil {
		return 0, false, fmt.Errorf("redis setnx: %w", err)
	}
	if ok {
		return 0, true, nil
	}

	left, err := s.client.PTTL(ctx, k).Result()
	if err != nil {
		return 0, false, fmt.Errorf("redis pttl: %w", err)
	}
	if left <= 0 {
		// Key vanished or has no TTL between the two calls; treat it as a fresh window.
		if err := s.client.Set(ctx, k, time.Now().Unix(), window).Err(); err != nil {
			return 0, false, fmt.Errorf("redis set: %w", err)
		}
		return 0, true, nil
	}
	return left, false, nil
}

func (s *RedisStore) wrapKey(key string) string {
	return fmt.Sprintf("%s:%s", s.prefix, key)
}
