package verification

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps codes in redis with a TTL, so they survive process
// restarts and are shared across instances.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func key(email string) string {
	return "verification:" + email
}

func (s *RedisStore) Set(email, code string) error {
	return s.client.Set(context.Background(), key(email), code, TTL).Err()
}

func (s *RedisStore) Get(email string) (string, bool, error) {
	code, err := s.client.Get(context.Background(), key(email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return code, true, nil
}

func (s *RedisStore) Consume(email string) error {
	return s.client.Del(context.Background(), key(email)).Err()
}
