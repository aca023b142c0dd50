package cityfill

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps progress in redis under a key prefix, so several players
// can share one server without colliding.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps client. prefix is prepended to every key; an empty
// prefix uses the bare keys.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// OpenRedisStore connects to addr. The connection is lazy: an unreachable
// server surfaces as errors from the store methods, not from this call.
func OpenRedisStore(addr, password string, db int, prefix string) *RedisStore {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	return NewRedisStore(client, prefix)
}

func (s *RedisStore) key(k string) string {
	return s.prefix + k
}

// get returns nil without error when the key is missing.
func (s *RedisStore) get(ctx context.Context, k string) ([]byte, error) {
	b, err := s.client.Get(ctx, s.key(k)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", k, err)
	}
	return b, nil
}

func (s *RedisStore) SaveCircles(ctx context.Context, circles []SavedCircle) error {
	b, err := encodeProgress(circles)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(progressKey), b, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", progressKey, err)
	}
	return nil
}

func (s *RedisStore) LoadCircles(ctx context.Context) ([]SavedCircle, error) {
	b, err := s.get(ctx, progressKey)
	if err != nil || b == nil {
		return nil, err
	}
	return decodeProgress(b)
}

func (s *RedisStore) ClearCircles(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key(progressKey)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", progressKey, err)
	}
	return nil
}

func (s *RedisStore) SaveCutoff(ctx context.Context, cutoff Cutoff) error {
	if err := s.client.Set(ctx, s.key(cutoffKey), string(cutoff), 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", cutoffKey, err)
	}
	return nil
}

func (s *RedisStore) LoadCutoff(ctx context.Context) (Cutoff, error) {
	b, err := s.get(ctx, cutoffKey)
	if err != nil {
		return "", err
	}
	return Cutoff(b), nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
