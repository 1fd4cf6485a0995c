package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSessionStore keeps sessions in Redis so they survive restarts and can
// be shared across replicas. Selected when REDIS_URL is configured.
type RedisSessionStore struct {
	client *redis.Client
}

// ConnectRedis parses the URL, connects, and verifies the connection.
func ConnectRedis(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

// NewRedisSessionStore wraps an established client.
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}

// Put stores the session with TTL-based expiry.
func (s *RedisSessionStore) Put(ctx context.Context, sessionID, username string, ttl time.Duration) error {
	return s.client.Set(ctx, sessionKey(sessionID), username, ttl).Err()
}

// Get returns the username behind a live session.
func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (string, error) {
	username, err := s.client.Get(ctx, sessionKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("fetch session: %w", err)
	}
	return username, nil
}

// Delete removes the session.
func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionKey(sessionID)).Err()
}
