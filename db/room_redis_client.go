package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/go-redis/redis/v8"
)

// RoomRedisClient implements RedisClient on top of go-redis.
type RoomRedisClient struct {
	client *redis.Client
	logger *log.Logger
}

// NewRoomRedisClient wraps an existing go-redis client. Connectivity is not checked here;
// callers Ping before use.
func NewRoomRedisClient(client *redis.Client, logger *log.Logger) *RoomRedisClient {
	if logger == nil {
		logger = log.Default()
	}
	return &RoomRedisClient{
		client: client,
		logger: logger.WithPrefix("RoomRedisClient"),
	}
}

// Set sets a key-value pair in Redis
func (r *RoomRedisClient) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, key, value, 0).Err()
}

// Get retrieves the value for a given key from Redis
func (r *RoomRedisClient) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return val, err
}

func (r *RoomRedisClient) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

// Keys walks the keyspace with SCAN rather than KEYS so large stores are not blocked.
func (r *RoomRedisClient) Keys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, pattern, 200).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan keys %q: %w", pattern, err)
	}
	r.logger.Debug("scanned keys", "pattern", pattern, "count", len(keys))
	return keys, nil
}

// RPush appends values to the list stored at key.
func (r *RoomRedisClient) RPush(ctx context.Context, key string, values ...string) error {
	if len(values) == 0 {
		return nil
	}
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v
	}
	return r.client.RPush(ctx, key, args...).Err()
}

func (r *RoomRedisClient) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return r.client.LRange(ctx, key, start, stop).Result()
}

func (r *RoomRedisClient) LTrim(ctx context.Context, key string, start, stop int64) error {
	return r.client.LTrim(ctx, key, start, stop).Err()
}

func (r *RoomRedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
