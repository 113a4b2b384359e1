package redis_utils

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"investmentapp/src/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by Get when the key does not exist.
var ErrCacheMiss = errors.New("key does not exist")

// RedisHandler encapsulates the Redis client and provides utility methods.
type RedisHandler struct {
	client *redis.Client
}

// NewRedisHandler initializes a new Redis handler and pings the server.
func NewRedisHandler(ctx context.Context, cfg *config.Config) (*RedisHandler, error) {
	opts := &redis.Options{
		Addr:     cfg.Databases.Redis.Host + ":" + cfg.Databases.Redis.Port,
		Username: cfg.Databases.Redis.Username,
		Password: cfg.Databases.Redis.Password,
		DB:       cfg.Databases.Redis.Database,
	}
	if cfg.Databases.Redis.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisHandlerFromClient(client), nil
}

func NewRedisHandlerFromClient(client *redis.Client) *RedisHandler {
	return &RedisHandler{client: client}
}

// Set stores value as JSON with an optional expiration.
func (r *RedisHandler) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize value: %w", err)
	}
	return r.client.Set(ctx, key, data, expiration).Err()
}

// Get deserializes the value of key into result.
func (r *RedisHandler) Get(ctx context.Context, key string, result interface{}) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %s", ErrCacheMiss, key)
	} else if err != nil {
		return fmt.Errorf("failed to get key: %w", err)
	}

	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("failed to deserialize value: %w", err)
	}
	return nil
}

func (r *RedisHandler) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// Version reads the counter at versionKey. A missing counter is version 0.
func (r *RedisHandler) Version(ctx context.Context, versionKey string) (int64, error) {
	return readVersion(ctx, r.client, versionKey)
}

type versionReader interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readVersion(ctx context.Context, c versionReader, versionKey string) (int64, error) {
	v, err := c.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// SetIfVersion stores value under key only while versionKey still holds
// version. It reports false when the version moved on.
func (r *RedisHandler) SetIfVersion(ctx context.Context, versionKey string, version int64, key string, value interface{}, expiration time.Duration) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("failed to serialize value: %w", err)
	}

	stored := false
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readVersion(ctx, tx, versionKey)
		if err != nil {
			return err
		}
		if current != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, expiration)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, versionKey)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	return stored, err
}

// BumpVersion increments versionKey and deletes key in one round trip.
func (r *RedisHandler) BumpVersion(ctx context.Context, versionKey, key string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey)
		pipe.Del(ctx, key)
		return nil
	})
	return err
}

// GenerateUUID derives a deterministic UUIDv5 from inputs. Inputs are
// joined with a separator so ("ab","c") and ("a","bc") differ.
func GenerateUUID(inputs ...string) string {
	namespace := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8") // DNS namespace
	return uuid.NewSHA1(namespace, []byte(strings.Join(inputs, "\x00"))).String()
}

func (r *RedisHandler) Close() error {
	return r.client.Close()
}
