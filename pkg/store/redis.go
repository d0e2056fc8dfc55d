package store

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	aerrors "github.com/matzehuels/busarchive/pkg/errors"
	"github.com/matzehuels/busarchive/pkg/observability"
)

const backendRedis = "redis"

// RedisOptions configures a [RedisStore].
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // prepended to every key, default "busarchive:"
}

// RedisStore keeps archives in Redis, relying on key expiry for TTLs.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore connects to Redis and checks the connection with PING.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, aerrors.Wrap(aerrors.ErrCodeNetwork, err, "connect to redis at %s", opts.Addr)
	}
	return NewRedisStoreFromClient(client, opts.Prefix), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "busarchive:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(key string) string { return s.prefix + key }

// Get retrieves a value.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := aerrors.ValidateKey(key); err != nil {
		return nil, false, err
	}
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		observe(ctx, backendRedis, false)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, redisError(err, "get %s", key)
	}
	observe(ctx, backendRedis, true)
	return data, true, nil
}

// Set stores a value. A ttl of zero stores it without expiry.
func (s *RedisStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := aerrors.ValidateKey(key); err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(key), data, ttl).Err(); err != nil {
		return redisError(err, "set %s", key)
	}
	observability.Store().OnStoreSet(ctx, backendRedis, len(data))
	return nil
}

// Delete removes a value.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := aerrors.ValidateKey(key); err != nil {
		return err
	}
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return redisError(err, "delete %s", key)
	}
	return nil
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// redisError codes a client failure. Network failures are retryable.
func redisError(err error, format string, args ...any) error {
	coded := aerrors.Wrap(aerrors.ErrCodeNetwork, err, format, args...)
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return Retryable(coded)
	}
	return coded
}

// Ensure RedisStore implements Store.
var _ Store = (*RedisStore)(nil)
