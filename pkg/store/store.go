// Package store keeps schedule archives under string keys.
//
// Backends implement [Store]: [FileStore] for the CLI, [RedisStore] and
// [MongoStore] for shared deployments, and [NullStore] when storage is
// disabled. Values are raw archive bytes; [SaveSchedule] and
// [LoadSchedule] encode and decode them with package schedule.
//
// Keys are validated with errors.ValidateKey before they reach a backend.
// Transient backend failures are wrapped with [Retryable] and retried by
// [RetryWithBackoff].
package store

import (
	"bytes"
	"context"
	"time"

	"github.com/google/uuid"

	aerrors "github.com/matzehuels/busarchive/pkg/errors"
	"github.com/matzehuels/busarchive/pkg/observability"
	"github.com/matzehuels/busarchive/pkg/schedule"
)

// Store is a keyed blob store with optional expiry.
type Store interface {
	// Get returns the value stored under key. A missing or expired key is
	// reported as (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero keeps it until deleted.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// NewKey returns a fresh random key for an archive.
func NewKey() string {
	return uuid.NewString()
}

// SaveSchedule encodes s and stores it under key. An empty key is replaced
// by [NewKey]; the key used is returned.
func SaveSchedule(ctx context.Context, st Store, key string, s *schedule.Schedule, ttl time.Duration) (string, error) {
	if key == "" {
		key = NewKey()
	}
	if err := aerrors.ValidateKey(key); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := schedule.Write(s, &buf); err != nil {
		return "", err
	}
	err := RetryWithBackoff(ctx, func() error {
		return st.Set(ctx, key, buf.Bytes(), ttl)
	})
	if err != nil {
		return "", aerrors.Ensure(err, aerrors.ErrCodeIOUnavailable, "store %s", key)
	}
	return key, nil
}

// LoadSchedule fetches and decodes the archive stored under key. A missing
// key fails with NOT_FOUND.
func LoadSchedule(ctx context.Context, st Store, key string) (*schedule.Schedule, error) {
	if err := aerrors.ValidateKey(key); err != nil {
		return nil, err
	}
	var (
		data []byte
		ok   bool
	)
	err := RetryWithBackoff(ctx, func() error {
		var err error
		data, ok, err = st.Get(ctx, key)
		return err
	})
	if err != nil {
		return nil, aerrors.Ensure(err, aerrors.ErrCodeIOUnavailable, "fetch %s", key)
	}
	if !ok {
		return nil, aerrors.New(aerrors.ErrCodeNotFound, "no archive stored under %s", key)
	}
	return schedule.Read(bytes.NewReader(data))
}

// observe reports a lookup result to the store hooks.
func observe(ctx context.Context, backend string, hit bool) {
	if hit {
		observability.Store().OnStoreHit(ctx, backend)
		return
	}
	observability.Store().OnStoreMiss(ctx, backend)
}
