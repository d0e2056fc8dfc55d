package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	aerrors "github.com/matzehuels/busarchive/pkg/errors"
	"github.com/matzehuels/busarchive/pkg/observability"
)

const backendFile = "file"

// FileStore keeps each entry in its own file under a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a file store in dir, creating the directory if
// needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, aerrors.Wrap(aerrors.ErrCodeIOUnavailable, err, "create store directory %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the store directory.
func (s *FileStore) Dir() string { return s.dir }

// fileEntry wraps stored data with metadata.
type fileEntry struct {
	Key       string    `json:"key"`
	Data      []byte    `json:"data"`
	StoredAt  time.Time `json:"stored_at"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Get retrieves a value from the store.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := aerrors.ValidateKey(key); err != nil {
		return nil, false, err
	}
	path := s.Path(key)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		observe(ctx, backendFile, false)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, aerrors.Wrap(aerrors.ErrCodeIOUnavailable, err, "read %s", path)
	}

	var entry fileEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		// Corrupt entry: treat as a miss.
		_ = os.Remove(path)
		observe(ctx, backendFile, false)
		return nil, false, nil
	}

	if !entry.ExpiresAt.IsZero() && time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		observe(ctx, backendFile, false)
		return nil, false, nil
	}

	observe(ctx, backendFile, true)
	return entry.Data, true, nil
}

// Set stores a value, replacing any previous one.
func (s *FileStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := aerrors.ValidateKey(key); err != nil {
		return err
	}
	entry := fileEntry{Key: key, Data: data, StoredAt: time.Now().UTC()}
	if ttl > 0 {
		entry.ExpiresAt = entry.StoredAt.Add(ttl)
	}

	entryData, err := json.Marshal(entry)
	if err != nil {
		return aerrors.Wrap(aerrors.ErrCodeInternal, err, "encode store entry")
	}

	path := s.Path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return aerrors.Wrap(aerrors.ErrCodeIOUnavailable, err, "create %s", filepath.Dir(path))
	}

	// Readers never see a partial entry.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, entryData, 0o644); err != nil {
		return aerrors.Wrap(aerrors.ErrCodeIOUnavailable, err, "write %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return aerrors.Wrap(aerrors.ErrCodeIOUnavailable, err, "write %s", path)
	}
	observability.Store().OnStoreSet(ctx, backendFile, len(data))
	return nil
}

// Delete removes a value from the store.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	if err := aerrors.ValidateKey(key); err != nil {
		return err
	}
	err := os.Remove(s.Path(key))
	if err == nil || os.IsNotExist(err) {
		return nil
	}
	return aerrors.Wrap(aerrors.ErrCodeIOUnavailable, err, "delete %s", key)
}

// Close does nothing for the file store.
func (s *FileStore) Close() error {
	return nil
}

// Path returns the file that holds key. Keys are hashed, and the first two
// hex characters name a subdirectory to keep directories small.
func (s *FileStore) Path(key string) string {
	hash := Hash([]byte(key))
	return filepath.Join(s.dir, hash[:2], hash[2:]+".json")
}

// Hash computes a SHA-256 hash of the input data as a 64 character hex
// string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
