package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	aerrors "github.com/matzehuels/busarchive/pkg/errors"
	"github.com/matzehuels/busarchive/pkg/observability"
)

const backendMongo = "mongo"

// MongoOptions configures a [MongoStore].
type MongoOptions struct {
	URI        string
	Database   string // default "busarchive"
	Collection string // default "archives"
}

// MongoStore keeps one document per archive.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// mongoDoc is the stored document layout.
type mongoDoc struct {
	Key       string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	Size      int       `bson:"size"`
	StoredAt  time.Time `bson:"stored_at"`
	ExpiresAt time.Time `bson:"expires_at,omitempty"`
}

func newMongoDoc(key string, data []byte, ttl time.Duration, now time.Time) mongoDoc {
	doc := mongoDoc{Key: key, Data: data, Size: len(data), StoredAt: now.UTC()}
	if ttl > 0 {
		doc.ExpiresAt = doc.StoredAt.Add(ttl)
	}
	return doc
}

func (d mongoDoc) expired(now time.Time) bool {
	return !d.ExpiresAt.IsZero() && now.After(d.ExpiresAt)
}

// NewMongoStore connects to MongoDB and pings the primary.
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	if opts.Database == "" {
		opts.Database = "busarchive"
	}
	if opts.Collection == "" {
		opts.Collection = "archives"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, aerrors.Wrap(aerrors.ErrCodeNetwork, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, aerrors.Wrap(aerrors.ErrCodeNetwork, err, "ping mongo")
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(opts.Database).Collection(opts.Collection),
	}, nil
}

// Get retrieves a value. Expired documents are deleted and reported as a
// miss.
func (s *MongoStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := aerrors.ValidateKey(key); err != nil {
		return nil, false, err
	}
	var doc mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		observe(ctx, backendMongo, false)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, mongoError(err, "get %s", key)
	}
	if doc.expired(time.Now()) {
		_, _ = s.coll.DeleteOne(ctx, bson.M{"_id": key})
		observe(ctx, backendMongo, false)
		return nil, false, nil
	}
	observe(ctx, backendMongo, true)
	return doc.Data, true, nil
}

// Set upserts a value.
func (s *MongoStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := aerrors.ValidateKey(key); err != nil {
		return err
	}
	doc := newMongoDoc(key, data, ttl, time.Now())
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return mongoError(err, "set %s", key)
	}
	observability.Store().OnStoreSet(ctx, backendMongo, len(data))
	return nil
}

// Delete removes a value.
func (s *MongoStore) Delete(ctx context.Context, key string) error {
	if err := aerrors.ValidateKey(key); err != nil {
		return err
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return mongoError(err, "delete %s", key)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// mongoError codes a driver failure. Network errors and timeouts are
// retryable.
func mongoError(err error, format string, args ...any) error {
	coded := aerrors.Wrap(aerrors.ErrCodeNetwork, err, format, args...)
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return Retryable(coded)
	}
	return coded
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
