// Package kvstore is the durable key-value layer behind match snapshots and the roster.
//
// Values are opaque JSON documents grouped in buckets. Four backends are
// available: an in-process map, SQLite for a single scorer's table, Postgres for
// a venue server, and Redis.
package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key does not exist in the bucket.
var ErrNotFound = errors.New("kvstore: key not found")

// Well-known buckets
const (
	BucketGame    = "game"
	BucketPlayers = "players"
)

// Entry is one key/value pair of a bucket
type Entry struct {
	Key   string
	Value []byte
}

// Store is implemented by every backend
type Store interface {
	Put(ctx context.Context, bucket, key string, value []byte) error
	// PutMany writes all entries atomically where the backend supports it.
	PutMany(ctx context.Context, bucket string, entries []Entry) error
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Delete(ctx context.Context, bucket, key string) error
	// List returns every entry of a bucket ordered by key.
	List(ctx context.Context, bucket string) ([]Entry, error)
	DeleteAll(ctx context.Context, bucket string) error
	Close() error
}
