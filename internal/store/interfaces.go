package store

import (
	"context"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// KVRepository is a flat string-keyed store of opaque values.
//
// The client keeps slice snapshots, the session and the transport cookie jar
// in it; the gateway keeps slice snapshots and the auth code hash. Values are
// stored as given, the repository never interprets them.
type KVRepository interface {
	// Get returns the value stored under key or [ErrNotFound].
	Get(ctx context.Context, key string) ([]byte, error)
	// Put inserts or replaces the value under key.
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// List returns all entries whose key starts with prefix.
	List(ctx context.Context, prefix string) (map[string][]byte, error)
}

// ErrorClassificator decides whether a failed database operation may be
// retried.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}
