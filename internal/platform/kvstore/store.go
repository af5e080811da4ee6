// Package kvstore provides a small embedded key-value store used for
// collections that live alongside the API process rather than upstream.
package kvstore

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned when a key does not exist in a collection.
var ErrKeyNotFound = errors.New("kvstore: key not found")

// Store abstracts a collection-scoped key-value store. Values are opaque
// byte payloads; callers are responsible for serialization.
type Store interface {
	// Get returns the value stored under key in the named collection.
	Get(ctx context.Context, collection, key string) ([]byte, error)
	// Put stores value under key, creating the collection if needed.
	Put(ctx context.Context, collection, key string, value []byte) error
	// Delete removes key from the collection. Deleting a missing key is not an error.
	Delete(ctx context.Context, collection, key string) error
	// List returns all key/value pairs in the collection.
	List(ctx context.Context, collection string) (map[string][]byte, error)
	// Close releases underlying resources.
	Close() error
}
