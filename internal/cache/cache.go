// Package cache provides the key-value store abstraction used for search and
// pitch caching. Supports a Redis backend for deployments and an in-memory
// backend for single-instance runs and tests.
package cache

import (
	"context"
	"time"
)

// Store defines the key-value contract consumed by the search layer.
// Implementations must be safe for concurrent use. Writes are atomic per key;
// no cross-key transaction is provided or expected.
type Store interface {
	// Get retrieves the value for key.
	// Returns ok=false if no entry exists (not an error).
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set stores value under key with the given time-to-live.
	// A ttl of zero stores the entry without expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the entry for key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the store.
	Close() error
}
