package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound reports a cache miss.
	ErrNotFound = errors.New("store: not found")

	// ErrUnavailable reports that the backing store could not be reached.
	// Callers map this to their own fail-closed error, never to a miss.
	ErrUnavailable = errors.New("store: unavailable")
)

// Cache is the key-value-with-TTL collaborator every credential manager is
// built on. It is the only shared mutable resource in the core: Set and
// Increment must be atomic so concurrent revoke/validate and rate-bucket
// races resolve through the store's own consistency model, not application
// locks. Concrete drivers (redis, sqlite, memory) implement this.
type Cache interface {
	// Get returns the value for key, or ErrNotFound on a miss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes value under key. ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Increment atomically bumps the counter at key and returns the new
	// count. The first increment in a window starts the TTL clock; later
	// increments within the window must not extend it.
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close releases underlying resources.
	Close() error
}

// Purger is implemented by drivers that need periodic cleanup of expired
// entries (sqlite, memory). Redis expires keys natively.
type Purger interface {
	// PurgeExpired removes entries whose TTL has lapsed and reports how
	// many were deleted.
	PurgeExpired(ctx context.Context) (int64, error)
}
