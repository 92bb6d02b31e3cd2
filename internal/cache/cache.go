package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("cache: key not found")

// Cache is a minimal key/value cache interface (e.g. Redis).
type Cache interface {
	// Ping checks if the cache is reachable.
	Ping(ctx context.Context) error

	// Set stores a value with the given TTL. A zero TTL keeps the key forever.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Get retrieves a value by key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Del removes a key. No-op if the key does not exist.
	Del(ctx context.Context, key string) error
}
