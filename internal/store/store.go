// Package store provides a key-value abstraction shared by the translation
// cache, the budget ledger, and the rate-limit window. A single-process
// deployment uses the in-memory implementation; multi-node deployments point
// REDIS_DSN at a shared Redis so budget and rate state are cluster-wide.
package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a key does not exist or has expired.
var ErrNotFound = errors.New("store: key not found")

// Store is the interface for the underlying key-value storage.
type Store interface {
	// Set stores a key-value pair with an optional TTL (0 means no expiry).
	Set(key string, value []byte, ttl time.Duration) error

	// Get retrieves a value by key, returning ErrNotFound for missing or
	// expired keys.
	Get(key string) ([]byte, error)

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(key string) error

	// Exists checks whether a key exists and has not expired.
	Exists(key string) (bool, error)

	// SetNX sets a key only if it does not already exist. Returns true when
	// the value was set.
	SetNX(key string, value []byte, ttl time.Duration) (bool, error)

	// IncrBy atomically adds delta to the counter stored at key and returns
	// the new value. The TTL is applied only when the counter is created, so
	// a day- or minute-scoped key keeps its original expiry across updates.
	// Delta may be negative; this is how optimistic reservations roll back.
	IncrBy(key string, delta int64, ttl time.Duration) (int64, error)

	// Clear removes all data.
	Clear() error

	// Close releases resources held by the store.
	Close() error
}
