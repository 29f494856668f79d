// Package store defines the origin-scoped key/value store consumed by the
// memory, sys, and proc drivers.
//
// The store is the one resource genuinely shared across VFS calls. Its
// contract is strict isolation between origins: a key written under one
// origin is invisible under every other, regardless of backend. Drivers do
// not parse or validate origins — they receive a canonical vfs.Origin at
// construction and pass it through on every call.
package store

import (
	"context"
	"errors"

	"github.com/ShipFail/promptware-sub001/pkg/vfs"
)

// ErrKeyNotFound indicates the requested key does not exist under the given
// origin. Implementations wrap it with context:
//
//	return "", fmt.Errorf("key %s: %w", key, store.ErrKeyNotFound)
//
// Drivers translate it to the VFS taxonomy (CodeNotFound) at their boundary.
var ErrKeyNotFound = errors.New("key not found")

// Store provides durable (or deliberately non-durable) keyed string storage
// partitioned by origin.
//
// Semantics:
//   - Put overwrites atomically: a concurrent Get sees either the previous
//     value or the new one, never a partial write
//   - Scan returns keys only (not values), sorted lexicographically for
//     deterministic listings
//   - all operations respect context cancellation
//
// Thread safety: implementations must be safe for concurrent use by
// multiple goroutines.
type Store interface {
	// Get returns the value stored at key under origin, or ErrKeyNotFound.
	Get(ctx context.Context, origin vfs.Origin, key string) (string, error)

	// Put stores value at key under origin, overwriting any previous value.
	Put(ctx context.Context, origin vfs.Origin, key, value string) error

	// Delete removes key under origin, or returns ErrKeyNotFound if absent.
	Delete(ctx context.Context, origin vfs.Origin, key string) error

	// Scan returns the sorted keys under origin sharing the given prefix.
	// An empty prefix enumerates every key of the origin.
	Scan(ctx context.Context, origin vfs.Origin, prefix string) ([]string, error)

	// Close releases backend resources. The store is unusable afterwards.
	Close() error
}
