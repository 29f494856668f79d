// Package memory provides an in-process store.Store implementation.
//
// It is suitable for tests and for ephemeral runs where nothing needs to
// survive a restart. All data lives in a two-level map guarded by a single
// read-write mutex; that coarse lock is simple and correct, and the store is
// not on any hot path that would justify finer granularity.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ShipFail/promptware-sub001/pkg/store"
	"github.com/ShipFail/promptware-sub001/pkg/vfs"
)

// MemoryStore implements store.Store with in-process maps.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[vfs.Origin]map[string]string
}

// compile-time interface check
var _ store.Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[vfs.Origin]map[string]string)}
}

// Get returns the value stored at key under origin.
func (s *MemoryStore) Get(ctx context.Context, origin vfs.Origin, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[origin][key]
	if !ok {
		return "", fmt.Errorf("key %s: %w", key, store.ErrKeyNotFound)
	}
	return value, nil
}

// Put stores value at key under origin.
func (s *MemoryStore) Put(ctx context.Context, origin vfs.Origin, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ns, ok := s.data[origin]
	if !ok {
		ns = make(map[string]string)
		s.data[origin] = ns
	}
	ns[key] = value
	return nil
}

// Delete removes key under origin.
func (s *MemoryStore) Delete(ctx context.Context, origin vfs.Origin, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ns, ok := s.data[origin]
	if !ok {
		return fmt.Errorf("key %s: %w", key, store.ErrKeyNotFound)
	}
	if _, ok := ns[key]; !ok {
		return fmt.Errorf("key %s: %w", key, store.ErrKeyNotFound)
	}
	delete(ns, key)
	return nil
}

// Scan returns the sorted keys under origin sharing the given prefix.
func (s *MemoryStore) Scan(ctx context.Context, origin vfs.Origin, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0)
	for k := range s.data[origin] {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Close releases nothing; the memory store has no backend resources.
func (s *MemoryStore) Close() error {
	return nil
}
