// Package cache provides the local data source: an opaque in-memory snapshot
// store and the typed accessors layered on it.
package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/guildradar/core/internal/ports"
)

// Memory is an in-memory ports.Cache backed by go-cache. Storing nil clears
// the key, matching the overwrite-with-null clearing model.
type Memory struct {
	store *gocache.Cache
}

// NewMemory creates an in-memory cache. Entries live for defaultTTL unless
// overwritten; expired entries are swept every cleanupInterval.
func NewMemory(defaultTTL, cleanupInterval time.Duration) *Memory {
	return &Memory{
		store: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get retrieves the snapshot stored under key.
func (m *Memory) Get(_ context.Context, key ports.CacheKey) ([]byte, error) {
	raw, found := m.store.Get(string(key))
	if !found {
		return nil, ports.ErrCacheMiss
	}

	value, ok := raw.([]byte)
	if !ok || value == nil {
		return nil, ports.ErrCacheMiss
	}

	return value, nil
}

// Set stores a snapshot under key. A nil value clears the key; a zero ttl
// means the entry never expires.
func (m *Memory) Set(_ context.Context, key ports.CacheKey, value []byte, ttl time.Duration) error {
	if value == nil {
		m.store.Delete(string(key))
		return nil
	}

	if ttl == 0 {
		ttl = gocache.NoExpiration
	}

	m.store.Set(string(key), value, ttl)

	return nil
}
