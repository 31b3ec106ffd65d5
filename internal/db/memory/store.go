// Package memory implements db.Store as an in-process LRU with per-key expiry.
package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kailas-cloud/sunbird/internal/db"
)

// DefaultSize is used when Config.Size is not positive.
const DefaultSize = 1024

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

type entry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// Store is safe for concurrent use.
type Store struct {
	cache *lru.Cache[string, entry]
	now   func() time.Time
}

// New creates a store holding at most size entries.
func New(size int) (*Store, error) {
	if size <= 0 {
		size = DefaultSize
	}
	cache, err := lru.New[string, entry](size)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}
	return &Store{cache: cache, now: time.Now}, nil
}

// Get returns a copy of the value, or db.ErrKeyNotFound when missing or expired.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	e, ok := s.cache.Get(key)
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		s.cache.Remove(key)
		return nil, db.ErrKeyNotFound
	}
	return slices.Clone(e.value), nil
}

// SetWithTTL stores a copy of value. A non-positive ttl never expires.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: slices.Clone(value)}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.cache.Add(key, e)
	return nil
}

// Del removes key.
func (s *Store) Del(_ context.Context, key string) error {
	s.cache.Remove(key)
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close drops every entry.
func (s *Store) Close() { s.cache.Purge() }

// Len returns the number of stored entries, expired ones included.
func (s *Store) Len() int { return s.cache.Len() }
