// Package db defines the key-value storage contracts used by the read cache.
package db

import (
	"context"
	"time"
)

// Store combines every storage capability a backend offers.
type Store interface {
	Pinger
	KVStore
	Close()
}

// Pinger checks storage connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides expiring key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}
