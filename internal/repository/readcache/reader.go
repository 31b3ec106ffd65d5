// Package readcache caches content read responses in a key-value store.
package readcache

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/sunbird/internal/db"
)

// KeyPrefix namespaces every cache key.
const KeyPrefix = "sunbird:read:"

// Reader is the wrapped content reader.
type Reader interface {
	Read(ctx context.Context, contentID string) ([]byte, error)
}

// store is the consumer interface for the read cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ValidFunc reports whether a read body may be cached.
type ValidFunc func(body []byte) bool

// CachedReader serves repeated reads of the same content from a store.
// Only successful reads whose body passes the ValidFunc are cached; errors
// always reach the caller.
type CachedReader struct {
	inner      Reader
	valid      ValidFunc
	store      store
	namespace  string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator. namespace separates sources sharing one
// store. valid filters what is stored; nil caches every successful read.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"),
// passed explicitly; it may be nil.
func New(
	inner Reader,
	valid ValidFunc,
	s store,
	namespace string,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedReader{
		inner:      inner,
		valid:      valid,
		store:      s,
		namespace:  namespace,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Read returns the cached body or reads through to the inner reader.
// Store failures degrade to a read-through.
func (c *CachedReader) Read(ctx context.Context, contentID string) ([]byte, error) {
	key := c.cacheKey(contentID)

	if data, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return data, nil
	}
	c.incCache("miss")

	data, err := c.inner.Read(ctx, contentID)
	if err != nil {
		return nil, err //nolint:wrapcheck // decorator is transparent
	}

	if c.valid != nil && !c.valid(data) {
		c.logger.Debug("Not caching undecodable content", zap.String("key", key))
		return data, nil
	}
	c.putToCache(ctx, key, data)
	return data, nil
}

func (c *CachedReader) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedReader) cacheKey(contentID string) string {
	return KeyPrefix + c.namespace + ":" + contentID
}

func (c *CachedReader) getFromCache(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached content", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}
	return data, true
}

func (c *CachedReader) putToCache(ctx context.Context, key string, data []byte) {
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache content", zap.String("key", key), zap.Error(err))
	}
}
