package sunbird

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/sunbird/internal/config"
	"github.com/kailas-cloud/sunbird/internal/transport/backend"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	sources map[string]config.SourceConfig

	retry      backend.RetryPolicy
	httpClient *http.Client
	userAgent  string

	cacheDriver   string // "", "memory" or "redis"
	cacheSize     int
	cacheAddrs    []string
	cachePassword string
	cacheTTL      time.Duration

	maxConcurrentReads int
	maxCollectionDepth int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithSource adds a deployment using the production catalog.
func WithSource(name, baseURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.sources[name] = config.SourceConfig{Catalog: config.CatalogDefault, BaseURL: baseURL}
	})
}

// WithSandboxSource adds a deployment using the sandbox catalog.
func WithSandboxSource(name, baseURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.sources[name] = config.SourceConfig{Catalog: config.CatalogSandbox, BaseURL: baseURL}
	})
}

// WithSourceConfig adds a deployment with full control over endpoints,
// filter overrides and paging limits.
func WithSourceConfig(name string, sc config.SourceConfig) Option {
	return optionFunc(func(c *clientConfig) {
		c.sources[name] = sc
	})
}

// WithRetry sets the policy of every outbound call.
// Default: 3 attempts of 30s, backoff 200ms doubling up to 2s.
func WithRetry(p backend.RetryPolicy) Option {
	return optionFunc(func(c *clientConfig) {
		c.retry = p
	})
}

// WithHTTPClient replaces the pooled HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithUserAgent sets the User-Agent of outbound calls.
func WithUserAgent(ua string) Option {
	return optionFunc(func(c *clientConfig) {
		c.userAgent = ua
	})
}

// WithMemoryCache caches content reads in-process.
func WithMemoryCache(size int, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheDriver = config.CacheMemory
		c.cacheSize = size
		c.cacheTTL = ttl
	})
}

// WithRedisCache caches content reads in Redis.
func WithRedisCache(addr, password string, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheDriver = config.CacheRedis
		c.cacheAddrs = []string{addr}
		c.cachePassword = password
		c.cacheTTL = ttl
	})
}

// WithMaxConcurrentReads bounds parallel leaf reads per resolution.
// Default: 20.
func WithMaxConcurrentReads(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxConcurrentReads = n
	})
}

// WithMaxCollectionDepth bounds how many nested collections are expanded.
// Default: 8.
func WithMaxCollectionDepth(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxCollectionDepth = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
