package sunbird

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/sunbird/internal/config"
	"github.com/kailas-cloud/sunbird/internal/db"
	"github.com/kailas-cloud/sunbird/internal/db/memory"
	dbRedis "github.com/kailas-cloud/sunbird/internal/db/redis"
	"github.com/kailas-cloud/sunbird/internal/domain/content"
	"github.com/kailas-cloud/sunbird/internal/domain/search"
	"github.com/kailas-cloud/sunbird/internal/pipeline"
	"github.com/kailas-cloud/sunbird/internal/source"
	"github.com/kailas-cloud/sunbird/internal/transport/backend"
	healthuc "github.com/kailas-cloud/sunbird/internal/usecase/health"
	"github.com/kailas-cloud/sunbird/internal/validate"
)

const defaultReadinessTimeout = 10 * time.Second

type (
	// SearchResult is a page of matching content.
	SearchResult = search.Result
	// SearchItem is one matching content item.
	SearchItem = search.Item
	// Resolution lists the downloadable files of a content item.
	Resolution = content.Resolution
	// Artifact is one downloadable file.
	Artifact = content.Artifact
)

// Client is the sunbird SDK entry point. It is safe for concurrent use.
type Client struct {
	store     db.Store // nil without a cache
	sources   *source.Registry
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client. The context bounds the cache readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{sources: map[string]config.SourceConfig{}}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.sources) == 0 {
		return nil, errors.New("sunbird: at least one source required (use WithSource)")
	}

	// Validation and defaults come from the server's config layer.
	sc := config.Config{
		Sources: cfg.sources,
		Cache:   config.CacheConfig{Driver: cfg.cacheDriver, Addrs: cfg.cacheAddrs},
	}
	sc.ApplyDefaults()
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("sunbird: %w", err)
	}
	if cfg.cacheSize <= 0 {
		cfg.cacheSize = sc.Cache.Size
	}
	if cfg.cacheTTL <= 0 {
		cfg.cacheTTL = sc.Cache.TTL()
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	c, err := wireClient(sc, store, cfg, obs)
	if err != nil && store != nil {
		store.Close()
	}
	return c, err
}

func createStore(ctx context.Context, cfg *clientConfig) (db.Store, error) {
	switch cfg.cacheDriver {
	case "", config.CacheNone:
		return nil, nil
	case config.CacheMemory:
		s, err := memory.New(cfg.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("sunbird: create memory cache: %w", err)
		}
		return s, nil
	case config.CacheRedis:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.cacheAddrs,
			Password: cfg.cachePassword,
		})
		if err != nil {
			return nil, fmt.Errorf("sunbird: create redis cache: %w", err)
		}
		if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, fmt.Errorf("sunbird: redis cache not ready: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("sunbird: unknown cache driver %q", cfg.cacheDriver)
	}
}

func wireClient(sc config.Config, store db.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	transport := backend.New(backend.Config{
		Policy:     cfg.retry,
		HTTPClient: cfg.httpClient,
		UserAgent:  cfg.userAgent,
	})

	deps := source.Deps{
		Transport:          transport,
		CacheTTL:           cfg.cacheTTL,
		MaxConcurrentReads: cfg.maxConcurrentReads,
		MaxCollectionDepth: cfg.maxCollectionDepth,
	}
	var pinger healthuc.CachePinger
	if store != nil {
		deps.Cache = store
		pinger = store
	}

	sources, err := source.NewRegistry(sc, deps)
	if err != nil {
		return nil, fmt.Errorf("sunbird: %w", err)
	}

	checkers := make([]healthuc.BackendChecker, 0, len(sources.Names()))
	for _, s := range sources.All() {
		checkers = append(checkers, s)
	}

	return &Client{
		store:     store,
		sources:   sources,
		healthSvc: healthuc.New(pinger, checkers...),
		obs:       obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Sources returns the configured source names in sorted order.
func (c *Client) Sources() []string { return c.sources.Names() }

// Search runs a search against sourceName. params uses the same keys as
// the HTTP API: query, filters, fields, facets, sort_by, limit, offset.
func (c *Client) Search(ctx context.Context, sourceName string, params map[string]any) (_ *SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe(source.OperationSearch, sourceName, start, err) }()

	src, err := c.source(sourceName)
	if err != nil {
		return nil, err
	}
	return unwrap(src.Search(ctx, params))
}

// Artifacts resolves contentID into its downloadable files. A collection
// is expanded through its nested items.
func (c *Client) Artifacts(ctx context.Context, sourceName, contentID string) (_ *Resolution, err error) {
	start := time.Now()
	defer func() { c.obs.observe(source.OperationArtifacts, sourceName, start, err) }()

	src, err := c.source(sourceName)
	if err != nil {
		return nil, err
	}
	return unwrap(src.Artifacts(ctx, map[string]any{validate.ParamContentID: contentID}))
}

func (c *Client) source(name string) (*source.Source, error) {
	src, ok := c.sources.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}
	return src, nil
}

func unwrap[T any](env pipeline.Envelope[T]) (*T, error) {
	if env.Success {
		return env.Data, nil
	}
	return nil, &OperationError{Kind: env.ErrorKind, Message: env.Error}
}
