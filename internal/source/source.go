// Package source wires one validator, backend client and processor pair per
// configured content platform deployment.
package source

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sunbird/internal/config"
	"github.com/kailas-cloud/sunbird/internal/domain/catalog"
	"github.com/kailas-cloud/sunbird/internal/domain/content"
	"github.com/kailas-cloud/sunbird/internal/domain/search"
	"github.com/kailas-cloud/sunbird/internal/metrics"
	"github.com/kailas-cloud/sunbird/internal/pipeline"
	"github.com/kailas-cloud/sunbird/internal/repository/readcache"
	"github.com/kailas-cloud/sunbird/internal/transport/backend"
	"github.com/kailas-cloud/sunbird/internal/transport/sunbird"
	contentuc "github.com/kailas-cloud/sunbird/internal/usecase/content"
	searchuc "github.com/kailas-cloud/sunbird/internal/usecase/search"
	"github.com/kailas-cloud/sunbird/internal/validate"
)

// Operation names used in logs and metrics.
const (
	OperationSearch    = "search"
	OperationArtifacts = "artifacts"
)

// Source is one content platform with its own catalog.
type Source struct {
	name      string
	catalog   *catalog.Catalog
	client    *sunbird.Client
	search    *searchuc.Processor
	artifacts *contentuc.Processor
}

// Name returns the source name.
func (s *Source) Name() string { return s.name }

// Catalog returns the source's filter catalog.
func (s *Source) Catalog() *catalog.Catalog { return s.catalog }

// Search runs the search pipeline for params.
func (s *Source) Search(ctx context.Context, params map[string]any) pipeline.Envelope[search.Result] {
	return pipeline.Run(ctx, pipeline.Info{Operation: OperationSearch, Source: s.name}, s.search, params)
}

// Artifacts runs the content-resolution pipeline for params.
func (s *Source) Artifacts(ctx context.Context, params map[string]any) pipeline.Envelope[content.Resolution] {
	return pipeline.Run(ctx, pipeline.Info{Operation: OperationArtifacts, Source: s.name}, s.artifacts, params)
}

// HealthCheck probes the backend with a single attempt.
func (s *Source) HealthCheck(ctx context.Context) error {
	return s.client.HealthCheck(ctx) //nolint:wrapcheck // already carries the source name
}

// Cache is the optional store behind content reads.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Deps holds what every source shares.
type Deps struct {
	Transport          *backend.Client
	Cache              Cache // nil disables read caching
	CacheTTL           time.Duration
	MaxConcurrentReads int
	MaxCollectionDepth int
	Logger             *zap.Logger
}

// New builds a source from its configuration. An invalid filters_json
// document is logged and the built-in catalog kept.
func New(name string, cfg config.SourceConfig, deps Deps) (*Source, error) {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	cat := catalog.Default()
	if cfg.Catalog == config.CatalogSandbox {
		cat = catalog.Sandbox()
	}
	if cfg.FiltersJSON != "" {
		override, err := cat.WithFiltersJSON([]byte(cfg.FiltersJSON))
		if err != nil {
			log.Warn("Ignoring invalid filters_json, keeping built-in catalog",
				zap.String("source", name), zap.Error(err))
		} else {
			cat = override
		}
	}

	client, err := sunbird.New(deps.Transport, sunbird.Config{
		Source:         name,
		BaseURL:        cfg.BaseURL,
		SearchEndpoint: cfg.SearchEndpoint,
		ReadEndpoint:   cfg.ReadEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", name, err)
	}

	var reader contentuc.Reader = client
	if deps.Cache != nil {
		reader = readcache.New(client, contentuc.ValidReadBody, deps.Cache, name, deps.CacheTTL, metrics.ReadCacheTotal, log)
	}

	v := validate.New(cat, cfg.DefaultLimit, cfg.MaxLimit)
	return &Source{
		name:    name,
		catalog: cat,
		client:  client,
		search:  searchuc.NewProcessor(v, client, searchuc.WithDefaultFilters(cfg.DefaultFilters)),
		artifacts: contentuc.NewProcessor(v, reader,
			contentuc.WithMaxConcurrentReads(deps.MaxConcurrentReads),
			contentuc.WithMaxDepth(deps.MaxCollectionDepth),
		),
	}, nil
}

// Registry holds every configured source.
type Registry struct {
	sources map[string]*Source
	names   []string
}

// NewRegistry builds a source for every entry of cfg.Sources.
func NewRegistry(cfg config.Config, deps Deps) (*Registry, error) {
	r := &Registry{sources: make(map[string]*Source, len(cfg.Sources))}
	for _, name := range cfg.SourceNames() {
		s, err := New(name, cfg.Sources[name], deps)
		if err != nil {
			return nil, err
		}
		r.sources[name] = s
		r.names = append(r.names, name)
	}
	return r, nil
}

// NewRegistryOf wraps already built sources.
func NewRegistryOf(sources ...*Source) *Registry {
	r := &Registry{sources: make(map[string]*Source, len(sources))}
	for _, s := range sources {
		if _, dup := r.sources[s.name]; !dup {
			r.names = append(r.names, s.name)
		}
		r.sources[s.name] = s
	}
	sort.Strings(r.names)
	return r
}

// Get returns the named source.
func (r *Registry) Get(name string) (*Source, bool) {
	s, ok := r.sources[name]
	return s, ok
}

// Names returns source names in sorted order.
func (r *Registry) Names() []string { return append([]string(nil), r.names...) }

// All returns every source in name order.
func (r *Registry) All() []*Source {
	out := make([]*Source, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.sources[name])
	}
	return out
}
