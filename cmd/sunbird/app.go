package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sunbird/internal/config"
	"github.com/kailas-cloud/sunbird/internal/db"
	"github.com/kailas-cloud/sunbird/internal/db/memory"
	dbRedis "github.com/kailas-cloud/sunbird/internal/db/redis"
	logpkg "github.com/kailas-cloud/sunbird/internal/logger"
	"github.com/kailas-cloud/sunbird/internal/source"
	"github.com/kailas-cloud/sunbird/internal/transport/backend"
	healthuc "github.com/kailas-cloud/sunbird/internal/usecase/health"
	"github.com/kailas-cloud/sunbird/internal/version"
)

// app is the composition root shared by every command.
type app struct {
	env     string
	cfg     config.Config
	logger  *zap.Logger
	store   db.Store // nil when caching is off
	sources *source.Registry
	health  *healthuc.Service
	ceiling time.Duration
}

// newApp loads config and wires the sources. stderrLogs keeps stdout free
// for protocol or envelope output.
func newApp(ctx context.Context, env string, stderrLogs bool) (*app, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.New(logpkg.Options{Env: env, Level: cfg.Logging.Level, Stderr: stderrLogs})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	store, err := buildStore(ctx, cfg.Cache)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	policy := backend.RetryPolicy{
		MaxAttempts:       cfg.Backend.Retry.MaxAttempts,
		AttemptTimeout:    cfg.Backend.Retry.AttemptTimeout(),
		BackoffInitial:    cfg.Backend.Retry.BackoffInitial(),
		BackoffMultiplier: cfg.Backend.Retry.BackoffMultiplier,
		BackoffMax:        cfg.Backend.Retry.BackoffMax(),
	}
	transport := backend.New(backend.Config{
		Policy:    policy,
		UserAgent: cfg.Backend.UserAgent,
		Logger:    logger,
	})

	deps := source.Deps{
		Transport:          transport,
		CacheTTL:           cfg.Cache.TTL(),
		MaxConcurrentReads: cfg.Backend.MaxConcurrentReads,
		MaxCollectionDepth: cfg.Backend.MaxCollectionDepth,
		Logger:             logger,
	}
	// Assigned only when set: a nil db.Store must stay a nil interface.
	if store != nil {
		deps.Cache = store
	}
	sources, err := source.NewRegistry(cfg, deps)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("build sources: %w", err)
	}

	checkers := make([]healthuc.BackendChecker, 0, len(sources.Names()))
	for _, s := range sources.All() {
		checkers = append(checkers, s)
	}
	var pinger healthuc.CachePinger
	if store != nil {
		pinger = store
	}

	logger.Info("sunbird initialized",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.Strings("sources", sources.Names()),
		zap.String("cache_driver", cfg.Cache.Driver),
		zap.Int("retry_max_attempts", transport.Policy().MaxAttempts),
		zap.Duration("retry_ceiling", transport.Policy().Ceiling()),
	)

	return &app{
		env:     env,
		cfg:     cfg,
		logger:  logger,
		store:   store,
		sources: sources,
		health:  healthuc.New(pinger, checkers...),
		ceiling: transport.Policy().Ceiling(),
	}, nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
	_ = a.logger.Sync()
}

func buildStore(ctx context.Context, cfg config.CacheConfig) (db.Store, error) {
	switch cfg.Driver {
	case config.CacheNone:
		return nil, nil
	case config.CacheMemory:
		s, err := memory.New(cfg.Size)
		if err != nil {
			return nil, fmt.Errorf("memory cache: %w", err)
		}
		return s, nil
	case config.CacheRedis:
		s, err := dbRedis.NewStore(dbRedis.Config{Addrs: cfg.Addrs, Password: cfg.Password})
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		if err := s.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
			s.Close()
			return nil, fmt.Errorf("redis cache not ready: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}
