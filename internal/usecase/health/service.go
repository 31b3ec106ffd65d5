package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates that no backend is reachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// DefaultCheckTimeout bounds each component check.
const DefaultCheckTimeout = 5 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	cache    CachePinger
	backends []BackendChecker
	timeout  time.Duration
}

// New creates a Service. cache can be nil.
func New(cache CachePinger, backends ...BackendChecker) *Service {
	return &Service{cache: cache, backends: backends, timeout: DefaultCheckTimeout}
}

// Check runs every component check concurrently.
func (s *Service) Check(ctx context.Context) Report {
	var (
		mu     sync.Mutex
		checks = make(map[string]CheckResult, len(s.backends)+1)
	)
	record := func(name string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			checks[name] = CheckError
		} else {
			checks[name] = CheckOK
		}
	}

	var g errgroup.Group
	for _, b := range s.backends {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			record("backend:"+b.Name(), b.HealthCheck(cctx))
			return nil
		})
	}
	if s.cache != nil {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			record("cache", s.cache.Ping(cctx))
			return nil
		})
	}
	_ = g.Wait()

	failed, backendsDown := 0, 0
	for name, v := range checks {
		if v == CheckError {
			failed++
			if name != "cache" {
				backendsDown++
			}
		}
	}

	status := Healthy
	switch {
	case len(s.backends) > 0 && backendsDown == len(s.backends):
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
