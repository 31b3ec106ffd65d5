package health

import "context"

// CachePinger checks read cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// BackendChecker checks content platform availability.
type BackendChecker interface {
	Name() string
	HealthCheck(ctx context.Context) error
}
