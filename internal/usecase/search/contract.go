package search

import "context"

// Backend performs one search call against the content platform.
type Backend interface {
	Search(ctx context.Context, payload any) ([]byte, error)
}
