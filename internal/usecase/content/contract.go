package content

import "context"

// Reader fetches one content record by identifier. A missing record must
// surface as domain.ErrNotFound.
type Reader interface {
	Read(ctx context.Context, contentID string) ([]byte, error)
}
