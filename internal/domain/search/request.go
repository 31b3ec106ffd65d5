// Package search holds the validated search request and its normalized result.
package search

import (
	"maps"
	"slices"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed free-text query length.
	MaxQueryLength = 4096
	DefaultLimit   = 10
	MinLimit       = 1
	MaxLimit       = 100
)

// DefaultSortField is the sort applied when the caller gives none.
const DefaultSortField = "lastPublishedOn"

// Sort directions.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Request is a validated search. Only the validator constructs it with
// non-default values; it is never mutated afterwards.
type Request struct {
	query   string
	filters map[string][]string
	fields  []string
	facets  []string
	sortBy  map[string]string
	limit   int
	offset  int
}

// NewRequest assembles a Request. limit is clamped into [MinLimit, maxLimit]
// and a negative offset is raised to zero, so every request handed to the
// backend is in bounds regardless of the caller.
func NewRequest(
	query string,
	filters map[string][]string,
	fields, facets []string,
	sortBy map[string]string,
	limit, offset, maxLimit int,
) Request {
	if maxLimit <= 0 || maxLimit > MaxLimit {
		maxLimit = MaxLimit
	}
	limit = ClampLimit(limit, maxLimit)
	if offset < 0 {
		offset = 0
	}
	if len(sortBy) == 0 {
		sortBy = map[string]string{DefaultSortField: SortDesc}
	}

	f := make(map[string][]string, len(filters))
	for k, v := range filters {
		f[k] = slices.Clone(v)
	}

	return Request{
		query:   query,
		filters: f,
		fields:  slices.Clone(fields),
		facets:  slices.Clone(facets),
		sortBy:  maps.Clone(sortBy),
		limit:   limit,
		offset:  offset,
	}
}

// ClampLimit bounds limit into [MinLimit, maxLimit].
func ClampLimit(limit, maxLimit int) int {
	if limit < MinLimit {
		return MinLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// Query returns the trimmed free-text query.
func (r *Request) Query() string { return r.query }

// Filters returns a copy of the filter map.
func (r *Request) Filters() map[string][]string {
	out := make(map[string][]string, len(r.filters))
	for k, v := range r.filters {
		out[k] = slices.Clone(v)
	}
	return out
}

// Fields returns the requested output fields.
func (r *Request) Fields() []string { return slices.Clone(r.fields) }

// Facets returns the requested facets.
func (r *Request) Facets() []string { return slices.Clone(r.facets) }

// SortBy returns the requested sort order per field.
func (r *Request) SortBy() map[string]string { return maps.Clone(r.sortBy) }

// Limit returns the page size.
func (r *Request) Limit() int { return r.limit }

// Offset returns the page offset.
func (r *Request) Offset() int { return r.offset }
