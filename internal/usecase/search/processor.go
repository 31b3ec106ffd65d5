// Package search implements the content search operation.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/kailas-cloud/sunbird/internal/domain"
	"github.com/kailas-cloud/sunbird/internal/domain/search"
	"github.com/kailas-cloud/sunbird/internal/validate"
)

// Raw is the backend body together with what normalization needs from the request.
type Raw struct {
	Body            []byte
	FacetsRequested bool
}

// Processor validates, executes and normalizes one search.
type Processor struct {
	validator      *validate.Validator
	backend        Backend
	defaultFilters map[string][]string
}

// Option customizes a Processor.
type Option func(*Processor)

// WithDefaultFilters sets filters added to every backend request that
// does not already constrain them.
func WithDefaultFilters(filters map[string][]string) Option {
	return func(p *Processor) {
		p.defaultFilters = make(map[string][]string, len(filters))
		for k, v := range filters {
			p.defaultFilters[k] = slices.Clone(v)
		}
	}
}

// NewProcessor creates a search processor.
func NewProcessor(v *validate.Validator, backend Backend, opts ...Option) *Processor {
	p := &Processor{validator: v, backend: backend}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Validate checks params against the source catalog.
func (p *Processor) Validate(params map[string]any) (search.Request, error) {
	req, problems := p.validator.Search(params)
	if len(problems) > 0 {
		return search.Request{}, domain.NewValidationError(problems)
	}
	return req, nil
}

// Execute sends exactly one search call through the retrying transport.
func (p *Processor) Execute(ctx context.Context, req search.Request) (Raw, error) {
	body, err := p.backend.Search(ctx, BuildPayload(req, p.defaultFilters))
	if err != nil {
		return Raw{}, err
	}
	return Raw{Body: body, FacetsRequested: len(req.Facets()) > 0}, nil
}

// Normalize converts the backend body into a search.Result. A body that is
// not JSON fails; valid JSON with missing or malformed nesting yields an
// empty result.
func (p *Processor) Normalize(raw Raw) (search.Result, error) {
	dec := json.NewDecoder(bytes.NewReader(raw.Body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return search.Result{}, fmt.Errorf("%w: search response is not JSON: %w", domain.ErrBackendData, err)
	}

	out := search.Result{Results: []search.Item{}}

	root, _ := doc.(map[string]any)
	result, _ := root["result"].(map[string]any)
	if result == nil {
		return out, nil
	}

	out.Total = count(result["count"])
	if items, ok := result["content"].([]any); ok {
		for _, it := range items {
			obj, ok := it.(map[string]any)
			if !ok {
				continue
			}
			item := search.Item(maps.Clone(obj))
			for _, key := range requiredFields {
				if _, ok := item[key]; !ok {
					item[key] = ""
				}
			}
			out.Results = append(out.Results, item)
		}
	}

	if raw.FacetsRequested {
		if facets, ok := result["facets"]; ok && facets != nil {
			data, err := json.Marshal(facets)
			if err != nil {
				return search.Result{}, fmt.Errorf("%w: encode facets: %w", domain.ErrBackendData, err)
			}
			out.Facets = data
		}
	}

	return out, nil
}

// count reads a non-negative integer count; anything else is zero.
func count(v any) int {
	n, ok := v.(json.Number)
	if !ok {
		return 0
	}
	i, err := n.Int64()
	if err != nil || i < 0 {
		return 0
	}
	return int(i)
}
