// Package content implements the content-artifact resolution operation.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/sunbird/internal/domain"
	"github.com/kailas-cloud/sunbird/internal/domain/content"
	"github.com/kailas-cloud/sunbird/internal/logger"
	"github.com/kailas-cloud/sunbird/internal/validate"
)

// Fan-out limits.
const (
	DefaultMaxConcurrentReads = 20
	DefaultMaxDepth           = 8
)

// Processor resolves a content identifier into streamable artifacts.
type Processor struct {
	validator     *validate.Validator
	reader        Reader
	maxConcurrent int
	maxDepth      int
}

// Option customizes a Processor.
type Option func(*Processor)

// WithMaxConcurrentReads bounds simultaneous leaf reads.
func WithMaxConcurrentReads(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxConcurrent = n
		}
	}
}

// WithMaxDepth bounds how many nested collections are expanded.
func WithMaxDepth(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxDepth = n
		}
	}
}

// NewProcessor creates a content-resolution processor.
func NewProcessor(v *validate.Validator, reader Reader, opts ...Option) *Processor {
	p := &Processor{
		validator:     v,
		reader:        reader,
		maxConcurrent: DefaultMaxConcurrentReads,
		maxDepth:      DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Validate checks the content identifier.
func (p *Processor) Validate(params map[string]any) (content.Request, error) {
	req, problems := p.validator.Content(params)
	if len(problems) > 0 {
		return content.Request{}, domain.NewValidationError(problems)
	}
	return req, nil
}

// Execute reads the root record and every leaf under it. Nested collections
// are expanded depth-first; each identifier is read at most once.
func (p *Processor) Execute(ctx context.Context, req content.Request) (content.Manifest, error) {
	id := req.ContentID()
	root, err := p.readNode(ctx, id)
	if err != nil {
		return content.Manifest{}, err
	}

	visited := map[string]struct{}{id: {}}
	leaves, err := p.expand(ctx, root.LeafNodes, visited, 1)
	if err != nil {
		return content.Manifest{}, err
	}
	return content.Manifest{ContentID: id, Root: *root, Leaves: leaves}, nil
}

// Normalize applies the resolution algorithm.
func (p *Processor) Normalize(m content.Manifest) (content.Resolution, error) {
	return content.Resolve(m.ContentID, m.Candidates()), nil
}

// expand reads ids concurrently and returns the non-collection nodes under
// them in manifest order. Missing leaves are skipped; any other failure
// fails the whole expansion.
func (p *Processor) expand(
	ctx context.Context, ids []string, visited map[string]struct{}, depth int,
) ([]content.Node, error) {
	pending := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, seen := visited[id]; seen || id == "" {
			continue
		}
		visited[id] = struct{}{}
		pending = append(pending, id)
	}
	if len(pending) == 0 {
		return nil, nil
	}

	nodes := make([]*content.Node, len(pending))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxConcurrent)
	for i, id := range pending {
		g.Go(func() error {
			n, err := p.readNode(gctx, id)
			if errors.Is(err, domain.ErrNotFound) {
				logger.FromContext(ctx).Info("content: leaf not found, skipping", zap.String("content_id", id))
				return nil
			}
			if err != nil {
				return err
			}
			nodes[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]content.Node, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if !n.IsCollection() {
			out = append(out, *n)
			continue
		}
		if depth >= p.maxDepth {
			logger.FromContext(ctx).Warn("content: collection nesting too deep, not expanded",
				zap.String("content_id", n.Identifier), zap.Int("depth", depth))
			continue
		}
		children, err := p.expand(ctx, n.LeafNodes, visited, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, children...)
	}
	return out, nil
}

type readResponse struct {
	Result struct {
		Content *content.Node `json:"content"`
	} `json:"result"`
}

func (p *Processor) readNode(ctx context.Context, id string) (*content.Node, error) {
	body, err := p.reader.Read(ctx, id)
	if err != nil {
		return nil, err
	}
	return DecodeNode(id, body)
}

// ValidReadBody reports whether body is a decodable content read response.
func ValidReadBody(body []byte) bool {
	_, err := DecodeNode("", body)
	return err == nil
}

// DecodeNode extracts the content record from a read response body.
func DecodeNode(id string, body []byte) (*content.Node, error) {
	var resp readResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrBackendData, id, err)
	}
	if resp.Result.Content == nil {
		return nil, fmt.Errorf("%w: read %s: response has no content record", domain.ErrBackendData, id)
	}
	n := resp.Result.Content
	if n.Identifier == "" {
		n.Identifier = id
	}
	return n, nil
}
