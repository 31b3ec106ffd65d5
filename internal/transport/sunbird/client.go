// Package sunbird adapts the retrying transport to the Sunbird content API.
package sunbird

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/kailas-cloud/sunbird/internal/domain"
	"github.com/kailas-cloud/sunbird/internal/transport/backend"
)

// Default API paths.
const (
	DefaultSearchEndpoint = "/api/content/v1/search"
	DefaultReadEndpoint   = "/api/content/v1/read"
)

// Metric endpoint labels.
const (
	endpointSearch = "search"
	endpointRead   = "read"
	endpointHealth = "health"
)

// Config holds the API location for one source.
type Config struct {
	Source         string
	BaseURL        string
	SearchEndpoint string
	ReadEndpoint   string
}

// Client calls the search and read endpoints of one Sunbird deployment.
type Client struct {
	transport *backend.Client
	source    string
	searchURL string
	readURL   string
}

// New creates a Sunbird API client. Endpoints default to the public API paths.
func New(transport *backend.Client, cfg Config) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", cfg.BaseURL, err)
	}
	search := cfg.SearchEndpoint
	if search == "" {
		search = DefaultSearchEndpoint
	}
	read := cfg.ReadEndpoint
	if read == "" {
		read = DefaultReadEndpoint
	}
	return &Client{
		transport: transport,
		source:    cfg.Source,
		searchURL: base + search,
		readURL:   base + strings.TrimRight(read, "/"),
	}, nil
}

// Search posts a search payload and returns the raw response body.
func (c *Client) Search(ctx context.Context, payload any) ([]byte, error) {
	resp, err := c.transport.Call(ctx, http.MethodPost, c.searchURL, payload,
		backend.Endpoint(c.label(endpointSearch)))
	if err != nil {
		return nil, fmt.Errorf("search content: %w", err)
	}
	return resp.Body, nil
}

// Read fetches one content record. A 404 becomes domain.ErrNotFound.
func (c *Client) Read(ctx context.Context, contentID string) ([]byte, error) {
	u := c.readURL + "/" + url.PathEscape(contentID)
	resp, err := c.transport.Call(ctx, http.MethodGet, u, nil,
		backend.Endpoint(c.label(endpointRead)))
	if err != nil {
		var te *domain.TransportError
		if errors.As(err, &te) && te.StatusCode == http.StatusNotFound {
			return nil, domain.NewNotFound("content", contentID)
		}
		return nil, fmt.Errorf("read content %s: %w", contentID, err)
	}
	return resp.Body, nil
}

// HealthCheck issues a one-item search with a single attempt.
func (c *Client) HealthCheck(ctx context.Context) error {
	payload := map[string]any{"request": map[string]any{"filters": map[string]any{}, "limit": 1}}
	_, err := c.transport.Call(ctx, http.MethodPost, c.searchURL, payload,
		backend.Endpoint(c.label(endpointHealth)), backend.MaxAttempts(1))
	if err != nil {
		return fmt.Errorf("%s backend: %w", c.source, err)
	}
	return nil
}

func (c *Client) label(endpoint string) string {
	if c.source == "" {
		return endpoint
	}
	return c.source + "_" + endpoint
}
