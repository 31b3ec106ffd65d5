package sunbird

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/sunbird/internal/transport/backend"
)

type fakePlatform struct {
	*httptest.Server
	reads atomic.Int32
}

func newFakePlatform(t *testing.T) *fakePlatform {
	t.Helper()
	f := &fakePlatform{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/content/v1/search", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result":{"count":1,"content":[{"identifier":"do_1","name":"Maths"}]}}`))
	})
	mux.HandleFunc("GET /api/content/v1/read/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.reads.Add(1)
		if r.PathValue("id") != "do_1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"result":{"content":{"identifier":"do_1","mimeType":"application/pdf","streamingUrl":"https://cdn/1.pdf"}}}`))
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func fastRetry() Option {
	return WithRetry(backend.RetryPolicy{MaxAttempts: 2, AttemptTimeout: time.Second, BackoffInitial: time.Millisecond})
}

func TestNew_NoSource(t *testing.T) {
	if _, err := New(context.Background()); err == nil {
		t.Fatal("expected error when no source configured")
	}
}

func TestNew_InvalidSource(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"relative url", WithSource("diksha", "/api")},
		{"bad name", WithSource("Diksha!", "https://diksha.gov.in")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(context.Background(), tc.opt); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNew_UnknownCacheDriver(t *testing.T) {
	cfg := &clientConfig{cacheDriver: "memcached"}
	if _, err := createStore(context.Background(), cfg); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestClient_SearchAndArtifacts(t *testing.T) {
	f := newFakePlatform(t)
	c, err := New(context.Background(), WithSource("diksha", f.URL), fastRetry())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer c.Close()

	res, err := c.Search(context.Background(), "diksha", map[string]any{"query": "maths"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if res.Total != 1 || res.Results[0].Identifier() != "do_1" {
		t.Errorf("unexpected result: %+v", res)
	}

	files, err := c.Artifacts(context.Background(), "diksha", "do_1")
	if err != nil {
		t.Fatalf("artifacts: %v", err)
	}
	if files.Count != 1 || files.Artifacts[0].URL != "https://cdn/1.pdf" {
		t.Errorf("unexpected resolution: %+v", files)
	}
}

func TestClient_Errors(t *testing.T) {
	f := newFakePlatform(t)
	c, err := New(context.Background(), WithSandboxSource("sandbox", f.URL), fastRetry())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer c.Close()

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{"not found", func() error {
			_, err := c.Artifacts(context.Background(), "sandbox", "do_2")
			return err
		}, ErrNotFound},
		{"validation", func() error {
			_, err := c.Artifacts(context.Background(), "sandbox", "abc")
			return err
		}, ErrValidation},
		{"unknown source", func() error {
			_, err := c.Search(context.Background(), "diksha", nil)
			return err
		}, ErrUnknownSource},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.call(); !errors.Is(err, tc.want) {
				t.Errorf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestClient_MemoryCache(t *testing.T) {
	f := newFakePlatform(t)
	c, err := New(context.Background(),
		WithSource("diksha", f.URL),
		WithMemoryCache(16, time.Minute),
		fastRetry(),
	)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer c.Close()

	for range 3 {
		if _, err := c.Artifacts(context.Background(), "diksha", "do_1"); err != nil {
			t.Fatalf("artifacts: %v", err)
		}
	}
	if got := f.reads.Load(); got != 1 {
		t.Errorf("expected 1 backend read, got %d", got)
	}

	if h := c.Health(context.Background()); h.Checks["cache"] != "ok" {
		t.Errorf("unexpected health: %+v", h)
	}
}

func TestClient_Health(t *testing.T) {
	f := newFakePlatform(t)
	c, err := New(context.Background(), WithSource("diksha", f.URL), fastRetry())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer c.Close()

	h := c.Health(context.Background())
	if h.Status != "ok" || h.Checks["backend:diksha"] != "ok" {
		t.Errorf("unexpected health: %+v", h)
	}
	if got := c.Sources(); len(got) != 1 || got[0] != "diksha" {
		t.Errorf("Sources() = %v", got)
	}
}

func TestClient_ObservesOperations(t *testing.T) {
	f := newFakePlatform(t)
	reg := prometheus.NewRegistry()
	c, err := New(context.Background(),
		WithSource("diksha", f.URL),
		WithPrometheus(reg),
		WithLogger(slog.New(slog.DiscardHandler)),
		fastRetry(),
	)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer c.Close()

	_, _ = c.Search(context.Background(), "diksha", nil)
	_, _ = c.Artifacts(context.Background(), "diksha", "do_9")

	obs := c.obs.metrics.operations
	if v := testutil.ToFloat64(obs.WithLabelValues("search", "diksha", "ok")); v != 1 {
		t.Errorf("search ok = %v, want 1", v)
	}
	if v := testutil.ToFloat64(obs.WithLabelValues("artifacts", "diksha", "not_found")); v != 1 {
		t.Errorf("artifacts not_found = %v, want 1", v)
	}
}

func TestNewObserver_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := newObserver(nil, reg)
	if err != nil {
		t.Fatal(err)
	}
	second, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("second registration: %v", err)
	}
	if first.metrics.operations != second.metrics.operations {
		t.Error("expected the already registered collector to be reused")
	}
}

func TestOperationError_Unwrap(t *testing.T) {
	tests := []struct {
		kind string
		want error
	}{
		{"validation_error", ErrValidation},
		{"transport_error", ErrTransport},
		{"backend_data_error", ErrBackendData},
		{"not_found", ErrNotFound},
	}
	for _, tc := range tests {
		err := error(&OperationError{Kind: tc.kind, Message: "x"})
		if !errors.Is(err, tc.want) {
			t.Errorf("kind %s does not unwrap to %v", tc.kind, tc.want)
		}
	}
	if errors.Unwrap(&OperationError{Kind: "internal_error"}) != nil {
		t.Error("internal_error should not unwrap")
	}
}
