package chi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kailas-cloud/sunbird/internal/config"
	"github.com/kailas-cloud/sunbird/internal/domain"
	"github.com/kailas-cloud/sunbird/internal/source"
	"github.com/kailas-cloud/sunbird/internal/transport/backend"
	healthuc "github.com/kailas-cloud/sunbird/internal/usecase/health"
)

// fakePlatform answers the content API the way the real backend does.
func fakePlatform(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/content/v1/search", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if strings.Contains(string(body), "explode") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"result":{"count":37,"content":[{"identifier":"do_1","name":"Maths"}]}}`))
	})
	mux.HandleFunc("GET /api/content/v1/read/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "do_1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"result":{"content":{"identifier":"do_1","mimeType":"application/pdf","streamingUrl":"https://cdn/1.pdf"}}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestRouter(t *testing.T, baseURL string) http.Handler {
	t.Helper()
	cfg := config.Config{Sources: map[string]config.SourceConfig{
		"sunbird": {BaseURL: baseURL},
	}}
	cfg.ApplyDefaults()

	transport := backend.New(backend.Config{Policy: backend.RetryPolicy{
		MaxAttempts:    2,
		AttemptTimeout: time.Second,
		BackoffInitial: time.Millisecond,
	}})
	reg, err := source.NewRegistry(cfg, source.Deps{Transport: transport})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	checkers := make([]healthuc.BackendChecker, 0)
	for _, s := range reg.All() {
		checkers = append(checkers, s)
	}
	srv := NewServer(reg, healthuc.New(nil, checkers...), nil)

	r := chi.NewRouter()
	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)
	return HandlerWithOptions(srv, ChiServerOptions{BaseRouter: r})
}

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error"`
	ErrorKind string          `json:"error_kind"`
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var env envelope
	_ = json.Unmarshal(rr.Body.Bytes(), &env)
	return rr, env
}

func TestSearchContent(t *testing.T) {
	h := newTestRouter(t, fakePlatform(t).URL)

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantKind string
	}{
		{"success", `{"filters":{"se_boards":["CBSE"]},"limit":5}`, http.StatusOK, ""},
		{"empty body", ``, http.StatusOK, ""},
		{"invalid filter", `{"filters":{"se_boards":["ICSE"]}}`, http.StatusBadRequest, domain.KindValidation},
		{"non-integer limit", `{"limit":2.5}`, http.StatusBadRequest, domain.KindValidation},
		{"backend failure", `{"query":"explode"}`, http.StatusBadGateway, domain.KindTransport},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr, env := do(t, h, http.MethodPost, "/v1/sunbird/search", tc.body)
			if rr.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d: %s", rr.Code, tc.wantCode, rr.Body)
			}
			if env.ErrorKind != tc.wantKind {
				t.Errorf("error_kind = %q, want %q", env.ErrorKind, tc.wantKind)
			}
			if env.Success != (tc.wantKind == "") {
				t.Errorf("success = %v", env.Success)
			}
		})
	}
}

func TestSearchContent_ResultShape(t *testing.T) {
	h := newTestRouter(t, fakePlatform(t).URL)

	_, env := do(t, h, http.MethodPost, "/v1/sunbird/search", `{"query":"maths"}`)
	var data struct {
		Total   int              `json:"total"`
		Results []map[string]any `json:"results"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Total != 37 || len(data.Results) != 1 || data.Results[0]["identifier"] != "do_1" {
		t.Errorf("unexpected data: %+v", data)
	}
}

func TestSearchContent_InvalidBody(t *testing.T) {
	h := newTestRouter(t, fakePlatform(t).URL)

	rr, _ := do(t, h, http.MethodPost, "/v1/sunbird/search", `[1,2,3]`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	var errResp ErrorResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &errResp)
	if errResp.Code != ErrorResponseCodeBadRequest {
		t.Errorf("code = %s", errResp.Code)
	}
}

func TestUnknownSource(t *testing.T) {
	h := newTestRouter(t, fakePlatform(t).URL)

	rr, _ := do(t, h, http.MethodPost, "/v1/diksha/search", `{}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
	var errResp ErrorResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &errResp)
	if errResp.Code != ErrorResponseCodeSourceNotFound {
		t.Errorf("code = %s", errResp.Code)
	}
}

func TestQuickSearch(t *testing.T) {
	h := newTestRouter(t, fakePlatform(t).URL)

	rr, env := do(t, h, http.MethodGet, "/v1/sunbird/search?query=maths&limit=3&offset=0", "")
	if rr.Code != http.StatusOK || !env.Success {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body)
	}

	rr, _ = do(t, h, http.MethodGet, "/v1/sunbird/search?limit=abc", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad limit: status = %d", rr.Code)
	}
}

func TestGetArtifacts(t *testing.T) {
	h := newTestRouter(t, fakePlatform(t).URL)

	tests := []struct {
		name     string
		id       string
		wantCode int
		wantKind string
	}{
		{"resolved", "do_1", http.StatusOK, ""},
		{"missing", "do_2", http.StatusNotFound, domain.KindNotFound},
		{"bad id", "abc", http.StatusBadRequest, domain.KindValidation},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr, env := do(t, h, http.MethodGet, "/v1/sunbird/content/"+tc.id+"/artifacts", "")
			if rr.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d: %s", rr.Code, tc.wantCode, rr.Body)
			}
			if env.ErrorKind != tc.wantKind {
				t.Errorf("error_kind = %q, want %q", env.ErrorKind, tc.wantKind)
			}
		})
	}
}

func TestGetCatalog(t *testing.T) {
	h := newTestRouter(t, fakePlatform(t).URL)

	rr, _ := do(t, h, http.MethodGet, "/v1/sunbird/catalog", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var cat CatalogResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &cat); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cat.Source != "sunbird" || len(cat.Filters["se_gradeLevels"]) != 12 || len(cat.Facets) != 5 {
		t.Errorf("unexpected catalog: %+v", cat)
	}
}

func TestHealthCheck(t *testing.T) {
	platform := fakePlatform(t)
	h := newTestRouter(t, platform.URL)

	rr, _ := do(t, h, http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("healthy: status = %d: %s", rr.Code, rr.Body)
	}

	platform.Close()
	rr, _ = do(t, h, http.MethodGet, "/health", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("backend down: status = %d", rr.Code)
	}
	var resp HealthResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp.Status != string(healthuc.Unhealthy) || resp.Checks["backend:sunbird"] != "error" {
		t.Errorf("unexpected health: %+v", resp)
	}
}

func TestRouteNotFound(t *testing.T) {
	h := newTestRouter(t, fakePlatform(t).URL)

	rr, _ := do(t, h, http.MethodGet, "/v2/anything", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d", rr.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		success bool
		kind    string
		want    int
	}{
		{true, "", http.StatusOK},
		{false, domain.KindValidation, http.StatusBadRequest},
		{false, domain.KindNotFound, http.StatusNotFound},
		{false, domain.KindTransport, http.StatusBadGateway},
		{false, domain.KindBackendData, http.StatusBadGateway},
		{false, domain.KindInternal, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		if got := statusFor(tc.success, tc.kind); got != tc.want {
			t.Errorf("statusFor(%v, %q) = %d, want %d", tc.success, tc.kind, got, tc.want)
		}
	}
}
