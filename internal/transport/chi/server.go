// Package chi exposes the content operations over HTTP.
package chi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/sunbird/internal/domain"
	"github.com/kailas-cloud/sunbird/internal/pipeline"
	"github.com/kailas-cloud/sunbird/internal/source"
	healthuc "github.com/kailas-cloud/sunbird/internal/usecase/health"
	"github.com/kailas-cloud/sunbird/internal/validate"
)

// maxRequestBytes bounds a search request body.
const maxRequestBytes = 1 << 20

// Server implements ServerInterface on top of the source registry.
type Server struct {
	sources *source.Registry
	health  *healthuc.Service
	logger  *zap.Logger
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(sources *source.Registry, health *healthuc.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{sources: sources, health: health, logger: logger}
}

// SearchContent handles POST /v1/{source}/search.
func (s *Server) SearchContent(w http.ResponseWriter, r *http.Request, sourceName string) {
	src, ok := s.source(w, sourceName)
	if !ok {
		return
	}

	params, err := decodeParams(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	writeEnvelope(w, src.Search(r.Context(), params))
}

// QuickSearch handles GET /v1/{source}/search.
func (s *Server) QuickSearch(w http.ResponseWriter, r *http.Request, sourceName string, params QuickSearchParams) {
	src, ok := s.source(w, sourceName)
	if !ok {
		return
	}

	raw := map[string]any{}
	if params.Query != nil {
		raw[validate.ParamQuery] = *params.Query
	}
	if params.Limit != nil {
		raw[validate.ParamLimit] = *params.Limit
	}
	if params.Offset != nil {
		raw[validate.ParamOffset] = *params.Offset
	}

	writeEnvelope(w, src.Search(r.Context(), raw))
}

// GetArtifacts handles GET /v1/{source}/content/{contentID}/artifacts.
func (s *Server) GetArtifacts(w http.ResponseWriter, r *http.Request, sourceName, contentID string) {
	src, ok := s.source(w, sourceName)
	if !ok {
		return
	}

	writeEnvelope(w, src.Artifacts(r.Context(), map[string]any{validate.ParamContentID: contentID}))
}

// GetCatalog handles GET /v1/{source}/catalog.
func (s *Server) GetCatalog(w http.ResponseWriter, _ *http.Request, sourceName string) {
	src, ok := s.source(w, sourceName)
	if !ok {
		return
	}

	cat := src.Catalog()
	filters := make(map[string][]string)
	for _, name := range cat.FilterNames() {
		filters[name] = cat.Values(name)
	}
	writeJSON(w, http.StatusOK, CatalogResponse{
		Source:  src.Name(),
		Filters: filters,
		Fields:  cat.Fields(),
		Facets:  cat.Facets(),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// NotFound answers unknown routes with a JSON error.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, ErrorResponseCodeRouteNotFound, "route not found")
}

// MethodNotAllowed answers known routes called with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, ErrorResponseCodeMethodNotAllowed, "method not allowed")
}

func (s *Server) source(w http.ResponseWriter, name string) (*source.Source, bool) {
	src, ok := s.sources.Get(name)
	if !ok {
		writeError(w, http.StatusNotFound, ErrorResponseCodeSourceNotFound, "unknown source: "+strconv.Quote(name))
		return nil, false
	}
	return src, true
}

// decodeParams reads a JSON object. An empty body is an empty object.
// Numbers stay json.Number so integer checks are exact.
func decodeParams(body io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(io.LimitReader(body, maxRequestBytes+1))
	if err != nil {
		return nil, err //nolint:wrapcheck // surfaced verbatim as a 400
	}
	if len(data) > maxRequestBytes {
		return nil, errors.New("body too large")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var params map[string]any
	if err := dec.Decode(&params); err != nil {
		return nil, errors.New("body must be a JSON object")
	}
	if params == nil {
		return map[string]any{}, nil
	}
	return params, nil
}

// statusFor maps an envelope to its HTTP status.
func statusFor(success bool, kind string) int {
	if success {
		return http.StatusOK
	}
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindTransport, domain.KindBackendData:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeEnvelope[T any](w http.ResponseWriter, env pipeline.Envelope[T]) {
	writeJSON(w, statusFor(env.Success, env.ErrorKind), env)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
