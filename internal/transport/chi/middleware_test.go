package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/sunbird/internal/logger"
)

func TestJSONRecoverer(t *testing.T) {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(zap.NewNop()))
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/boom", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != ErrorResponseCodeInternalError {
		t.Errorf("code = %s", resp.Code)
	}
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(zap.New(core)))
	r.Post("/v1/{source}/search", func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info("inside")
		w.WriteHeader(http.StatusAccepted)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/sandbox/search", http.NoBody))

	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}
	if _, ok := entries[0].ContextMap()["request_id"]; !ok {
		t.Error("handler logger should carry request_id")
	}
	line := entries[1].ContextMap()
	if entries[1].Message != "http_request" || line["status"] != int64(http.StatusAccepted) {
		t.Errorf("unexpected canonical line: %s %v", entries[1].Message, line)
	}
	if line["source"] != "sandbox" || line["route"] != "/v1/{source}/search" {
		t.Errorf("expected route labels, got %v", line)
	}
}
