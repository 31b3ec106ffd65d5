package chi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ErrorResponseCode is the machine-readable code of an ErrorResponse.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest       ErrorResponseCode = "bad_request"
	ErrorResponseCodeUnauthorized     ErrorResponseCode = "unauthorized"
	ErrorResponseCodeSourceNotFound   ErrorResponseCode = "source_not_found"
	ErrorResponseCodeRouteNotFound    ErrorResponseCode = "not_found"
	ErrorResponseCodeMethodNotAllowed ErrorResponseCode = "method_not_allowed"
	ErrorResponseCodeInternalError    ErrorResponseCode = "internal_error"
)

// ErrorResponse is returned for failures that happen before an operation runs.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// CatalogResponse is the body of GET /v1/{source}/catalog.
type CatalogResponse struct {
	Source  string              `json:"source"`
	Filters map[string][]string `json:"filters"`
	Fields  []string            `json:"fields"`
	Facets  []string            `json:"facets"`
}

// QuickSearchParams are the query parameters of GET /v1/{source}/search.
type QuickSearchParams struct {
	Query  *string `form:"query,omitempty" json:"query,omitempty"`
	Limit  *int    `form:"limit,omitempty" json:"limit,omitempty"`
	Offset *int    `form:"offset,omitempty" json:"offset,omitempty"`
}

// ServerInterface is implemented by Server.
type ServerInterface interface {
	// POST /v1/{source}/search
	SearchContent(w http.ResponseWriter, r *http.Request, source string)
	// GET /v1/{source}/search
	QuickSearch(w http.ResponseWriter, r *http.Request, source string, params QuickSearchParams)
	// GET /v1/{source}/content/{contentID}/artifacts
	GetArtifacts(w http.ResponseWriter, r *http.Request, source string, contentID string)
	// GET /v1/{source}/catalog
	GetCatalog(w http.ResponseWriter, r *http.Request, source string)
	// GET /health
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// GET /metrics
	Metrics(w http.ResponseWriter, r *http.Request)
}

// InvalidParamFormatError reports a parameter that could not be bound.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseRouter       chi.Router
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerWithOptions registers every route of si on options.BaseRouter.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
		}
	}
	wrapper := serverInterfaceWrapper{handler: si, errorHandlerFunc: options.ErrorHandlerFunc}

	r.Group(func(r chi.Router) {
		r.Post("/v1/{source}/search", wrapper.SearchContent)
		r.Get("/v1/{source}/search", wrapper.QuickSearch)
		r.Get("/v1/{source}/content/{contentID}/artifacts", wrapper.GetArtifacts)
		r.Get("/v1/{source}/catalog", wrapper.GetCatalog)
		r.Get("/health", si.HealthCheck)
		r.Get("/metrics", si.Metrics)
	})
	return r
}

type serverInterfaceWrapper struct {
	handler          ServerInterface
	errorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

func (sw *serverInterfaceWrapper) bindSource(w http.ResponseWriter, r *http.Request) (string, bool) {
	var source string
	err := runtime.BindStyledParameterWithLocation("simple", false, "source",
		runtime.ParamLocationPath, chi.URLParam(r, "source"), &source)
	if err != nil {
		sw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "source", Err: err})
		return "", false
	}
	return source, true
}

func (sw *serverInterfaceWrapper) SearchContent(w http.ResponseWriter, r *http.Request) {
	source, ok := sw.bindSource(w, r)
	if !ok {
		return
	}
	sw.handler.SearchContent(w, r, source)
}

func (sw *serverInterfaceWrapper) QuickSearch(w http.ResponseWriter, r *http.Request) {
	source, ok := sw.bindSource(w, r)
	if !ok {
		return
	}

	var params QuickSearchParams
	if err := runtime.BindQueryParameter("form", true, false, "query", r.URL.Query(), &params.Query); err != nil {
		sw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "query", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit); err != nil {
		sw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "limit", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "offset", r.URL.Query(), &params.Offset); err != nil {
		sw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "offset", Err: err})
		return
	}

	sw.handler.QuickSearch(w, r, source, params)
}

func (sw *serverInterfaceWrapper) GetArtifacts(w http.ResponseWriter, r *http.Request) {
	source, ok := sw.bindSource(w, r)
	if !ok {
		return
	}

	var contentID string
	err := runtime.BindStyledParameterWithLocation("simple", false, "contentID",
		runtime.ParamLocationPath, chi.URLParam(r, "contentID"), &contentID)
	if err != nil {
		sw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "contentID", Err: err})
		return
	}

	sw.handler.GetArtifacts(w, r, source, contentID)
}

func (sw *serverInterfaceWrapper) GetCatalog(w http.ResponseWriter, r *http.Request) {
	source, ok := sw.bindSource(w, r)
	if !ok {
		return
	}
	sw.handler.GetCatalog(w, r, source)
}
