package search

import (
	"maps"
	"slices"

	"github.com/kailas-cloud/sunbird/internal/domain/search"
)

// Payload is the backend search request body.
type Payload struct {
	Request PayloadRequest `json:"request"`
}

// PayloadRequest is the "request" object of a backend search.
type PayloadRequest struct {
	Filters map[string][]string `json:"filters"`
	Query   string              `json:"query,omitempty"`
	Limit   int                 `json:"limit"`
	Offset  int                 `json:"offset"`
	Fields  []string            `json:"fields,omitempty"`
	Facets  []string            `json:"facets,omitempty"`
	SortBy  map[string]string   `json:"sort_by,omitempty"`
}

// requiredFields are always returned when the caller narrows the field set.
var requiredFields = []string{"identifier", "name"}

// BuildPayload maps a validated request to the backend body. Caller filters
// win over defaults; limit and offset come from the request untouched.
func BuildPayload(req search.Request, defaults map[string][]string) Payload {
	filters := req.Filters()
	for k, v := range defaults {
		if _, ok := filters[k]; !ok {
			filters[k] = slices.Clone(v)
		}
	}

	fields := req.Fields()
	if len(fields) > 0 {
		for _, f := range requiredFields {
			if !slices.Contains(fields, f) {
				fields = append(fields, f)
			}
		}
	}

	return Payload{Request: PayloadRequest{
		Filters: filters,
		Query:   req.Query(),
		Limit:   req.Limit(),
		Offset:  req.Offset(),
		Fields:  fields,
		Facets:  req.Facets(),
		SortBy:  maps.Clone(req.SortBy()),
	}}
}
