// Package validate checks caller parameters against a catalog's allow-lists
// and produces sanitized, immutable operation requests. It performs no I/O.
package validate

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/kailas-cloud/sunbird/internal/domain/catalog"
	"github.com/kailas-cloud/sunbird/internal/domain/content"
	"github.com/kailas-cloud/sunbird/internal/domain/search"
)

// Operation names understood by Validate.
const (
	OpSearch  = "search"
	OpContent = "content"
)

// Search parameter names.
const (
	ParamQuery   = "query"
	ParamFilters = "filters"
	ParamFields  = "fields"
	ParamFacets  = "facets"
	ParamSortBy  = "sort_by"
	ParamLimit   = "limit"
	ParamOffset  = "offset"

	ParamContentID = "content_id"
)

var searchParams = map[string]struct{}{
	ParamQuery: {}, ParamFilters: {}, ParamFields: {}, ParamFacets: {},
	ParamSortBy: {}, ParamLimit: {}, ParamOffset: {},
}

// Validator validates raw parameters for one source.
type Validator struct {
	catalog      *catalog.Catalog
	defaultLimit int
	maxLimit     int
}

// New creates a Validator over an immutable catalog.
// Non-positive limits fall back to the search package defaults.
func New(c *catalog.Catalog, defaultLimit, maxLimit int) *Validator {
	if maxLimit <= 0 || maxLimit > search.MaxLimit {
		maxLimit = search.MaxLimit
	}
	if defaultLimit <= 0 {
		defaultLimit = search.DefaultLimit
	}
	return &Validator{
		catalog:      c,
		defaultLimit: search.ClampLimit(defaultLimit, maxLimit),
		maxLimit:     maxLimit,
	}
}

// Catalog returns the catalog the validator consults.
func (v *Validator) Catalog() *catalog.Catalog { return v.catalog }

// Validate dispatches on operation and returns the sanitized request
// (search.Request or content.Request) with every problem found. The request
// is only meaningful when the problem list is empty.
func (v *Validator) Validate(operation string, raw map[string]any) (any, []string) {
	switch operation {
	case OpSearch:
		return v.Search(raw)
	case OpContent:
		return v.Content(raw)
	default:
		return nil, []string{fmt.Sprintf("unknown operation %q", operation)}
	}
}

// Search validates search parameters.
func (v *Validator) Search(raw map[string]any) (search.Request, []string) {
	var errs []string

	for _, key := range sortedKeys(raw) {
		if _, ok := searchParams[key]; !ok {
			errs = append(errs, fmt.Sprintf("unknown parameter %q", key))
		}
	}

	query := ""
	if val, ok := raw[ParamQuery]; ok && val != nil {
		s, isStr := val.(string)
		switch {
		case !isStr:
			errs = append(errs, "query must be a string")
		case len(strings.TrimSpace(s)) > search.MaxQueryLength:
			errs = append(errs, fmt.Sprintf("query too long (max %d chars)", search.MaxQueryLength))
		default:
			query = strings.TrimSpace(s)
		}
	}

	filters, ferrs := v.filters(raw[ParamFilters])
	errs = append(errs, ferrs...)

	fields, ferrs := v.names(raw[ParamFields], ParamFields, "field", v.catalog.AllowedField)
	errs = append(errs, ferrs...)

	facets, ferrs := v.names(raw[ParamFacets], ParamFacets, "facet", v.catalog.AllowedFacet)
	errs = append(errs, ferrs...)

	sortBy, serrs := v.sortBy(raw[ParamSortBy])
	errs = append(errs, serrs...)

	limit := v.defaultLimit
	if val, ok := raw[ParamLimit]; ok && val != nil {
		n, err := toInt(val)
		if err != nil {
			errs = append(errs, fmt.Sprintf("limit must be an integer between %d and %d", search.MinLimit, v.maxLimit))
		} else {
			limit = search.ClampLimit(n, v.maxLimit)
		}
	}

	offset := 0
	if val, ok := raw[ParamOffset]; ok && val != nil {
		n, err := toInt(val)
		switch {
		case err != nil:
			errs = append(errs, fmt.Sprintf("offset must be an integer: %v", err))
		case n < 0:
			errs = append(errs, "offset must be a non-negative integer")
		default:
			offset = n
		}
	}

	if len(errs) > 0 {
		return search.Request{}, errs
	}
	return search.NewRequest(query, filters, fields, facets, sortBy, limit, offset, v.maxLimit), nil
}

// Content validates content-resolution parameters.
func (v *Validator) Content(raw map[string]any) (content.Request, []string) {
	var errs []string
	for _, key := range sortedKeys(raw) {
		if key != ParamContentID {
			errs = append(errs, fmt.Sprintf("unknown parameter %q", key))
		}
	}

	val, ok := raw[ParamContentID]
	if !ok || val == nil {
		return content.Request{}, append(errs, "content_id is required")
	}
	id, isStr := val.(string)
	if !isStr {
		return content.Request{}, append(errs, "content_id must be a string")
	}
	id = strings.TrimSpace(id)
	errs = append(errs, content.CheckID(id)...)

	if len(errs) > 0 {
		return content.Request{}, errs
	}
	return content.NewRequest(id), nil
}

// filters validates the filter map. Every value must be in the allow-list
// of its filter; unknown filter names are errors.
func (v *Validator) filters(val any) (map[string][]string, []string) {
	out := map[string][]string{}
	if val == nil {
		return out, nil
	}
	m, ok := val.(map[string]any)
	if !ok {
		return out, []string{"filters must be an object"}
	}

	var errs []string
	for _, name := range sortedKeys(m) {
		canonical, known := v.catalog.Resolve(name)
		if !known {
			errs = append(errs, fmt.Sprintf("invalid filter key: %s", name))
			continue
		}
		values, err := toStrings(m[name])
		if err != nil {
			errs = append(errs, fmt.Sprintf("filter %q: %v", name, err))
			continue
		}
		if len(values) == 0 {
			errs = append(errs, fmt.Sprintf("filter %q must have at least one value", name))
			continue
		}
		for _, value := range values {
			if !v.catalog.AllowedValue(name, value) {
				errs = append(errs, fmt.Sprintf("invalid value %q for filter %q. Must be one of: %s",
					value, name, strings.Join(v.catalog.Values(name), ", ")))
			}
		}
		for _, value := range values {
			if !slices.Contains(out[canonical], value) {
				out[canonical] = append(out[canonical], value)
			}
		}
	}
	return out, errs
}

// names validates a list of field or facet names against allowed.
func (v *Validator) names(val any, param, kind string, allowed func(string) bool) ([]string, []string) {
	if val == nil {
		return nil, nil
	}
	list, err := toStrings(val)
	if err != nil {
		return nil, []string{fmt.Sprintf("%s must be a list of strings", param)}
	}
	var errs []string
	for _, name := range list {
		if !allowed(name) {
			errs = append(errs, fmt.Sprintf("invalid %s: %s", kind, name))
		}
	}
	return list, errs
}

func (v *Validator) sortBy(val any) (map[string]string, []string) {
	if val == nil {
		return nil, nil
	}
	m, ok := val.(map[string]any)
	if !ok {
		return nil, []string{"sort_by must be an object of field to direction"}
	}
	out := make(map[string]string, len(m))
	var errs []string
	for _, field := range sortedKeys(m) {
		dir, isStr := m[field].(string)
		if !isStr {
			errs = append(errs, fmt.Sprintf("sort_by.%s must be a string", field))
			continue
		}
		dir = strings.ToLower(dir)
		if dir != search.SortAsc && dir != search.SortDesc {
			errs = append(errs, fmt.Sprintf("sort_by.%s must be %q or %q", field, search.SortAsc, search.SortDesc))
			continue
		}
		if field != search.DefaultSortField && !v.catalog.AllowedField(field) {
			errs = append(errs, fmt.Sprintf("invalid sort field: %s", field))
			continue
		}
		out[field] = dir
	}
	return out, errs
}

// toStrings accepts a single string or a list of strings.
func toStrings(val any) ([]string, error) {
	switch t := val.(type) {
	case string:
		return []string{t}, nil
	case []string:
		return append([]string(nil), t...), nil
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("values must be strings, got %T", e)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected string or list of strings, got %T", val)
	}
}

// toInt accepts the numeric shapes produced by JSON decoding, Go callers and
// string-typed tool arguments.
func toInt(val any) (int, error) {
	switch t := val.(type) {
	case int:
		return t, nil
	case int32:
		return int(t), nil
	case int64:
		return int(t), nil
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) || math.IsNaN(t) {
			return 0, fmt.Errorf("not an integer: %v", t)
		}
		// float64(math.MaxInt) rounds up to 2^63, which is already out of range.
		if t >= math.MaxInt || t < math.MinInt {
			return 0, fmt.Errorf("not an integer: %v out of range", t)
		}
		return int(t), nil
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, fmt.Errorf("not an integer: %w", err)
		}
		return int(n), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, fmt.Errorf("not an integer: %w", err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("not an integer: %T", val)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
