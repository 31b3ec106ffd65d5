// Package catalog holds the read-only allow-lists a Validator consults.
package catalog

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
)

// Catalog maps filter names to their allowed values and declares which
// fields and facets the backend may be asked for. It is never mutated after
// construction, so a single instance is shared by all validators.
type Catalog struct {
	filters map[string][]string
	aliases map[string]string
	fields  []string
	facets  []string
}

// New copies the given allow-lists into an immutable Catalog.
// aliases maps an alternative filter name to a key of filters.
func New(filters map[string][]string, aliases map[string]string, fields, facets []string) (*Catalog, error) {
	c := &Catalog{
		filters: make(map[string][]string, len(filters)),
		aliases: make(map[string]string, len(aliases)),
		fields:  slices.Clone(fields),
		facets:  slices.Clone(facets),
	}
	for name, values := range filters {
		if name == "" {
			return nil, fmt.Errorf("filter name is required")
		}
		c.filters[name] = slices.Clone(values)
	}
	for alias, target := range aliases {
		if _, ok := c.filters[target]; !ok {
			continue
		}
		if _, clash := c.filters[alias]; clash {
			return nil, fmt.Errorf("alias %q shadows a filter", alias)
		}
		c.aliases[alias] = target
	}
	return c, nil
}

// Resolve returns the canonical filter name for name, following aliases.
func (c *Catalog) Resolve(name string) (string, bool) {
	if _, ok := c.filters[name]; ok {
		return name, true
	}
	target, ok := c.aliases[name]
	return target, ok
}

// AllowedValue reports whether value is permitted for filter (or alias) name.
// Matching is exact and case-sensitive.
func (c *Catalog) AllowedValue(name, value string) bool {
	canonical, ok := c.Resolve(name)
	if !ok {
		return false
	}
	return slices.Contains(c.filters[canonical], value)
}

// Values returns a copy of the allow-list for filter (or alias) name.
func (c *Catalog) Values(name string) []string {
	canonical, ok := c.Resolve(name)
	if !ok {
		return nil
	}
	return slices.Clone(c.filters[canonical])
}

// FilterNames returns the canonical filter names, sorted.
func (c *Catalog) FilterNames() []string {
	names := make([]string, 0, len(c.filters))
	for name := range c.filters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AllowedField reports whether the backend may return field.
func (c *Catalog) AllowedField(field string) bool { return slices.Contains(c.fields, field) }

// AllowedFacet reports whether the backend may aggregate on facet.
func (c *Catalog) AllowedFacet(facet string) bool { return slices.Contains(c.facets, facet) }

// Fields returns a copy of the permitted output fields.
func (c *Catalog) Fields() []string { return slices.Clone(c.fields) }

// Facets returns a copy of the permitted facets.
func (c *Catalog) Facets() []string { return slices.Clone(c.facets) }

// WithFiltersJSON returns a catalog whose filter allow-lists come from doc,
// a JSON object of filter name to string array. Fields, facets and aliases
// are kept from c.
func (c *Catalog) WithFiltersJSON(doc []byte) (*Catalog, error) {
	var filters map[string][]string
	if err := json.Unmarshal(doc, &filters); err != nil {
		return nil, fmt.Errorf("parse filters document: %w", err)
	}
	if len(filters) == 0 {
		return nil, fmt.Errorf("filters document is empty")
	}
	return New(filters, c.aliases, c.fields, c.facets)
}
