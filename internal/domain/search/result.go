package search

import "encoding/json"

// Item is one backend result object. It always carries "identifier" and
// "name"; every other key is whatever the backend returned.
type Item map[string]any

// Identifier returns the item's content identifier.
func (i Item) Identifier() string {
	s, _ := i["identifier"].(string)
	return s
}

// Name returns the item's display name.
func (i Item) Name() string {
	s, _ := i["name"].(string)
	return s
}

// Result is the normalized search payload.
type Result struct {
	Results []Item          `json:"results"`
	Total   int             `json:"total"`
	Facets  json.RawMessage `json:"facets,omitempty"`
}
