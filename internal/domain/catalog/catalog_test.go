package catalog

import (
	"slices"
	"testing"
)

func TestNew_Errors(t *testing.T) {
	if _, err := New(map[string][]string{"": {"x"}}, nil, nil, nil); err == nil {
		t.Error("expected error for empty filter name")
	}
	_, err := New(map[string][]string{"a": {"x"}, "b": {"y"}}, map[string]string{"a": "b"}, nil, nil)
	if err == nil {
		t.Error("expected error for alias shadowing a filter")
	}
}

func TestNew_DropsDanglingAliases(t *testing.T) {
	c, err := New(map[string][]string{"a": {"x"}}, map[string]string{"z": "missing"}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Resolve("z"); ok {
		t.Error("alias to a missing filter should be dropped")
	}
}

func TestDefault_Lookups(t *testing.T) {
	c := Default()

	tests := []struct {
		name, filter, value string
		want                bool
	}{
		{"canonical", FilterBoards, "CBSE", true},
		{"alias", "board", "CBSE", true},
		{"case sensitive", FilterBoards, "cbse", false},
		{"unknown value", FilterBoards, "ICSE", false},
		{"unknown filter", "colour", "red", false},
		{"generated grades", FilterGradeLevels, "Class 12", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.AllowedValue(tc.filter, tc.value); got != tc.want {
				t.Errorf("AllowedValue(%q, %q) = %v, want %v", tc.filter, tc.value, got, tc.want)
			}
		})
	}

	if got, ok := c.Resolve("gradeLevel"); !ok || got != FilterGradeLevels {
		t.Errorf("Resolve(gradeLevel) = %q, %v", got, ok)
	}
	if !c.AllowedField("identifier") || c.AllowedField("password") {
		t.Error("unexpected field allow-list")
	}
	if !c.AllowedFacet("se_boards") || c.AllowedFacet("name") {
		t.Error("unexpected facet allow-list")
	}
	if names := c.FilterNames(); !slices.IsSorted(names) || len(names) != 7 {
		t.Errorf("FilterNames() = %v", names)
	}
}

func TestSandbox_SubjectIsRealFilter(t *testing.T) {
	c := Sandbox()
	if !c.AllowedValue("subject", "english") {
		t.Error("sandbox subject filter should accept english")
	}
	if c.AllowedValue(FilterGradeLevels, "Class 5") {
		t.Error("sandbox grades stop at Class 4")
	}
}

func TestCatalog_ReturnsCopies(t *testing.T) {
	c := Default()
	c.Values(FilterBoards)[0] = "mutated"
	c.Fields()[0] = "mutated"

	if !c.AllowedValue(FilterBoards, "CBSE") || !c.AllowedField("name") {
		t.Error("catalog was mutated through a returned slice")
	}
}

func TestWithFiltersJSON(t *testing.T) {
	base := Default()

	override, err := base.WithFiltersJSON([]byte(`{"se_boards":["ICSE"],"se_mediums":["Tamil"]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !override.AllowedValue("board", "ICSE") || override.AllowedValue("board", "CBSE") {
		t.Error("override should replace allow-lists and keep aliases")
	}
	if !override.AllowedField("identifier") {
		t.Error("override should keep fields")
	}
	if !base.AllowedValue(FilterBoards, "CBSE") {
		t.Error("base catalog must not change")
	}

	for _, doc := range []string{`not json`, `{}`, `{"se_boards":"CBSE"}`} {
		if _, err := base.WithFiltersJSON([]byte(doc)); err == nil {
			t.Errorf("expected error for %s", doc)
		}
	}
}
