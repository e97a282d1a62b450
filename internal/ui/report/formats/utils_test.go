package formats

import (
	"testing"

	"lineage/internal/engine/lineage"
)

func TestNodeLabel(t *testing.T) {
	t.Parallel()

	decl := lineage.GraphNode{Kind: lineage.NodeDeclaration, Label: "x", Location: lineage.Location{Line: 3, Column: 7}}
	if got, want := nodeLabel(decl), "x\\n(declared 3:7)"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	ref := lineage.GraphNode{Kind: lineage.NodeReference, Label: "x", Location: lineage.Location{Line: 4, Column: 1}}
	if got, want := nodeLabel(ref), "x\\n(4:1)"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	scope := lineage.GraphNode{Kind: lineage.NodeScope, Label: "inner"}
	if got := nodeLabel(scope); got != "inner" {
		t.Fatalf("expected inner, got %q", got)
	}
}

func TestSanitizeID(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Empty", input: "", expected: "n"},
		{name: "Alpha", input: "foo", expected: "foo"},
		{name: "DigitsFirst", input: "1var", expected: "n_1var"},
		{name: "Scope", input: "scope:outer::inner", expected: "scope_outer__inner"},
		{name: "Declaration", input: "decl:x@3:7", expected: "decl_x_3_7"},
		{name: "OnlySymbols", input: "!!", expected: "__"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := sanitizeID(tc.input); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestMakeIDs(t *testing.T) {
	t.Parallel()

	names := []string{"a-b", "a_b", "c"}
	got := makeIDs(names)
	if got["a-b"] != "a_b" {
		t.Fatalf("expected a-b to map to a_b, got %q", got["a-b"])
	}
	if got["a_b"] != "a_b_2" {
		t.Fatalf("expected a_b to map to a_b_2, got %q", got["a_b"])
	}
	if got["c"] != "c" {
		t.Fatalf("expected c to map to c, got %q", got["c"])
	}
}

func TestEscapeLabel(t *testing.T) {
	t.Parallel()

	got := escapeLabel("{ a,\n  b = \"x\" }")
	if want := "{ a, b = 'x' }"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
