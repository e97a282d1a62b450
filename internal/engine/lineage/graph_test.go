package lineage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGraph_EmptyHasGlobalScope(t *testing.T) {
	g := BuildGraph(nil)
	require.Len(t, g.Nodes, 1)
	assert.Equal(t, "scope:global", g.Nodes[0].ID)
	assert.Empty(t, g.Edges)
}

func TestBuildGraph_NestedScopesAndReferences(t *testing.T) {
	decls := []Declaration{
		{
			Name:     "outerVar",
			Location: Location{Line: 3, Column: 7, Length: 8},
			Scope:    "outer",
			References: []Reference{
				{Location: Location{Line: 3, Column: 7, Length: 8}, Context: "outer"},
				{Location: Location{Line: 5, Column: 22, Length: 8}, Context: "outer::inner"},
			},
		},
	}
	g := BuildGraph(decls)

	declID := "decl:outerVar@3:7"
	decl, ok := g.Node(declID)
	require.True(t, ok)
	assert.Equal(t, NodeDeclaration, decl.Kind)
	assert.Equal(t, "outerVar", decl.Label)

	inner, ok := g.Node("scope:outer::inner")
	require.True(t, ok)
	assert.Equal(t, "inner", inner.Label)

	assert.Contains(t, g.Edges, GraphEdge{From: "scope:global", To: "scope:outer", Kind: EdgeContains})
	assert.Contains(t, g.Edges, GraphEdge{From: "scope:outer", To: "scope:outer::inner", Kind: EdgeContains})
	assert.Contains(t, g.Edges, GraphEdge{From: "scope:outer", To: declID, Kind: EdgeDeclares})
	assert.Contains(t, g.Edges, GraphEdge{From: "scope:outer::inner", To: declID + "#2", Kind: EdgeOccursIn})

	refs := g.EdgesFrom(declID)
	require.Len(t, refs, 2)
	assert.Equal(t, declID+"#1", refs[0].To)
	assert.Len(t, g.NodesOfKind(NodeReference), 2)
	assert.Len(t, g.NodesOfKind(NodeScope), 3)
}

func TestBuildGraph_DeduplicatesScopes(t *testing.T) {
	decls := []Declaration{
		{Name: "a", Location: Location{Line: 1, Column: 1}, Scope: "f"},
		{Name: "b", Location: Location{Line: 2, Column: 1}, Scope: "f"},
	}
	g := BuildGraph(decls)

	assert.Len(t, g.NodesOfKind(NodeScope), 2)
	contains := 0
	for _, e := range g.Edges {
		if e.Kind == EdgeContains {
			contains++
		}
	}
	assert.Equal(t, 1, contains)
}

func TestResult_GraphMatchesDeclarations(t *testing.T) {
	a := newTestAnalyzer(t, Options{})
	res := analyzeSource(t, a, "scenario.js", scenarioSource)

	g := res.Graph()
	assert.Len(t, g.NodesOfKind(NodeDeclaration), len(res.Declarations()))
	assert.Len(t, g.NodesOfKind(NodeReference), res.ReferenceCount())
	_, ok := g.Node("scope:outer::inner")
	assert.True(t, ok)
}
