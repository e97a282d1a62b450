package lineage

import (
	"fmt"
)

type NodeKind string

const (
	NodeScope       NodeKind = "scope"
	NodeDeclaration NodeKind = "declaration"
	NodeReference   NodeKind = "reference"
)

// EdgeKind labels containment, not data or control flow.
type EdgeKind string

const (
	EdgeContains   EdgeKind = "contains"   // scope -> nested scope
	EdgeDeclares   EdgeKind = "declares"   // scope -> declaration
	EdgeReferences EdgeKind = "references" // declaration -> reference
	EdgeOccursIn   EdgeKind = "occurs_in"  // scope -> reference
)

type GraphNode struct {
	ID       string
	Kind     NodeKind
	Label    string
	Scope    string
	Location Location
}

type GraphEdge struct {
	From string
	To   string
	Kind EdgeKind
}

// Graph is the node-and-edge rendition of a set of declarations.
type Graph struct {
	Nodes []GraphNode
	Edges []GraphEdge

	index map[string]int
	edges map[GraphEdge]bool
}

func newGraph() *Graph {
	return &Graph{
		index: make(map[string]int),
		edges: make(map[GraphEdge]bool),
	}
}

// BuildGraph derives the graph from decls; node and edge order follow decls.
func BuildGraph(decls []Declaration) *Graph {
	g := newGraph()
	g.ensureScope(GlobalScope)

	for _, decl := range decls {
		scopeID := g.ensureScope(decl.Scope)
		declID := DeclarationID(decl)
		g.addNode(GraphNode{
			ID:       declID,
			Kind:     NodeDeclaration,
			Label:    decl.Name,
			Scope:    decl.Scope,
			Location: decl.Location,
		})
		g.addEdge(scopeID, declID, EdgeDeclares)

		for i, ref := range decl.References {
			refID := fmt.Sprintf("%s#%d", declID, i+1)
			g.addNode(GraphNode{
				ID:       refID,
				Kind:     NodeReference,
				Label:    decl.Name,
				Scope:    ref.Context,
				Location: ref.Location,
			})
			g.addEdge(declID, refID, EdgeReferences)
			g.addEdge(g.ensureScope(ref.Context), refID, EdgeOccursIn)
		}
	}
	return g
}

// DeclarationID is the stable graph id of a declaration.
func DeclarationID(decl Declaration) string {
	return fmt.Sprintf("decl:%s@%d:%d", decl.Name, decl.Location.Line, decl.Location.Column)
}

func ScopeID(scope string) string {
	return "scope:" + scope
}

func (g *Graph) Node(id string) (GraphNode, bool) {
	idx, ok := g.index[id]
	if !ok {
		return GraphNode{}, false
	}
	return g.Nodes[idx], true
}

func (g *Graph) EdgesFrom(id string) []GraphEdge {
	var out []GraphEdge
	for _, e := range g.Edges {
		if e.From == id {
			out = append(out, e)
		}
	}
	return out
}

func (g *Graph) NodesOfKind(kind NodeKind) []GraphNode {
	var out []GraphNode
	for _, n := range g.Nodes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// ensureScope adds scope and its ancestors, linking each to its parent.
func (g *Graph) ensureScope(scope string) string {
	if scope == "" {
		scope = GlobalScope
	}
	id := ScopeID(scope)
	if _, ok := g.index[id]; ok {
		return id
	}
	label := scope
	if parent, ok := ParentScope(scope); ok {
		parentID := g.ensureScope(parent)
		if parent != GlobalScope {
			label = scope[len(parent)+len(ScopeSeparator):]
		}
		g.addNode(GraphNode{ID: id, Kind: NodeScope, Label: label, Scope: scope})
		g.addEdge(parentID, id, EdgeContains)
		return id
	}
	g.addNode(GraphNode{ID: id, Kind: NodeScope, Label: label, Scope: scope})
	return id
}

func (g *Graph) addNode(n GraphNode) {
	if _, ok := g.index[n.ID]; ok {
		return
	}
	g.index[n.ID] = len(g.Nodes)
	g.Nodes = append(g.Nodes, n)
}

func (g *Graph) addEdge(from, to string, kind EdgeKind) {
	e := GraphEdge{From: from, To: to, Kind: kind}
	if g.edges[e] {
		return
	}
	g.edges[e] = true
	g.Edges = append(g.Edges, e)
}
