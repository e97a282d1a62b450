package lineage

import (
	"lineage/internal/engine/parser"
)

// WalkStats counts what a walk saw and what it silently skipped.
type WalkStats struct {
	NodesVisited       int
	Declarations       int
	Redeclarations     int
	References         int
	DroppedOccurrences int
	SkippedDeclarators int
}

// nodeHandler processes one node; children are always visited afterwards.
type nodeHandler func(node parser.Node)

// Walker visits every node of a tree once, in pre-order, and records
// declarations and occurrences into its Registry.
type Walker struct {
	profile  Profile
	scopes   *ScopeResolver
	registry *Registry
	handlers map[string]nodeHandler
	idents   kindSet
	lists    kindSet
	stats    WalkStats
}

func NewWalker(p Profile, registry *Registry) *Walker {
	w := &Walker{
		profile:  p,
		scopes:   NewScopeResolver(p),
		registry: registry,
		handlers: make(map[string]nodeHandler),
		idents:   newKindSet(p.IdentifierKinds),
		lists:    newKindSet(p.NameListKinds),
	}
	for kind := range newKindSet(p.DeclaratorKinds) {
		w.handlers[kind] = w.declare
	}
	for kind := range newKindSet(p.IdentifierKinds) {
		w.handlers[kind] = w.occurrence
	}
	return w
}

// Walk traverses root and returns the accumulated statistics.
func (w *Walker) Walk(root parser.Node) WalkStats {
	w.walk(root)
	return w.stats
}

func (w *Walker) walk(node parser.Node) {
	if node == nil {
		return
	}
	w.stats.NodesVisited++
	if handler, ok := w.handlers[node.Kind()]; ok {
		handler(node)
	}
	for _, child := range node.Children() {
		w.walk(child)
	}
}

// declare records every name bound by a declarator. Repeated name fields and
// name lists bind several names in source order.
func (w *Walker) declare(node parser.Node) {
	nameNodes := node.ChildrenByFieldName(w.profile.NameField(node.Kind()))
	if len(nameNodes) == 0 {
		w.stats.SkippedDeclarators++
		return
	}

	scope := w.scopes.Resolve(node)
	for _, nameNode := range nameNodes {
		if !w.lists.has(nameNode.Kind()) {
			w.bind(nameNode, scope)
			continue
		}
		for _, child := range nameNode.Children() {
			if w.idents.has(child.Kind()) {
				w.bind(child, scope)
			}
		}
	}
}

func (w *Walker) bind(nameNode parser.Node, scope string) {
	name, ok := nameNode.Text()
	if !ok {
		w.stats.SkippedDeclarators++
		return
	}
	if w.registry.Declare(name, locationOf(nameNode), scope) {
		w.stats.Redeclarations++
	}
	w.stats.Declarations++
}

// occurrence binds an identifier to an already recorded declaration.
// Occurrences seen before their declarator are dropped.
func (w *Walker) occurrence(node parser.Node) {
	name, ok := node.Text()
	if !ok || !w.registry.Known(name) {
		w.stats.DroppedOccurrences++
		return
	}
	scope := w.scopes.Resolve(node)
	if !w.registry.Reference(name, locationOf(node), scope) {
		w.stats.DroppedOccurrences++
		return
	}
	w.stats.References++
}
