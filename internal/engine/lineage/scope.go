package lineage

import (
	"strings"

	"lineage/internal/engine/parser"
)

const (
	// GlobalScope is the scope path of nodes with no named scope ancestor.
	GlobalScope    = "global"
	ScopeSeparator = "::"
)

// ScopeResolver derives a node's scope path from its ancestors.
type ScopeResolver struct {
	kinds     kindSet
	nameField string
}

func NewScopeResolver(p Profile) *ScopeResolver {
	return &ScopeResolver{
		kinds:     newKindSet(p.ScopeKinds),
		nameField: p.ScopeNameField,
	}
}

// Resolve walks from node's parent to the root and joins the names of
// scope-introducing ancestors outermost first. Anonymous scopes contribute
// nothing, so two unnamed nested functions share their parent's path.
func (r *ScopeResolver) Resolve(node parser.Node) string {
	if node == nil {
		return GlobalScope
	}

	var parts []string
	for current := node.Parent(); current != nil; current = current.Parent() {
		if !r.kinds.has(current.Kind()) {
			continue
		}
		nameNode := current.ChildByFieldName(r.nameField)
		if nameNode == nil {
			continue
		}
		name, ok := nameNode.Text()
		if !ok {
			continue
		}
		parts = append(parts, name)
	}

	if len(parts) == 0 {
		return GlobalScope
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ScopeSeparator)
}

// ParentScope returns the enclosing scope path: "a::b" -> "a", "a" ->
// "global". The global scope has no parent.
func ParentScope(scope string) (string, bool) {
	if scope == GlobalScope || scope == "" {
		return "", false
	}
	idx := strings.LastIndex(scope, ScopeSeparator)
	if idx < 0 {
		return GlobalScope, true
	}
	return scope[:idx], true
}

// ScopeChain lists scope followed by each of its ancestors, ending at
// "global".
func ScopeChain(scope string) []string {
	chain := []string{scope}
	for {
		parent, ok := ParentScope(scope)
		if !ok {
			return chain
		}
		chain = append(chain, parent)
		scope = parent
	}
}
