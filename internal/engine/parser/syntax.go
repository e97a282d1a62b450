package parser

import (
	"unicode/utf8"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Point is a zero-based row/column position inside a source file.
type Point struct {
	Row    uint
	Column uint
}

// Node is the read-only view of a syntax tree node that analysis passes
// consume. Absent children and the root's parent are reported as nil.
type Node interface {
	Kind() string
	StartPosition() Point
	EndPosition() Point
	StartByte() uint
	EndByte() uint
	ChildByFieldName(name string) Node
	// ChildrenByFieldName returns every child tagged with a repeated field,
	// such as each name in `var a, b = 1, 2`.
	ChildrenByFieldName(name string) []Node
	Children() []Node
	// Text returns the node's source slice. ok is false when the span falls
	// outside the source or is not valid UTF-8.
	Text() (text string, ok bool)
	Parent() Node
}

// Tree is a parsed source file. Callers must Close it to release the
// underlying tree-sitter allocation.
type Tree struct {
	Path     string
	Language string
	Source   []byte

	tree *sitter.Tree
}

func (t *Tree) Root() Node {
	if t == nil || t.tree == nil {
		return nil
	}
	return wrapNode(t.tree.RootNode(), t.Source)
}

func (t *Tree) Close() {
	if t == nil || t.tree == nil {
		return
	}
	t.tree.Close()
	t.tree = nil
}

type sitterNode struct {
	node   *sitter.Node
	source []byte
}

// wrapNode returns an untyped nil for a nil node so callers can compare the
// interface against nil.
func wrapNode(n *sitter.Node, source []byte) Node {
	if n == nil {
		return nil
	}
	return &sitterNode{node: n, source: source}
}

func (n *sitterNode) Kind() string { return n.node.Kind() }

func (n *sitterNode) StartPosition() Point {
	p := n.node.StartPosition()
	return Point{Row: p.Row, Column: p.Column}
}

func (n *sitterNode) EndPosition() Point {
	p := n.node.EndPosition()
	return Point{Row: p.Row, Column: p.Column}
}

func (n *sitterNode) StartByte() uint { return n.node.StartByte() }

func (n *sitterNode) EndByte() uint { return n.node.EndByte() }

func (n *sitterNode) ChildByFieldName(name string) Node {
	return wrapNode(n.node.ChildByFieldName(name), n.source)
}

func (n *sitterNode) ChildrenByFieldName(name string) []Node {
	cursor := n.node.Walk()
	defer cursor.Close()

	children := n.node.ChildrenByFieldName(name, cursor)
	out := make([]Node, 0, len(children))
	for i := range children {
		out = append(out, &sitterNode{node: &children[i], source: n.source})
	}
	return out
}

func (n *sitterNode) Children() []Node {
	count := n.node.ChildCount()
	out := make([]Node, 0, count)
	for i := uint(0); i < count; i++ {
		if child := n.node.Child(i); child != nil {
			out = append(out, &sitterNode{node: child, source: n.source})
		}
	}
	return out
}

func (n *sitterNode) Text() (string, bool) {
	start, end := n.node.StartByte(), n.node.EndByte()
	if start > end || end > uint(len(n.source)) {
		return "", false
	}
	raw := n.source[start:end]
	if !utf8.Valid(raw) {
		return "", false
	}
	return string(raw), true
}

func (n *sitterNode) Parent() Node {
	return wrapNode(n.node.Parent(), n.source)
}
