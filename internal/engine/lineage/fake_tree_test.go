package lineage

import (
	"lineage/internal/engine/parser"
)

// fakeNode is an in-memory parser.Node used to drive the walker and the
// scope resolver without a grammar.
type fakeNode struct {
	kind     string
	text     string
	noText   bool
	row, col uint
	start    uint
	fields   map[string][]*fakeNode
	children []*fakeNode
	parent   *fakeNode

	fieldChildren int
}

func node(kind string, children ...*fakeNode) *fakeNode {
	n := &fakeNode{kind: kind, fields: map[string][]*fakeNode{}}
	for _, c := range children {
		c.parent = n
		n.children = append(n.children, c)
	}
	return n
}

func leaf(kind, text string, row, col uint) *fakeNode {
	n := node(kind)
	n.text = text
	n.row = row
	n.col = col
	n.start = row*100 + col
	return n
}

func ident(text string, row, col uint) *fakeNode {
	return leaf("identifier", text, row, col)
}

// field registers child under name, inserting it after the children already
// registered as fields when it is not a child yet. Repeating a name builds a
// multi-valued field.
func (n *fakeNode) field(name string, child *fakeNode) *fakeNode {
	n.fields[name] = append(n.fields[name], child)
	if child.parent != n {
		child.parent = n
		at := n.fieldChildren
		n.children = append(n.children[:at], append([]*fakeNode{child}, n.children[at:]...)...)
		n.fieldChildren++
	}
	return n
}

func (n *fakeNode) unreadable() *fakeNode {
	n.noText = true
	return n
}

func (n *fakeNode) Kind() string { return n.kind }

func (n *fakeNode) StartPosition() parser.Point { return parser.Point{Row: n.row, Column: n.col} }

func (n *fakeNode) EndPosition() parser.Point {
	return parser.Point{Row: n.row, Column: n.col + uint(len(n.text))}
}

func (n *fakeNode) StartByte() uint { return n.start }

func (n *fakeNode) EndByte() uint { return n.start + uint(len(n.text)) }

func (n *fakeNode) ChildByFieldName(name string) parser.Node {
	if cs := n.fields[name]; len(cs) > 0 {
		return cs[0]
	}
	return nil
}

func (n *fakeNode) ChildrenByFieldName(name string) []parser.Node {
	out := make([]parser.Node, 0, len(n.fields[name]))
	for _, c := range n.fields[name] {
		out = append(out, c)
	}
	return out
}

func (n *fakeNode) Children() []parser.Node {
	out := make([]parser.Node, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, c)
	}
	return out
}

func (n *fakeNode) Text() (string, bool) {
	if n.noText {
		return "", false
	}
	return n.text, true
}

func (n *fakeNode) Parent() parser.Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

// declarator builds `variable_declarator name=<ident>`.
func declarator(name string, row, col uint) *fakeNode {
	return node("variable_declarator").field("name", ident(name, row, col))
}

// function builds a named function_declaration wrapping body.
func function(name string, row uint, body ...*fakeNode) *fakeNode {
	return node("function_declaration", node("statement_block", body...)).
		field("name", ident(name, row, 9))
}
