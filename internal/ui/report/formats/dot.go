package formats

import (
	"fmt"
	"strings"

	"lineage/internal/engine/lineage"
)

type DOTGenerator struct {
	graph *lineage.Graph
}

func NewDOTGenerator(g *lineage.Graph) *DOTGenerator {
	return &DOTGenerator{graph: g}
}

func (d *DOTGenerator) Generate() (string, error) {
	var buf strings.Builder

	buf.WriteString("digraph lineage {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=rounded, fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=8, penwidth=1.2];\n")
	buf.WriteString("  ranksep=1.2;\n")
	buf.WriteString("  nodesep=0.5;\n")
	buf.WriteString("  overlap=false;\n\n")

	ids := graphIDs(d.graph)

	buf.WriteString("  // Scopes\n")
	for _, n := range d.graph.NodesOfKind(lineage.NodeScope) {
		buf.WriteString(fmt.Sprintf("  %s [label=\"%s\", shape=folder, style=filled, fillcolor=\"whitesmoke\", color=\"darkslategrey\"];\n",
			ids[n.ID], escapeLabel(nodeLabel(n))))
	}
	buf.WriteString("\n  // Declarations\n")
	for _, n := range d.graph.NodesOfKind(lineage.NodeDeclaration) {
		buf.WriteString(fmt.Sprintf("  %s [label=\"%s\", style=\"rounded,filled\", fillcolor=\"honeydew\", color=\"forestgreen\"];\n",
			ids[n.ID], escapeLabel(nodeLabel(n))))
	}
	buf.WriteString("\n  // References\n")
	for _, n := range d.graph.NodesOfKind(lineage.NodeReference) {
		buf.WriteString(fmt.Sprintf("  %s [label=\"%s\", shape=ellipse, color=\"grey\"];\n",
			ids[n.ID], escapeLabel(nodeLabel(n))))
	}
	buf.WriteString("\n")

	for _, e := range d.graph.Edges {
		buf.WriteString(fmt.Sprintf("  %s -> %s [%s];\n", ids[e.From], ids[e.To], dotEdgeStyle(e.Kind)))
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func dotEdgeStyle(kind lineage.EdgeKind) string {
	switch kind {
	case lineage.EdgeContains:
		return "color=\"darkslategrey\", style=dashed"
	case lineage.EdgeDeclares:
		return "color=\"forestgreen\", penwidth=1.8, label=\"declares\""
	case lineage.EdgeReferences:
		return "color=\"steelblue\""
	default:
		return "color=\"grey\", style=dotted, arrowhead=none"
	}
}
