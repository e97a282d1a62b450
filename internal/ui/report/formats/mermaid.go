package formats

import (
	"fmt"
	"strings"

	"lineage/internal/engine/lineage"
)

type MermaidGenerator struct {
	graph *lineage.Graph
}

func NewMermaidGenerator(g *lineage.Graph) *MermaidGenerator {
	return &MermaidGenerator{graph: g}
}

func (m *MermaidGenerator) Generate() (string, error) {
	var b strings.Builder
	b.WriteString("%%{init: {'theme': 'base', 'themeVariables': {'textColor': '#000000', 'primaryTextColor': '#000000', 'lineColor': '#333333'}, 'flowchart': {'curve': 'basis'}}}%%\n")
	b.WriteString("flowchart LR\n")

	ids := graphIDs(m.graph)
	byKind := map[lineage.NodeKind][]string{}
	for _, n := range m.graph.Nodes {
		id := ids[n.ID]
		label := escapeLabel(nodeLabel(n))
		switch n.Kind {
		case lineage.NodeScope:
			b.WriteString(fmt.Sprintf("  %s[[\"%s\"]]\n", id, label))
		case lineage.NodeDeclaration:
			b.WriteString(fmt.Sprintf("  %s[\"%s\"]\n", id, label))
		default:
			b.WriteString(fmt.Sprintf("  %s([\"%s\"])\n", id, label))
		}
		byKind[n.Kind] = append(byKind[n.Kind], id)
	}

	b.WriteString("\n")
	for _, e := range m.graph.Edges {
		b.WriteString(fmt.Sprintf("  %s %s %s\n", ids[e.From], mermaidArrow(e.Kind), ids[e.To]))
	}

	b.WriteString("\n")
	b.WriteString("  classDef scopeNode fill:#f7fbff,stroke:#4d6480,stroke-width:1px,color:#000000;\n")
	b.WriteString("  classDef declNode fill:#ecfdf5,stroke:#10b981,stroke-width:1.5px,color:#000000;\n")
	b.WriteString("  classDef refNode fill:#f8fafc,stroke:#94a3b8,stroke-width:1px,color:#000000;\n")
	for _, group := range []struct {
		kind  lineage.NodeKind
		class string
	}{
		{lineage.NodeScope, "scopeNode"},
		{lineage.NodeDeclaration, "declNode"},
		{lineage.NodeReference, "refNode"},
	} {
		if len(byKind[group.kind]) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("  class %s %s;\n", strings.Join(byKind[group.kind], ","), group.class))
	}

	return b.String(), nil
}

func mermaidArrow(kind lineage.EdgeKind) string {
	switch kind {
	case lineage.EdgeContains:
		return "-.->"
	case lineage.EdgeDeclares:
		return "==>"
	case lineage.EdgeReferences:
		return "-->"
	default:
		return "-.-"
	}
}
