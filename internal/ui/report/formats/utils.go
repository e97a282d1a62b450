package formats

import (
	"fmt"
	"strings"
	"unicode"

	"lineage/internal/engine/lineage"
)

func nodeLabel(n lineage.GraphNode) string {
	switch n.Kind {
	case lineage.NodeDeclaration:
		return fmt.Sprintf("%s\\n(declared %s)", n.Label, n.Location)
	case lineage.NodeReference:
		return fmt.Sprintf("%s\\n(%s)", n.Label, n.Location)
	default:
		return n.Label
	}
}

func sanitizeID(name string) string {
	if name == "" {
		return "n"
	}
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteRune('_')
	}
	out := b.String()
	first := rune(out[0])
	if unicode.IsDigit(first) {
		return "n_" + out
	}
	return out
}

func makeIDs(names []string) map[string]string {
	ids := make(map[string]string, len(names))
	used := make(map[string]int, len(names))
	for _, name := range names {
		base := sanitizeID(name)
		idx := used[base]
		used[base] = idx + 1
		if idx == 0 {
			ids[name] = base
			continue
		}
		ids[name] = fmt.Sprintf("%s_%d", base, idx+1)
	}
	return ids
}

func graphIDs(g *lineage.Graph) map[string]string {
	names := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		names = append(names, n.ID)
	}
	return makeIDs(names)
}

func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.Join(strings.Fields(s), " ")
}
