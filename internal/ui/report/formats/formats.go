package formats

import (
	"fmt"
	"strings"
)

const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatTSV     = "tsv"
	FormatDOT     = "dot"
	FormatMermaid = "mermaid"
)

// Render produces r in the named format. Color only affects text output.
func Render(format string, r *Report, color bool) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		return NewTextGenerator(r, color).Generate()
	case FormatJSON:
		return NewJSONGenerator(r).Generate()
	case FormatTSV:
		return NewTSVGenerator(r).Generate()
	case FormatDOT:
		return NewDOTGenerator(r.Graph()).Generate()
	case FormatMermaid:
		return NewMermaidGenerator(r.Graph()).Generate()
	default:
		return "", fmt.Errorf("unsupported format %q", format)
	}
}

// RenderLineage prints the lineage lines for one variable, one per line.
func RenderLineage(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
