package formats

import (
	"fmt"
	"strings"
)

type TSVGenerator struct {
	report *Report
}

func NewTSVGenerator(r *Report) *TSVGenerator {
	return &TSVGenerator{report: r}
}

// Generate emits one declaration row per variable followed by its reference
// rows.
func (t *TSVGenerator) Generate() (string, error) {
	var buf strings.Builder

	buf.WriteString("Type\tName\tScope\tLine\tColumn\tLength\n")
	for _, decl := range t.report.Declarations {
		buf.WriteString(fmt.Sprintf("declaration\t%s\t%s\t%d\t%d\t%d\n",
			tsvField(decl.Name),
			tsvField(decl.Scope),
			decl.Location.Line,
			decl.Location.Column,
			decl.Location.Length,
		))
		for _, ref := range decl.References {
			buf.WriteString(fmt.Sprintf("reference\t%s\t%s\t%d\t%d\t%d\n",
				tsvField(decl.Name),
				tsvField(ref.Context),
				ref.Location.Line,
				ref.Location.Column,
				ref.Location.Length,
			))
		}
	}

	return buf.String(), nil
}

// tsvField flattens whitespace that would break the row layout; destructuring
// patterns can span lines.
func tsvField(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
