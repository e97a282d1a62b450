package formats

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	scopeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type TextGenerator struct {
	report *Report
	color  bool
}

func NewTextGenerator(r *Report, color bool) *TextGenerator {
	return &TextGenerator{report: r, color: color}
}

func (t *TextGenerator) Generate() (string, error) {
	var b strings.Builder

	b.WriteString(t.style(headingStyle, "Variable Declarations and References:"))
	b.WriteString("\n===================================\n")
	if t.report.Path != "" {
		b.WriteString(t.style(mutedStyle, fmt.Sprintf("File: %s (%s)", t.report.Path, t.report.Language)))
		b.WriteString("\n")
	}

	for _, decl := range t.report.Declarations {
		b.WriteString(fmt.Sprintf("\nVariable: %s\n", t.style(nameStyle, decl.Name)))
		b.WriteString(fmt.Sprintf(" Declared at line %d, column %d\n", decl.Location.Line, decl.Location.Column))
		b.WriteString(fmt.Sprintf(" Scope: %s\n", t.style(scopeStyle, decl.Scope)))
		if len(decl.References) == 0 {
			b.WriteString(" No references found\n")
			continue
		}
		b.WriteString(" References:\n")
		for _, ref := range decl.References {
			b.WriteString(fmt.Sprintf(" - At line %d, column %d (in scope: %s)\n",
				ref.Location.Line, ref.Location.Column, t.style(scopeStyle, ref.Context)))
		}
	}

	return b.String(), nil
}

func (t *TextGenerator) style(s lipgloss.Style, text string) string {
	if !t.color {
		return text
	}
	return s.Render(text)
}
