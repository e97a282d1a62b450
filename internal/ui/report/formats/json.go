package formats

import (
	"encoding/json"
	"time"
)

type jsonReport struct {
	RunID        string            `json:"run_id"`
	File         string            `json:"file"`
	Language     string            `json:"language"`
	Policy       string            `json:"policy"`
	AnalyzedAt   time.Time         `json:"analyzed_at"`
	Declarations []jsonDeclaration `json:"declarations"`
}

type jsonDeclaration struct {
	Name       string          `json:"name"`
	Scope      string          `json:"scope"`
	Location   jsonLocation    `json:"location"`
	References []jsonReference `json:"references"`
}

type jsonReference struct {
	Scope    string       `json:"scope"`
	Location jsonLocation `json:"location"`
}

type jsonLocation struct {
	Line   uint `json:"line"`
	Column uint `json:"column"`
	Length uint `json:"length"`
}

type JSONGenerator struct {
	report *Report
}

func NewJSONGenerator(r *Report) *JSONGenerator {
	return &JSONGenerator{report: r}
}

func (j *JSONGenerator) Generate() (string, error) {
	doc := jsonReport{
		RunID:        j.report.RunID,
		File:         j.report.Path,
		Language:     j.report.Language,
		Policy:       string(j.report.Policy),
		AnalyzedAt:   j.report.AnalyzedAt,
		Declarations: make([]jsonDeclaration, 0, len(j.report.Declarations)),
	}
	for _, decl := range j.report.Declarations {
		out := jsonDeclaration{
			Name:  decl.Name,
			Scope: decl.Scope,
			Location: jsonLocation{
				Line:   decl.Location.Line,
				Column: decl.Location.Column,
				Length: decl.Location.Length,
			},
			References: make([]jsonReference, 0, len(decl.References)),
		}
		for _, ref := range decl.References {
			out.References = append(out.References, jsonReference{
				Scope: ref.Context,
				Location: jsonLocation{
					Line:   ref.Location.Line,
					Column: ref.Location.Column,
					Length: ref.Location.Length,
				},
			})
		}
		doc.Declarations = append(doc.Declarations, out)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}
