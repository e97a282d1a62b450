package formats

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"lineage/internal/engine/lineage"
	"lineage/internal/engine/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *Report {
	return &Report{
		RunID:      "run-1",
		Path:       "sample.js",
		Language:   "javascript",
		Policy:     lineage.PolicyLastWrite,
		AnalyzedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Declarations: []lineage.Declaration{
			{
				Name:     "globalVar",
				Scope:    "global",
				Location: lineage.Location{Line: 1, Column: 7, Length: 9},
				References: []lineage.Reference{
					{Location: lineage.Location{Line: 1, Column: 7, Length: 9}, Context: "global"},
					{Location: lineage.Location{Line: 3, Column: 18, Length: 9}, Context: "outer"},
				},
			},
			{
				Name:     "unused",
				Scope:    "outer::inner",
				Location: lineage.Location{Line: 5, Column: 9, Length: 6},
			},
		},
	}
}

func TestTextGenerator(t *testing.T) {
	out, err := NewTextGenerator(sampleReport(), false).Generate()
	require.NoError(t, err)

	want := `Variable Declarations and References:
===================================
File: sample.js (javascript)

Variable: globalVar
 Declared at line 1, column 7
 Scope: global
 References:
 - At line 1, column 7 (in scope: global)
 - At line 3, column 18 (in scope: outer)

Variable: unused
 Declared at line 5, column 9
 Scope: outer::inner
 No references found
`
	assert.Equal(t, want, out)
}

func TestTextGenerator_ColorKeepsContent(t *testing.T) {
	out, err := NewTextGenerator(sampleReport(), true).Generate()
	require.NoError(t, err)
	assert.Contains(t, out, "globalVar")
	assert.Contains(t, out, "No references found")
}

func TestJSONGenerator(t *testing.T) {
	out, err := NewJSONGenerator(sampleReport()).Generate()
	require.NoError(t, err)

	var doc struct {
		RunID        string `json:"run_id"`
		File         string `json:"file"`
		Policy       string `json:"policy"`
		Declarations []struct {
			Name       string `json:"name"`
			Scope      string `json:"scope"`
			References []struct {
				Scope    string `json:"scope"`
				Location struct {
					Line uint `json:"line"`
				} `json:"location"`
			} `json:"references"`
		} `json:"declarations"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "run-1", doc.RunID)
	assert.Equal(t, "last-write", doc.Policy)
	require.Len(t, doc.Declarations, 2)
	assert.Equal(t, "outer", doc.Declarations[0].References[1].Scope)
	assert.Equal(t, uint(3), doc.Declarations[0].References[1].Location.Line)
	assert.NotNil(t, doc.Declarations[1].References)
	assert.Contains(t, out, `"references": []`)
}

func TestTSVGenerator(t *testing.T) {
	out, err := NewTSVGenerator(sampleReport()).Generate()
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Type\tName\tScope\tLine\tColumn\tLength", lines[0])
	assert.Equal(t, "declaration\tglobalVar\tglobal\t1\t7\t9", lines[1])
	assert.Equal(t, "reference\tglobalVar\touter\t3\t18\t9", lines[3])
	assert.Equal(t, "declaration\tunused\touter::inner\t5\t9\t6", lines[4])
}

func TestDOTGenerator(t *testing.T) {
	out, err := NewDOTGenerator(sampleReport().Graph()).Generate()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "digraph lineage {\n"))
	assert.Contains(t, out, `scope_outer__inner [label="inner", shape=folder`)
	assert.Contains(t, out, `decl_globalVar_1_7 [label="globalVar\n(declared 1:7)"`)
	assert.Contains(t, out, "scope_global -> decl_globalVar_1_7 [color=\"forestgreen\"")
	assert.Contains(t, out, "scope_outer -> decl_globalVar_1_7_2")
	assert.True(t, strings.HasSuffix(out, "}\n"))
}

func TestMermaidGenerator(t *testing.T) {
	out, err := NewMermaidGenerator(sampleReport().Graph()).Generate()
	require.NoError(t, err)

	assert.Contains(t, out, "flowchart LR\n")
	assert.Contains(t, out, `  scope_global[["global"]]`)
	assert.Contains(t, out, "  scope_global -.-> scope_outer")
	assert.Contains(t, out, "  scope_outer__inner ==> decl_unused_5_9")
	assert.Contains(t, out, "class scope_global,scope_outer,scope_outer__inner scopeNode;")
}

func TestNameFilter(t *testing.T) {
	f, err := NewNameFilter([]string{"global*", " ", "x?"})
	require.NoError(t, err)
	assert.True(t, f.Match("globalVar"))
	assert.True(t, f.Match("xy"))
	assert.False(t, f.Match("outerVar"))
	assert.Equal(t, []string{"global*", "x?"}, f.Patterns())

	var none *NameFilter
	assert.True(t, none.Match("anything"))

	_, err = NewNameFilter([]string{"[abc"})
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	r := sampleReport()
	for _, format := range []string{"", FormatText, FormatJSON, FormatTSV, FormatDOT, " Mermaid "} {
		out, err := Render(format, r, false)
		require.NoError(t, err, format)
		assert.NotEmpty(t, out, format)
	}
	_, err := Render("yaml", r, false)
	assert.Error(t, err)
}

func TestRenderLineage(t *testing.T) {
	assert.Equal(t, "", RenderLineage(nil))
	assert.Equal(t, "Declared in scope: global\nReferenced in scope: outer\n",
		RenderLineage([]string{"Declared in scope: global", "Referenced in scope: outer"}))
}

func TestNewReport_FiltersAnalysis(t *testing.T) {
	loader, err := parser.NewGrammarLoader()
	require.NoError(t, err)
	analyzer, err := lineage.NewAnalyzer(parser.NewParser(loader), lineage.Options{})
	require.NoError(t, err)

	res, err := analyzer.AnalyzeSource(context.Background(), "f.js", []byte("let keep = 1;\nlet drop = keep;\n"))
	require.NoError(t, err)

	filter, err := NewNameFilter([]string{"ke*"})
	require.NoError(t, err)
	r := NewReport(res, filter)

	require.Len(t, r.Declarations, 1)
	assert.Equal(t, "keep", r.Declarations[0].Name)
	assert.Len(t, r.Declarations[0].References, 2)
	assert.Equal(t, res.RunID, r.RunID)
	assert.Len(t, NewReport(res, nil).Declarations, 2)
}
