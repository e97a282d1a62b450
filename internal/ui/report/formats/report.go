package formats

import (
	"fmt"
	"strings"
	"time"

	"lineage/internal/engine/lineage"

	"github.com/gobwas/glob"
)

// Report is the render-ready view of one analysis.
type Report struct {
	RunID        string
	Path         string
	Language     string
	Policy       lineage.Policy
	AnalyzedAt   time.Time
	Declarations []lineage.Declaration
}

// NewReport snapshots res, keeping only declarations whose name matches
// filter. A nil filter keeps everything.
func NewReport(res *lineage.Result, filter *NameFilter) *Report {
	r := &Report{
		RunID:      res.RunID,
		Path:       res.Path,
		Language:   res.Language,
		Policy:     res.Policy(),
		AnalyzedAt: res.AnalyzedAt,
	}
	for _, decl := range res.Declarations() {
		if filter.Match(decl.Name) {
			r.Declarations = append(r.Declarations, decl)
		}
	}
	return r
}

func (r *Report) Graph() *lineage.Graph {
	return lineage.BuildGraph(r.Declarations)
}

// NameFilter matches variable names against a set of glob patterns.
type NameFilter struct {
	patterns []string
	globs    []glob.Glob
}

func NewNameFilter(patterns []string) (*NameFilter, error) {
	f := &NameFilter{}
	for _, raw := range patterns {
		pattern := strings.TrimSpace(raw)
		if pattern == "" {
			continue
		}
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid name pattern %q: %w", pattern, err)
		}
		f.patterns = append(f.patterns, pattern)
		f.globs = append(f.globs, g)
	}
	return f, nil
}

// Match reports whether name passes the filter. An empty filter matches all.
func (f *NameFilter) Match(name string) bool {
	if f == nil || len(f.globs) == 0 {
		return true
	}
	for _, g := range f.globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func (f *NameFilter) Patterns() []string {
	if f == nil {
		return nil
	}
	return append([]string(nil), f.patterns...)
}
