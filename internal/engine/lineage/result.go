package lineage

import (
	"fmt"
	"time"
)

// Result is the read-only outcome of one successful analysis.
type Result struct {
	RunID      string
	Path       string
	Language   string
	AnalyzedAt time.Time
	Stats      WalkStats

	registry *Registry
}

func newResult(runID, path, language string, registry *Registry, stats WalkStats) *Result {
	return &Result{
		RunID:      runID,
		Path:       path,
		Language:   language,
		AnalyzedAt: time.Now().UTC(),
		Stats:      stats,
		registry:   registry,
	}
}

func (r *Result) Policy() Policy {
	return r.registry.Policy()
}

// Lineage lists where name was declared and every recorded occurrence, in
// traversal order. Unknown names yield an empty slice. Under PolicyScoped a
// name may have several declarations; each is listed with its references.
func (r *Result) Lineage(name string) []string {
	var lines []string
	for _, decl := range r.registry.Named(name) {
		lines = append(lines, fmt.Sprintf("Declared in scope: %s", decl.Scope))
		for _, ref := range decl.References {
			lines = append(lines, fmt.Sprintf("Referenced in scope: %s", ref.Context))
		}
	}
	return lines
}

// Declarations returns every declaration sorted by name, then position.
func (r *Result) Declarations() []Declaration {
	return r.registry.All()
}

// Lookup returns the most recently declared binding called name.
func (r *Result) Lookup(name string) (Declaration, bool) {
	decls := r.registry.Named(name)
	if len(decls) == 0 {
		return Declaration{}, false
	}
	return decls[len(decls)-1], true
}

// ReferenceCount is the number of occurrences recorded across all
// declarations.
func (r *Result) ReferenceCount() int {
	total := 0
	for _, decl := range r.registry.All() {
		total += len(decl.References)
	}
	return total
}

// Graph materializes the result as scope, declaration and reference nodes.
func (r *Result) Graph() *Graph {
	return BuildGraph(r.Declarations())
}
