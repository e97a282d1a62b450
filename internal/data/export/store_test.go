package export

import (
	"context"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"lineage/internal/engine/lineage"
	"lineage/internal/engine/parser"
)

const exportSource = `const globalVar = 42;
function outer() {
  let outerVar = globalVar + 1;
  return outerVar;
}
`

func analyze(t *testing.T, src string) *lineage.Result {
	t.Helper()
	loader, err := parser.NewGrammarLoader()
	if err != nil {
		t.Fatalf("grammar loader: %v", err)
	}
	analyzer, err := lineage.NewAnalyzer(parser.NewParser(loader), lineage.Options{})
	if err != nil {
		t.Fatalf("analyzer: %v", err)
	}
	res, err := analyzer.AnalyzeSource(context.Background(), "export.js", []byte(src))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	return res
}

func TestStore_OpenInitializesSchemaAndSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "lineage.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	if store.Path() != path {
		t.Fatalf("expected path %q, got %q", path, store.Path())
	}

	res := analyze(t, exportSource)
	ctx := context.Background()
	if err := store.SaveResult(ctx, res); err != nil {
		t.Fatalf("save result: %v", err)
	}
	// Saving twice replaces the run instead of duplicating rows.
	if err := store.SaveResult(ctx, res); err != nil {
		t.Fatalf("save result again: %v", err)
	}

	runs, err := store.Runs(ctx)
	if err != nil {
		t.Fatalf("load runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	run := runs[0]
	if run.RunID != res.RunID || run.File != "export.js" || run.Language != "javascript" || run.Policy != "last-write" {
		t.Fatalf("unexpected run row: %+v", run)
	}
	if run.NodesVisited != res.Stats.NodesVisited {
		t.Fatalf("expected %d nodes visited, got %d", res.Stats.NodesVisited, run.NodesVisited)
	}

	for _, name := range []string{"globalVar", "outerVar"} {
		got, err := store.Lineage(ctx, res.RunID, name)
		if err != nil {
			t.Fatalf("load lineage %s: %v", name, err)
		}
		if want := res.Lineage(name); !reflect.DeepEqual(got, want) {
			t.Fatalf("lineage %s: expected %v, got %v", name, want, got)
		}
	}

	got, err := store.Lineage(ctx, res.RunID, "missing")
	if err != nil {
		t.Fatalf("load missing lineage: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty lineage, got %v", got)
	}

	var refCount int
	if err := store.db.QueryRow(`SELECT COUNT(*) FROM refs`).Scan(&refCount); err != nil {
		t.Fatalf("count refs: %v", err)
	}
	if refCount != res.ReferenceCount() {
		t.Fatalf("expected %d refs, got %d", res.ReferenceCount(), refCount)
	}
}

func TestStore_MultipleRuns(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "lineage.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	first := analyze(t, exportSource)
	second := analyze(t, "let only = 1;\n")
	for _, res := range []*lineage.Result{first, second} {
		if err := store.SaveResult(ctx, res); err != nil {
			t.Fatalf("save result: %v", err)
		}
	}

	runs, err := store.Runs(ctx)
	if err != nil {
		t.Fatalf("load runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}

	got, err := store.Lineage(ctx, second.RunID, "globalVar")
	if err != nil {
		t.Fatalf("load lineage: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected runs to be isolated, got %v", got)
	}
}

func TestStore_RejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lineage.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if _, err := store.db.Exec(`INSERT OR REPLACE INTO schema_migrations(version) VALUES (?)`, SchemaVersion+1); err != nil {
		t.Fatalf("bump schema version: %v", err)
	}
	store.Close()

	_, err = Open(path)
	if err == nil || !strings.Contains(err.Error(), "newer than supported") {
		t.Fatalf("expected newer schema error, got %v", err)
	}
}

func TestOpen_InvalidPaths(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
	if _, err := Open(t.TempDir()); err == nil || !strings.Contains(err.Error(), "is a directory") {
		t.Fatalf("expected directory error, got %v", err)
	}
}

func TestIsLockError(t *testing.T) {
	cases := map[string]bool{
		"database is locked": true,
		"SQLITE_BUSY":        true,
		"no such table":      false,
	}
	for msg, want := range cases {
		if got := isLockError(errString(msg)); got != want {
			t.Fatalf("isLockError(%q) = %v, want %v", msg, got, want)
		}
	}
	if isLockError(nil) {
		t.Fatal("expected nil error to not be a lock error")
	}
}

type errString string

func (e errString) Error() string { return string(e) }
