package util

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestSortedStringKeys(t *testing.T) {
	t.Parallel()

	m := map[string]bool{"rust": true, "go": true, "javascript": false}
	keys := SortedStringKeys(m)
	if expected := []string{"go", "javascript", "rust"}; !reflect.DeepEqual(keys, expected) {
		t.Fatalf("expected %v, got %v", expected, keys)
	}
	if keys := SortedStringKeys(map[string]int{}); len(keys) != 0 {
		t.Fatalf("expected no keys, got %v", keys)
	}
}

func TestWriteStringWithDirs_CreatesParents(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "graphs", "lineage.dot")
	if err := WriteStringWithDirs(path, "digraph lineage {}\n", 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(got) != "digraph lineage {}\n" {
		t.Fatalf("unexpected content %q", string(got))
	}
}

func TestWriteStringWithDirs_RejectsDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	err := WriteStringWithDirs(dir, "x", 0o644)
	if err == nil || !strings.Contains(err.Error(), "is a directory") {
		t.Fatalf("expected directory error, got %v", err)
	}
}

func TestWriteStringWithDirs_Overwrites(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "report.json")
	for _, content := range []string{"{}", `{"declarations":[]}`} {
		if err := WriteStringWithDirs(path, content, 0o644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(got) != `{"declarations":[]}` {
		t.Fatalf("expected last write to win, got %q", string(got))
	}
}
