package parser

import (
	"fmt"
	"sort"
	"strings"
)

// LanguageSpec describes a grammar the parser can load and the file
// extensions routed to it.
type LanguageSpec struct {
	Name       string
	Extensions []string
	Enabled    bool
}

// LanguageOverride is the config-level patch applied on top of the defaults.
// A nil Enabled leaves the default untouched.
type LanguageOverride struct {
	Enabled    *bool
	Extensions []string
}

func DefaultLanguageRegistry() map[string]LanguageSpec {
	return map[string]LanguageSpec{
		"javascript": {Name: "javascript", Extensions: []string{".js", ".mjs", ".cjs", ".jsx"}, Enabled: true},
		"typescript": {Name: "typescript", Extensions: []string{".ts", ".mts", ".cts"}, Enabled: true},
		"tsx":        {Name: "tsx", Extensions: []string{".tsx"}, Enabled: true},
		"java":       {Name: "java", Extensions: []string{".java"}, Enabled: true},
		"go":         {Name: "go", Extensions: []string{".go"}, Enabled: true},
		"python":     {Name: "python", Extensions: []string{".py", ".pyi"}, Enabled: true},
		"rust":       {Name: "rust", Extensions: []string{".rs"}, Enabled: true},
	}
}

// BuildLanguageRegistry merges overrides into the default registry. Unknown
// languages and extensions claimed by two enabled languages are rejected.
func BuildLanguageRegistry(overrides map[string]LanguageOverride) (map[string]LanguageSpec, error) {
	registry := DefaultLanguageRegistry()
	for lang, override := range overrides {
		id := strings.ToLower(strings.TrimSpace(lang))
		spec, ok := registry[id]
		if !ok {
			return nil, fmt.Errorf("unknown language %q", lang)
		}
		if override.Enabled != nil {
			spec.Enabled = *override.Enabled
		}
		if len(override.Extensions) > 0 {
			exts := make([]string, 0, len(override.Extensions))
			for _, ext := range override.Extensions {
				exts = append(exts, normalizeExtension(ext))
			}
			spec.Extensions = exts
		}
		registry[id] = spec
	}

	owners := make(map[string]string)
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		spec := registry[id]
		if !spec.Enabled {
			continue
		}
		for _, ext := range spec.Extensions {
			if owner, ok := owners[ext]; ok {
				return nil, fmt.Errorf("extension %q is claimed by both %s and %s", ext, owner, id)
			}
			owners[ext] = id
		}
	}
	return registry, nil
}

func cloneLanguageRegistry(in map[string]LanguageSpec) map[string]LanguageSpec {
	out := make(map[string]LanguageSpec, len(in))
	for id, spec := range in {
		copySpec := spec
		copySpec.Extensions = append([]string(nil), spec.Extensions...)
		out[id] = copySpec
	}
	return out
}

func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
