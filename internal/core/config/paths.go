package config

import (
	"os"
	"path/filepath"
	"strings"

	"lineage/internal/core/errors"
)

// SearchPaths are tried in order when no config path is given.
var SearchPaths = []string{
	"lineage.toml",
	filepath.Join("data", "config", "lineage.toml"),
}

// Discover returns the config file to load. An explicit path must exist; an
// empty path falls back to SearchPaths under cwd. The empty string means no
// file was found and defaults apply.
func Discover(explicit, cwd string) (string, error) {
	if raw := strings.TrimSpace(explicit); raw != "" {
		path := ResolveRelative(cwd, raw)
		if _, err := os.Stat(path); err != nil {
			return "", errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "config file not found"), errors.CtxPath, path)
		}
		return path, nil
	}
	for _, candidate := range SearchPaths {
		path := ResolveRelative(cwd, candidate)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", nil
}

// LoadOrDefault loads the discovered config or returns DefaultConfig when
// there is none. The returned path is empty for defaults.
func LoadOrDefault(explicit, cwd string) (*Config, string, error) {
	path, err := Discover(explicit, cwd)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		return DefaultConfig(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

func ResolveRelative(base, value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	return filepath.Clean(filepath.Join(base, raw))
}
