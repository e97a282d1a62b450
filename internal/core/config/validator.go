package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

var (
	validPolicies  = []string{"last-write", "scoped"}
	validFormats   = []string{"text", "json", "tsv", "dot", "mermaid"}
	validLogLevels = []string{"debug", "info", "warn", "error"}
)

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateAnalysis(cfg *Config) error {
	if !oneOf(cfg.Analysis.Policy, validPolicies) {
		return fmt.Errorf("analysis.policy must be one of: %s", strings.Join(validPolicies, ", "))
	}
	return nil
}

func validateLanguages(cfg *Config) error {
	for language, settings := range cfg.Languages {
		if strings.TrimSpace(language) == "" {
			return fmt.Errorf("languages key must not be empty")
		}
		for _, ext := range settings.Extensions {
			if strings.TrimSpace(ext) == "" {
				return fmt.Errorf("languages.%s.extensions must not include empty values", language)
			}
		}
		for _, group := range [][]string{settings.DeclaratorKinds, settings.IdentifierKinds, settings.ScopeKinds} {
			for _, kind := range group {
				if strings.TrimSpace(kind) == "" {
					return fmt.Errorf("languages.%s node kinds must not include empty values", language)
				}
			}
		}
	}
	if lang := cfg.Analysis.Language; lang != "" {
		if settings, ok := cfg.Languages[lang]; ok && !settings.IsEnabled() {
			return fmt.Errorf("analysis.language %q is disabled in languages.%s", lang, lang)
		}
	}
	return nil
}

func validateOutput(cfg *Config) error {
	if !oneOf(cfg.Output.Format, validFormats) {
		return fmt.Errorf("output.format must be one of: %s", strings.Join(validFormats, ", "))
	}

	targets := []struct {
		key  string
		path string
	}{
		{"output.dot", cfg.Output.DOT},
		{"output.mermaid", cfg.Output.Mermaid},
		{"output.json", cfg.Output.JSON},
		{"output.tsv", cfg.Output.TSV},
		{"output.sqlite", cfg.Output.SQLite},
		{"observability.metrics_file", cfg.Observability.MetricsFile},
	}
	seen := make(map[string]string, len(targets))
	for _, target := range targets {
		path := strings.TrimSpace(target.path)
		if path == "" {
			continue
		}
		clean := filepath.Clean(path)
		if owner, ok := seen[clean]; ok {
			return fmt.Errorf("output conflict: %s and %s share the same path %q", owner, target.key, path)
		}
		seen[clean] = target.key
	}
	return nil
}

func validateReport(cfg *Config) error {
	for i, pattern := range cfg.Report.Only {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("report.only[%d] must not be empty", i)
		}
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("report.only[%d] %q is not a valid glob: %w", i, pattern, err)
		}
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", cfg.Watch.Debounce)
	}
	if cfg.Watch.MinInterval < 0 {
		return fmt.Errorf("watch.min_interval must not be negative, got %s", cfg.Watch.MinInterval)
	}
	return nil
}

func validateLog(cfg *Config) error {
	if !oneOf(cfg.Log.Level, validLogLevels) {
		return fmt.Errorf("log.level must be one of: %s", strings.Join(validLogLevels, ", "))
	}
	return nil
}

// Validate runs every section validator and returns all failures.
func Validate(cfg *Config) []error {
	var errs []error
	for _, check := range []func(*Config) error{
		validateVersion,
		validateAnalysis,
		validateLanguages,
		validateOutput,
		validateReport,
		validateWatch,
		validateLog,
	} {
		if err := check(cfg); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func oneOf(value string, allowed []string) bool {
	for _, candidate := range allowed {
		if value == candidate {
			return true
		}
	}
	return false
}
