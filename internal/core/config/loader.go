package config

import (
	"os"
	"strings"
	"time"

	"lineage/internal/core/errors"

	"github.com/BurntSushi/toml"
)

const (
	DefaultFormat      = "text"
	DefaultPolicy      = "last-write"
	DefaultLogLevel    = "info"
	DefaultServiceName = "lineage"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeIO, "failed to read config"), errors.CtxPath, path)
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeValidationError, "malformed config"), errors.CtxPath, path)
	}

	applyDefaults(&cfg)
	normalize(&cfg)

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.AddContext(errors.Wrap(errs[0], errors.CodeValidationError, "invalid config"), errors.CtxPath, path)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if strings.TrimSpace(cfg.Analysis.Policy) == "" {
		cfg.Analysis.Policy = DefaultPolicy
	}
	if strings.TrimSpace(cfg.Output.Format) == "" {
		cfg.Output.Format = DefaultFormat
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 300 * time.Millisecond
	}
	if cfg.Watch.MinInterval == 0 {
		cfg.Watch.MinInterval = time.Second
	}
	if strings.TrimSpace(cfg.Observability.ServiceName) == "" {
		cfg.Observability.ServiceName = DefaultServiceName
	}
	if strings.TrimSpace(cfg.Log.Level) == "" {
		cfg.Log.Level = DefaultLogLevel
	}
}

func normalize(cfg *Config) {
	cfg.Analysis.Policy = strings.ToLower(strings.TrimSpace(cfg.Analysis.Policy))
	cfg.Analysis.Language = strings.ToLower(strings.TrimSpace(cfg.Analysis.Language))
	cfg.Output.Format = strings.ToLower(strings.TrimSpace(cfg.Output.Format))
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))

	if len(cfg.Languages) == 0 {
		return
	}
	languages := make(map[string]Language, len(cfg.Languages))
	for id, lang := range cfg.Languages {
		languages[strings.ToLower(strings.TrimSpace(id))] = lang
	}
	cfg.Languages = languages
}
