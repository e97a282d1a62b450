package config

import (
	"time"
)

type Config struct {
	Version       int                 `toml:"version"`
	Analysis      Analysis            `toml:"analysis"`
	Languages     map[string]Language `toml:"languages"`
	Output        Output              `toml:"output"`
	Report        Report              `toml:"report"`
	Watch         Watch               `toml:"watch"`
	Observability Observability       `toml:"observability"`
	Log           Log                 `toml:"log"`
}

type Analysis struct {
	// Policy is "last-write" (default) or "scoped".
	Policy string `toml:"policy"`
	// Language forces a grammar for every analyzed file.
	Language string `toml:"language"`
}

// Language patches one built-in language. Unset fields keep the defaults.
type Language struct {
	Enabled             *bool    `toml:"enabled"`
	Extensions          []string `toml:"extensions"`
	DeclaratorKinds     []string `toml:"declarators"`
	DeclaratorNameField string   `toml:"declarator_name_field"`
	IdentifierKinds     []string `toml:"identifiers"`
	ScopeKinds          []string `toml:"scopes"`
	ScopeNameField      string   `toml:"scope_name_field"`
}

func (l Language) IsEnabled() bool {
	if l.Enabled == nil {
		return true
	}
	return *l.Enabled
}

type Output struct {
	Format  string `toml:"format"`
	Color   bool   `toml:"color"`
	DOT     string `toml:"dot"`
	Mermaid string `toml:"mermaid"`
	JSON    string `toml:"json"`
	TSV     string `toml:"tsv"`
	SQLite  string `toml:"sqlite"`
}

type Report struct {
	// Only restricts reports to names matching any of these globs.
	Only []string `toml:"only"`
}

type Watch struct {
	Debounce    time.Duration `toml:"debounce"`
	MinInterval time.Duration `toml:"min_interval"`
}

type Observability struct {
	MetricsFile  string `toml:"metrics_file"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
	OTLPInsecure bool   `toml:"otlp_insecure"`
	ServiceName  string `toml:"service_name"`
}

type Log struct {
	Level string `toml:"level"`
}

// DefaultConfig is the configuration used when no file is found.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
