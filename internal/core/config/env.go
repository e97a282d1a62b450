package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: LINEAGE_[SECTION]_[KEY] (e.g., LINEAGE_ANALYSIS_POLICY).
func ApplyEnvOverrides(cfg *Config) {
	setEnvString(&cfg.Analysis.Policy, "LINEAGE_ANALYSIS_POLICY")
	setEnvString(&cfg.Analysis.Language, "LINEAGE_ANALYSIS_LANGUAGE")

	setEnvString(&cfg.Output.Format, "LINEAGE_OUTPUT_FORMAT")
	setEnvBool(&cfg.Output.Color, "LINEAGE_OUTPUT_COLOR")
	setEnvString(&cfg.Output.SQLite, "LINEAGE_OUTPUT_SQLITE")

	setEnvDuration(&cfg.Watch.Debounce, "LINEAGE_WATCH_DEBOUNCE")
	setEnvDuration(&cfg.Watch.MinInterval, "LINEAGE_WATCH_MIN_INTERVAL")

	setEnvString(&cfg.Observability.MetricsFile, "LINEAGE_OBSERVABILITY_METRICS_FILE")
	setEnvString(&cfg.Observability.OTLPEndpoint, "LINEAGE_OBSERVABILITY_OTLP_ENDPOINT")
	setEnvBool(&cfg.Observability.OTLPInsecure, "LINEAGE_OBSERVABILITY_OTLP_INSECURE")
	setEnvString(&cfg.Observability.ServiceName, "LINEAGE_OBSERVABILITY_SERVICE_NAME")

	setEnvString(&cfg.Log.Level, "LINEAGE_LOG_LEVEL")

	normalize(cfg)
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err != nil {
			slog.Warn("ignoring env override", "key", key, "error", err)
			return
		}
		slog.Debug("applying env override", "key", key, "value", val)
		*target = b
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(val)
		if err != nil {
			slog.Warn("ignoring env override", "key", key, "error", err)
			return
		}
		slog.Debug("applying env override", "key", key, "value", val)
		*target = d
	}
}
