package cli

import (
	"context"
	stdErrors "errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"lineage/internal/core/config"
	"lineage/internal/core/errors"
	"lineage/internal/core/watcher"
	"lineage/internal/data/export"
	"lineage/internal/engine/lineage"
	"lineage/internal/engine/parser"
	"lineage/internal/shared/observability"
	"lineage/internal/shared/util"
	"lineage/internal/ui/report/formats"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func Run(args []string) int {
	return RunWithIO(args, os.Stdout, os.Stderr)
}

// RunWithIO runs the CLI with explicit output streams. Reports go to stdout;
// logs and usage go to stderr.
func RunWithIO(args []string, stdout, stderr io.Writer) int {
	opts, fs, err := parseOptions(args, stderr)
	if err != nil {
		if stdErrors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if opts.version {
		fmt.Fprintf(stdout, "lineage %s\n", versionString)
		return exitOK
	}
	if len(opts.args) != 1 {
		fmt.Fprintln(stderr, "expected exactly one file to analyze")
		fs.Usage()
		return exitUsage
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(stderr, "failed to detect working directory: %v\n", err)
		return exitError
	}

	cfg, cfgPath, err := config.LoadOrDefault(opts.configPath, cwd)
	if err != nil {
		configureLogging(stderr, opts.verbose, config.DefaultLogLevel)
		slog.Error("failed to load config", "error", err)
		if errors.IsCode(err, errors.CodeValidationError) {
			return exitUsage
		}
		return exitError
	}
	config.ApplyEnvOverrides(cfg)
	applyFlagOverrides(&opts, cfg)
	configureLogging(stderr, opts.verbose, cfg.Log.Level)

	if errs := config.Validate(cfg); len(errs) > 0 {
		for _, verr := range errs {
			slog.Error("invalid configuration", "error", verr)
		}
		return exitUsage
	}
	if cfgPath != "" {
		slog.Debug("loaded config", "path", cfgPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := observability.SetupTracing(ctx, observability.TracingConfig{
		Endpoint:    cfg.Observability.OTLPEndpoint,
		ServiceName: cfg.Observability.ServiceName,
		Insecure:    cfg.Observability.OTLPInsecure,
	})
	if err != nil {
		slog.Warn("tracing disabled", "error", err)
	} else {
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				slog.Warn("tracing shutdown failed", "error", err)
			}
		}()
	}

	rt, err := newRuntime(cfg, opts, cwd, stdout)
	if err != nil {
		slog.Error("failed to initialize analyzer", "error", err)
		if errors.IsCode(err, errors.CodeValidationError) || errors.IsCode(err, errors.CodeNotSupported) {
			return exitUsage
		}
		return exitError
	}

	target := opts.args[0]
	if err := rt.analyzeAndReport(ctx, target); err != nil {
		slog.Error("analysis failed", "path", target, "error", err)
		return exitError
	}
	if !opts.watch {
		return exitOK
	}

	w, err := watcher.NewWatcher(target, cfg.Watch.Debounce, cfg.Watch.MinInterval, func(ctx context.Context, path string) {
		if err := rt.analyzeAndReport(ctx, path); err != nil {
			slog.Error("re-analysis failed", "path", path, "error", err)
		}
	})
	if err != nil {
		slog.Error("failed to start watcher", "error", err)
		return exitError
	}
	defer w.Close()

	if err := w.Run(ctx); err != nil {
		slog.Error("watcher stopped", "error", err)
		return exitError
	}
	return exitOK
}

// applyFlagOverrides copies explicitly set flags over file and env values.
func applyFlagOverrides(opts *cliOptions, cfg *config.Config) {
	if opts.set["format"] {
		cfg.Output.Format = strings.ToLower(strings.TrimSpace(opts.format))
	}
	if opts.set["policy"] {
		cfg.Analysis.Policy = strings.ToLower(strings.TrimSpace(opts.policy))
	}
	if opts.set["language"] {
		cfg.Analysis.Language = strings.ToLower(strings.TrimSpace(opts.language))
	}
	if opts.set["color"] {
		cfg.Output.Color = opts.color
	}
	if opts.set["only"] {
		cfg.Report.Only = append([]string(nil), opts.only...)
	}
	if opts.set["export-sqlite"] {
		cfg.Output.SQLite = opts.exportSQLite
	}
	if opts.set["metrics-file"] {
		cfg.Observability.MetricsFile = opts.metricsFile
	}
}

func configureLogging(output io.Writer, verbose bool, level string) {
	logLevel := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	if verbose {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
}

type runtime struct {
	cfg      *config.Config
	analyzer *lineage.Analyzer
	filter   *formats.NameFilter
	lineage  string
	cwd      string
	stdout   io.Writer
}

func newRuntime(cfg *config.Config, opts cliOptions, cwd string, stdout io.Writer) (*runtime, error) {
	registry, err := parser.BuildLanguageRegistry(languageOverrides(cfg))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "invalid language registry")
	}
	loader, err := parser.NewGrammarLoaderWithRegistry(registry)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to load grammars")
	}

	analyzer, err := lineage.NewAnalyzer(parser.NewParser(loader), lineage.Options{
		Policy:    lineage.Policy(cfg.Analysis.Policy),
		Language:  cfg.Analysis.Language,
		Overrides: profileOverrides(cfg),
	})
	if err != nil {
		return nil, err
	}

	filter, err := formats.NewNameFilter(cfg.Report.Only)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "invalid name filter")
	}

	return &runtime{
		cfg:      cfg,
		analyzer: analyzer,
		filter:   filter,
		lineage:  strings.TrimSpace(opts.lineage),
		cwd:      cwd,
		stdout:   stdout,
	}, nil
}

func languageOverrides(cfg *config.Config) map[string]parser.LanguageOverride {
	if len(cfg.Languages) == 0 {
		return nil
	}
	out := make(map[string]parser.LanguageOverride, len(cfg.Languages))
	for _, id := range util.SortedStringKeys(cfg.Languages) {
		lang := cfg.Languages[id]
		out[id] = parser.LanguageOverride{
			Enabled:    lang.Enabled,
			Extensions: lang.Extensions,
		}
	}
	return out
}

func profileOverrides(cfg *config.Config) map[string]lineage.ProfileOverride {
	out := make(map[string]lineage.ProfileOverride)
	for id, lang := range cfg.Languages {
		override := lineage.ProfileOverride{
			DeclaratorKinds:     lang.DeclaratorKinds,
			DeclaratorNameField: lang.DeclaratorNameField,
			IdentifierKinds:     lang.IdentifierKinds,
			ScopeKinds:          lang.ScopeKinds,
			ScopeNameField:      lang.ScopeNameField,
		}
		if len(override.DeclaratorKinds) == 0 && override.DeclaratorNameField == "" &&
			len(override.IdentifierKinds) == 0 && len(override.ScopeKinds) == 0 && override.ScopeNameField == "" {
			continue
		}
		out[id] = override
	}
	return out
}

func (rt *runtime) analyzeAndReport(ctx context.Context, path string) error {
	res, err := rt.analyzer.AnalyzeFile(ctx, path)
	if err != nil {
		return err
	}

	if rt.lineage != "" {
		lines := res.Lineage(rt.lineage)
		if len(lines) == 0 {
			slog.Warn("variable not declared", "name", rt.lineage, "path", path)
		}
		if _, err := io.WriteString(rt.stdout, formats.RenderLineage(lines)); err != nil {
			return errors.Wrap(err, errors.CodeIO, "failed to write lineage")
		}
	} else {
		out, err := formats.Render(rt.cfg.Output.Format, formats.NewReport(res, rt.filter), rt.cfg.Output.Color)
		if err != nil {
			return errors.Wrap(err, errors.CodeInternal, "failed to render report")
		}
		if _, err := io.WriteString(rt.stdout, out); err != nil {
			return errors.Wrap(err, errors.CodeIO, "failed to write report")
		}
	}

	return rt.writeArtifacts(ctx, res)
}

// writeArtifacts writes every configured side output. File artifacts honor
// report.only; the SQLite export always stores the full result.
func (rt *runtime) writeArtifacts(ctx context.Context, res *lineage.Result) error {
	report := formats.NewReport(res, rt.filter)
	artifacts := []struct {
		format string
		path   string
	}{
		{formats.FormatDOT, rt.cfg.Output.DOT},
		{formats.FormatMermaid, rt.cfg.Output.Mermaid},
		{formats.FormatJSON, rt.cfg.Output.JSON},
		{formats.FormatTSV, rt.cfg.Output.TSV},
	}
	for _, artifact := range artifacts {
		if strings.TrimSpace(artifact.path) == "" {
			continue
		}
		content, err := formats.Render(artifact.format, report, false)
		if err != nil {
			return errors.Wrap(err, errors.CodeInternal, "failed to render "+artifact.format)
		}
		path := config.ResolveRelative(rt.cwd, artifact.path)
		if err := util.WriteStringWithDirs(path, content, 0o644); err != nil {
			return errors.AddContext(errors.Wrap(err, errors.CodeIO, "failed to write artifact"), errors.CtxPath, path)
		}
		slog.Debug("wrote artifact", "format", artifact.format, "path", path)
	}

	if raw := strings.TrimSpace(rt.cfg.Output.SQLite); raw != "" {
		if err := rt.exportSQLite(ctx, config.ResolveRelative(rt.cwd, raw), res); err != nil {
			return err
		}
	}

	if raw := strings.TrimSpace(rt.cfg.Observability.MetricsFile); raw != "" {
		path := config.ResolveRelative(rt.cwd, raw)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return errors.AddContext(errors.Wrap(err, errors.CodeIO, "failed to create metrics directory"), errors.CtxPath, path)
		}
		if err := observability.WriteTextfile(path); err != nil {
			return errors.AddContext(errors.Wrap(err, errors.CodeIO, "failed to write metrics"), errors.CtxPath, path)
		}
	}
	return nil
}

func (rt *runtime) exportSQLite(ctx context.Context, path string, res *lineage.Result) error {
	store, err := export.Open(path)
	if err != nil {
		return errors.AddContext(errors.Wrap(err, errors.CodeIO, "failed to open export database"), errors.CtxPath, path)
	}
	defer store.Close()

	if err := store.SaveResult(ctx, res); err != nil {
		return errors.AddContext(errors.Wrap(err, errors.CodeIO, "failed to export result"), errors.CtxPath, path)
	}
	slog.Debug("exported result", "path", path, "run_id", res.RunID)
	return nil
}
