package lineage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"lineage/internal/core/errors"
	"lineage/internal/engine/parser"
	"lineage/internal/shared/observability"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Options struct {
	Policy Policy
	// Language forces a grammar instead of detecting it from the extension.
	Language string
	// Overrides patch the built-in profiles per language id.
	Overrides map[string]ProfileOverride
}

// Analyzer runs the parse -> walk pipeline for single files. Every call
// builds its own Registry, so one Analyzer may serve concurrent callers.
type Analyzer struct {
	parser   *parser.Parser
	profiles map[string]Profile
	policy   Policy
	language string
}

func NewAnalyzer(p *parser.Parser, opts Options) (*Analyzer, error) {
	if p == nil {
		return nil, errors.New(errors.CodeInternal, "parser is required")
	}
	policy := opts.Policy
	if policy == "" {
		policy = PolicyLastWrite
	}
	if _, err := ParsePolicy(string(policy)); err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "invalid policy")
	}

	profiles := DefaultProfiles()
	for lang, override := range opts.Overrides {
		id := strings.ToLower(strings.TrimSpace(lang))
		base, ok := profiles[id]
		if !ok {
			return nil, errors.AddContext(errors.New(errors.CodeValidationError, "no profile for language"), errors.CtxLanguage, lang)
		}
		profiles[id] = base.Apply(override)
	}
	for id, profile := range profiles {
		if err := profile.Validate(); err != nil {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeValidationError, "invalid profile"), errors.CtxLanguage, id)
		}
	}

	language := strings.ToLower(strings.TrimSpace(opts.Language))
	if language != "" {
		if _, ok := profiles[language]; !ok {
			return nil, errors.AddContext(errors.New(errors.CodeNotSupported, "unsupported language"), errors.CtxLanguage, opts.Language)
		}
	}

	return &Analyzer{
		parser:   p,
		profiles: profiles,
		policy:   policy,
		language: language,
	}, nil
}

func (a *Analyzer) Policy() Policy {
	return a.policy
}

// AnalyzeFile reads path and analyzes its contents.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*Result, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		observability.AnalysisFailuresTotal.WithLabelValues(string(errors.CodeIO)).Inc()
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeIO, "failed to read source file"), errors.CtxPath, path)
	}
	return a.AnalyzeSource(ctx, path, content)
}

// AnalyzeSource parses content as the file at path and builds a Result. A
// parse failure aborts before any traversal.
func (a *Analyzer) AnalyzeSource(ctx context.Context, path string, content []byte) (*Result, error) {
	ctx, span := observability.Tracer.Start(ctx, "lineage.AnalyzeFile", trace.WithAttributes(
		attribute.String("lineage.path", path),
		attribute.String("lineage.policy", string(a.policy)),
	))
	defer span.End()

	res, err := a.analyze(ctx, path, content)
	if err != nil {
		observability.AnalysisFailuresTotal.WithLabelValues(string(errors.CodeOf(err))).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	observability.AnalysesTotal.WithLabelValues(res.Language, string(a.policy)).Inc()
	references := res.ReferenceCount()
	observability.Declarations.Set(float64(res.registry.Len()))
	observability.References.Set(float64(references))
	span.SetAttributes(
		attribute.String("lineage.run_id", res.RunID),
		attribute.Int("lineage.declarations", res.registry.Len()),
		attribute.Int("lineage.references", references),
	)
	return res, nil
}

func (a *Analyzer) analyze(ctx context.Context, path string, content []byte) (*Result, error) {
	language := a.language
	if language == "" {
		language = a.parser.DetectLanguage(path)
	}
	if language == "" {
		return nil, errors.AddContext(errors.New(errors.CodeNotSupported, "unsupported language"), errors.CtxPath, path)
	}
	profile, ok := a.profiles[language]
	if !ok {
		return nil, errors.AddContext(errors.New(errors.CodeNotSupported, fmt.Sprintf("no lineage profile for %s", language)), errors.CtxPath, path)
	}

	_, parseSpan := observability.Tracer.Start(ctx, "lineage.parse")
	start := time.Now()
	tree, err := a.parser.Parse(path, language, content)
	observability.ParsingDuration.WithLabelValues(language).Observe(time.Since(start).Seconds())
	parseSpan.End()
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	_, walkSpan := observability.Tracer.Start(ctx, "lineage.walk")
	start = time.Now()
	registry := NewRegistry(a.policy)
	stats := NewWalker(profile, registry).Walk(tree.Root())
	observability.WalkDuration.WithLabelValues(language).Observe(time.Since(start).Seconds())
	walkSpan.End()

	observability.NodesVisitedTotal.WithLabelValues(language).Add(float64(stats.NodesVisited))
	observability.DroppedOccurrencesTotal.WithLabelValues(language).Add(float64(stats.DroppedOccurrences))
	observability.SkippedDeclaratorsTotal.WithLabelValues(language).Add(float64(stats.SkippedDeclarators))

	slog.Debug("analyzed file",
		"path", path,
		"language", language,
		"nodes", stats.NodesVisited,
		"declarations", registry.Len(),
		"references", stats.References,
		"dropped", stats.DroppedOccurrences,
		"skipped", stats.SkippedDeclarators,
	)

	return newResult(uuid.NewString(), path, language, registry, stats), nil
}
