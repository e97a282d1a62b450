package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lineage_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	WalkDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lineage_walk_seconds",
		Help:    "Time spent walking a syntax tree and resolving scopes.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lineage_analyses_total",
		Help: "Total number of completed file analyses.",
	}, []string{"language", "policy"})

	AnalysisFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lineage_analysis_failures_total",
		Help: "Total number of aborted file analyses by error code.",
	}, []string{"code"})

	NodesVisitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lineage_nodes_visited_total",
		Help: "Total number of syntax nodes visited by the walker.",
	}, []string{"language"})

	DroppedOccurrencesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lineage_dropped_occurrences_total",
		Help: "Total number of identifier occurrences with no visible declaration.",
	}, []string{"language"})

	SkippedDeclaratorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lineage_skipped_declarators_total",
		Help: "Total number of declarators without an extractable name.",
	}, []string{"language"})

	Declarations = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lineage_declarations",
		Help: "Number of live declarations in the most recent analysis.",
	})

	References = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lineage_references",
		Help: "Number of recorded references in the most recent analysis.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lineage_watcher_events_total",
		Help: "Total number of file system events for the watched file.",
	})

	WatcherTriggersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lineage_watcher_triggers_total",
		Help: "Total number of debounced re-analysis triggers.",
	})
)

// WriteTextfile dumps the default registry in the Prometheus text format,
// suitable for the node_exporter textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
