package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

const versionString = "1.0.0"

type cliOptions struct {
	configPath   string
	format       string
	lineage      string
	only         stringList
	policy       string
	language     string
	exportSQLite string
	metricsFile  string
	watch        bool
	color        bool
	verbose      bool
	version      bool
	args         []string

	// set records which flags appeared on the command line so config values
	// are only overridden explicitly.
	set map[string]bool
}

type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(value string) error {
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*s = append(*s, part)
		}
	}
	return nil
}

func newFlagSet(opts *cliOptions, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("lineage", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.configPath, "config", "", "Path to config file (default: ./lineage.toml, then ./data/config/lineage.toml)")
	fs.StringVar(&opts.format, "format", "", "Report format: text, json, tsv, dot, mermaid")
	fs.StringVar(&opts.lineage, "lineage", "", "Print only the lineage of this variable")
	fs.Var(&opts.only, "only", "Restrict the report to variable names matching this glob (repeatable)")
	fs.StringVar(&opts.policy, "policy", "", "Binding policy: last-write or scoped")
	fs.StringVar(&opts.language, "language", "", "Force a grammar instead of detecting it from the extension")
	fs.StringVar(&opts.exportSQLite, "export-sqlite", "", "Also write the result to this SQLite database")
	fs.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file after each analysis")
	fs.BoolVar(&opts.watch, "watch", false, "Re-analyze whenever the file changes")
	fs.BoolVar(&opts.color, "color", false, "Colorize the text report")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: lineage [flags] <file>")
		fs.PrintDefaults()
	}
	return fs
}

func parseOptions(args []string, stderr io.Writer) (cliOptions, *flag.FlagSet, error) {
	var opts cliOptions
	fs := newFlagSet(&opts, stderr)
	if err := fs.Parse(args); err != nil {
		return cliOptions{}, fs, err
	}

	opts.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		opts.set[f.Name] = true
	})
	opts.args = fs.Args()
	return opts, fs, nil
}
