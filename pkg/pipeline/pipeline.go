// Package pipeline runs the doc processors over a corpus, with optional
// incremental caching.
//
// This package ties the processor chain, the snapshot store and the cache
// backends together so that the CLI, the HTTP server and the file watcher
// share one code path.
//
// # Usage
//
// Process a whole corpus once:
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	result, err := runner.Process(ctx, ix, pipeline.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Keep a snapshot and only reprocess what changed:
//
//	store := snapshot.New(logger)
//	runner.LoadSnapshot(ctx, store, root, opts)
//	result, err := runner.Update(ctx, store, ix, opts)
//	runner.SaveSnapshot(ctx, store, root, opts)
//
// Answer a point query for one documentable:
//
//	content, err := runner.Query(ctx, store, ix, id, opts)
package pipeline

import (
	"io"
	"maps"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/docsmith/pkg/cache"
	"github.com/matzehuels/docsmith/pkg/corpus"
	"github.com/matzehuels/docsmith/pkg/dag"
	"github.com/matzehuels/docsmith/pkg/doc"
	"github.com/matzehuels/docsmith/pkg/errors"
	"github.com/matzehuels/docsmith/pkg/processor"
	"github.com/matzehuels/docsmith/pkg/processors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, server and watcher
// =============================================================================

const (
	// DefaultLimit bounds every fixed-point iteration of a run.
	DefaultLimit = processor.DefaultLimit

	// DefaultSnapshotTTL is how long a persisted snapshot stays in the cache.
	DefaultSnapshotTTL = 7 * 24 * time.Hour

	// DefaultGraphTTL is how long a rendered graph stays in the cache.
	DefaultGraphTTL = 24 * time.Hour
)

// DefaultWorkers is the default number of documentables processed
// concurrently by parallel processors.
var DefaultWorkers = runtime.NumCPU()

// Run modes.
const (
	ModeBatch       = "batch"
	ModeInteractive = "interactive"
)

// DefaultMode is the default run mode.
const DefaultMode = ModeBatch

// Graph output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ValidFormats is the set of supported graph formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// ValidModes is the set of supported run modes.
var ValidModes = map[string]bool{
	ModeBatch:       true,
	ModeInteractive: true,
}

// =============================================================================
// Options - Run Configuration
// =============================================================================

// Options configures a run. It supports JSON serialization for API requests.
type Options struct {
	// Processors lists processor names in run order. Empty selects
	// processors.DefaultNames.
	Processors []string `json:"processors,omitempty"`

	// Args are processor arguments such as "include.PRE_SORT".
	Args map[string]any `json:"args,omitempty"`

	Limit   int    `json:"limit,omitempty"`
	Workers int    `json:"workers,omitempty"`
	Mode    string `json:"mode,omitempty"`

	// Refresh ignores persisted snapshots and cached graphs.
	Refresh bool `json:"refresh,omitempty"`

	// Graph options
	Formats     []string `json:"formats,omitempty"`
	Detailed    bool     `json:"detailed,omitempty"`
	LeftToRight bool     `json:"left_to_right,omitempty"`

	// Runtime options (not serialized)

	// Root resolves the relative file names of documentables, such as the
	// base of @includeFile paths.
	Root    string                                                      `json:"-"`
	Logger  *log.Logger                                                 `json:"-"`
	Recover func(d *corpus.Documentable, err error) (doc.Content, bool) `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a run.
type Result struct {
	// Index holds the processed documentables.
	Index *corpus.Index

	// Run is the processor run, nil when the snapshot was fresh.
	Run *processor.Run

	// Errors are the errors isolated per documentable, keyed by ID.
	Errors map[string]error

	// Graph is the reference graph recorded by the include processor.
	Graph *dag.DAG

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains run statistics.
type Stats struct {
	Documentables int
	Processed     int
	Failed        int
	References    int
	Duration      time.Duration
}

// CacheInfo tracks how a run used the snapshot.
type CacheInfo struct {
	Fresh    bool // nothing was stale
	Affected int  // documentables reprocessed
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a graph format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: svg, png, pdf, dot, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateMode checks that a run mode is valid.
func ValidateMode(mode string) error {
	if !ValidModes[mode] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid mode: %q (must be one of: batch, interactive)", mode)
	}
	return nil
}

// ValidateProcessors checks that every name is a known processor.
func ValidateProcessors(names []string) error {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if _, err := processors.New(n); err != nil {
			return err
		}
		if seen[n] {
			return errors.New(errors.ErrCodeInvalidConfig, "processor %q listed twice", n)
		}
		seen[n] = true
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Processors) == 0 {
		o.Processors = processors.DefaultNames
	}
	if err := ValidateProcessors(o.Processors); err != nil {
		return err
	}
	if o.Limit < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "limit must not be negative, got %d", o.Limit)
	}
	if o.Limit == 0 {
		o.Limit = DefaultLimit
	}
	if o.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "workers must not be negative, got %d", o.Workers)
	}
	if o.Workers == 0 {
		o.Workers = DefaultWorkers
	}
	if o.Mode == "" {
		o.Mode = DefaultMode
	}
	if err := ValidateMode(o.Mode); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Args == nil {
		o.Args = map[string]any{}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// RunMode returns the processor mode for o.Mode.
func (o *Options) RunMode() processor.Mode {
	if o.Mode == ModeInteractive {
		return processor.Interactive
	}
	return processor.Batch
}

// NewRun creates a processor run over ix configured by o.
func (o *Options) NewRun(ix *corpus.Index) *processor.Run {
	run := processor.NewRun(ix)
	run.Args = maps.Clone(o.Args)
	if run.Args == nil {
		run.Args = map[string]any{}
	}
	if o.Limit > 0 {
		run.Limit = o.Limit
	}
	if o.Workers > 0 {
		run.Workers = o.Workers
	}
	run.Mode = o.RunMode()
	run.Root = o.Root
	run.Recover = o.Recover
	if o.Logger != nil {
		run.Logger = o.Logger
	}
	return run
}

// SnapshotKeyOpts returns cache key options for persisted snapshots.
func (o *Options) SnapshotKeyOpts() cache.SnapshotKeyOpts {
	return cache.SnapshotKeyOpts{
		Processors: o.Processors,
		Args:       o.Args,
		Limit:      o.Limit,
	}
}

// GraphKeyOpts returns cache key options for a rendered graph.
func (o *Options) GraphKeyOpts(format string) cache.GraphKeyOpts {
	layout := "TB"
	if o.LeftToRight {
		layout = "LR"
	}
	if o.Detailed {
		layout += "+detailed"
	}
	return cache.GraphKeyOpts{Format: format, Layout: layout}
}
