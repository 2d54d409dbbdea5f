package pipeline

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/docsmith/pkg/cache"
	"github.com/matzehuels/docsmith/pkg/corpus"
	"github.com/matzehuels/docsmith/pkg/doc"
	"github.com/matzehuels/docsmith/pkg/errors"
	"github.com/matzehuels/docsmith/pkg/processor"
	"github.com/matzehuels/docsmith/pkg/processors"
	"github.com/matzehuels/docsmith/pkg/snapshot"
)

// Runner encapsulates pipeline execution with caching.
// The CLI, the server and the watcher use it to avoid duplicating the
// snapshot protocol.
//
// The Runner is stateless except for the cache and logger - snapshots live
// in a [snapshot.Store] owned by the caller. Multiple goroutines can safely
// use the same Runner; the store serializes runs over one corpus.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL applies to persisted snapshots. Zero uses DefaultSnapshotTTL.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Build creates the processor chain for opts. With a store, the store's
// collector runs right after the include processor, or first when include
// is not selected.
func Build(opts Options, store *snapshot.Store) (*processor.Pipeline, error) {
	names := opts.Processors
	if len(names) == 0 {
		names = processors.DefaultNames
	}
	ps := make([]processor.Processor, 0, len(names)+1)
	if store != nil && !slices.Contains(names, processors.IncludeTag) {
		ps = append(ps, store.Collector())
	}
	for _, n := range names {
		p, err := processors.New(n)
		if err != nil {
			return nil, err
		}
		ps = append(ps, p)
		if store != nil && n == processors.IncludeTag {
			ps = append(ps, store.Collector())
		}
	}
	return processor.NewPipeline(ps...), nil
}

// Process runs the pipeline over every documentable of ix, without a
// snapshot. The documentables of ix hold the processed docs afterwards.
func (r *Runner) Process(ctx context.Context, ix *corpus.Index, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	p, err := Build(opts, nil)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	run := opts.NewRun(ix)
	if err := p.Run(ctx, run); err != nil {
		return nil, err
	}

	result := r.result(ix, run, start)
	result.Graph = run.Refs.Graph(ix)
	result.Stats.Processed = ix.Len()
	result.CacheInfo.Affected = ix.Len()
	r.logDone(result)
	return result, nil
}

// Update brings store up to date with ix, reprocessing only the affected
// documentables. The documentables of ix hold the processed docs
// afterwards, whether or not anything was stale.
func (r *Runner) Update(ctx context.Context, store *snapshot.Store, ix *corpus.Index, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	p, err := Build(opts, store)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	stale, err := store.UpdatePreProcessing(ctx, ix, nil)
	if err != nil {
		return nil, err
	}
	if !stale {
		apply(store, ix)
		result := r.result(ix, nil, start)
		result.Graph = store.Graph(ix)
		result.Stats.References = result.Graph.EdgeCount()
		result.CacheInfo.Fresh = true
		r.Logger.Debug("snapshot is fresh", "documentables", ix.Len())
		return result, nil
	}

	run := opts.NewRun(ix)
	run.Only = store.Affected()
	if err := p.Run(ctx, run); err != nil {
		store.Abort()
		return nil, err
	}
	store.UpdatePostProcessing(ctx, run)
	apply(store, ix)

	result := r.result(ix, run, start)
	result.Graph = store.Graph(ix)
	result.Stats.Processed = len(run.Only)
	result.CacheInfo.Affected = len(run.Only)
	r.logDone(result)
	return result, nil
}

// Query returns the processed doc of the documentable id. A fresh snapshot
// answers directly; otherwise the affected documentables are reprocessed
// in interactive mode and committed first, so a failing doc yields its
// inline error block instead of an error.
func (r *Runner) Query(ctx context.Context, store *snapshot.Store, ix *corpus.Index, id string, opts Options) (doc.Content, error) {
	d, ok := ix.Get(id)
	if !ok {
		return "", errors.New(errors.ErrCodeNotFound, "no documentable with id %q", id)
	}
	r.applyLogger(&opts)
	opts.Mode = ModeInteractive
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return "", fmt.Errorf("invalid options: %w", err)
	}
	p, err := Build(opts, store)
	if err != nil {
		return "", err
	}

	stale, err := store.UpdatePreProcessing(ctx, ix, d)
	if err != nil {
		return "", err
	}
	if stale {
		run := opts.NewRun(ix)
		run.Only = store.Affected()
		if err := p.Run(ctx, run); err != nil {
			store.Abort()
			return "", err
		}
		store.UpdatePostProcessing(ctx, run)
		apply(store, ix)
		r.Logger.Debug("query reprocessed", "id", id, "affected", len(run.Only))
	}

	content, ok := store.Result(id)
	if !ok {
		return "", errors.New(errors.ErrCodeInternal, "no committed result for %q", id)
	}
	return content, nil
}

// LoadSnapshot restores the persisted snapshot of root into store. It
// returns false on a miss, and always when opts.Refresh is set.
func (r *Runner) LoadSnapshot(ctx context.Context, store *snapshot.Store, root string, opts Options) (bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return false, fmt.Errorf("invalid options: %w", err)
	}
	if opts.Refresh {
		return false, nil
	}
	key := r.Keyer.SnapshotKey(root, opts.SnapshotKeyOpts())
	ok, err := store.Load(ctx, r.Cache, key)
	if err != nil {
		return false, err
	}
	r.Logger.Debug("snapshot lookup", "root", root, "hit", ok, "entries", store.Len())
	return ok, nil
}

// SaveSnapshot persists store as the snapshot of root.
func (r *Runner) SaveSnapshot(ctx context.Context, store *snapshot.Store, root string, opts Options) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	ttl := r.TTL
	if ttl == 0 {
		ttl = DefaultSnapshotTTL
	}
	key := r.Keyer.SnapshotKey(root, opts.SnapshotKeyOpts())
	return store.Save(ctx, r.Cache, key, ttl)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func (r *Runner) result(ix *corpus.Index, run *processor.Run, start time.Time) *Result {
	res := &Result{Index: ix, Run: run, Errors: map[string]error{}}
	if run != nil {
		res.Errors = run.Errors()
	}
	res.Stats.Documentables = ix.Len()
	res.Stats.Failed = len(res.Errors)
	res.Stats.Duration = time.Since(start)
	return res
}

func (r *Runner) logDone(res *Result) {
	if res.Graph != nil {
		res.Stats.References = res.Graph.EdgeCount()
	}
	r.Logger.Info("processed corpus",
		"documentables", res.Stats.Documentables,
		"processed", res.Stats.Processed,
		"failed", res.Stats.Failed,
		"references", res.Stats.References,
		"duration", res.Stats.Duration)
}

// apply copies the committed results of store into the documentables of ix.
func apply(store *snapshot.Store, ix *corpus.Index) {
	for _, d := range ix.All() {
		e, ok := store.Entry(d.ID)
		if !ok {
			continue
		}
		d.Doc = e.Result
		if d.Extension != nil {
			d.Extension.ExportRange = e.ExportRange
		}
	}
}
