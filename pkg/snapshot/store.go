// Package snapshot keeps the processed results of a corpus between runs and
// decides what an incremental run has to reprocess.
//
// A [Store] remembers, per documentable, a fingerprint of its source, the
// final doc, the doc as it was right after the include stage, the
// documentables it referenced, the files it embedded and the paths its
// includes tried. A run goes through three steps:
//
//	ok, err := store.UpdatePreProcessing(ctx, ix, nil) // acquire, seed, plan
//	if err != nil || !ok {
//	    return err // nothing stale; the store is released
//	}
//	run.Only = store.Affected()
//	if err := pipeline.Run(ctx, run); err != nil {
//	    store.Abort()
//	    return err
//	}
//	store.UpdatePostProcessing(ctx, run) // commit, release
//
// Runs are serialized: the store holds a one-slot semaphore between
// UpdatePreProcessing and UpdatePostProcessing or Abort.
package snapshot

import (
	"context"
	"encoding/json"
	"io"
	"maps"
	"os"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/docsmith/pkg/cache"
	"github.com/matzehuels/docsmith/pkg/corpus"
	"github.com/matzehuels/docsmith/pkg/dag"
	"github.com/matzehuels/docsmith/pkg/doc"
	"github.com/matzehuels/docsmith/pkg/errors"
	"github.com/matzehuels/docsmith/pkg/observability"
	"github.com/matzehuels/docsmith/pkg/processor"
)

// ErrBusy is returned by TryUpdatePreProcessing while another run holds the
// store.
var ErrBusy = errors.New(errors.ErrCodeBusy, "snapshot store is busy")

// Entry is the committed result for one documentable.
type Entry struct {
	Fingerprint string            `json:"fingerprint"`
	Path        string            `json:"path"`
	Result      doc.Content       `json:"result"`
	Processed   doc.Content       `json:"processed"` // after the include stage
	Error       string            `json:"error,omitempty"`
	ExportRange *corpus.LineRange `json:"exportRange,omitempty"`

	// Files maps the files embedded by the doc to their content hash.
	Files map[string]string `json:"files,omitempty"`
	// Lookups are the paths the doc's includes tried.
	Lookups []string `json:"lookups,omitempty"`
}

// Store holds the committed snapshot of one corpus.
type Store struct {
	sem    chan struct{}
	logger *log.Logger

	mu      sync.RWMutex
	entries map[string]*Entry
	deps    map[string][]string

	// Valid between UpdatePreProcessing and the matching commit or abort.
	plan *plan
}

type plan struct {
	ix           *corpus.Index
	fingerprints map[string]string
	affected     map[string]bool
	processed    map[string]doc.Content
	pmu          sync.Mutex
}

// New creates an empty store. A nil logger discards output.
func New(logger *log.Logger) *Store {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Store{
		sem:     make(chan struct{}, 1),
		logger:  logger,
		entries: map[string]*Entry{},
		deps:    map[string][]string{},
	}
}

// Fingerprint hashes everything about d that processing reads from its
// source: path, extension path, language, file, raw doc and the facts that
// decide whether d resolves as a target.
func Fingerprint(d *corpus.Documentable) string {
	data, _ := json.Marshal(struct {
		Path, ExtensionPath, Package, File string
		Language                           corpus.Language
		Imports                            []corpus.Import
		Doc                                doc.Content
		HasDoc, Alias, Extension           bool
	}{
		d.Path, d.ExtensionPath, d.Package, d.File,
		d.Language, d.Imports, d.SourceDoc,
		d.SourceHasDocumentation, d.IsTypeAlias, d.Extension != nil,
	})
	return cache.Hash(data)
}

// UpdatePreProcessing acquires the store for a run over ix and computes the
// affected set. It holds every documentable whose fingerprint changed, whose
// last run failed or whose embedded files changed on disk, every
// documentable whose includes tried a path a changed documentable had or now
// has, and everything that transitively references one of them. Adding or
// removing a documentable invalidates the whole corpus.
//
// With d set, only d's freshness matters: the store is released and false
// is returned unless d is affected. Without d, false means nothing at all is
// stale. When true is returned, the affected documentables of ix hold their
// source doc, all others hold their cached post-include doc, and the caller
// must finish with UpdatePostProcessing or Abort.
//
// A run already holding the store makes the call wait until ctx is done.
func (s *Store) UpdatePreProcessing(ctx context.Context, ix *corpus.Index, d *corpus.Documentable) (bool, error) {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return false, ctx.Err()
	}
	return s.prepare(ctx, ix, d)
}

// TryUpdatePreProcessing is UpdatePreProcessing without waiting. It returns
// ErrBusy when another run holds the store.
func (s *Store) TryUpdatePreProcessing(ctx context.Context, ix *corpus.Index, d *corpus.Documentable) (bool, error) {
	select {
	case s.sem <- struct{}{}:
	default:
		return false, ErrBusy
	}
	return s.prepare(ctx, ix, d)
}

func (s *Store) prepare(ctx context.Context, ix *corpus.Index, d *corpus.Documentable) (bool, error) {
	if err := ctx.Err(); err != nil {
		s.release()
		return false, err
	}
	p := &plan{
		ix:           ix,
		fingerprints: make(map[string]string, ix.Len()),
		processed:    map[string]doc.Content{},
	}
	for _, cur := range ix.All() {
		p.fingerprints[cur.ID] = Fingerprint(cur)
	}

	s.mu.RLock()
	p.affected = s.affected(ix, p.fingerprints)
	entries := s.entries
	s.mu.RUnlock()

	stale := len(p.affected) > 0
	if d != nil {
		stale = p.affected[d.ID]
	}
	if !stale {
		s.release()
		return false, nil
	}

	for _, cur := range ix.All() {
		e, ok := entries[cur.ID]
		if p.affected[cur.ID] || !ok {
			cur.Reset()
			continue
		}
		cur.Doc = e.Processed
		if cur.Extension != nil {
			cur.Extension.ExportRange = cloneRange(e.ExportRange)
		}
	}
	ix.Invalidate()

	s.plan = p
	s.logger.Debug("incremental run", "affected", len(p.affected), "total", ix.Len())
	observability.Processor().OnRebuild(ctx, len(p.affected), ix.Len())
	return true, nil
}

// affected must be called with s.mu held.
func (s *Store) affected(ix *corpus.Index, fps map[string]string) map[string]bool {
	all := func() map[string]bool {
		out := make(map[string]bool, len(fps))
		for id := range fps {
			out[id] = true
		}
		return out
	}
	if len(fps) != len(s.entries) {
		return all()
	}
	out := make(map[string]bool)
	touched := make(map[string]bool)
	hashes := make(map[string]string)
	for id, fp := range fps {
		e, ok := s.entries[id]
		if !ok {
			return all()
		}
		switch {
		case e.Fingerprint != fp:
			out[id] = true
			touched[e.Path] = true
			if d, ok := ix.Get(id); ok {
				touched[d.Path] = true
			}
		case e.Error != "", filesChanged(e.Files, hashes):
			out[id] = true
		}
	}
	if len(touched) > 0 {
		for id, e := range s.entries {
			if slices.ContainsFunc(e.Lookups, func(p string) bool { return touched[p] }) {
				out[id] = true
			}
		}
	}
	if len(out) == 0 {
		return out
	}
	changed := slices.Sorted(maps.Keys(out))
	for _, id := range s.graph().Ancestors(changed...) {
		out[id] = true
	}
	return out
}

// filesChanged reports whether any file of files no longer hashes to the
// recorded value. A file that cannot be read counts as changed. hashes
// memoizes the current hashes across entries.
func filesChanged(files, hashes map[string]string) bool {
	for path, want := range files {
		got, ok := hashes[path]
		if !ok {
			if data, err := os.ReadFile(path); err == nil {
				got = cache.Hash(data)
			}
			hashes[path] = got
		}
		if got != want {
			return true
		}
	}
	return false
}

// graph must be called with s.mu held.
func (s *Store) graph() *dag.DAG {
	g := dag.New(nil)
	for _, from := range slices.Sorted(maps.Keys(s.deps)) {
		g.EnsureNode(from, nil)
		for _, to := range s.deps[from] {
			g.EnsureNode(to, nil)
			_ = g.AddEdge(dag.Edge{From: from, To: to})
		}
	}
	return g
}

// Affected returns the IDs the current run must process, for Run.Only. It
// is nil outside a run.
func (s *Store) Affected() map[string]bool {
	if s.plan == nil {
		return nil
	}
	return maps.Clone(s.plan.affected)
}

// Collector returns the processor that records the docs of the current run
// as they are after the include stage. Place it right after include.
func (s *Store) Collector() processor.Processor { return collector{s} }

type collector struct{ s *Store }

func (collector) Name() string { return "snapshot" }

func (c collector) Process(ctx context.Context, run *processor.Run) error {
	p := c.s.plan
	if p == nil {
		return nil
	}
	p.pmu.Lock()
	defer p.pmu.Unlock()
	for _, d := range run.Index.ToProcess(run.Selected) {
		p.processed[d.ID] = d.Doc
	}
	return nil
}

// UpdatePostProcessing commits the results of run for the affected
// documentables together with the references they resolved, then releases
// the store.
func (s *Store) UpdatePostProcessing(ctx context.Context, run *processor.Run) {
	p := s.plan
	if p == nil {
		return
	}
	errs := run.Errors()

	s.mu.Lock()
	next := make(map[string]*Entry, len(p.fingerprints))
	for id := range p.fingerprints {
		d, ok := p.ix.Get(id)
		if !ok {
			continue
		}
		if !p.affected[id] {
			if e, ok := s.entries[id]; ok {
				next[id] = e
				continue
			}
		}
		e := &Entry{
			Fingerprint: p.fingerprints[id],
			Path:        d.Path,
			Result:      d.Doc,
			Processed:   d.Doc,
		}
		if c, ok := p.processed[id]; ok {
			e.Processed = c
		}
		if err := errs[id]; err != nil {
			e.Error = errors.UserMessage(err)
		}
		if d.Extension != nil {
			e.ExportRange = cloneRange(d.Extension.ExportRange)
		}
		if files := run.Refs.Files(id); len(files) > 0 {
			e.Files = files
		}
		e.Lookups = run.Refs.Lookups(id)
		next[id] = e
		if refs := run.Refs.Of(id); len(refs) > 0 {
			s.deps[id] = refs
		} else {
			delete(s.deps, id)
		}
	}
	for id := range s.deps {
		if _, ok := next[id]; !ok {
			delete(s.deps, id)
		}
	}
	s.entries = next
	s.mu.Unlock()

	s.logger.Debug("snapshot committed", "run", run.ID, "affected", len(p.affected), "errors", len(errs))
	s.release()
}

// Abort releases the store without committing anything.
func (s *Store) Abort() {
	if s.plan == nil {
		return
	}
	s.release()
}

func (s *Store) release() {
	s.plan = nil
	<-s.sem
}

// Result returns the committed final doc of id.
func (s *Store) Result(id string) (doc.Content, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return "", false
	}
	return e.Result, true
}

// Entry returns a copy of the committed entry of id.
func (s *Store) Entry(id string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return Entry{}, false
	}
	c := *e
	c.ExportRange = cloneRange(e.ExportRange)
	c.Files = maps.Clone(e.Files)
	c.Lookups = slices.Clone(e.Lookups)
	return c, true
}

// Len returns the number of committed entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Dependencies returns the IDs id referenced in its last run.
func (s *Store) Dependencies(id string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.deps[id])
}

// Files returns the sorted paths of every file embedded by a committed doc.
func (s *Store) Files() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := map[string]bool{}
	for _, e := range s.entries {
		for path := range e.Files {
			seen[path] = true
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

// Dependents returns the IDs that transitively reference id.
func (s *Store) Dependents(id string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.graph().Ancestors(id)
	slices.Sort(out)
	return out
}

// Graph returns the committed reference graph. Node metadata carries the
// path of each documentable ix knows.
func (s *Store) Graph(ix *corpus.Index) *dag.DAG {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g := dag.New(nil)
	meta := func(id string) dag.Metadata {
		if d, ok := ix.Get(id); ok {
			return dag.Metadata{"path": d.Path}
		}
		if e, ok := s.entries[id]; ok {
			return dag.Metadata{"path": e.Path}
		}
		return nil
	}
	for _, from := range slices.Sorted(maps.Keys(s.deps)) {
		g.EnsureNode(from, meta(from))
		for _, to := range s.deps[from] {
			g.EnsureNode(to, meta(to))
			_ = g.AddEdge(dag.Edge{From: from, To: to})
		}
	}
	return g
}

func cloneRange(r *corpus.LineRange) *corpus.LineRange {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
