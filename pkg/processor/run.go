package processor

import (
	"io"
	"maps"
	"path/filepath"
	"slices"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/docsmith/pkg/corpus"
	"github.com/matzehuels/docsmith/pkg/dag"
	"github.com/matzehuels/docsmith/pkg/doc"
	"github.com/matzehuels/docsmith/pkg/errors"
)

// DefaultLimit bounds every fixed-point iteration.
const DefaultLimit = 10_000

// Mode selects how errors local to one documentable are handled.
type Mode int

const (
	// Batch halts the run on the first error.
	Batch Mode = iota
	// Interactive replaces a failing doc with an error block and continues.
	Interactive
)

// String returns the mode name.
func (m Mode) String() string {
	if m == Interactive {
		return "interactive"
	}
	return "batch"
}

// Run is the state of one processing run. It is passed by reference to
// every processor; nothing is shared between runs.
type Run struct {
	ID      string
	Index   *corpus.Index
	Args    map[string]any
	Limit   int
	Workers int
	Mode    Mode
	Logger  *log.Logger
	Refs    *Refs

	// Root is the directory relative source file names are resolved
	// against. Empty uses the working directory.
	Root string

	// Only restricts processing to the given IDs. Nil processes everything.
	Only map[string]bool

	// Recover may substitute content for a failed doc in batch mode.
	Recover func(d *corpus.Documentable, err error) (doc.Content, bool)

	mu     sync.Mutex
	errs   map[string]error
	values map[string]map[string]any
}

// NewRun creates a run over ix with default settings.
func NewRun(ix *corpus.Index) *Run {
	return &Run{
		ID:      uuid.NewString(),
		Index:   ix,
		Args:    map[string]any{},
		Limit:   DefaultLimit,
		Workers: 1,
		Logger:  log.NewWithOptions(io.Discard, log.Options{}),
		Refs:    NewRefs(),
		errs:    map[string]error{},
		values:  map[string]map[string]any{},
	}
}

// Selected reports whether d takes part in this run.
func (r *Run) Selected(d *corpus.Documentable) bool {
	return r.Only == nil || r.Only[d.ID]
}

// Bool reads a boolean argument. Strings are parsed with strconv.ParseBool;
// anything unparsable yields def.
func (r *Run) Bool(key string, def bool) bool {
	switch v := r.Args[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// Fail handles an error raised while processing d. It returns nil when the
// run can continue, which happens in interactive mode or when Recover
// supplies a replacement. Fatal errors are always returned.
func (r *Run) Fail(d *corpus.Documentable, err error) error {
	if errors.IsFatal(err) {
		return err
	}
	switch {
	case r.Mode == Interactive:
		d.Doc = doc.ErrorBlock(err)
	case r.Recover != nil:
		c, ok := r.Recover(d, err)
		if !ok {
			return err
		}
		d.Doc = c
	default:
		return err
	}

	r.mu.Lock()
	r.errs[d.ID] = err
	r.mu.Unlock()
	r.Logger.Warn("doc failed", "path", d.Path, "err", errors.UserMessage(err))
	return nil
}

// Errors returns the errors isolated during the run, keyed by documentable ID.
func (r *Run) Errors() map[string]error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.errs)
}

// Failed reports whether d failed during the run.
func (r *Run) Failed(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.errs[id]
	return ok
}

// SetValue stores a per-documentable value shared between processors of
// the same run, such as the arguments collected by @set.
func (r *Run) SetValue(id, key string, v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.values[id] == nil {
		r.values[id] = map[string]any{}
	}
	r.values[id][key] = v
}

// Value reads a value stored with SetValue.
func (r *Run) Value(id, key string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.values[id][key]
	return v, ok
}

// Path resolves a source file name against Root.
func (r *Run) Path(file string) string {
	if filepath.IsAbs(file) || r.Root == "" {
		return file
	}
	return filepath.Join(r.Root, filepath.FromSlash(file))
}

// Refs records what each doc read while it was processed: the docs it
// referenced, the files it embedded and the paths its lookups passed
// through. It is safe for concurrent use.
type Refs struct {
	mu      sync.Mutex
	edges   map[string]map[string]bool
	files   map[string]map[string]string
	lookups map[string]map[string]bool
}

// NewRefs creates an empty recorder.
func NewRefs() *Refs {
	return &Refs{
		edges:   map[string]map[string]bool{},
		files:   map[string]map[string]string{},
		lookups: map[string]map[string]bool{},
	}
}

// Add records that from's doc references to's doc.
func (r *Refs) Add(from, to string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.edges[from] == nil {
		r.edges[from] = map[string]bool{}
	}
	r.edges[from][to] = true
}

// AddFile records that from's doc embeds the file at path, whose content
// hashed to hash.
func (r *Refs) AddFile(from, path, hash string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.files[from] == nil {
		r.files[from] = map[string]string{}
	}
	r.files[from][path] = hash
}

// Files returns the files embedded by from, keyed by path.
func (r *Refs) Files(from string) map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.files[from])
}

// AddLookups records the paths a query from from's doc tried. A
// documentable appearing at one of them can change the result.
func (r *Refs) AddLookups(from string, paths ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lookups[from] == nil {
		r.lookups[from] = map[string]bool{}
	}
	for _, p := range paths {
		r.lookups[from][p] = true
	}
}

// Lookups returns the sorted paths recorded with AddLookups.
func (r *Refs) Lookups(from string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Sorted(maps.Keys(r.lookups[from]))
}

// Of returns the sorted targets referenced by from.
func (r *Refs) Of(from string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Sorted(maps.Keys(r.edges[from]))
}

// Sources returns the sorted IDs that reference anything.
func (r *Refs) Sources() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Sorted(maps.Keys(r.edges))
}

// Graph builds the reference graph. Node metadata carries the path when ix
// knows the ID.
func (r *Refs) Graph(ix *corpus.Index) *dag.DAG {
	g := dag.New(nil)
	meta := func(id string) dag.Metadata {
		if ix == nil {
			return nil
		}
		if d, ok := ix.Get(id); ok {
			return dag.Metadata{"path": d.Path}
		}
		return nil
	}
	for _, from := range r.Sources() {
		g.EnsureNode(from, meta(from))
		for _, to := range r.Of(from) {
			g.EnsureNode(to, meta(to))
			_ = g.AddEdge(dag.Edge{From: from, To: to})
		}
	}
	return g
}
