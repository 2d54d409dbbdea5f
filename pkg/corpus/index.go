package corpus

import (
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/matzehuels/docsmith/pkg/errors"
)

// Filter selects documentables.
type Filter func(*Documentable) bool

// Index owns the documentables of a corpus and resolves path queries.
//
// An Index value is a view: [Index.WithFilters] and [Index.Unfiltered] return
// new views over the same documentables. Queries never mutate documentables
// and may run concurrently; results are memoized per view.
type Index struct {
	*store
	process Filter // documentables a processor works on
	query   Filter // documentables a processor may resolve
	memo    *memoTable
}

type store struct {
	docs   map[string]*Documentable
	ids    []string // sorted
	byPath map[string][]*Documentable

	gen        atomic.Uint64
	unfiltered *memoTable
}

type memoKey struct {
	from  string
	query string
}

// memoTable maps (from, query) to the resolved ID, or "" for no match.
// Entries from an older generation are dropped lazily.
type memoTable struct {
	mu  sync.RWMutex
	gen uint64
	m   map[memoKey]string
}

func newMemoTable() *memoTable { return &memoTable{m: make(map[memoKey]string)} }

func (t *memoTable) get(gen uint64, k memoKey) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.gen != gen {
		return "", false
	}
	id, ok := t.m[k]
	return id, ok
}

func (t *memoTable) put(gen uint64, k memoKey, id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.gen != gen {
		clear(t.m)
		t.gen = gen
	}
	t.m[k] = id
}

// NewIndex indexes docs. IDs must be unique.
func NewIndex(docs []*Documentable) (*Index, error) {
	s := &store{
		docs:       make(map[string]*Documentable, len(docs)),
		byPath:     make(map[string][]*Documentable),
		unfiltered: newMemoTable(),
	}
	for _, d := range docs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, dup := s.docs[d.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate documentable id %q", d.ID)
		}
		s.docs[d.ID] = d
		s.ids = append(s.ids, d.ID)
		s.byPath[d.Path] = append(s.byPath[d.Path], d)
	}
	slices.Sort(s.ids)
	for _, ds := range s.byPath {
		slices.SortFunc(ds, func(a, b *Documentable) int { return strings.Compare(a.ID, b.ID) })
	}
	return &Index{store: s, memo: s.unfiltered}, nil
}

// MustIndex is like NewIndex but panics on error. Intended for tests.
func MustIndex(docs ...*Documentable) *Index {
	ix, err := NewIndex(docs)
	if err != nil {
		panic(err)
	}
	return ix
}

// WithFilters returns a view whose ToProcess honors process and whose
// queries only return documentables accepted by query. Either may be nil.
func (ix *Index) WithFilters(process, query Filter) *Index {
	v := &Index{store: ix.store, process: process, query: query, memo: ix.unfiltered}
	if query != nil {
		v.memo = newMemoTable()
	}
	return v
}

// Unfiltered returns a view that ignores every filter. It is used to tell
// "found but excluded" apart from "not found".
func (ix *Index) Unfiltered() *Index {
	return &Index{store: ix.store, memo: ix.unfiltered}
}

// Filtered reports whether the view applies a query filter.
func (ix *Index) Filtered() bool { return ix.query != nil }

// Len returns the number of documentables.
func (ix *Index) Len() int { return len(ix.ids) }

// Get returns the documentable with the given ID.
func (ix *Index) Get(id string) (*Documentable, bool) {
	d, ok := ix.docs[id]
	return d, ok
}

// All returns every documentable in ID order, ignoring filters.
func (ix *Index) All() []*Documentable {
	out := make([]*Documentable, len(ix.ids))
	for i, id := range ix.ids {
		out[i] = ix.docs[id]
	}
	return out
}

// ToProcess returns the documentables accepted by the process filter and f,
// in ID order. f may be nil.
func (ix *Index) ToProcess(f Filter) []*Documentable {
	var out []*Documentable
	for _, id := range ix.ids {
		d := ix.docs[id]
		if ix.process != nil && !ix.process(d) {
			continue
		}
		if f != nil && !f(d) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// ByPath returns the documentables sharing path, in ID order, honoring the
// query filter.
func (ix *Index) ByPath(path string) []*Documentable {
	ds := ix.byPath[path]
	if ix.query == nil {
		return ds
	}
	var out []*Documentable
	for _, d := range ds {
		if ix.query(d) {
			out = append(out, d)
		}
	}
	return out
}

// Paths returns all distinct paths in sorted order.
func (ix *Index) Paths() []string {
	paths := make([]string, 0, len(ix.byPath))
	for p := range ix.byPath {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// Invalidate drops every memoized query result of every view.
func (ix *Index) Invalidate() { ix.gen.Add(1) }

// Clone returns an unfiltered index over deep copies of the documentables.
func (ix *Index) Clone() *Index {
	docs := make([]*Documentable, 0, len(ix.ids))
	for _, id := range ix.ids {
		docs = append(docs, ix.docs[id].Clone())
	}
	c, _ := NewIndex(docs)
	return c
}

// Reset restores the working doc of every documentable.
func (ix *Index) Reset() {
	for _, d := range ix.docs {
		d.Reset()
	}
	ix.Invalidate()
}
