package corpus

import (
	"slices"
	"sync"
	"testing"

	"github.com/matzehuels/docsmith/pkg/doc"
)

func mk(id, path, pkg string) *Documentable {
	return &Documentable{
		ID:                     id,
		Path:                   path,
		Package:                pkg,
		Language:               Kotlin,
		SourceDoc:              doc.Content("doc of " + path),
		Doc:                    doc.Content("doc of " + path),
		SourceHasDocumentation: true,
	}
}

func TestCandidates(t *testing.T) {
	from := mk("1", "a.b.Foo.bar", "a.b")
	from.ExtensionPath = "x.Ext"
	from.Imports = []Import{
		{Path: "c.d.*"},
		{Path: "e.f.Baz"},
		{Path: "g.h.Other", Alias: "Q"},
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "scopes then extension then star then query",
			query: "Q",
			want: []string{
				"a.b.Foo.bar.Q", "a.b.Foo.Q", "a.b.Q",
				"x.Ext.Q", "x.Q",
				"g.h.Other",
				"c.d.Q",
				"Q",
			},
		},
		{
			name:  "explicit import with member",
			query: "Baz.qux",
			want: []string{
				"a.b.Foo.bar.Baz.qux", "a.b.Foo.Baz.qux", "a.b.Baz.qux",
				"x.Ext.Baz.qux", "x.Baz.qux",
				"e.f.Baz.qux",
				"c.d.Baz.qux",
				"Baz.qux",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Candidates(from, tt.query); !slices.Equal(got, tt.want) {
				t.Errorf("Candidates(%q) =\n%q\nwant\n%q", tt.query, got, tt.want)
			}
		})
	}
}

func TestCandidatesWithoutPackage(t *testing.T) {
	got := Candidates(mk("1", "a.b.C", ""), "D")
	want := []string{"a.b.C.D", "a.b.D", "a.D", "D"}
	if !slices.Equal(got, want) {
		t.Errorf("Candidates() = %q, want %q", got, want)
	}
	if got := Candidates(nil, "a.D"); !slices.Equal(got, []string{"a.D"}) {
		t.Errorf("Candidates(nil) = %q", got)
	}
}

func TestQueryShadowing(t *testing.T) {
	from := mk("from", "a.b.Foo", "a.b")
	inner := mk("inner", "a.b.Foo.Bar", "a.b")
	outer := mk("outer", "a.b.Bar", "a.b")
	ix := MustIndex(from, inner, outer)

	if got := ix.Query(from, "Bar", nil); got != inner {
		t.Errorf("Query(Bar) = %v, want innermost %s", got, inner.ID)
	}
	if got := ix.Query(from, "a.b.Bar", nil); got != outer {
		t.Errorf("Query(a.b.Bar) = %v, want qualified %s", got, outer.ID)
	}
	if got := ix.Query(from, "Missing", nil); got != nil {
		t.Errorf("Query(Missing) = %v, want nil", got)
	}
}

func TestQueryFilters(t *testing.T) {
	from := mk("from", "a.Foo", "a")
	undocumented := mk("undoc", "a.Bar", "a")
	undocumented.SourceHasDocumentation = false
	ix := MustIndex(from, undocumented)

	hasDoc := func(d *Documentable) bool { return d.SourceHasDocumentation }
	view := ix.WithFilters(hasDoc, hasDoc)

	if got := view.Query(from, "Bar", nil); got != nil {
		t.Errorf("filtered Query(Bar) = %v, want nil", got.ID)
	}
	if got := view.Unfiltered().Query(from, "Bar", nil); got != undocumented {
		t.Errorf("unfiltered Query(Bar) = %v, want %s", got, undocumented.ID)
	}
	notSelf := func(d *Documentable) bool { return d.ID != from.ID }
	if got := view.Query(from, "Foo", notSelf); got != nil {
		t.Errorf("Query(Foo, notSelf) = %v, want nil", got.ID)
	}
	if got := view.ToProcess(nil); len(got) != 1 || got[0] != from {
		t.Errorf("ToProcess() = %v, want [from]", got)
	}
	if !view.Filtered() || view.Unfiltered().Filtered() {
		t.Error("Filtered() mismatch")
	}
}

func TestQuerySamePathIDOrder(t *testing.T) {
	b := mk("b", "a.Over", "a")
	a := mk("a", "a.Over", "a")
	ix := MustIndex(b, a)
	if got := ix.Query(nil, "a.Over", nil); got != a {
		t.Errorf("Query() = %s, want lowest id a", got.ID)
	}
	skipA := func(d *Documentable) bool { return d.ID != "a" }
	if got := ix.Query(nil, "a.Over", skipA); got != b {
		t.Errorf("Query(skipA) = %v, want b", got)
	}
}

func TestQueryImports(t *testing.T) {
	from := mk("from", "app.Main", "app")
	from.Imports = []Import{{Path: "lib.util.*"}, {Path: "lib.Helper", Alias: "H"}}
	helper := mk("helper", "lib.Helper", "lib")
	tool := mk("tool", "lib.util.Tool", "lib.util")
	ix := MustIndex(from, helper, tool)

	if got := ix.Query(from, "H", nil); got != helper {
		t.Errorf("Query(H) = %v, want helper", got)
	}
	if got := ix.Query(from, "Tool", nil); got != tool {
		t.Errorf("Query(Tool) = %v, want tool", got)
	}
}

func TestResolvePath(t *testing.T) {
	from := mk("from", "a.b.Foo", "a.b")
	target := mk("target", "a.b.Bar", "a.b")
	ix := MustIndex(from, target)

	path, ok := ix.ResolvePath(from, "Bar", nil)
	if !ok || path != "a.b.Bar" {
		t.Errorf("ResolvePath(Bar) = %q, %v, want a.b.Bar", path, ok)
	}
	_, ok = ix.ResolvePath(from, "Bar", func(string, *Documentable) bool { return false })
	if ok {
		t.Error("ResolvePath() with rejecting predicate succeeded")
	}
}

func TestQueryMemoConcurrent(t *testing.T) {
	from := mk("from", "a.Foo", "a")
	bar := mk("bar", "a.Bar", "a")
	ix := MustIndex(from, bar)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				if got := ix.Query(from, "Bar", nil); got != bar {
					t.Errorf("Query(Bar) = %v, want bar", got)
					return
				}
				ix.Invalidate()
			}
		}()
	}
	wg.Wait()
}

func TestNewIndexErrors(t *testing.T) {
	tests := []struct {
		name string
		docs []*Documentable
	}{
		{"duplicate id", []*Documentable{mk("x", "a.A", ""), mk("x", "a.B", "")}},
		{"missing id", []*Documentable{mk("", "a.A", "")}},
		{"missing path", []*Documentable{mk("x", "", "")}},
		{"outside package", []*Documentable{mk("x", "b.A", "a")}},
		{"bad language", []*Documentable{{ID: "x", Path: "a", Language: "cobol"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewIndex(tt.docs); err == nil {
				t.Error("NewIndex() error = nil, want error")
			}
		})
	}
}
