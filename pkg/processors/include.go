package processors

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/matzehuels/docsmith/pkg/corpus"
	"github.com/matzehuels/docsmith/pkg/dag"
	"github.com/matzehuels/docsmith/pkg/doc"
	"github.com/matzehuels/docsmith/pkg/errors"
	"github.com/matzehuels/docsmith/pkg/processor"
	"github.com/matzehuels/docsmith/pkg/tags"
)

const (
	// IncludeTag copies the doc of another documentable.
	IncludeTag = "include"

	// PreSortKey enables the topological pre-sort of the include handler.
	PreSortKey = IncludeTag + ".PRE_SORT"
)

// Include returns the processor for "@include [target] extra".
//
// The target is resolved from the including documentable. Its current doc is
// copied with one leading and one trailing newline removed, bracket links are
// qualified so they keep resolving from the new location, and the text is
// escaped when a non-Java doc is included into Java. Anything after the
// target is appended.
//
// Targets that still hold include tags are deferred to a later round, so
// documentables are processed in dependency order even without pre-sorting.
// Cycles surface as a "Circular references detected" error.
func Include() *processor.TagProcessor {
	inc := &include{}
	inc.TagProcessor = processor.NewTagProcessor(processor.TagHandler{
		Name:       IncludeTag,
		Tags:       []string{IncludeTag},
		Sequential: true,
		ProcessTag: inc.processTag,
		FilterProcess: func(d *corpus.Documentable) bool {
			return d.SourceHasDocumentation
		},
		FilterQuery:    includable,
		Sort:           inc.sort,
		OnProcessError: circularReferences,
		Completions: []processor.CompletionInfo{
			processor.Completion(IncludeTag, "ELEMENT", "Copy KDocs of ELEMENT here. Accepts 1 argument."),
		},
	})
	return inc.TagProcessor
}

type include struct {
	*processor.TagProcessor
}

// includable reports whether d may be the target of an include.
func includable(d *corpus.Documentable) bool {
	return d.SourceHasDocumentation && !d.IsTypeAlias
}

func (inc *include) processTag(_ context.Context, tc *processor.TagContext, text string) (string, error) {
	args, err := tags.Arguments(text, IncludeTag, 2)
	if err != nil {
		return "", err
	}
	if len(args) == 0 {
		return "", errors.New(errors.ErrCodeParse, "@%s needs a target", IncludeTag)
	}
	query := tags.DecodeTarget(args[0])
	extra := ""
	if len(args) > 1 {
		extra = args[1]
	}
	tc.Logger.Debug("resolving include", "query", query)

	d := tc.Doc
	target := tc.Index.Query(d, query, func(t *corpus.Documentable) bool { return t.ID != d.ID })
	if target == nil {
		return "", resolutionError(tc.Index, d, query)
	}
	if inc.HasTags(target.Doc) {
		return "", processor.ErrDeferred
	}

	content := doc.TrimBlankEdges(target.Doc)
	switch {
	case d.Language.BracketLinks() && target.Language.BracketLinks():
		content = qualifyLinks(tc.Index.Unfiltered(), d, target, content)
	case target.Language == corpus.Java && doc.HasJavaLinks(content):
		tc.Logger.Warn("{@link} statements are not qualified; use fully qualified paths in docs that are included elsewhere",
			"target", target.Path)
	}
	if d.Language == corpus.Java && target.Language != corpus.Java {
		content = doc.EscapeJava(content)
	}

	tc.Run.Refs.Add(d.ID, target.ID)
	tc.Run.Refs.AddLookups(d.ID, triedPaths(tc.Index, d, query, target.Path)...)
	return appendExtra(string(content), extra), nil
}

// triedPaths returns the candidate paths of query up to and including the
// one it resolved to. A documentable showing up at any of them may change
// what the include copies.
func triedPaths(view *corpus.Index, d *corpus.Documentable, query, resolved string) []string {
	paths := view.AttemptedPaths(d, query)
	if i := slices.Index(paths, resolved); i >= 0 {
		return paths[:i+1]
	}
	return paths
}

// qualifyLinks rewrites the bracket links of content, written in the doc of
// target, so they resolve to the same documentables from d.
func qualifyLinks(all *corpus.Index, d, target *corpus.Documentable, content doc.Content) doc.Content {
	return doc.ReplaceLinks(content, func(ref string) string {
		path, ok := all.ResolvePath(target, ref, func(path string, cand *corpus.Documentable) bool {
			return all.Query(d, path, nil) == cand
		})
		if !ok {
			return ref
		}
		return path
	})
}

// appendExtra appends the text written after the include target. A space
// separates both unless extra already starts with whitespace.
func appendExtra(content, extra string) string {
	if extra == "" {
		return content
	}
	if r, _ := utf8.DecodeRuneInString(extra); !unicode.IsSpace(r) {
		content += " "
	}
	return content + extra
}

// resolutionError tells "self", "found but not includable" and "not found"
// apart by querying without filters.
func resolutionError(view *corpus.Index, d *corpus.Documentable, query string) error {
	all := view.Unfiltered()
	if found := all.Query(d, query, nil); found != nil && found.ID == d.ID {
		return errors.New(errors.ErrCodeSelfReference, "Self-reference detected.")
	}

	var attempted strings.Builder
	for _, p := range all.AttemptedPaths(d, query) {
		fmt.Fprintf(&attempted, "|  %s\n", p)
	}

	if _, ok := all.ResolvePath(d, query, nil); ok {
		return errors.New(errors.ErrCodeUnsupportedTarget,
			"Reference found, but no documentation found for: %q.\n"+
				"Including documentation from outside the library or from type-aliases is currently not supported.\n"+
				"Attempted queries: [\n%s]", query, attempted.String())
	}
	return errors.New(errors.ErrCodeReferenceNotFound,
		"Reference not found: %q.\nAttempted queries: [\n%s]", query, attempted.String())
}

// sort orders docs so include targets come before the docs including them.
// Cyclic graphs keep the input order.
func (inc *include) sort(run *processor.Run, view *corpus.Index, docs []*corpus.Documentable) []*corpus.Documentable {
	if !run.Bool(PreSortKey, true) {
		return docs
	}
	g := includeGraph(view, docs, inc.Supports)
	order, err := g.TopologicalSort()
	if err != nil {
		run.Logger.Debug("include graph is cyclic, keeping input order", "err", err)
		return docs
	}
	pos := dag.PosMap(order)
	sorted := slices.Clone(docs)
	slices.SortStableFunc(sorted, func(a, b *corpus.Documentable) int {
		return pos[a.ID] - pos[b.ID]
	})
	return sorted
}

// IncludeGraph builds the include graph of ix: an edge from every
// documentable holding include tags to each target they resolve to.
// Unresolvable tags are skipped.
func IncludeGraph(ix *corpus.Index) *dag.DAG {
	supports := tags.NameSet(IncludeTag)
	view := ix.WithFilters(nil, includable)
	docs := view.ToProcess(func(d *corpus.Documentable) bool { return tags.Has(d.Doc, supports) })
	return includeGraph(view, docs, supports)
}

func includeGraph(view *corpus.Index, docs []*corpus.Documentable, supports func(string) bool) *dag.DAG {
	g := dag.New(dag.Metadata{"processor": IncludeTag})
	for _, d := range docs {
		g.EnsureNode(d.ID, dag.Metadata{"path": d.Path})
	}
	for _, d := range docs {
		regions, err := tags.Find(d.Doc, supports)
		if err != nil {
			continue
		}
		for _, r := range regions {
			args, err := tags.Arguments(r.Inner(d.Doc), IncludeTag, 2)
			if err != nil || len(args) == 0 {
				continue
			}
			target := view.Query(d, tags.DecodeTarget(args[0]), func(t *corpus.Documentable) bool { return t.ID != d.ID })
			if target == nil {
				continue
			}
			g.EnsureNode(target.ID, dag.Metadata{"path": target.Path})
			_ = g.AddEdge(dag.Edge{From: d.ID, To: target.ID})
		}
	}
	return g
}

// circularReferences lists the documentables that stopped making progress
// together with their current doc.
func circularReferences(_ *processor.Run, stuck []*corpus.Documentable) error {
	byPath := make(map[string][]*corpus.Documentable)
	var paths []string
	for _, d := range stuck {
		if _, ok := byPath[d.Path]; !ok {
			paths = append(paths, d.Path)
		}
		byPath[d.Path] = append(byPath[d.Path], d)
	}
	slices.Sort(paths)

	sections := make([]string, 0, len(paths))
	for _, p := range paths {
		docs := make([]string, 0, len(byPath[p]))
		for _, d := range byPath[p] {
			docs = append(docs, "    "+doc.Render(d.Doc, d.Language.Syntax(), "    "))
		}
		sections = append(sections, p+":\n"+strings.Join(docs, "\n\n")+"\n")
	}
	return errors.New(errors.ErrCodeCircularReference,
		"Circular references detected in @include statements:\n%s", strings.Join(sections, "\n\n"))
}
