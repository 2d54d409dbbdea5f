package io

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/docsmith/pkg/corpus"
	"github.com/matzehuels/docsmith/pkg/doc"
	"github.com/matzehuels/docsmith/pkg/source/discover"
)

// RewriteOptions configures Rewrite.
type RewriteOptions struct {
	// OutDir receives the rewritten files under their root-relative paths.
	// Empty rewrites the files in place.
	OutDir string

	// All writes every source file to OutDir, changed or not.
	All bool
}

// Splice returns src with the docs of the documentables replaced by their
// rendered processed docs. The documentables must belong to src.
func Splice(src []byte, docs []*corpus.Documentable) []byte {
	docs = slices.Clone(docs)
	slices.SortStableFunc(docs, func(a, b *corpus.Documentable) int {
		if a.DocStart != b.DocStart {
			return a.DocStart - b.DocStart
		}
		return b.DocEnd - a.DocEnd
	})

	var b strings.Builder
	pos := 0
	for i, d := range docs {
		if d.DocStart < pos || d.DocEnd > len(src) {
			continue
		}
		// Documentables declared together share one comment.
		if i > 0 && docs[i-1].DocStart == d.DocStart && docs[i-1].DocEnd == d.DocEnd {
			continue
		}
		if d.Doc == d.SourceDoc {
			continue
		}

		start, end := d.DocStart, d.DocEnd
		var repl string
		switch {
		case start == end && d.Doc.IsBlank():
			continue
		case start == end:
			repl = d.Indent + doc.Render(d.Doc, d.Language.Syntax(), d.Indent) + "\n"
		case d.Doc.IsBlank():
			start, end = lineBounds(src, start, end)
		default:
			repl = doc.Render(d.Doc, d.Language.Syntax(), d.Indent)
		}
		b.Write(src[pos:start])
		b.WriteString(repl)
		pos = end
	}
	b.Write(src[pos:])
	return []byte(b.String())
}

// lineBounds widens [start, end) to whole lines when nothing else shares
// them, so removing a comment leaves no blank line behind.
func lineBounds(src []byte, start, end int) (int, int) {
	s := start
	for s > 0 && (src[s-1] == ' ' || src[s-1] == '\t') {
		s--
	}
	if s > 0 && src[s-1] != '\n' {
		return start, end
	}
	e := end
	for e < len(src) && (src[e] == ' ' || src[e] == '\t') {
		e++
	}
	if e < len(src) && src[e] != '\n' {
		return start, end
	}
	if e < len(src) {
		e++
	}
	return s, e
}

// Files groups the documentables of ix by source file, skipping
// documentables that do not come from a Go, Java or Kotlin file.
func Files(ix *corpus.Index) map[string][]*corpus.Documentable {
	out := make(map[string][]*corpus.Documentable)
	for _, d := range ix.All() {
		if d.File == "" || discover.LanguageOf(d.File) == "" {
			continue
		}
		out[d.File] = append(out[d.File], d)
	}
	return out
}

// Rewrite splices the processed docs of ix into the source files under
// root and writes the result. It returns the sorted root-relative paths of
// the files that changed.
func Rewrite(root string, ix *corpus.Index, opts RewriteOptions) ([]string, error) {
	var changed []string
	for file, docs := range Files(ix) {
		src, err := os.ReadFile(resolve(root, file))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		out := Splice(src, docs)
		same := string(out) == string(src)
		if !same {
			changed = append(changed, file)
		}
		if same && (opts.OutDir == "" || !opts.All) {
			continue
		}

		dst := resolve(root, file)
		if opts.OutDir != "" {
			if filepath.IsAbs(file) {
				return nil, fmt.Errorf("cannot place %s under %s", file, opts.OutDir)
			}
			dst = filepath.Join(opts.OutDir, filepath.FromSlash(file))
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(dst, out, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", dst, err)
		}
	}
	slices.Sort(changed)
	return changed, nil
}

func resolve(root, file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(root, filepath.FromSlash(file))
}
