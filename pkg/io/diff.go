package io

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/matzehuels/docsmith/pkg/corpus"
)

// Diff returns a unified diff between the source files under root and the
// files Rewrite would write. It is empty when nothing would change.
func Diff(root string, ix *corpus.Index) (string, error) {
	files := Files(ix)
	names := make([]string, 0, len(files))
	for f := range files {
		names = append(names, f)
	}
	slices.Sort(names)

	var b strings.Builder
	for _, file := range names {
		src, err := os.ReadFile(resolve(root, file))
		if err != nil {
			return "", fmt.Errorf("read %s: %w", file, err)
		}
		out := Splice(src, files[file])
		if string(out) == string(src) {
			continue
		}
		text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(src)),
			B:        difflib.SplitLines(string(out)),
			FromFile: "a/" + file,
			ToFile:   "b/" + file,
			Context:  3,
		})
		if err != nil {
			return "", fmt.Errorf("diff %s: %w", file, err)
		}
		b.WriteString(text)
	}
	return b.String(), nil
}
