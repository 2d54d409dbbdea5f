// Package tags locates tag regions inside doc content.
//
// Two kinds of regions exist. A block tag starts at a line whose first
// non-blank characters are "@name" and runs until the line before the next
// block tag (of any name) or the end of the content. An inline tag is
// delimited by "{@name" and its matching "}"; inline tags nest and are
// matched by counting braces.
//
// [Find] returns regions in source order. [Arguments] splits a tag's text
// into arguments while respecting bracket and quote nesting, and
// [Highlights] describes a region for editor integrations.
package tags

import (
	"slices"
	"strings"

	"github.com/matzehuels/docsmith/pkg/doc"
	"github.com/matzehuels/docsmith/pkg/errors"
)

// Region is a located tag inside a doc content.
type Region struct {
	Name  string `json:"name"`
	Start int    `json:"start"` // offset of '@' for block tags, '{' for inline tags
	End   int    `json:"end"`   // exclusive
	Block bool   `json:"block"`
	// Depth counts the inline tags enclosing this one.
	Depth int `json:"depth"`
	// Nested is set for inline tags inside another tag's content.
	Nested bool `json:"nested"`
}

// Text returns the raw text of the region.
func (r Region) Text(c doc.Content) string { return string(c)[r.Start:r.End] }

// Inner returns the region text without inline braces, starting at '@'.
func (r Region) Inner(c doc.Content) string {
	if r.Block {
		return r.Text(c)
	}
	return string(c)[r.Start+1 : r.End-1]
}

// Contains reports whether o lies strictly within r.
func (r Region) Contains(o Region) bool {
	return r.Start <= o.Start && o.End <= r.End && r != o
}

// Find locates every tag region whose name satisfies supported, ordered by
// start offset. Unmatched inline delimiters of a supported tag are a
// PARSE_ERROR.
func Find(c doc.Content, supported func(name string) bool) ([]Region, error) {
	inline, err := findInline(string(c), supported)
	if err != nil {
		return nil, err
	}
	blocks := findBlocks(string(c), inline)

	var out []Region
	for _, r := range blocks {
		if supported(r.Name) {
			out = append(out, r)
		}
	}
	for _, r := range inline {
		if !supported(r.Name) {
			continue
		}
		for _, b := range blocks {
			if b.Contains(r) {
				r.Nested = true
				break
			}
		}
		out = append(out, r)
	}
	slices.SortStableFunc(out, func(a, b Region) int {
		if a.Start != b.Start {
			return a.Start - b.Start
		}
		return b.End - a.End
	})
	return out, nil
}

// Has reports whether c contains at least one supported tag. Parse errors
// count as containing a tag so that callers surface them.
func Has(c doc.Content, supported func(name string) bool) bool {
	regions, err := Find(c, supported)
	return err != nil || len(regions) > 0
}

// NameSet returns a predicate matching the given tag names.
func NameSet(names ...string) func(string) bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

type opener struct {
	pos  int
	name string // empty for a plain '{'
}

func findInline(s string, supported func(string) bool) ([]Region, error) {
	var stack []opener
	var out []Region

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			if escaped(s, i) {
				continue
			}
			name := ""
			if i+1 < len(s) && s[i+1] == '@' {
				if n, _, ok := doc.BlockTagName(s[i+1:]); ok {
					name = n
				}
			}
			stack = append(stack, opener{pos: i, name: name})
		case '}':
			if escaped(s, i) || len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if top.name == "" {
				continue
			}
			depth := 0
			for _, o := range stack {
				if o.name != "" {
					depth++
				}
			}
			out = append(out, Region{
				Name:   top.name,
				Start:  top.pos,
				End:    i + 1,
				Depth:  depth,
				Nested: depth > 0,
			})
		}
	}

	for _, o := range stack {
		if o.name != "" && supported(o.name) {
			return nil, errors.New(errors.ErrCodeParse,
				"unmatched '{' for inline tag @%s at offset %d", o.name, o.pos)
		}
	}
	return out, nil
}

func findBlocks(s string, inline []Region) []Region {
	var starts []Region
	inFence := false
	lineStart := 0
	for lineStart <= len(s) {
		lineEnd := strings.IndexByte(s[lineStart:], '\n')
		if lineEnd < 0 {
			lineEnd = len(s)
		} else {
			lineEnd += lineStart
		}
		line := s[lineStart:lineEnd]
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
		}
		if !inFence {
			if name, _, ok := doc.BlockTagName(trimmed); ok {
				at := lineStart + len(line) - len(trimmed)
				if !insideInline(at, inline) {
					starts = append(starts, Region{Name: name, Start: at, Block: true})
				}
			}
		}
		lineStart = lineEnd + 1
	}

	for i := range starts {
		if i+1 < len(starts) {
			// end before the newline that precedes the next tag line
			next := starts[i+1].Start
			end := strings.LastIndexByte(s[:next], '\n')
			if end < starts[i].Start {
				end = next
			}
			starts[i].End = end
		} else {
			starts[i].End = len(s)
		}
	}
	return starts
}

func insideInline(pos int, inline []Region) bool {
	for _, r := range inline {
		if r.Start < pos && pos < r.End {
			return true
		}
	}
	return false
}

func escaped(s string, i int) bool { return i > 0 && s[i-1] == '\\' }

// Replace substitutes non-overlapping regions of c with the given texts.
// Regions may be given in any order.
func Replace(c doc.Content, regions []Region, texts []string) doc.Content {
	idx := make([]int, len(regions))
	for i := range idx {
		idx[i] = i
	}
	slices.SortFunc(idx, func(a, b int) int { return regions[a].Start - regions[b].Start })

	s := string(c)
	var b strings.Builder
	last := 0
	for _, i := range idx {
		r := regions[i]
		b.WriteString(s[last:r.Start])
		b.WriteString(texts[i])
		last = r.End
	}
	b.WriteString(s[last:])
	return doc.Content(b.String())
}
