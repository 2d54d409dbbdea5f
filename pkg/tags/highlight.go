package tags

import "github.com/matzehuels/docsmith/pkg/doc"

// Kind classifies a highlighted range.
type Kind string

const (
	KindBracket    Kind = "bracket"
	KindTag        Kind = "tag"
	KindTagKey     Kind = "tag-key"
	KindTagValue   Kind = "tag-value"
	KindComment    Kind = "comment"
	KindBackground Kind = "background"
)

// Range is an inclusive offset range, as editors expect it.
type Range struct {
	First int `json:"first"`
	Last  int `json:"last"`
}

// Highlight describes how part of a tag should be colored.
type Highlight struct {
	Tag     string      `json:"tag,omitempty"`
	Kind    Kind        `json:"kind"`
	Ranges  []Range     `json:"ranges"`
	Related []Highlight `json:"related,omitempty"`
}

// Highlights describes region r of c. keyed selects whether the first
// argument is highlighted as a key, and valued whether the second argument is
// highlighted as a value.
func Highlights(c doc.Content, r Region, keyed, valued bool) []Highlight {
	var out []Highlight
	first := r.Start
	tagStart := r.Start
	if !r.Block {
		tagStart++
	}

	var left, right Highlight
	if !r.Block {
		left = Highlight{Tag: r.Name, Kind: KindBracket, Ranges: []Range{{r.Start, r.Start}}}
		right = Highlight{Tag: r.Name, Kind: KindBracket, Ranges: []Range{{r.End - 1, r.End - 1}}}
	}

	out = append(out, Highlight{
		Tag:    r.Name,
		Kind:   KindTag,
		Ranges: []Range{{tagStart, tagStart + len(r.Name)}},
	})
	if !r.Block {
		l, rr := left, right
		l.Related = []Highlight{right}
		rr.Related = []Highlight{left}
		out = append(out, l, rr)
	}

	last := tagStart + len(r.Name)
	if keyed || valued {
		if _, spans, err := argumentSpans(r.Inner(c), r.Name, 2); err == nil {
			offset := tagStart
			if keyed && len(spans) > 0 {
				sp := spans[0]
				out = append(out, Highlight{Tag: r.Name, Kind: KindTagKey, Ranges: []Range{{offset + sp.Start, offset + sp.End - 1}}})
				last = offset + sp.End - 1
			}
			if valued && len(spans) > 1 {
				sp := spans[1]
				out = append(out, Highlight{Tag: r.Name, Kind: KindTagValue, Ranges: []Range{{offset + sp.Start, offset + sp.End - 1}}})
			}
		}
	}

	bg := Highlight{Kind: KindBackground, Ranges: []Range{{first, last}}}
	if !r.Block {
		bg.Ranges = append(bg.Ranges, Range{r.End - 1, r.End - 1})
		bg.Related = []Highlight{left, right}
	}
	return append(out, bg)
}

// CommentHighlight marks the whole region as a comment.
func CommentHighlight(r Region) []Highlight {
	return []Highlight{{Tag: r.Name, Kind: KindComment, Ranges: []Range{{r.Start, r.End - 1}}}}
}
