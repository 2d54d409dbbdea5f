package tags

import (
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/docsmith/pkg/doc"
	"github.com/matzehuels/docsmith/pkg/errors"
)

func TestFind(t *testing.T) {
	tests := []struct {
		name    string
		content doc.Content
		names   []string
		want    []Region
	}{
		{
			name:    "inline",
			content: "Hello {@include [A]} world",
			names:   []string{"include"},
			want:    []Region{{Name: "include", Start: 6, End: 20}},
		},
		{
			name:    "block ends before next tag line",
			content: "Intro\n@include [A] extra\nmore\n@param x y",
			names:   []string{"include"},
			want:    []Region{{Name: "include", Start: 6, End: 29, Block: true}},
		},
		{
			name:    "block runs to end",
			content: "@include [A]\ntrailing",
			names:   []string{"include"},
			want:    []Region{{Name: "include", Start: 0, End: 21, Block: true}},
		},
		{
			name:    "indented block",
			content: "text\n  @include [A]",
			names:   []string{"include"},
			want:    []Region{{Name: "include", Start: 7, End: 19, Block: true}},
		},
		{
			name:    "nested inline",
			content: "{@a {@b x} y}",
			names:   []string{"a", "b"},
			want: []Region{
				{Name: "a", Start: 0, End: 13},
				{Name: "b", Start: 4, End: 10, Depth: 1, Nested: true},
			},
		},
		{
			name:    "inline inside block",
			content: "@set a {@get b}",
			names:   []string{"set", "get"},
			want: []Region{
				{Name: "set", Start: 0, End: 15, Block: true},
				{Name: "get", Start: 7, End: 15, Nested: true},
			},
		},
		{
			name:    "plain braces counted",
			content: "{@get a {b} c}",
			names:   []string{"get"},
			want:    []Region{{Name: "get", Start: 0, End: 14}},
		},
		{
			name:    "escaped braces ignored",
			content: `\{@include [A]\}`,
			names:   []string{"include"},
		},
		{
			name:    "fenced block tag ignored",
			content: "```\n@include [A]\n```",
			names:   []string{"include"},
		},
		{
			name:    "unsupported tag",
			content: "{@foo bar} @foo",
			names:   []string{"include"},
		},
		{
			name:    "unclosed unsupported tag",
			content: "{@foo bar",
			names:   []string{"include"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Find(tt.content, NameSet(tt.names...))
			if err != nil {
				t.Fatalf("Find() error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Find() = %+v, want %+v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Find()[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFindUnmatched(t *testing.T) {
	for _, content := range []doc.Content{
		"{@include [A]",
		"{@include {@include [B]}",
		"{@get a {b}",
	} {
		_, err := Find(content, NameSet("include", "get"))
		if !errors.Is(err, errors.ErrCodeParse) {
			t.Errorf("Find(%q) error = %v, want %s", content, err, errors.ErrCodeParse)
		}
	}
}

func TestRegionText(t *testing.T) {
	c := doc.Content("See {@include [A] extra}.")
	regions, err := Find(c, NameSet("include"))
	if err != nil || len(regions) != 1 {
		t.Fatalf("Find() = %v, %v", regions, err)
	}
	if got := regions[0].Text(c); got != "{@include [A] extra}" {
		t.Errorf("Text() = %q", got)
	}
	if got := regions[0].Inner(c); got != "@include [A] extra" {
		t.Errorf("Inner() = %q", got)
	}
}

func TestHas(t *testing.T) {
	supported := NameSet("include")
	if !Has("{@include [A]}", supported) {
		t.Error("Has() = false, want true")
	}
	if Has("no tags @param x", supported) {
		t.Error("Has() = true, want false")
	}
	if !Has("{@include [A]", supported) {
		t.Error("Has() on parse error = false, want true")
	}
}

func TestReplace(t *testing.T) {
	c := doc.Content("a {@x} b {@y} c")
	regions, err := Find(c, NameSet("x", "y"))
	if err != nil {
		t.Fatal(err)
	}
	// reversed order on purpose
	regions[0], regions[1] = regions[1], regions[0]
	got := Replace(c, regions, []string{"Y", "X"})
	if got != "a X b Y c" {
		t.Errorf("Replace() = %q, want %q", got, "a X b Y c")
	}
}

func TestFindRegionsPartitionDoc(t *testing.T) {
	all := func(string) bool { return true }
	tests := []doc.Content{
		"plain text only",
		"Desc {@a x} more\n@b one\n@c two {@d y}",
		"Desc\n\n@a {@b {@c z}} tail\ncontinued\n@d",
		"{@a {@b} {@c}} start\n@e x",
		"desc\n```\n@notatag\n```\n@a x",
		"@a first line\n@b second",
		"Desc \\{@a} escaped\n@b",
		"{@a outer {@b mid {@c inner}} {@d}}\n@e {@f}\n@g",
	}
	for _, c := range tests {
		regions, err := Find(c, all)
		if err != nil {
			t.Fatalf("Find(%q) error: %v", c, err)
		}

		// Regions are disjoint unless one encloses the other, and an
		// enclosed inline tag sits deeper than its enclosing one.
		for i, a := range regions {
			for _, b := range regions[i+1:] {
				disjoint := a.End <= b.Start || b.End <= a.Start
				switch {
				case disjoint:
				case a.Block && b.Block:
					t.Errorf("%q: blocks %v and %v overlap", c, a, b)
				case a.Contains(b) && !a.Block && b.Depth <= a.Depth:
					t.Errorf("%q: %v encloses %v at the same depth", c, a, b)
				case !a.Contains(b) && !b.Contains(a):
					t.Errorf("%q: %v and %v overlap", c, a, b)
				}
			}
		}

		var blocks, top []Region
		for _, r := range regions {
			if r.Block {
				blocks = append(blocks, r)
			}
			if !slices.ContainsFunc(regions, func(o Region) bool { return o.Contains(r) }) {
				top = append(top, r)
			}
		}

		rest := Replace(c, blocks, make([]string, len(blocks)))
		if got, want := strings.TrimRight(string(rest), "\n"), string(c.Description()); got != want {
			t.Errorf("%q without block tags = %q, want Description() %q", c, got, want)
		}

		plain := Replace(c, top, make([]string, len(top)))
		if left, err := Find(plain, all); err != nil || len(left) > 0 {
			t.Errorf("%q without tags = %q, still has %v (err %v)", c, plain, left, err)
		}
	}
}
