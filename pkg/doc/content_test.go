package doc

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		want       Content
		wantSyntax Syntax
	}{
		{"single line block", "/** Hello */", "Hello", SyntaxBlock},
		{"empty block", "/** */", "", SyntaxBlock},
		{"multi line block", "/**\n * Hello\n * World\n */", "Hello\nWorld", SyntaxBlock},
		{"indented block", "    /**\n     * Hello\n     *   code\n     */", "Hello\n  code", SyntaxBlock},
		{"blank inner line", "/**\n * a\n *\n * b\n */", "a\n\nb", SyntaxBlock},
		{"content on first line", "/** First\n * Second\n */", "First\nSecond", SyntaxBlock},
		{"content on last line", "/**\n * a\n * b */", "a\nb", SyntaxBlock},
		{"crlf", "/**\r\n * a\r\n */", "a", SyntaxBlock},
		{"plain block comment", "/*\n * a\n */", "a", SyntaxBlock},
		{"line comments", "// Foo does things.\n//\n// Details.", "Foo does things.\n\nDetails.", SyntaxLine},
		{"indented line comments", "\t// a\n\t//   b", "a\n  b", SyntaxLine},
		{"no comment", "just text", "just text", SyntaxNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, syntax := Parse(tt.raw)
			if got != tt.want {
				t.Errorf("Parse() = %q, want %q", got, tt.want)
			}
			if syntax != tt.wantSyntax {
				t.Errorf("Parse() syntax = %v, want %v", syntax, tt.wantSyntax)
			}
		})
	}
}

func TestRenderRoundTrip(t *testing.T) {
	contents := []Content{
		"",
		"Hello",
		"Hello\nWorld",
		"\nHello\n",
		"  indented\n    more",
		"* bullet\n* list",
		"a\n\n\nb",
		"@param x The x.\n@return Nothing.",
		"trailing space ",
	}

	for _, syntax := range []Syntax{SyntaxBlock, SyntaxLine} {
		for _, c := range contents {
			rendered := Render(c, syntax, "    ")
			got, gotSyntax := Parse(rendered)
			if got != c {
				t.Errorf("Parse(Render(%q, %v)) = %q, want %q (rendered %q)", c, syntax, got, c, rendered)
			}
			if gotSyntax != syntax {
				t.Errorf("Parse(Render(%q)) syntax = %v, want %v", c, gotSyntax, syntax)
			}
		}
	}
}

func TestRender(t *testing.T) {
	got := Render("Hello\n\nWorld", SyntaxBlock, "  ")
	want := "/**\n   * Hello\n   *\n   * World\n   */"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}

	got = Render("Hello\n\nWorld", SyntaxLine, "\t")
	want = "// Hello\n\t//\n\t// World"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestTrimBlankEdges(t *testing.T) {
	tests := []struct {
		in   Content
		want Content
	}{
		{"\nHello\n", "Hello"},
		{"Hello", "Hello"},
		{"\n\nHello\n\n", "\nHello\n"},
		{"\n", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := TrimBlankEdges(tt.in); got != tt.want {
			t.Errorf("TrimBlankEdges(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestErrorBlock(t *testing.T) {
	got := ErrorBlock(errors.New("Reference not found"))
	want := Content("```\nReference not found\n```")
	if got != want {
		t.Errorf("ErrorBlock() = %q, want %q", got, want)
	}
}

func TestIndent(t *testing.T) {
	if got := Indent("a\nb", 4); got != "    a\n    b" {
		t.Errorf("Indent() = %q", got)
	}
}
