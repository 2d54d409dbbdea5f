package tags

import (
	"slices"
	"testing"

	"github.com/matzehuels/docsmith/pkg/errors"
)

func TestArguments(t *testing.T) {
	tests := []struct {
		name string
		text string
		tag  string
		n    int
		want []string
	}{
		{"key and extra", "@include [a.b.C] extra text", "include", 2, []string{"[a.b.C]", "extra text"}},
		{"braced", "{@include [a.b.C]}", "include", 2, []string{"[a.b.C]"}},
		{"leading newline kept", "@include\n[a.b.C]\n extra", "include", 2, []string{"[a.b.C]", "\n extra"}},
		{"value with spaces", "@set key value with spaces", "set", 2, []string{"key", "value with spaces"}},
		{"generic type", "@include [Map<K, V>] x", "include", 2, []string{"[Map<K, V>]", "x"}},
		{"quoted", `@get "a b" c`, "get", 2, []string{`"a b"`, "c"}},
		{"nested brackets", "@include [a[b](c)] rest", "include", 2, []string{"[a[b](c)]", "rest"}},
		{"no arguments", "@include", "include", 2, nil},
		{"single free argument", "@comment anything [ here", "comment", 1, []string{"anything [ here"}},
		{"three", "@x a b c d", "x", 3, []string{"a", "b", "c d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Arguments(tt.text, tt.tag, tt.n)
			if err != nil {
				t.Fatalf("Arguments() error: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Arguments(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestArgumentsErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		tag  string
		code errors.Code
	}{
		{"unbalanced bracket", "@include [a.b.C extra", "include", errors.ErrCodeParse},
		{"unexpected closer", "@include a) b", "include", errors.ErrCodeParse},
		{"unclosed quote", `@include "a b`, "include", errors.ErrCodeParse},
		{"tag mismatch", "@includeFile (a.md)", "include", errors.ErrCodeInternal},
		{"missing tag", "include [A]", "include", errors.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Arguments(tt.text, tt.tag, 2)
			if !errors.Is(err, tt.code) {
				t.Errorf("Arguments(%q) error = %v, want %s", tt.text, err, tt.code)
			}
		})
	}
}

func TestDecodeTarget(t *testing.T) {
	tests := []struct{ in, want string }{
		{"[a.b.Foo]", "a.b.Foo"},
		{"foo()", "foo"},
		{" [ Foo ] ", "Foo"},
		{"[bar()]", "bar"},
		{"Foo", "Foo"},
	}
	for _, tt := range tests {
		if got := DecodeTarget(tt.in); got != tt.want {
			t.Errorf("DecodeTarget(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDecodeFileTarget(t *testing.T) {
	tests := []struct{ in, want string }{
		{`("docs/a.md")`, "docs/a.md"},
		{"(docs/a.md)", "docs/a.md"},
		{"'x.md'", "x.md"},
		{"x.md", "x.md"},
	}
	for _, tt := range tests {
		if got := DecodeFileTarget(tt.in); got != tt.want {
			t.Errorf("DecodeFileTarget(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
