package cli

import (
	"bytes"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/docsmith/pkg/config"
	"github.com/matzehuels/docsmith/pkg/corpus"
	"github.com/matzehuels/docsmith/pkg/doc"
	"github.com/matzehuels/docsmith/pkg/errors"
	"github.com/matzehuels/docsmith/pkg/tags"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func TestRenderHighlights(t *testing.T) {
	c := doc.Content("See @include [Note] here.")
	hs := []tags.Highlight{
		{Tag: "include", Kind: tags.KindTag, Ranges: []tags.Range{{First: 4, Last: 11}}},
		{Tag: "include", Kind: tags.KindBracket, Ranges: []tags.Range{{First: 13, Last: 13}, {First: 18, Last: 18}}},
		{Tag: "include", Kind: tags.KindBackground, Ranges: []tags.Range{{First: 0, Last: 24}}},
		{Tag: "include", Kind: tags.KindTagValue, Ranges: []tags.Range{{First: 14, Last: 40}}},
	}

	got := ansi.ReplaceAllString(renderHighlights(c, hs), "")
	if got != string(c) {
		t.Errorf("renderHighlights() text = %q, want %q", got, c)
	}
	if got := renderHighlights("", hs); got != "" {
		t.Errorf("renderHighlights(\"\") = %q, want empty", got)
	}
}

func TestWriteDiff(t *testing.T) {
	diff := "--- a/A.kt\n+++ b/A.kt\n@@ -1,1 +1,1 @@\n-old\n+new\n context\n"
	var buf bytes.Buffer
	writeDiff(&buf, diff)
	if got := ansi.ReplaceAllString(buf.String(), ""); got != diff {
		t.Errorf("writeDiff() text = %q, want %q", got, diff)
	}
}

func TestChangedDocs(t *testing.T) {
	prev := processedDocs([]*corpus.Documentable{
		{ID: "a", Doc: "A."},
		{ID: "b", Doc: "B."},
		{ID: "gone", Doc: "G."},
	})
	cur := processedDocs([]*corpus.Documentable{
		{ID: "b", Doc: "B changed."},
		{ID: "a", Doc: "A."},
		{ID: "new", Doc: ""},
	})

	want := []string{"b", "new"}
	if got := changedDocs(prev, cur); !slices.Equal(got, want) {
		t.Errorf("changedDocs() = %v, want %v", got, want)
	}
	if got := changedDocs(cur, cur); len(got) != 0 {
		t.Errorf("changedDocs(same) = %v, want none", got)
	}
}

func TestIsSourceEvent(t *testing.T) {
	tests := []struct {
		evt  fsnotify.Event
		want bool
	}{
		{fsnotify.Event{Name: "src/Cart.kt", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "src/Cart.java", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "pkg/cart.go", Op: fsnotify.Remove}, true},
		{fsnotify.Event{Name: "src/Cart.kt", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "README.md", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		if got := isSourceEvent(tt.evt); got != tt.want {
			t.Errorf("isSourceEvent(%v) = %v, want %v", tt.evt, got, tt.want)
		}
	}
}

func TestIsEmbeddedEvent(t *testing.T) {
	embedded := map[string]bool{"/repo/docs/note.md": true}
	tests := []struct {
		evt  fsnotify.Event
		want bool
	}{
		{fsnotify.Event{Name: "/repo/docs/note.md", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "/repo/docs/./note.md", Op: fsnotify.Rename}, true},
		{fsnotify.Event{Name: "/repo/docs/note.md", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "/repo/docs/other.md", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		if got := isEmbeddedEvent(tt.evt, embedded); got != tt.want {
			t.Errorf("isEmbeddedEvent(%v) = %v, want %v", tt.evt, got, tt.want)
		}
	}
}

func TestUnwatchedDirs(t *testing.T) {
	watched := map[string]bool{"/repo/src": true}
	files := []string{"/repo/src/a.md", "/repo/docs/b.md", "/repo/docs/c.md", "/shared/d.md"}
	if got, want := unwatchedDirs(files, watched), []string{"/repo/docs", "/shared"}; !slices.Equal(got, want) {
		t.Errorf("unwatchedDirs() = %v, want %v", got, want)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg"}},
		{"svg", []string{"svg"}},
		{"dot,json", []string{"dot", "json"}},
	}
	for _, tt := range tests {
		if got := parseFormats(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "docsmith-graph"},
		{"out/refs.svg", "out/refs"},
		{"refs.dot", "refs"},
		{"refs.txt", "refs.txt"},
		{"refs", "refs"},
	}
	for _, tt := range tests {
		if got := basePath(tt.in); got != tt.want {
			t.Errorf("basePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLookup(t *testing.T) {
	ix, err := corpus.NewIndex([]*corpus.Documentable{
		{ID: "A.kt#p.Note#0", Path: "p.Note", Package: "p", Language: corpus.Kotlin, File: "A.kt"},
		{ID: "A.kt#p.Use#0", Path: "p.Use", Package: "p", Language: corpus.Kotlin, File: "A.kt"},
	})
	if err != nil {
		t.Fatalf("NewIndex() error: %v", err)
	}

	tests := []struct {
		name   string
		target string
		from   string
		wantID string
		code   errors.Code
	}{
		{"id", "A.kt#p.Use#0", "", "A.kt#p.Use#0", ""},
		{"absolute path", "p.Note", "", "A.kt#p.Note#0", ""},
		{"relative path", "Note", "A.kt#p.Use#0", "A.kt#p.Note#0", ""},
		{"relative miss", "Missing", "A.kt#p.Use#0", "", errors.ErrCodeReferenceNotFound},
		{"unknown from", "Note", "nope", "", errors.ErrCodeNotFound},
		{"absolute miss", "p.Missing", "", "", errors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := lookup(ix, tt.target, tt.from)
			if tt.code != "" {
				if got := errors.GetCode(err); got != tt.code {
					t.Errorf("lookup() code = %q, want %q", got, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatalf("lookup() error: %v", err)
			}
			if d.ID != tt.wantID {
				t.Errorf("lookup() = %q, want %q", d.ID, tt.wantID)
			}
		})
	}
}

func TestCacheLocation(t *testing.T) {
	cfg, err := config.Parse([]byte("[cache]\nbackend = \"none\"\n"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if dir, err := cacheLocation(cfg); err != nil || dir != "" {
		t.Errorf("cacheLocation(none) = %q, %v, want empty", dir, err)
	}

	cfg, err = config.Parse([]byte("[cache]\ndir = \"/tmp/docsmith-cache\"\n"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}
	if dir, err := cacheLocation(cfg); err != nil || !strings.HasSuffix(dir, "docsmith-cache") {
		t.Errorf("cacheLocation(file) = %q, %v", dir, err)
	}
}
