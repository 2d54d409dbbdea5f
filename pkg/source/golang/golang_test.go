package golang

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/matzehuels/docsmith/pkg/corpus"
)

const cartSrc = `// Package shop sells things.
package shop

import (
	"fmt"
	str "strings"
	"gopkg.in/yaml.v3"
)

// Cart holds items.
//
// @include [Item]
type Cart struct {
	// Items in the cart.
	Items []Item
}

// Add adds an item.
func (c *Cart) Add(i Item) {}

type Item struct{}

type Alias = Item

const (
	// Max is the limit.
	Max = 3
	Min = 1
)

var _ = fmt.Sprint
var _ = str.ToUpper
var _ yaml.Node
`

func parseCart(t *testing.T) []*corpus.Documentable {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "shop.go", cartSrc, parser.ParseComments)
	if err != nil {
		t.Fatal(err)
	}
	return FileDocs(fset, f, []byte(cartSrc), "shop.go", "example.com/shop", nil)
}

func byPath(docs []*corpus.Documentable) map[string]*corpus.Documentable {
	m := make(map[string]*corpus.Documentable)
	for _, d := range docs {
		m[d.Path] = d
	}
	return m
}

func TestFileDocs(t *testing.T) {
	docs := byPath(parseCart(t))

	tests := []struct {
		path   string
		kind   string
		doc    string
		hasDoc bool
	}{
		{"example.com.shop", "package", "Package shop sells things.", true},
		{"example.com.shop.Cart", "type", "Cart holds items.\n\n@include [Item]", true},
		{"example.com.shop.Cart.Items", "field", "Items in the cart.", true},
		{"example.com.shop.Cart.Add", "method", "Add adds an item.", true},
		{"example.com.shop.Item", "type", "", false},
		{"example.com.shop.Max", "const", "Max is the limit.", true},
		{"example.com.shop.Min", "const", "", false},
	}
	for _, tt := range tests {
		d, ok := docs[tt.path]
		if !ok {
			t.Errorf("missing documentable %s", tt.path)
			continue
		}
		if d.Kind != tt.kind {
			t.Errorf("%s: Kind = %q, want %q", tt.path, d.Kind, tt.kind)
		}
		if string(d.SourceDoc) != tt.doc {
			t.Errorf("%s: SourceDoc = %q, want %q", tt.path, d.SourceDoc, tt.doc)
		}
		if d.SourceHasDocumentation != tt.hasDoc {
			t.Errorf("%s: SourceHasDocumentation = %v, want %v", tt.path, d.SourceHasDocumentation, tt.hasDoc)
		}
		if d.Package != "example.com.shop" || d.Language != corpus.Go {
			t.Errorf("%s: Package, Language = %q, %q", tt.path, d.Package, d.Language)
		}
	}

	if add := docs["example.com.shop.Cart.Add"]; add.ExtensionPath != "example.com.shop.Cart" {
		t.Errorf("method ExtensionPath = %q, want receiver path", add.ExtensionPath)
	}
	if !docs["example.com.shop.Alias"].IsTypeAlias {
		t.Error("Alias should be a type alias")
	}
	if cart := docs["example.com.shop.Cart"]; cart.ID != "shop.go#example.com.shop.Cart#0" {
		t.Errorf("ID = %q", cart.ID)
	}
}

func TestFileDocsRanges(t *testing.T) {
	docs := byPath(parseCart(t))

	field := docs["example.com.shop.Cart.Items"]
	if got := cartSrc[field.DocStart:field.DocEnd]; got != "// Items in the cart." {
		t.Errorf("field doc range = %q", got)
	}
	if field.Indent != "\t" {
		t.Errorf("field Indent = %q, want tab", field.Indent)
	}

	item := docs["example.com.shop.Item"]
	if item.DocStart != item.DocEnd || cartSrc[item.DocStart:item.DocStart+4] != "type" {
		t.Errorf("undocumented range = [%d, %d), want empty range at the declaration", item.DocStart, item.DocEnd)
	}
}

func TestFileDocsImports(t *testing.T) {
	d := parseCart(t)[0]
	want := []corpus.Import{
		{Path: "fmt", Alias: "fmt"},
		{Path: "strings", Alias: "str"},
		{Path: "gopkg.in.yaml.v3", Alias: "yaml"},
	}
	if len(d.Imports) != len(want) {
		t.Fatalf("Imports = %v, want %v", d.Imports, want)
	}
	for i := range want {
		if d.Imports[i] != want[i] {
			t.Errorf("Imports[%d] = %v, want %v", i, d.Imports[i], want[i])
		}
	}
}

func TestGuessName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"fmt", "fmt"},
		{"github.com/redis/go-redis/v9", "redis"},
		{"gopkg.in/yaml.v3", "yaml"},
		{"github.com/spf13/cobra", "cobra"},
	}
	for _, tt := range tests {
		if got := guessName(tt.path); got != tt.want {
			t.Errorf("guessName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
