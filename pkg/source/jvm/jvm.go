// Package jvm loads the KDoc and Javadoc comments of Kotlin and Java files
// with tree-sitter.
//
// Every class-like declaration, function, method, constructor, property,
// field, enum entry and type alias becomes a documentable whose path is the
// file's package followed by the enclosing declarations:
//
//	com.example.Cart.add
//
// Only "/** ... */" comments directly in front of a declaration count as
// its doc.
package jvm

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/kotlin"

	"github.com/matzehuels/docsmith/pkg/corpus"
	"github.com/matzehuels/docsmith/pkg/doc"
	"github.com/matzehuels/docsmith/pkg/errors"
)

// grammar describes the node types of one language.
type grammar struct {
	lang *sitter.Language

	// classes maps class-like node types to the documentable kind.
	classes map[string]string
	// members maps member node types to the documentable kind.
	members map[string]string
	// bodies are the node types holding class members.
	bodies map[string]bool
	// transparent nodes add no path segment, like Kotlin companion objects.
	transparent map[string]bool
	// names are the identifier node types naming a declaration.
	names map[string]bool
	// variables wrap the name of fields and properties.
	variables map[string]bool

	packageNode string
	importNode  string
	aliasNode   string
}

var grammars = map[corpus.Language]*grammar{
	corpus.Java: {
		lang: java.GetLanguage(),
		classes: map[string]string{
			"class_declaration":           "class",
			"interface_declaration":       "interface",
			"enum_declaration":            "enum",
			"record_declaration":          "record",
			"annotation_type_declaration": "annotation",
		},
		members: map[string]string{
			"method_declaration":                  "method",
			"constructor_declaration":             "constructor",
			"field_declaration":                   "field",
			"constant_declaration":                "field",
			"enum_constant":                       "enum_entry",
			"annotation_type_element_declaration": "method",
		},
		bodies: map[string]bool{
			"class_body":             true,
			"interface_body":         true,
			"enum_body":              true,
			"enum_body_declarations": true,
			"annotation_type_body":   true,
		},
		names:       map[string]bool{"identifier": true},
		variables:   map[string]bool{"variable_declarator": true},
		packageNode: "package_declaration",
		importNode:  "import_declaration",
	},
	corpus.Kotlin: {
		lang: kotlin.GetLanguage(),
		classes: map[string]string{
			"class_declaration":  "class",
			"object_declaration": "object",
		},
		members: map[string]string{
			"function_declaration": "function",
			"property_declaration": "property",
			"type_alias":           "typealias",
			"enum_entry":           "enum_entry",
		},
		bodies: map[string]bool{
			"class_body":      true,
			"enum_class_body": true,
		},
		transparent: map[string]bool{"companion_object": true},
		names: map[string]bool{
			"type_identifier":   true,
			"simple_identifier": true,
		},
		variables: map[string]bool{
			"variable_declaration":       true,
			"multi_variable_declaration": true,
		},
		packageNode: "package_header",
		importNode:  "import_header",
		aliasNode:   "type_alias",
	},
}

// Parse extracts the documentables of one Java or Kotlin file.
func Parse(ctx context.Context, lang corpus.Language, filename string, src []byte) ([]*corpus.Documentable, error) {
	g, ok := grammars[lang]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidLanguage, "no tree-sitter grammar for %s", lang)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(g.lang)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	defer tree.Close()

	x := &extractor{
		g:        g,
		src:      src,
		file:     filename,
		lang:     lang,
		ordinals: map[string]int{},
	}
	root := tree.RootNode()
	x.header(root)
	x.walk(root, x.pkg)
	return x.docs, nil
}

type extractor struct {
	g        *grammar
	src      []byte
	file     string
	lang     corpus.Language
	pkg      string
	imports  []corpus.Import
	ordinals map[string]int
	docs     []*corpus.Documentable
}

// header reads the package and the imports.
func (x *extractor) header(root *sitter.Node) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		n := root.NamedChild(i)
		switch n.Type() {
		case x.g.packageNode:
			x.pkg = packageName(n.Content(x.src))
		case x.g.importNode:
			if imp, ok := parseImport(n.Content(x.src)); ok {
				x.imports = append(x.imports, imp)
			}
		case "import_list":
			for j := 0; j < int(n.NamedChildCount()); j++ {
				if c := n.NamedChild(j); c.Type() == x.g.importNode {
					if imp, ok := parseImport(c.Content(x.src)); ok {
						x.imports = append(x.imports, imp)
					}
				}
			}
		}
	}
}

func packageName(text string) string {
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), ";"))
	s = strings.TrimSpace(strings.TrimPrefix(s, "package"))
	return strings.Join(strings.Fields(s), "")
}

// parseImport reads "import a.b.C", "import static a.b.C.m;",
// "import a.b.*" and "import a.b.C as D".
func parseImport(text string) (corpus.Import, bool) {
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), ";"))
	s, ok := strings.CutPrefix(s, "import")
	if !ok {
		return corpus.Import{}, false
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimPrefix(s, "static "))
	path, alias, _ := strings.Cut(s, " as ")
	path = strings.Join(strings.Fields(path), "")
	if path == "" {
		return corpus.Import{}, false
	}
	return corpus.Import{Path: path, Alias: strings.TrimSpace(alias)}, true
}

// walk visits the declarations below n. scope is the path of the enclosing
// declaration.
func (x *extractor) walk(n *sitter.Node, scope string) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		t := c.Type()
		switch {
		case x.g.classes[t] != "":
			name := x.name(c)
			if name == "" {
				continue
			}
			path := join(scope, name)
			x.add(c, path, "", x.g.classes[t])
			x.walk(c, path)
		case x.g.members[t] != "":
			x.member(c, scope, x.g.members[t])
		case x.g.bodies[t] || x.g.transparent[t]:
			x.walk(c, scope)
		}
	}
}

func (x *extractor) member(n *sitter.Node, scope, kind string) {
	ext := x.receiver(n)
	names := x.variableNames(n)
	if len(names) == 0 {
		if kind == "constructor" {
			names = []string{lastSegment(scope)}
		} else if name := x.name(n); name != "" {
			names = []string{name}
		}
	}
	for _, name := range names {
		x.add(n, join(scope, name), ext, kind)
	}
}

// name returns the first identifier child of n.
func (x *extractor) name(n *sitter.Node) string {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if x.g.names[c.Type()] {
			return c.Content(x.src)
		}
	}
	return ""
}

// variableNames returns the names declared by a field or property.
func (x *extractor) variableNames(n *sitter.Node) []string {
	var out []string
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if !x.g.variables[c.Type()] {
			continue
		}
		if name := x.name(c); name != "" {
			out = append(out, name)
			continue
		}
		for j := 0; j < int(c.NamedChildCount()); j++ {
			if name := x.name(c.NamedChild(j)); name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}

// receiver returns the receiver type path of a Kotlin extension, the type
// node directly followed by ".".
func (x *extractor) receiver(n *sitter.Node) string {
	if x.lang != corpus.Kotlin {
		return ""
	}
	for i := 0; i+1 < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if !strings.HasSuffix(c.Type(), "_type") || n.Child(i+1).Type() != "." {
			continue
		}
		recv := c.Content(x.src)
		if j := strings.IndexAny(recv, "<?"); j >= 0 {
			recv = recv[:j]
		}
		if !strings.Contains(recv, ".") {
			recv = join(x.pkg, recv)
		}
		return recv
	}
	return ""
}

// docComment returns the "/**" comment in front of n, if any.
func (x *extractor) docComment(n *sitter.Node) *sitter.Node {
	candidates := []*sitter.Node{n.PrevSibling()}
	if n.ChildCount() > 0 {
		candidates = append(candidates, n.Child(0))
	}
	for _, c := range candidates {
		if c == nil || !strings.Contains(c.Type(), "comment") {
			continue
		}
		if !strings.HasPrefix(c.Content(x.src), "/**") {
			continue
		}
		if c.EndByte() <= n.StartByte() && strings.TrimSpace(string(x.src[c.EndByte():n.StartByte()])) != "" {
			continue
		}
		return c
	}
	return nil
}

func (x *extractor) add(n *sitter.Node, path, ext, kind string) {
	ordinal := x.ordinals[path]
	x.ordinals[path]++

	d := &corpus.Documentable{
		ID:            fmt.Sprintf("%s#%s#%d", x.file, path, ordinal),
		Path:          path,
		ExtensionPath: ext,
		Package:       x.pkg,
		Imports:       x.imports,
		Language:      x.lang,
		Kind:          kind,
		File:          x.file,
		IsTypeAlias:   x.g.aliasNode != "" && n.Type() == x.g.aliasNode,
		Extension:     &corpus.Extension{},
	}
	if c := x.docComment(n); c != nil {
		d.DocStart = int(c.StartByte())
		d.DocEnd = int(c.EndByte())
		d.SourceDoc, _ = doc.Parse(string(x.src[d.DocStart:d.DocEnd]))
		d.SourceHasDocumentation = true
	} else {
		d.DocStart = lineStart(x.src, int(n.StartByte()))
		d.DocEnd = d.DocStart
	}
	d.Indent = indentAt(x.src, d.DocStart)
	d.Doc = d.SourceDoc
	x.docs = append(x.docs, d)
}

func join(scope, name string) string {
	if scope == "" {
		return name
	}
	return scope + "." + name
}

func lastSegment(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i+1:]
	}
	return path
}

func lineStart(src []byte, off int) int {
	for off > 0 && src[off-1] != '\n' {
		off--
	}
	return off
}

func indentAt(src []byte, off int) string {
	start := lineStart(src, off)
	end := start
	for end < len(src) && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	return string(src[start:end])
}
