// Package golang loads the doc comments of Go packages.
//
// Packages are loaded with golang.org/x/tools/go/packages, so build tags and
// module boundaries follow the go command. Every package, type, struct
// field, interface method, function, method, constant and variable becomes a
// documentable whose path is the slash-free import path followed by the
// declaration name:
//
//	github.com.acme.shop.Cart.Add
//
// Declarations without a doc comment are loaded too. They resolve as link
// targets and report "no documentation found" when included.
package golang

import (
	"context"
	"fmt"
	"go/ast"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/matzehuels/docsmith/pkg/corpus"
	"github.com/matzehuels/docsmith/pkg/doc"
)

// Options configures loading.
type Options struct {
	// Dir is the working directory of the go command. File names and IDs
	// are relative to it.
	Dir string

	// Patterns are package patterns; the default is "./...".
	Patterns []string

	// Files keeps only documentables of the listed absolute file names.
	// Empty keeps all.
	Files map[string]bool

	Tests bool
}

// Load loads the documentables of the packages matching opts.
func Load(ctx context.Context, opts Options) ([]*corpus.Documentable, error) {
	patterns := opts.Patterns
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	cfg := &packages.Config{
		Context: ctx,
		Mode:    packages.NeedName | packages.NeedFiles | packages.NeedSyntax | packages.NeedImports | packages.NeedModule,
		Dir:     opts.Dir,
		Tests:   opts.Tests,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("load packages: %w", err)
	}

	var out []*corpus.Documentable
	seen := make(map[string]bool)
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, fmt.Errorf("package %s: %v", pkg.PkgPath, pkg.Errors[0])
		}
		for _, f := range pkg.Syntax {
			name := pkg.Fset.File(f.Pos()).Name()
			if seen[name] || (len(opts.Files) > 0 && !opts.Files[name]) {
				continue
			}
			seen[name] = true
			src, err := os.ReadFile(name)
			if err != nil {
				return nil, err
			}
			out = append(out, FileDocs(pkg.Fset, f, src, relative(opts.Dir, name), pkg.PkgPath, importNames(pkg))...)
		}
	}
	return out, nil
}

func relative(dir, name string) string {
	if dir == "" {
		return name
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return name
	}
	rel, err := filepath.Rel(abs, name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return name
	}
	return filepath.ToSlash(rel)
}

// importNames maps import paths to the package names they declare, where
// the loader knows them.
func importNames(pkg *packages.Package) map[string]string {
	names := make(map[string]string, len(pkg.Imports))
	for path, imp := range pkg.Imports {
		if imp.Name != "" {
			names[path] = imp.Name
		}
	}
	return names
}

// DotPath turns an import path into a corpus path.
func DotPath(importPath string) string {
	return strings.ReplaceAll(importPath, "/", ".")
}

var versionSuffix = regexp.MustCompile(`^v[0-9]+$`)

// guessName guesses the package name of an import path the loader did not
// resolve: the last element, skipping major version elements and dropping
// gopkg.in style ".vN" suffixes.
func guessName(importPath string) string {
	parts := strings.Split(importPath, "/")
	name := parts[len(parts)-1]
	if versionSuffix.MatchString(name) && len(parts) > 1 {
		name = parts[len(parts)-2]
	}
	if i := strings.Index(name, ".v"); i > 0 {
		name = name[:i]
	}
	return strings.TrimPrefix(name, "go-")
}

// FileDocs extracts the documentables of one parsed file. names maps import
// paths to package names and may be nil.
func FileDocs(fset *token.FileSet, f *ast.File, src []byte, filename, pkgPath string, names map[string]string) []*corpus.Documentable {
	x := &extractor{
		fset:     fset,
		src:      src,
		file:     filename,
		pkg:      DotPath(pkgPath),
		ordinals: map[string]int{},
	}
	for _, spec := range f.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		imp := corpus.Import{Path: DotPath(path)}
		switch {
		case spec.Name != nil && (spec.Name.Name == "_" || spec.Name.Name == "."):
			continue
		case spec.Name != nil:
			imp.Alias = spec.Name.Name
		case names[path] != "":
			imp.Alias = names[path]
		default:
			imp.Alias = guessName(path)
		}
		x.imports = append(x.imports, imp)
	}

	if f.Doc != nil {
		x.add(x.pkg, "", "package", f.Doc, f.Package, false)
	}
	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			x.funcDecl(d)
		case *ast.GenDecl:
			x.genDecl(d)
		}
	}
	return x.docs
}

type extractor struct {
	fset     *token.FileSet
	src      []byte
	file     string
	pkg      string
	imports  []corpus.Import
	ordinals map[string]int
	docs     []*corpus.Documentable
}

func (x *extractor) funcDecl(d *ast.FuncDecl) {
	if d.Recv == nil || len(d.Recv.List) == 0 {
		x.add(x.pkg+"."+d.Name.Name, "", "func", d.Doc, d.Pos(), false)
		return
	}
	recv := x.pkg + "." + receiverName(d.Recv.List[0].Type)
	x.add(recv+"."+d.Name.Name, recv, "method", d.Doc, d.Pos(), false)
}

func receiverName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverName(t.X)
	case *ast.IndexExpr:
		return receiverName(t.X)
	case *ast.IndexListExpr:
		return receiverName(t.X)
	case *ast.Ident:
		return t.Name
	}
	return "_"
}

func (x *extractor) genDecl(d *ast.GenDecl) {
	for _, spec := range d.Specs {
		switch s := spec.(type) {
		case *ast.TypeSpec:
			cg := s.Doc
			if cg == nil && len(d.Specs) == 1 {
				cg = d.Doc
			}
			path := x.pkg + "." + s.Name.Name
			x.add(path, "", "type", cg, s.Pos(), s.Assign.IsValid())
			x.members(path, s.Type)
		case *ast.ValueSpec:
			cg := s.Doc
			if cg == nil && len(d.Specs) == 1 {
				cg = d.Doc
			}
			kind := "var"
			if d.Tok == token.CONST {
				kind = "const"
			}
			for _, n := range s.Names {
				if n.Name != "_" {
					x.add(x.pkg+"."+n.Name, "", kind, cg, s.Pos(), false)
				}
			}
		}
	}
}

// members adds the fields of a struct type or the methods of an interface.
func (x *extractor) members(owner string, expr ast.Expr) {
	var fields *ast.FieldList
	kind := "field"
	switch t := expr.(type) {
	case *ast.StructType:
		fields = t.Fields
	case *ast.InterfaceType:
		fields, kind = t.Methods, "method"
	}
	if fields == nil {
		return
	}
	for _, f := range fields.List {
		for _, n := range f.Names {
			x.add(owner+"."+n.Name, owner, kind, f.Doc, f.Pos(), false)
		}
	}
}

// add records a documentable. Without a doc comment the doc range is the
// empty range at the start of the declaration's line.
func (x *extractor) add(path, ext, kind string, cg *ast.CommentGroup, declPos token.Pos, alias bool) {
	ordinal := x.ordinals[path]
	x.ordinals[path]++

	d := &corpus.Documentable{
		ID:            fmt.Sprintf("%s#%s#%d", x.file, path, ordinal),
		Path:          path,
		ExtensionPath: ext,
		Package:       x.pkg,
		Imports:       x.imports,
		Language:      corpus.Go,
		Kind:          kind,
		File:          x.file,
		IsTypeAlias:   alias,
		Extension:     &corpus.Extension{},
	}
	if cg != nil {
		d.DocStart = x.fset.Position(cg.Pos()).Offset
		d.DocEnd = x.fset.Position(cg.End()).Offset
		d.SourceDoc, _ = doc.Parse(string(x.src[d.DocStart:d.DocEnd]))
		d.SourceHasDocumentation = true
	} else {
		d.DocStart = lineStart(x.src, x.fset.Position(declPos).Offset)
		d.DocEnd = d.DocStart
	}
	d.Indent = indentAt(x.src, d.DocStart)
	d.Doc = d.SourceDoc
	x.docs = append(x.docs, d)
}

func lineStart(src []byte, off int) int {
	for off > 0 && src[off-1] != '\n' {
		off--
	}
	return off
}

// indentAt returns the whitespace between the start of off's line and off,
// or the leading whitespace of the line when off is the line start.
func indentAt(src []byte, off int) string {
	start := lineStart(src, off)
	end := start
	for end < len(src) && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	return string(src[start:end])
}
