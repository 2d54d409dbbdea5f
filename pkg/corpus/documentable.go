package corpus

import (
	"slices"
	"strings"

	"github.com/matzehuels/docsmith/pkg/doc"
	"github.com/matzehuels/docsmith/pkg/errors"
)

// Language is the source language of a documentable. It decides the comment
// syntax, the escaping rules and the link syntax.
type Language string

const (
	Kotlin Language = "kotlin"
	Java   Language = "java"
	Go     Language = "go"
)

// Languages lists the supported languages.
var Languages = []Language{Kotlin, Java, Go}

// ParseLanguage converts a case-insensitive language name.
func ParseLanguage(s string) (Language, error) {
	l := Language(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Languages, l) {
		return "", errors.New(errors.ErrCodeInvalidLanguage, "unsupported language %q", s)
	}
	return l, nil
}

// Syntax returns the comment syntax used by the language.
func (l Language) Syntax() doc.Syntax {
	if l == Go {
		return doc.SyntaxLine
	}
	return doc.SyntaxBlock
}

// BracketLinks reports whether the language writes cross references as
// "[path]" links. Java uses "{@link path}" instead.
func (l Language) BracketLinks() bool { return l == Kotlin || l == Go }

// Import is an import declaration of the file a documentable lives in.
// A Path ending in ".*" imports every member of a package.
type Import struct {
	Path  string `json:"path" yaml:"path"`
	Alias string `json:"alias,omitempty" yaml:"alias,omitempty"`
}

// IsStar reports whether the import is a star import.
func (i Import) IsStar() bool { return strings.HasSuffix(i.Path, ".*") }

// Name returns the identifier the import is visible under.
func (i Import) Name() string {
	if i.Alias != "" {
		return i.Alias
	}
	return lastSegment(i.Path)
}

// LineRange is an inclusive range of lines within a doc.
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Extension holds mutable per-documentable state written by handlers beyond
// the doc text.
type Extension struct {
	ExportRange *LineRange `json:"exportRange,omitempty"`
}

// Documentable is a single documented declaration.
type Documentable struct {
	ID            string   `json:"id" yaml:"id"`
	Path          string   `json:"path" yaml:"path"`
	ExtensionPath string   `json:"extensionPath,omitempty" yaml:"extensionPath,omitempty"`
	Package       string   `json:"package,omitempty" yaml:"package,omitempty"`
	Imports       []Import `json:"imports,omitempty" yaml:"imports,omitempty"`
	Language      Language `json:"language" yaml:"language"`
	Kind          string   `json:"kind,omitempty" yaml:"kind,omitempty"`

	File     string `json:"file,omitempty" yaml:"file,omitempty"`
	DocStart int    `json:"docStart" yaml:"docStart"`
	DocEnd   int    `json:"docEnd" yaml:"docEnd"`
	Indent   string `json:"indent,omitempty" yaml:"indent,omitempty"`

	// SourceDoc is the doc as found in the source and never changes.
	SourceDoc doc.Content `json:"sourceDoc" yaml:"doc"`
	// Doc is the working copy rewritten by processors.
	Doc doc.Content `json:"doc" yaml:"-"`

	SourceHasDocumentation bool `json:"sourceHasDocumentation" yaml:"hasDocumentation"`
	IsTypeAlias            bool `json:"isTypeAlias,omitempty" yaml:"typeAlias,omitempty"`

	// Extension is nil when the documentable cannot carry extra state.
	Extension *Extension `json:"extension,omitempty" yaml:"-"`
}

// Clone returns a deep copy.
func (d *Documentable) Clone() *Documentable {
	c := *d
	c.Imports = slices.Clone(d.Imports)
	if d.Extension != nil {
		ext := *d.Extension
		if ext.ExportRange != nil {
			r := *ext.ExportRange
			ext.ExportRange = &r
		}
		c.Extension = &ext
	}
	return &c
}

// Reset restores the working doc to the source doc.
func (d *Documentable) Reset() {
	d.Doc = d.SourceDoc
	if d.Extension != nil {
		d.Extension.ExportRange = nil
	}
}

// Validate checks that the documentable can be indexed.
func (d *Documentable) Validate() error {
	if d.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "documentable without id")
	}
	if d.Path == "" {
		return errors.New(errors.ErrCodeInvalidInput, "documentable %s without path", d.ID)
	}
	if !slices.Contains(Languages, d.Language) {
		return errors.New(errors.ErrCodeInvalidLanguage, "documentable %s: unsupported language %q", d.ID, d.Language)
	}
	if d.Package != "" && d.Path != d.Package && !strings.HasPrefix(d.Path, d.Package+".") {
		return errors.New(errors.ErrCodeInvalidInput, "documentable %s: path %s is outside package %s", d.ID, d.Path, d.Package)
	}
	return nil
}

// RequireExtension returns the extension capability or a CAPABILITY error
// naming the handler that needed it.
func (d *Documentable) RequireExtension(handler string) (*Extension, error) {
	if d.Extension == nil {
		return nil, errors.New(errors.ErrCodeCapability,
			"%s requires the extension capability, which %s (%s) does not support", handler, d.Path, d.ID)
	}
	return d.Extension, nil
}

func lastSegment(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i+1:]
	}
	return path
}
